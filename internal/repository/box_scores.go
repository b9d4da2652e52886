package repository

import (
	"context"
	"fmt"
	"time"

	"mlbstats/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// BoxScoreRepository handles per-game player lines
type BoxScoreRepository struct {
	db *Database
}

// SaveGame stores every batting and pitching line of one game in a single transaction
func (r *BoxScoreRepository) SaveGame(ctx context.Context, batting []models.PlayerGameBatting, pitching []models.PlayerGamePitching) error {
	start := time.Now()
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, b := range batting {
			batch.Queue(`
				INSERT INTO player_game_batting (
					game_id, player_id, team_id, batting_order, at_bats, runs, hits, doubles, triples,
					home_runs, rbi, walks, strikeouts, stolen_bases, left_on_base
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
				ON CONFLICT (game_id, player_id) DO UPDATE SET
					team_id = EXCLUDED.team_id,
					batting_order = EXCLUDED.batting_order,
					at_bats = EXCLUDED.at_bats,
					runs = EXCLUDED.runs,
					hits = EXCLUDED.hits,
					doubles = EXCLUDED.doubles,
					triples = EXCLUDED.triples,
					home_runs = EXCLUDED.home_runs,
					rbi = EXCLUDED.rbi,
					walks = EXCLUDED.walks,
					strikeouts = EXCLUDED.strikeouts,
					stolen_bases = EXCLUDED.stolen_bases,
					left_on_base = EXCLUDED.left_on_base
			`,
				b.GameID, b.PlayerID, b.TeamID, b.BattingOrder, b.AtBats, b.Runs, b.Hits, b.Doubles, b.Triples,
				b.HomeRuns, b.Rbi, b.Walks, b.Strikeouts, b.StolenBases, b.LeftOnBase,
			)
		}
		for _, p := range pitching {
			batch.Queue(`
				INSERT INTO player_game_pitching (
					game_id, player_id, team_id, is_starter, innings_pitched, hits_allowed, runs_allowed,
					earned_runs, walks, strikeouts, home_runs_allowed, pitch_count
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
				ON CONFLICT (game_id, player_id) DO UPDATE SET
					team_id = EXCLUDED.team_id,
					is_starter = EXCLUDED.is_starter,
					innings_pitched = EXCLUDED.innings_pitched,
					hits_allowed = EXCLUDED.hits_allowed,
					runs_allowed = EXCLUDED.runs_allowed,
					earned_runs = EXCLUDED.earned_runs,
					walks = EXCLUDED.walks,
					strikeouts = EXCLUDED.strikeouts,
					home_runs_allowed = EXCLUDED.home_runs_allowed,
					pitch_count = EXCLUDED.pitch_count
			`,
				p.GameID, p.PlayerID, p.TeamID, p.IsStarter, p.InningsPitched, p.HitsAllowed, p.RunsAllowed,
				p.EarnedRuns, p.Walks, p.Strikeouts, p.HomeRunsAllowed, p.PitchCount,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	observe("insert", "player_game_batting", start, err)

	if err != nil {
		return fmt.Errorf("failed to save box score: %w", err)
	}
	return nil
}

// CountBatting returns the number of batting lines stored for a game
func (r *BoxScoreRepository) CountBatting(ctx context.Context, gameID int) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM player_game_batting WHERE game_id = $1`, gameID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count batting lines: %w", err)
	}
	return count, nil
}
