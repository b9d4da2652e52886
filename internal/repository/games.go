package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mlbstats/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameRepository handles game and linescore database operations
type GameRepository struct {
	db *Database
}

const gameColumns = `
	id, mlb_id, season, game_date, scheduled_at, game_type, status,
	home_team_id, away_team_id, home_score, away_score, venue, day_night, scheduled_innings,
	home_probable_pitcher_mlb_id, away_probable_pitcher_mlb_id,
	home_hits, away_hits, home_errors, away_errors, current_inning, inning_state,
	runner_on_first, runner_on_second, runner_on_third, created_at, updated_at
`

func scanGame(row pgx.Row) (*models.Game, error) {
	var g models.Game
	err := row.Scan(
		&g.ID, &g.MlbID, &g.Season, &g.GameDate, &g.ScheduledAt, &g.GameType, &g.Status,
		&g.HomeTeamID, &g.AwayTeamID, &g.HomeScore, &g.AwayScore, &g.Venue, &g.DayNight, &g.ScheduledInnings,
		&g.HomeProbablePitcherMlb, &g.AwayProbablePitcherMlb,
		&g.HomeHits, &g.AwayHits, &g.HomeErrors, &g.AwayErrors, &g.CurrentInning, &g.InningState,
		&g.RunnerOnFirst, &g.RunnerOnSecond, &g.RunnerOnThird, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func collectGames(rows pgx.Rows) ([]*models.Game, error) {
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}
	return games, nil
}

// Upsert inserts or updates a game's schedule data by MLB id. Linescore columns are left to UpdateLinescore.
func (r *GameRepository) Upsert(ctx context.Context, game *models.Game) (bool, error) {
	query := `
		INSERT INTO games (
			mlb_id, season, game_date, scheduled_at, game_type, status,
			home_team_id, away_team_id, home_score, away_score, venue, day_night, scheduled_innings,
			home_probable_pitcher_mlb_id, away_probable_pitcher_mlb_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (mlb_id) DO UPDATE SET
			season = EXCLUDED.season,
			game_date = EXCLUDED.game_date,
			scheduled_at = EXCLUDED.scheduled_at,
			game_type = EXCLUDED.game_type,
			status = EXCLUDED.status,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			venue = EXCLUDED.venue,
			day_night = EXCLUDED.day_night,
			scheduled_innings = EXCLUDED.scheduled_innings,
			home_probable_pitcher_mlb_id = EXCLUDED.home_probable_pitcher_mlb_id,
			away_probable_pitcher_mlb_id = EXCLUDED.away_probable_pitcher_mlb_id,
			updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0)
	`

	start := time.Now()
	var inserted bool
	err := r.db.Pool.QueryRow(
		ctx, query,
		game.MlbID, game.Season, game.GameDate, game.ScheduledAt, game.GameType, game.Status,
		game.HomeTeamID, game.AwayTeamID, game.HomeScore, game.AwayScore, game.Venue, game.DayNight,
		game.ScheduledInnings, game.HomeProbablePitcherMlb, game.AwayProbablePitcherMlb,
	).Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt, &inserted)
	observe("upsert", "games", start, err)

	if err != nil {
		return false, fmt.Errorf("failed to upsert game: %w", err)
	}
	return inserted, nil
}

// GetByMlbID retrieves a game by its MLB game pk
func (r *GameRepository) GetByMlbID(ctx context.Context, mlbID int) (*models.Game, error) {
	g, err := scanGame(r.db.Pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE mlb_id = $1`, mlbID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("game not found: mlb_id=%d: %w", mlbID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return g, nil
}

// ListFinalWithoutBoxScore returns completed games of a season with no batting lines stored
func (r *GameRepository) ListFinalWithoutBoxScore(ctx context.Context, season int) ([]*models.Game, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+gameColumns+` FROM games g
		WHERE g.season = $1 AND g.status = $2
		  AND NOT EXISTS (SELECT 1 FROM player_game_batting b WHERE b.game_id = g.id)
		ORDER BY g.game_date, g.id`, season, models.GameStatusFinal)
	if err != nil {
		return nil, fmt.Errorf("failed to list games without box scores: %w", err)
	}
	return collectGames(rows)
}

// ListFinalWithoutInnings returns completed games of a season with no linescore innings stored
func (r *GameRepository) ListFinalWithoutInnings(ctx context.Context, season int) ([]*models.Game, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+gameColumns+` FROM games g
		WHERE g.season = $1 AND g.status = $2
		  AND NOT EXISTS (SELECT 1 FROM game_innings i WHERE i.game_id = g.id)
		ORDER BY g.game_date, g.id`, season, models.GameStatusFinal)
	if err != nil {
		return nil, fmt.Errorf("failed to list games without linescores: %w", err)
	}
	return collectGames(rows)
}

// UpdateLinescore stores the game-level linescore totals and state
func (r *GameRepository) UpdateLinescore(ctx context.Context, game *models.Game) error {
	start := time.Now()
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE games SET
			home_hits = $1, away_hits = $2, home_errors = $3, away_errors = $4,
			current_inning = $5, inning_state = $6,
			runner_on_first = $7, runner_on_second = $8, runner_on_third = $9,
			scheduled_innings = $10,
			updated_at = NOW()
		WHERE id = $11
	`,
		game.HomeHits, game.AwayHits, game.HomeErrors, game.AwayErrors,
		game.CurrentInning, game.InningState,
		game.RunnerOnFirst, game.RunnerOnSecond, game.RunnerOnThird,
		game.ScheduledInnings, game.ID,
	)
	observe("update", "games", start, err)

	if err != nil {
		return fmt.Errorf("failed to update linescore: %w", err)
	}
	return nil
}

// ReplaceInnings swaps a game's stored innings for the given set in one transaction
func (r *GameRepository) ReplaceInnings(ctx context.Context, gameID int, innings []models.GameInning) error {
	start := time.Now()
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM game_innings WHERE game_id = $1`, gameID); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, in := range innings {
			batch.Queue(`
				INSERT INTO game_innings (game_id, inning, away_runs, home_runs, away_hits, home_hits, away_errors, home_errors)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, gameID, in.Inning, in.AwayRuns, in.HomeRuns, in.AwayHits, in.HomeHits, in.AwayErrors, in.HomeErrors)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	observe("replace", "game_innings", start, err)

	if err != nil {
		return fmt.Errorf("failed to replace innings for game %d: %w", gameID, err)
	}

	log.Debug().Int("game_id", gameID).Int("innings", len(innings)).Msg("Innings replaced")
	return nil
}

// CountInnings returns the number of stored innings for a game
func (r *GameRepository) CountInnings(ctx context.Context, gameID int) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM game_innings WHERE game_id = $1`, gameID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count innings: %w", err)
	}
	return count, nil
}
