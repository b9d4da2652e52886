package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mlbstats/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// StandingRepository handles team standings
type StandingRepository struct {
	db *Database
}

// Upsert inserts or updates a team's standing for a season
func (r *StandingRepository) Upsert(ctx context.Context, s *models.Standing) (bool, error) {
	query := `
		INSERT INTO team_standings (
			team_id, season, wins, losses, winning_pct, games_back, wild_card_games_back,
			division_rank, league_rank, wild_card_rank, runs_scored, runs_allowed, run_differential,
			streak_code, home_wins, home_losses, away_wins, away_losses
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (team_id, season) DO UPDATE SET
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			winning_pct = EXCLUDED.winning_pct,
			games_back = EXCLUDED.games_back,
			wild_card_games_back = EXCLUDED.wild_card_games_back,
			division_rank = EXCLUDED.division_rank,
			league_rank = EXCLUDED.league_rank,
			wild_card_rank = EXCLUDED.wild_card_rank,
			runs_scored = EXCLUDED.runs_scored,
			runs_allowed = EXCLUDED.runs_allowed,
			run_differential = EXCLUDED.run_differential,
			streak_code = EXCLUDED.streak_code,
			home_wins = EXCLUDED.home_wins,
			home_losses = EXCLUDED.home_losses,
			away_wins = EXCLUDED.away_wins,
			away_losses = EXCLUDED.away_losses,
			updated_at = NOW()
		RETURNING id, updated_at, (xmax = 0)
	`

	start := time.Now()
	var inserted bool
	err := r.db.Pool.QueryRow(
		ctx, query,
		s.TeamID, s.Season, s.Wins, s.Losses, s.WinningPct, s.GamesBack, s.WildCardGamesBack,
		s.DivisionRank, s.LeagueRank, s.WildCardRank, s.RunsScored, s.RunsAllowed, s.RunDifferential,
		s.StreakCode, s.HomeWins, s.HomeLosses, s.AwayWins, s.AwayLosses,
	).Scan(&s.ID, &s.UpdatedAt, &inserted)
	observe("upsert", "team_standings", start, err)

	if err != nil {
		return false, fmt.Errorf("failed to upsert standing: %w", err)
	}
	return inserted, nil
}

// GetByTeamAndSeason retrieves a standing
func (r *StandingRepository) GetByTeamAndSeason(ctx context.Context, teamID, season int) (*models.Standing, error) {
	var s models.Standing
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, team_id, season, wins, losses, winning_pct, games_back, wild_card_games_back,
		       division_rank, league_rank, wild_card_rank, runs_scored, runs_allowed, run_differential,
		       streak_code, home_wins, home_losses, away_wins, away_losses, updated_at
		FROM team_standings
		WHERE team_id = $1 AND season = $2
	`, teamID, season).Scan(
		&s.ID, &s.TeamID, &s.Season, &s.Wins, &s.Losses, &s.WinningPct, &s.GamesBack, &s.WildCardGamesBack,
		&s.DivisionRank, &s.LeagueRank, &s.WildCardRank, &s.RunsScored, &s.RunsAllowed, &s.RunDifferential,
		&s.StreakCode, &s.HomeWins, &s.HomeLosses, &s.AwayWins, &s.AwayLosses, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("standing not found: team_id=%d season=%d: %w", teamID, season, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get standing: %w", err)
	}
	return &s, nil
}
