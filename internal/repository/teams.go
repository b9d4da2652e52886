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

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

const teamColumns = `
	id, mlb_id, name, abbreviation, location_name, venue_name,
	league, division, first_year_of_play, created_at, updated_at
`

func scanTeam(row pgx.Row) (*models.Team, error) {
	var team models.Team
	err := row.Scan(
		&team.ID, &team.MlbID, &team.Name, &team.Abbreviation, &team.LocationName,
		&team.VenueName, &team.League, &team.Division, &team.FirstYearOfPlay,
		&team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// Upsert inserts or updates a team by its MLB id and reports whether a row was created
func (r *TeamRepository) Upsert(ctx context.Context, team *models.Team) (bool, error) {
	query := `
		INSERT INTO teams (
			mlb_id, name, abbreviation, location_name, venue_name,
			league, division, first_year_of_play
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (mlb_id) DO UPDATE SET
			name = EXCLUDED.name,
			abbreviation = EXCLUDED.abbreviation,
			location_name = EXCLUDED.location_name,
			venue_name = EXCLUDED.venue_name,
			league = EXCLUDED.league,
			division = EXCLUDED.division,
			first_year_of_play = EXCLUDED.first_year_of_play,
			updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0)
	`

	start := time.Now()
	var inserted bool
	err := r.db.Pool.QueryRow(
		ctx, query,
		team.MlbID, team.Name, team.Abbreviation, team.LocationName, team.VenueName,
		team.League, team.Division, team.FirstYearOfPlay,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt, &inserted)
	observe("upsert", "teams", start, err)

	if err != nil {
		return false, fmt.Errorf("failed to upsert team: %w", err)
	}

	log.Debug().
		Int("id", team.ID).
		Int("mlb_id", team.MlbID).
		Str("name", team.Name).
		Bool("created", inserted).
		Msg("Team upserted")

	return inserted, nil
}

// GetByMlbID retrieves a team by its MLB id
func (r *TeamRepository) GetByMlbID(ctx context.Context, mlbID int) (*models.Team, error) {
	team, err := scanTeam(r.db.Pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE mlb_id = $1`, mlbID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team not found: mlb_id=%d: %w", mlbID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// List retrieves all teams
func (r *TeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// Count returns the total number of teams
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM teams`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}

	return count, nil
}
