package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mlbstats/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// PlayerRepository handles player database operations
type PlayerRepository struct {
	db *Database
}

const playerColumns = `
	id, mlb_id, full_name, first_name, last_name, primary_number, birth_date,
	height, weight, bats, throws, position, position_type, active, created_at, updated_at
`

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var p models.Player
	err := row.Scan(
		&p.ID, &p.MlbID, &p.FullName, &p.FirstName, &p.LastName, &p.PrimaryNumber, &p.BirthDate,
		&p.Height, &p.Weight, &p.Bats, &p.Throws, &p.Position, &p.PositionType, &p.Active,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPlayers(rows pgx.Rows) ([]*models.Player, error) {
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}
	return players, nil
}

// Upsert inserts or updates a player by MLB id. Optional fields already stored are kept when the
// incoming value is null.
func (r *PlayerRepository) Upsert(ctx context.Context, p *models.Player) (bool, error) {
	query := `
		INSERT INTO players (
			mlb_id, full_name, first_name, last_name, primary_number, birth_date,
			height, weight, bats, throws, position, position_type, active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (mlb_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			first_name = COALESCE(EXCLUDED.first_name, players.first_name),
			last_name = COALESCE(EXCLUDED.last_name, players.last_name),
			primary_number = COALESCE(EXCLUDED.primary_number, players.primary_number),
			birth_date = COALESCE(EXCLUDED.birth_date, players.birth_date),
			height = COALESCE(EXCLUDED.height, players.height),
			weight = COALESCE(EXCLUDED.weight, players.weight),
			bats = COALESCE(EXCLUDED.bats, players.bats),
			throws = COALESCE(EXCLUDED.throws, players.throws),
			position = COALESCE(EXCLUDED.position, players.position),
			position_type = COALESCE(EXCLUDED.position_type, players.position_type),
			active = EXCLUDED.active,
			updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0)
	`

	start := time.Now()
	var inserted bool
	err := r.db.Pool.QueryRow(
		ctx, query,
		p.MlbID, p.FullName, p.FirstName, p.LastName, p.PrimaryNumber, p.BirthDate,
		p.Height, p.Weight, p.Bats, p.Throws, p.Position, p.PositionType, p.Active,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &inserted)
	observe("upsert", "players", start, err)

	if err != nil {
		return false, fmt.Errorf("failed to upsert player: %w", err)
	}
	return inserted, nil
}

// GetByMlbID retrieves a player by MLB id
func (r *PlayerRepository) GetByMlbID(ctx context.Context, mlbID int) (*models.Player, error) {
	p, err := scanPlayer(r.db.Pool.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE mlb_id = $1`, mlbID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("player not found: mlb_id=%d: %w", mlbID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

// GetByID retrieves a player by database id
func (r *PlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	p, err := scanPlayer(r.db.Pool.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("player not found: id=%d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

// ListWithSeasonStats returns players holding a batting or pitching line in the season
func (r *PlayerRepository) ListWithSeasonStats(ctx context.Context, season int) ([]*models.Player, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+playerColumns+` FROM players
		WHERE id IN (
			SELECT player_id FROM player_batting_stats WHERE season = $1
			UNION
			SELECT player_id FROM player_pitching_stats WHERE season = $1
		)
		ORDER BY id`, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list players with stats: %w", err)
	}
	return collectPlayers(rows)
}

// RosterRepository handles team roster database operations
type RosterRepository struct {
	db *Database
}

// InsertIfAbsent adds a roster entry unless the (team, player, season) entry exists
func (r *RosterRepository) InsertIfAbsent(ctx context.Context, e *models.RosterEntry) (bool, error) {
	start := time.Now()
	result, err := r.db.Pool.Exec(ctx, `
		INSERT INTO team_rosters (team_id, player_id, season, jersey_number, position, status, start_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (team_id, player_id, season) DO NOTHING
	`, e.TeamID, e.PlayerID, e.Season, e.JerseyNumber, e.Position, e.Status, e.StartDate)
	observe("insert", "team_rosters", start, err)

	if err != nil {
		return false, fmt.Errorf("failed to insert roster entry: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListPlayers returns the players on a team's roster for a season
func (r *RosterRepository) ListPlayers(ctx context.Context, teamID, season int) ([]*models.Player, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+prefixed("p", playerColumns)+`
		FROM team_rosters tr
		JOIN players p ON p.id = tr.player_id
		WHERE tr.team_id = $1 AND tr.season = $2
		ORDER BY p.id`, teamID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster players: %w", err)
	}
	return collectPlayers(rows)
}
