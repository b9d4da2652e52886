package repository

import (
	"context"
	"errors"
	"fmt"

	"mlbstats/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// ConstantsRepository handles per-season league constants
type ConstantsRepository struct {
	db *Database
}

// GetBySeason returns the constants for a season, or nil when none are stored
func (r *ConstantsRepository) GetBySeason(ctx context.Context, season int) (*models.LeagueConstants, error) {
	var lc models.LeagueConstants
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, season, lg_woba, woba_scale, lg_r_per_pa, fip_constant, runs_per_win, created_at
		FROM league_constants WHERE season = $1
	`, season).Scan(
		&lc.ID, &lc.Season, &lc.LgWoba, &lc.WobaScale, &lc.LgRPerPa, &lc.FipConstant, &lc.RunsPerWin, &lc.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get league constants: %w", err)
	}
	return &lc, nil
}

// Upsert stores the constants for a season
func (r *ConstantsRepository) Upsert(ctx context.Context, lc *models.LeagueConstants) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO league_constants (season, lg_woba, woba_scale, lg_r_per_pa, fip_constant, runs_per_win)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (season) DO UPDATE SET
			lg_woba = EXCLUDED.lg_woba,
			woba_scale = EXCLUDED.woba_scale,
			lg_r_per_pa = EXCLUDED.lg_r_per_pa,
			fip_constant = EXCLUDED.fip_constant,
			runs_per_win = EXCLUDED.runs_per_win
		RETURNING id, created_at
	`, lc.Season, lc.LgWoba, lc.WobaScale, lc.LgRPerPa, lc.FipConstant, lc.RunsPerWin).Scan(&lc.ID, &lc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert league constants: %w", err)
	}
	return nil
}

// Seed stores every season from a constants file
func (r *ConstantsRepository) Seed(ctx context.Context, constants []models.LeagueConstants) error {
	for i := range constants {
		if err := r.Upsert(ctx, &constants[i]); err != nil {
			return err
		}
	}
	log.Info().Int("seasons", len(constants)).Msg("League constants seeded")
	return nil
}
