package gwar

import (
	"context"
	"database/sql"

	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ConstantsSource looks up league constants. A season that has not been configured returns nil, nil.
type ConstantsSource interface {
	GetBySeason(ctx context.Context, season int) (*models.LeagueConstants, error)
}

// Calculator applies gWAR to stored stat lines
type Calculator struct {
	constants ConstantsSource
}

// NewCalculator creates a calculator backed by the given constants source
func NewCalculator(constants ConstantsSource) *Calculator {
	return &Calculator{constants: constants}
}

// ApplyBatting sets gWAR fields on a batting line. It returns false and leaves the line untouched
// when the season has no constants.
func (c *Calculator) ApplyBatting(ctx context.Context, stats *models.BattingStats, position string) bool {
	lc := c.lookup(ctx, stats.Season, "batting")
	if lc == nil {
		return false
	}

	result := Batter(lc, BatterInput{
		Woba:             decimalPtr(stats.Woba),
		PlateAppearances: intPtr(stats.PlateAppearances),
		StolenBases:      intPtr(stats.StolenBases),
		CaughtStealing:   intPtr(stats.CaughtStealing),
		Oaa:              intPtr(stats.Oaa),
		GamesPlayed:      intPtr(stats.GamesPlayed),
		Position:         position,
	})
	stats.Gwar = result.BattingFields()
	metrics.RecordGwarCalculation("batting", "applied")

	log.Debug().
		Int("player_id", stats.PlayerID).
		Int("season", stats.Season).
		Str("gwar", result.Summary.String()).
		Str("batting", result.Batting.String()).
		Str("baserunning", result.Baserunning.String()).
		Str("fielding", result.Fielding.String()).
		Str("positional", result.Positional.String()).
		Str("replacement", result.Replacement.String()).
		Msg("Calculated batter gWAR")
	return true
}

// ApplyPitching sets gWAR fields on a pitching line
func (c *Calculator) ApplyPitching(ctx context.Context, stats *models.PitchingStats) bool {
	lc := c.lookup(ctx, stats.Season, "pitching")
	if lc == nil {
		return false
	}

	result := Pitcher(lc, PitcherInput{
		Fip:            decimalPtr(stats.Fip),
		InningsPitched: decimalPtr(stats.InningsPitched),
	})
	stats.Gwar = result.PitchingFields()
	metrics.RecordGwarCalculation("pitching", "applied")

	log.Debug().
		Int("player_id", stats.PlayerID).
		Int("season", stats.Season).
		Str("gwar", result.Summary.String()).
		Str("pitching", result.Pitching.String()).
		Str("replacement", result.Replacement.String()).
		Msg("Calculated pitcher gWAR")
	return true
}

func (c *Calculator) lookup(ctx context.Context, season int, kind string) *models.LeagueConstants {
	lc, err := c.constants.GetBySeason(ctx, season)
	if err != nil {
		log.Warn().Err(err).Int("season", season).Msg("Failed to load league constants, skipping gWAR calculation")
		metrics.RecordGwarCalculation(kind, "skipped")
		return nil
	}
	if lc == nil {
		log.Info().Int("season", season).Msg("No league constants for season, skipping gWAR calculation")
		metrics.RecordGwarCalculation(kind, "skipped")
		return nil
	}
	return lc
}

func intPtr(v sql.NullInt32) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int32)
	return &i
}

func decimalPtr(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d := v.Decimal
	return &d
}
