package normalize

import (
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Leaderboard feed names
const (
	FeedOAA           = "outs_above_average"
	FeedExpectedStats = "expected_statistics"
	FeedSprintSpeed   = "sprint_speed"
)

// ExpectedStats holds the expected-outcome and batted-ball metrics for one batter.
// Percentages are on the 0-100 scale as published.
type ExpectedStats struct {
	PlayerID     int
	Xba          *decimal.Decimal
	Xslg         *decimal.Decimal
	Xwoba        *decimal.Decimal
	ExitVelocity *decimal.Decimal
	LaunchAngle  *decimal.Decimal
	BarrelPct    *decimal.Decimal
	HardHitPct   *decimal.Decimal
}

// ParseOAA reads an outs-above-average leaderboard into player id -> OAA
func ParseOAA(text string) map[int]int {
	result := make(map[int]int)
	t, ok := newTable(FeedOAA, text)
	if !ok {
		return result
	}

	idIdx := t.column("player_id")
	oaaIdx := t.column("fielding_runs_outs_above_average", "outs_above_average", "oaa")
	if idIdx < 0 || oaaIdx < 0 {
		log.Warn().Str("feed", FeedOAA).Msg("Could not find required columns in leaderboard")
		return result
	}

	t.rows(func(values []string) {
		rawID, ok1 := cell(values, idIdx)
		rawOAA, ok2 := cell(values, oaaIdx)
		if !ok1 || !ok2 {
			return
		}
		id, oaa := ParseInteger(rawID), ParseInteger(rawOAA)
		if id == nil || oaa == nil {
			return
		}
		result[*id] = *oaa
	})

	log.Debug().Str("feed", FeedOAA).Int("entries", len(result)).Msg("Parsed leaderboard")
	return result
}

// ParseExpectedStats reads an expected statistics leaderboard. Only player_id is required.
func ParseExpectedStats(text string) map[int]ExpectedStats {
	result := make(map[int]ExpectedStats)
	t, ok := newTable(FeedExpectedStats, text)
	if !ok {
		return result
	}

	idIdx := t.column("player_id")
	if idIdx < 0 {
		log.Warn().Str("feed", FeedExpectedStats).Msg("Could not find player_id column in leaderboard")
		return result
	}
	xba := t.column("est_ba", "xba")
	xslg := t.column("est_slg", "xslg")
	xwoba := t.column("est_woba", "xwoba")
	ev := t.column("avg_hit_speed", "exit_velocity_avg")
	la := t.column("avg_hit_angle", "launch_angle_avg")
	barrel := t.column("brl_percent", "barrel_batted_rate")
	hardHit := t.column("hard_hit_percent", "hard_hit_rate")

	t.rows(func(values []string) {
		rawID, ok := cell(values, idIdx)
		if !ok {
			return
		}
		id := ParseInteger(rawID)
		if id == nil {
			return
		}
		result[*id] = ExpectedStats{
			PlayerID:     *id,
			Xba:          decimalCell(values, xba),
			Xslg:         decimalCell(values, xslg),
			Xwoba:        decimalCell(values, xwoba),
			ExitVelocity: decimalCell(values, ev),
			LaunchAngle:  decimalCell(values, la),
			BarrelPct:    decimalCell(values, barrel),
			HardHitPct:   decimalCell(values, hardHit),
		}
	})

	log.Debug().Str("feed", FeedExpectedStats).Int("entries", len(result)).Msg("Parsed leaderboard")
	return result
}

// ParseSprintSpeed reads a sprint speed leaderboard into player id -> feet per second
func ParseSprintSpeed(text string) map[int]decimal.Decimal {
	result := make(map[int]decimal.Decimal)
	t, ok := newTable(FeedSprintSpeed, text)
	if !ok {
		return result
	}

	idIdx := t.column("player_id")
	speedIdx := t.column("hp_to_1b", "sprint_speed")
	if idIdx < 0 || speedIdx < 0 {
		log.Warn().Str("feed", FeedSprintSpeed).Msg("Could not find required columns in leaderboard")
		return result
	}

	t.rows(func(values []string) {
		rawID, ok1 := cell(values, idIdx)
		rawSpeed, ok2 := cell(values, speedIdx)
		if !ok1 || !ok2 {
			return
		}
		id, speed := ParseInteger(rawID), ParseDecimal(rawSpeed)
		if id == nil || speed == nil {
			return
		}
		result[*id] = *speed
	})

	log.Debug().Str("feed", FeedSprintSpeed).Int("entries", len(result)).Msg("Parsed leaderboard")
	return result
}

func decimalCell(values []string, idx int) *decimal.Decimal {
	raw, ok := cell(values, idx)
	if !ok {
		return nil
	}
	return ParseDecimal(raw)
}
