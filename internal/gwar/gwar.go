// Package gwar computes gWAR, a wins-above-replacement estimate built from run components
// and season league constants. Arithmetic is decimal throughout: intermediate ratios keep six
// digits and stored values are rounded half away from zero to one digit.
package gwar

import (
	"mlbstats/ingestion/internal/models"

	"github.com/shopspring/decimal"
)

const ratioPrecision = 6

var (
	stolenBaseRuns     = decimal.RequireFromString("0.2")
	caughtStealingRuns = decimal.RequireFromString("-0.41")
	oaaRuns            = decimal.RequireFromString("0.9")
	fullSeasonGames    = decimal.NewFromInt(162)
	innings            = decimal.NewFromInt(9)
	leagueFipOffset    = decimal.RequireFromString("0.85")

	batterReplacementPerPA  = decimal.RequireFromString("20.5").DivRound(decimal.NewFromInt(600), ratioPrecision)
	pitcherReplacementPerIP = decimal.RequireFromString("5.5").DivRound(decimal.NewFromInt(200), ratioPrecision)
)

// BatterInput carries the stat fields a batter computation reads. Nil means absent.
type BatterInput struct {
	Woba             *decimal.Decimal
	PlateAppearances *int
	StolenBases      *int
	CaughtStealing   *int
	Oaa              *int
	GamesPlayed      *int
	Position         string
}

// PitcherInput carries the stat fields a pitcher computation reads
type PitcherInput struct {
	Fip            *decimal.Decimal
	InningsPitched *decimal.Decimal
}

// Batter computes gWAR components for a position player
func Batter(lc *models.LeagueConstants, in BatterInput) models.GwarComponents {
	c := models.GwarComponents{
		Batting:     battingRuns(lc, in.Woba, in.PlateAppearances),
		Baserunning: baserunningRuns(in.StolenBases, in.CaughtStealing),
		Fielding:    fieldingRuns(in.Oaa),
		Positional:  positionalRuns(in.Position, in.GamesPlayed),
		Replacement: batterReplacementRuns(in.PlateAppearances),
	}
	total := c.Batting.Add(c.Baserunning).Add(c.Fielding).Add(c.Positional).Add(c.Replacement)
	c.Summary = total.DivRound(lc.RunsPerWin, 1)
	return c
}

// Pitcher computes gWAR components for a pitcher
func Pitcher(lc *models.LeagueConstants, in PitcherInput) models.GwarComponents {
	c := models.GwarComponents{
		Pitching:    pitchingRuns(lc, in.Fip, in.InningsPitched),
		Replacement: pitcherReplacementRuns(in.InningsPitched),
	}
	c.Summary = c.Pitching.Add(c.Replacement).DivRound(lc.RunsPerWin, 1)
	return c
}

func battingRuns(lc *models.LeagueConstants, woba *decimal.Decimal, pa *int) decimal.Decimal {
	if woba == nil || pa == nil || *pa == 0 {
		return decimal.Zero
	}
	perPA := woba.Sub(lc.LgWoba).DivRound(lc.WobaScale, ratioPrecision)
	return perPA.Mul(decimal.NewFromInt(int64(*pa)))
}

func baserunningRuns(sb, cs *int) decimal.Decimal {
	return decimal.NewFromInt(int64(orZero(sb))).Mul(stolenBaseRuns).
		Add(decimal.NewFromInt(int64(orZero(cs))).Mul(caughtStealingRuns))
}

func fieldingRuns(oaa *int) decimal.Decimal {
	if oaa == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(*oaa)).Mul(oaaRuns)
}

func positionalRuns(position string, games *int) decimal.Decimal {
	if position == "" || games == nil || *games == 0 {
		return decimal.Zero
	}
	adj, ok := positionalAdjustment(NormalizePosition(position))
	if !ok {
		return decimal.Zero
	}
	fraction := decimal.NewFromInt(int64(*games)).DivRound(fullSeasonGames, 4)
	return adj.Mul(fraction)
}

func batterReplacementRuns(pa *int) decimal.Decimal {
	if pa == nil || *pa == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(*pa)).Mul(batterReplacementPerPA)
}

func pitchingRuns(lc *models.LeagueConstants, fip, ip *decimal.Decimal) decimal.Decimal {
	if fip == nil || ip == nil || ip.IsZero() {
		return decimal.Zero
	}
	lgFip := lc.FipConstant.Add(leagueFipOffset)
	perInning := lgFip.Sub(*fip).DivRound(innings, ratioPrecision)
	return perInning.Mul(*ip)
}

func pitcherReplacementRuns(ip *decimal.Decimal) decimal.Decimal {
	if ip == nil || ip.IsZero() {
		return decimal.Zero
	}
	return ip.Mul(pitcherReplacementPerIP)
}

func orZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
