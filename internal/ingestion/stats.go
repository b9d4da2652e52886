package ingestion

import (
	"context"
	"fmt"
	"strconv"

	"mlbstats/ingestion/internal/client"
	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/normalize"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var nine = decimal.NewFromInt(9)

// SyncStats refreshes season batting lines for every rostered player and pitching lines for pitchers
func (in *Ingester) SyncStats(ctx context.Context, season int) (Result, error) {
	log.Info().Int("season", season).Msg("Starting stats sync")

	teams, err := in.stores.Teams.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list teams: %w", err)
	}

	lookup := newTeamLookup(in.stores.Teams)
	var res Result
	for _, team := range teams {
		players, err := in.stores.Rosters.ListPlayers(ctx, team.ID, season)
		if err != nil {
			res.Errors++
			log.Warn().Err(err).Str("team", team.Name).Msg("Failed to list roster players")
			continue
		}

		for _, player := range players {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			res.Add(in.syncPlayerStats(ctx, lookup, player, team, season))
		}
	}

	metrics.RecordStepResult(StepStats, res.Processed(), res.Skipped+res.Errors)
	log.Info().
		Int("season", season).
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("errors", res.Errors).
		Msg("Stats sync completed")
	return res, nil
}

func (in *Ingester) syncPlayerStats(ctx context.Context, lookup *teamLookup, player *models.Player, team *models.Team, season int) Result {
	var res Result

	splits, err := in.api.FetchPlayerStats(ctx, player.MlbID, season, client.GroupHitting)
	if err != nil {
		res.Errors++
		log.Warn().Err(err).Str("player", player.FullName).Int("mlb_id", player.MlbID).Msg("Failed to fetch batting stats")
	}
	for _, split := range splits {
		teamID, splitSeason := in.splitKey(ctx, lookup, split, team, season)
		line := battingFromAPI(split.Stat)
		line.PlayerID, line.TeamID, line.Season = player.ID, teamID, splitSeason

		created, err := in.stores.Stats.UpsertBatting(ctx, line)
		if err != nil {
			res.Errors++
			log.Warn().Err(err).Str("player", player.FullName).Msg("Failed to save batting stats")
			continue
		}
		res.count(created)
	}

	if !player.IsPitcher() {
		return res
	}

	splits, err = in.api.FetchPlayerStats(ctx, player.MlbID, season, client.GroupPitching)
	if err != nil {
		res.Errors++
		log.Warn().Err(err).Str("player", player.FullName).Int("mlb_id", player.MlbID).Msg("Failed to fetch pitching stats")
		return res
	}
	for _, split := range splits {
		teamID, splitSeason := in.splitKey(ctx, lookup, split, team, season)
		line := pitchingFromAPI(split.Stat)
		line.PlayerID, line.TeamID, line.Season = player.ID, teamID, splitSeason

		created, err := in.stores.Stats.UpsertPitching(ctx, line)
		if err != nil {
			res.Errors++
			log.Warn().Err(err).Str("player", player.FullName).Msg("Failed to save pitching stats")
			continue
		}
		res.count(created)
	}
	return res
}

// splitKey resolves the team and season a split belongs to, falling back to the roster team and requested season
func (in *Ingester) splitKey(ctx context.Context, lookup *teamLookup, split client.StatSplit, fallback *models.Team, season int) (int, int) {
	teamID := fallback.ID
	if split.Team != nil && split.Team.ID != 0 {
		if t, err := lookup.get(ctx, split.Team.ID); err == nil {
			teamID = t.ID
		} else {
			log.Debug().Err(err).Int("team_mlb_id", split.Team.ID).Msg("Split team not stored, using roster team")
		}
	}

	if split.Season != "" {
		if s, err := strconv.Atoi(split.Season); err == nil {
			season = s
		} else {
			log.Warn().Str("season", split.Season).Int("fallback", season).Msg("Could not parse split season")
		}
	}
	return teamID, season
}

func battingFromAPI(s client.StatLine) *models.BattingStats {
	line := &models.BattingStats{
		GameType:         models.GameTypeRegular,
		GamesPlayed:      models.NullInt32(s.GamesPlayed),
		PlateAppearances: models.NullInt32(s.PlateAppearances),
		AtBats:           models.NullInt32(s.AtBats),
		Runs:             models.NullInt32(s.Runs),
		Hits:             models.NullInt32(s.Hits),
		Doubles:          models.NullInt32(s.Doubles),
		Triples:          models.NullInt32(s.Triples),
		HomeRuns:         models.NullInt32(s.HomeRuns),
		Rbi:              models.NullInt32(s.Rbi),
		StolenBases:      models.NullInt32(s.StolenBases),
		CaughtStealing:   models.NullInt32(s.CaughtStealing),
		Walks:            models.NullInt32(s.BaseOnBalls),
		Strikeouts:       models.NullInt32(s.StrikeOuts),
		BattingAvg:       models.NullDecimal(normalize.ParseAPIDecimal(s.Avg)),
		Obp:              models.NullDecimal(normalize.ParseAPIDecimal(s.Obp)),
		Slg:              models.NullDecimal(normalize.ParseAPIDecimal(s.Slg)),
		Ops:              models.NullDecimal(normalize.ParseAPIDecimal(s.Ops)),
		Babip:            models.NullDecimal(normalize.ParseAPIDecimal(s.Babip)),
	}

	if line.Slg.Valid && line.BattingAvg.Valid {
		line.Iso = decimal.NullDecimal{Decimal: line.Slg.Decimal.Sub(line.BattingAvg.Decimal), Valid: true}
	}
	if s.Doubles != nil || s.Triples != nil || s.HomeRuns != nil {
		xbh := orZero(s.Doubles) + orZero(s.Triples) + orZero(s.HomeRuns)
		line.ExtraBaseHits.Int32, line.ExtraBaseHits.Valid = int32(xbh), true
	}
	return line
}

func pitchingFromAPI(s client.StatLine) *models.PitchingStats {
	line := &models.PitchingStats{
		GameType:        models.GameTypeRegular,
		GamesPlayed:     models.NullInt32(s.GamesPlayed),
		GamesStarted:    models.NullInt32(s.GamesStarted),
		Wins:            models.NullInt32(s.Wins),
		Losses:          models.NullInt32(s.Losses),
		Saves:           models.NullInt32(s.Saves),
		InningsPitched:  models.NullDecimal(normalize.ParseAPIDecimal(s.InningsPitched)),
		HitsAllowed:     models.NullInt32(s.Hits),
		RunsAllowed:     models.NullInt32(s.Runs),
		EarnedRuns:      models.NullInt32(s.EarnedRuns),
		WalksAllowed:    models.NullInt32(s.BaseOnBalls),
		Strikeouts:      models.NullInt32(s.StrikeOuts),
		HomeRunsAllowed: models.NullInt32(s.HomeRuns),
		Era:             models.NullDecimal(normalize.ParseAPIDecimal(s.Era)),
		Whip:            models.NullDecimal(normalize.ParseAPIDecimal(s.Whip)),
	}

	if line.InningsPitched.Valid && line.InningsPitched.Decimal.IsPositive() {
		ip := line.InningsPitched.Decimal
		line.KPer9 = perNine(s.StrikeOuts, ip)
		line.BbPer9 = perNine(s.BaseOnBalls, ip)
		line.HPer9 = perNine(s.Hits, ip)
	}
	return line
}

// perNine scales a count to a nine-inning rate, rounded half-up to two places
func perNine(count *int, ip decimal.Decimal) decimal.NullDecimal {
	if count == nil {
		return decimal.NullDecimal{}
	}
	rate := decimal.NewFromInt(int64(*count)).Mul(nine).Div(ip).Round(2)
	return decimal.NullDecimal{Decimal: rate, Valid: true}
}

func orZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
