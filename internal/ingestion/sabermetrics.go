package ingestion

import (
	"context"
	"fmt"

	"mlbstats/ingestion/internal/client"
	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/normalize"

	"github.com/rs/zerolog/log"
)

// SyncSabermetrics loads WAR, wOBA, wRC+, FIP and xFIP for every player with season stats and
// recomputes gWAR on the affected lines
func (in *Ingester) SyncSabermetrics(ctx context.Context, season int) (Result, error) {
	players, err := in.stores.Players.ListWithSeasonStats(ctx, season)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list players with stats: %w", err)
	}
	log.Info().Int("season", season).Int("players", len(players)).Msg("Starting sabermetrics sync")

	var res Result
	for _, player := range players {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Add(in.syncBattingSabermetrics(ctx, player, season))
		res.Add(in.syncPitchingSabermetrics(ctx, player, season))
	}

	metrics.RecordStepResult(StepSabermetrics, res.Processed(), res.Skipped+res.Errors)
	log.Info().
		Int("season", season).
		Int("lines", res.Updated).
		Int("skipped", res.Skipped).
		Int("errors", res.Errors).
		Msg("Sabermetrics sync completed")
	return res, nil
}

func (in *Ingester) syncBattingSabermetrics(ctx context.Context, player *models.Player, season int) Result {
	var res Result

	lines, err := in.stores.Stats.ListBattingByPlayer(ctx, player.ID, season)
	if err != nil {
		res.Errors++
		log.Warn().Err(err).Int("player_id", player.ID).Msg("Failed to load batting lines")
		return res
	}
	if len(lines) == 0 {
		return res
	}

	payload, err := in.api.FetchSabermetrics(ctx, player.MlbID, season, client.GroupHitting)
	if err != nil {
		res.Errors++
		log.Warn().Err(err).Int("mlb_id", player.MlbID).Msg("Failed to fetch batting sabermetrics")
		return res
	}
	saber := normalize.ParseSabermetrics(payload)
	if saber == nil {
		log.Debug().Int("mlb_id", player.MlbID).Msg("No batting sabermetrics available")
	}

	position := player.Position.String
	for _, line := range lines {
		if saber != nil {
			line.War = models.NullDecimal(saber.War)
			line.Woba = models.NullDecimal(saber.Woba)
			line.WrcPlus = models.NullDecimal(saber.WrcPlus)
		}
		in.gwar.ApplyBatting(ctx, line, position)

		if _, err := in.stores.Stats.UpsertBatting(ctx, line); err != nil {
			res.Errors++
			log.Warn().Err(err).Int("player_id", player.ID).Msg("Failed to save batting sabermetrics")
			continue
		}
		res.Updated++
	}
	return res
}

func (in *Ingester) syncPitchingSabermetrics(ctx context.Context, player *models.Player, season int) Result {
	var res Result

	lines, err := in.stores.Stats.ListPitchingByPlayer(ctx, player.ID, season)
	if err != nil {
		res.Errors++
		log.Warn().Err(err).Int("player_id", player.ID).Msg("Failed to load pitching lines")
		return res
	}
	if len(lines) == 0 {
		return res
	}

	payload, err := in.api.FetchSabermetrics(ctx, player.MlbID, season, client.GroupPitching)
	if err != nil {
		res.Errors++
		log.Warn().Err(err).Int("mlb_id", player.MlbID).Msg("Failed to fetch pitching sabermetrics")
		return res
	}
	saber := normalize.ParseSabermetrics(payload)

	for _, line := range lines {
		if saber != nil {
			line.War = models.NullDecimal(saber.War)
			line.Fip = models.NullDecimal(saber.Fip)
			line.Xfip = models.NullDecimal(saber.Xfip)
		}
		in.gwar.ApplyPitching(ctx, line)

		if _, err := in.stores.Stats.UpsertPitching(ctx, line); err != nil {
			res.Errors++
			log.Warn().Err(err).Int("player_id", player.ID).Msg("Failed to save pitching sabermetrics")
			continue
		}
		res.Updated++
	}
	return res
}
