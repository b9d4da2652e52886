package ingestion

import (
	"context"
	"fmt"

	"mlbstats/ingestion/internal/client"
	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// SyncLinescores stores inning-by-inning scoring for final games that have no innings yet
func (in *Ingester) SyncLinescores(ctx context.Context, season int) (Result, error) {
	games, err := in.stores.Games.ListFinalWithoutInnings(ctx, season)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list games without innings: %w", err)
	}
	log.Info().Int("season", season).Int("games", len(games)).Msg("Starting linescores sync")

	var res Result
	for i, game := range games {
		if i > 0 {
			if err := pace(ctx, in.linescoreDelay); err != nil {
				return res, err
			}
		}

		if err := in.syncLinescore(ctx, game); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Errors++
			log.Warn().Err(err).Int("game_pk", game.MlbID).Msg("Failed to sync linescore")
			continue
		}
		res.Updated++
	}

	metrics.RecordStepResult(StepLinescores, res.Processed(), res.Skipped+res.Errors)
	log.Info().
		Int("season", season).
		Int("games", res.Updated).
		Int("errors", res.Errors).
		Msg("Linescores sync completed")
	return res, nil
}

func (in *Ingester) syncLinescore(ctx context.Context, game *models.Game) error {
	ls, err := in.api.FetchLinescore(ctx, game.MlbID)
	if err != nil {
		return err
	}

	applyLinescore(game, ls)
	if err := in.stores.Games.UpdateLinescore(ctx, game); err != nil {
		return err
	}

	innings := make([]models.GameInning, 0, len(ls.Innings))
	for _, inning := range ls.Innings {
		innings = append(innings, models.GameInning{
			GameID:     game.ID,
			Inning:     inning.Num,
			AwayRuns:   models.NullInt32(inning.Away.Runs),
			HomeRuns:   models.NullInt32(inning.Home.Runs),
			AwayHits:   models.NullInt32(inning.Away.Hits),
			HomeHits:   models.NullInt32(inning.Home.Hits),
			AwayErrors: models.NullInt32(inning.Away.Errors),
			HomeErrors: models.NullInt32(inning.Home.Errors),
		})
	}
	return in.stores.Games.ReplaceInnings(ctx, game.ID, innings)
}

func applyLinescore(game *models.Game, ls *client.Linescore) {
	game.HomeHits = models.NullInt32(ls.Teams.Home.Hits)
	game.AwayHits = models.NullInt32(ls.Teams.Away.Hits)
	game.HomeErrors = models.NullInt32(ls.Teams.Home.Errors)
	game.AwayErrors = models.NullInt32(ls.Teams.Away.Errors)
	game.CurrentInning = models.NullInt32(ls.CurrentInning)
	game.InningState = models.NullString(ls.InningState)
	game.RunnerOnFirst = ls.Offense.First != nil
	game.RunnerOnSecond = ls.Offense.Second != nil
	game.RunnerOnThird = ls.Offense.Third != nil
	if ls.ScheduledInnings != nil {
		game.ScheduledInnings = *ls.ScheduledInnings
	}
}
