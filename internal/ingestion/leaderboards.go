package ingestion

import (
	"context"
	"errors"
	"fmt"

	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/normalize"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// leaderboards is the parsed content of the Savant feeds, keyed by MLB person id
type leaderboards struct {
	oaa      map[int]int
	expected map[int]normalize.ExpectedStats
	speed    map[int]decimal.Decimal
}

// SyncLeaderboards applies OAA, expected stats and sprint speed to season batting lines.
// Lines that gain an OAA value have gWAR recomputed. A single unavailable feed is logged and
// skipped; the step fails only when no feed could be fetched.
func (in *Ingester) SyncLeaderboards(ctx context.Context, season int) (Result, error) {
	log.Info().Int("season", season).Msg("Starting leaderboards sync")

	boards, err := in.fetchLeaderboards(ctx, season)
	if err != nil {
		return Result{}, err
	}

	players, err := in.stores.Players.ListWithSeasonStats(ctx, season)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list players with stats: %w", err)
	}
	byID := make(map[int]*models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	lines, err := in.stores.Stats.ListBattingBySeason(ctx, season)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list batting lines: %w", err)
	}

	var res Result
	for _, line := range lines {
		player, ok := byID[line.PlayerID]
		if !ok {
			res.Skipped++
			continue
		}
		if !boards.apply(line, player.MlbID) {
			res.Skipped++
			continue
		}
		if line.Oaa.Valid {
			in.gwar.ApplyBatting(ctx, line, player.Position.String)
		}

		if _, err := in.stores.Stats.UpsertBatting(ctx, line); err != nil {
			res.Errors++
			log.Warn().Err(err).Int("player_id", line.PlayerID).Msg("Failed to save leaderboard values")
			continue
		}
		res.Updated++
	}

	metrics.RecordStepResult(StepLeaderboards, res.Processed(), res.Skipped+res.Errors)
	log.Info().
		Int("season", season).
		Int("lines", res.Updated).
		Int("unmatched", res.Skipped).
		Msg("Leaderboards sync completed")
	return res, nil
}

func (in *Ingester) fetchLeaderboards(ctx context.Context, season int) (*leaderboards, error) {
	boards := &leaderboards{}
	var errs []error

	if text, err := in.feed.FetchOAA(ctx, season); err != nil {
		errs = append(errs, err)
		log.Warn().Err(err).Str("feed", normalize.FeedOAA).Msg("Leaderboard unavailable")
	} else {
		boards.oaa = normalize.ParseOAA(text)
	}

	if text, err := in.feed.FetchExpectedStats(ctx, season); err != nil {
		errs = append(errs, err)
		log.Warn().Err(err).Str("feed", normalize.FeedExpectedStats).Msg("Leaderboard unavailable")
	} else {
		boards.expected = normalize.ParseExpectedStats(text)
	}

	if text, err := in.feed.FetchSprintSpeed(ctx, season); err != nil {
		errs = append(errs, err)
		log.Warn().Err(err).Str("feed", normalize.FeedSprintSpeed).Msg("Leaderboard unavailable")
	} else {
		boards.speed = normalize.ParseSprintSpeed(text)
	}

	if len(errs) == 3 {
		return nil, fmt.Errorf("failed to fetch leaderboards: %w", errors.Join(errs...))
	}
	return boards, nil
}

// apply copies the player's leaderboard values onto the line and reports whether any was found
func (b *leaderboards) apply(line *models.BattingStats, mlbID int) bool {
	found := false
	if oaa, ok := b.oaa[mlbID]; ok {
		line.Oaa.Int32, line.Oaa.Valid = int32(oaa), true
		found = true
	}
	if xs, ok := b.expected[mlbID]; ok {
		line.Xba = models.NullDecimal(xs.Xba)
		line.Xslg = models.NullDecimal(xs.Xslg)
		line.Xwoba = models.NullDecimal(xs.Xwoba)
		line.ExitVelocity = models.NullDecimal(xs.ExitVelocity)
		line.LaunchAngle = models.NullDecimal(xs.LaunchAngle)
		line.BarrelPct = models.NullDecimal(xs.BarrelPct)
		line.HardHitPct = models.NullDecimal(xs.HardHitPct)
		found = true
	}
	if speed, ok := b.speed[mlbID]; ok {
		line.SprintSpeed = models.NullDecimal(&speed)
		found = true
	}
	return found
}
