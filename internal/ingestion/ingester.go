// Package ingestion pulls MLB data into the store. Each step is idempotent and keyed by the
// external MLB id; the Orchestrator sequences steps and reports progress through sync jobs.
package ingestion

import (
	"context"
	"time"

	"mlbstats/ingestion/internal/client"
	"mlbstats/ingestion/internal/gwar"
)

// Step names used in logs and metrics
const (
	StepTeams        = "teams"
	StepRosters      = "rosters"
	StepGames        = "games"
	StepStats        = "stats"
	StepStandings    = "standings"
	StepBoxScores    = "box_scores"
	StepLinescores   = "linescores"
	StepSabermetrics = "sabermetrics"
	StepLeaderboards = "leaderboards"
)

// Ingester runs the individual ingestion steps
type Ingester struct {
	api    StatsAPI
	feed   client.LeaderboardFeed
	stores Stores
	gwar   *gwar.Calculator

	boxScoreDelay  time.Duration
	linescoreDelay time.Duration
}

// IngesterOption configures an Ingester
type IngesterOption func(*Ingester)

// WithPacing sets the pause between per-game box score and linescore requests
func WithPacing(boxScore, linescore time.Duration) IngesterOption {
	return func(in *Ingester) {
		in.boxScoreDelay = boxScore
		in.linescoreDelay = linescore
	}
}

// NewIngester creates an Ingester
func NewIngester(api StatsAPI, feed client.LeaderboardFeed, stores Stores, calc *gwar.Calculator, opts ...IngesterOption) *Ingester {
	in := &Ingester{
		api:            api,
		feed:           feed,
		stores:         stores,
		gwar:           calc,
		boxScoreDelay:  100 * time.Millisecond,
		linescoreDelay: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// pace waits between upstream calls, returning early when ctx is done
func pace(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
