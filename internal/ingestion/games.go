package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
	_ "time/tzdata"

	"mlbstats/ingestion/internal/client"
	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/repository"

	"github.com/rs/zerolog/log"
)

// Game dates and times are stored in the league's home time zone
var eastern = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}

// SeasonWindow is the date range searched for a season's games
func SeasonWindow(season int) (start, end time.Time) {
	return time.Date(season, time.March, 1, 0, 0, 0, 0, eastern),
		time.Date(season, time.November, 30, 0, 0, 0, 0, eastern)
}

// SyncGames upserts the season schedule, skipping games whose teams are not stored
func (in *Ingester) SyncGames(ctx context.Context, season int) (Result, error) {
	start, end := SeasonWindow(season)
	log.Info().Int("season", season).Msg("Starting games sync")

	games, err := in.api.FetchSchedule(ctx, start, end)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch schedule: %w", err)
	}

	teams := newTeamLookup(in.stores.Teams)
	var res Result
	for _, g := range games {
		home, err := teams.get(ctx, g.Teams.Home.Team.ID)
		if err != nil {
			res.countMissing(err, "home team", g.GamePk)
			continue
		}
		away, err := teams.get(ctx, g.Teams.Away.Team.ID)
		if err != nil {
			res.countMissing(err, "away team", g.GamePk)
			continue
		}

		game, err := gameFromAPI(g, season, home.ID, away.ID)
		if err != nil {
			res.Errors++
			log.Warn().Err(err).Int("game_pk", g.GamePk).Msg("Skipping game with invalid date")
			continue
		}

		created, err := in.stores.Games.Upsert(ctx, game)
		if err != nil {
			res.Errors++
			log.Warn().Err(err).Int("game_pk", g.GamePk).Msg("Failed to upsert game")
			continue
		}
		res.count(created)
	}

	metrics.RecordStepResult(StepGames, res.Processed(), res.Skipped+res.Errors)
	log.Info().
		Int("season", season).
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Int("errors", res.Errors).
		Msg("Games sync completed")
	return res, nil
}

func gameFromAPI(g client.ScheduleGame, season, homeTeamID, awayTeamID int) (*models.Game, error) {
	scheduled, err := time.Parse(time.RFC3339, g.GameDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse game date %q: %w", g.GameDate, err)
	}
	local := scheduled.In(eastern)

	if s, err := strconv.Atoi(g.Season); err == nil {
		season = s
	}
	innings := 9
	if g.ScheduledInnings != nil {
		innings = *g.ScheduledInnings
	}

	game := &models.Game{
		MlbID:            g.GamePk,
		Season:           season,
		GameDate:         time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
		GameType:         models.NullString(g.GameType),
		Status:           models.NullString(g.Status.DetailedState),
		HomeTeamID:       homeTeamID,
		AwayTeamID:       awayTeamID,
		HomeScore:        models.NullInt32(g.Teams.Home.Score),
		AwayScore:        models.NullInt32(g.Teams.Away.Score),
		Venue:            models.NullString(g.Venue.Name),
		DayNight:         models.NullString(g.DayNight),
		ScheduledInnings: innings,
	}
	game.ScheduledAt.Time, game.ScheduledAt.Valid = local, true
	if p := g.Teams.Home.ProbablePitcher; p != nil {
		game.HomeProbablePitcherMlb.Int32, game.HomeProbablePitcherMlb.Valid = int32(p.ID), true
	}
	if p := g.Teams.Away.ProbablePitcher; p != nil {
		game.AwayProbablePitcherMlb.Int32, game.AwayProbablePitcherMlb.Valid = int32(p.ID), true
	}
	return game, nil
}

// teamLookup memoizes team lookups by MLB id for the duration of a step
type teamLookup struct {
	store TeamStore
	cache map[int]*models.Team
}

func newTeamLookup(store TeamStore) *teamLookup {
	return &teamLookup{store: store, cache: make(map[int]*models.Team)}
}

func (l *teamLookup) get(ctx context.Context, mlbID int) (*models.Team, error) {
	if t, ok := l.cache[mlbID]; ok {
		return t, nil
	}
	t, err := l.store.GetByMlbID(ctx, mlbID)
	if err != nil {
		return nil, err
	}
	l.cache[mlbID] = t
	return t, nil
}

// countMissing records a record skipped because a related entity is not stored locally
func (r *Result) countMissing(err error, what string, gamePk int) {
	if errors.Is(err, repository.ErrNotFound) {
		r.Skipped++
		log.Warn().Int("game_pk", gamePk).Msgf("Skipping game: %s not found", what)
		return
	}
	r.Errors++
	log.Warn().Err(err).Int("game_pk", gamePk).Msgf("Failed to look up %s", what)
}
