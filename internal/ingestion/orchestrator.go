package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mlbstats/ingestion/internal/cache"
	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/syncjob"

	"github.com/rs/zerolog/log"
)

// ErrCancelled is returned by a tracked run that stopped because its job was cancelled
var ErrCancelled = errors.New("sync job cancelled")

// stage is one step of a sync plan
type stage struct {
	name   string
	label  string
	groups []string
	run    func(ctx context.Context, season int) (Result, error)
}

// Orchestrator sequences ingestion steps and drives sync job lifecycle
type Orchestrator struct {
	ingester *Ingester
	jobs     *syncjob.Service
	cache    cache.Cache
	now      func() time.Time

	// background runs started by Trigger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates an Orchestrator. A nil cache disables eviction.
func NewOrchestrator(ingester *Ingester, jobs *syncjob.Service, c cache.Cache) *Orchestrator {
	if c == nil {
		c = cache.Nop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		ingester: ingester,
		jobs:     jobs,
		cache:    c,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// plan returns the ordered stages for a job type
func (o *Orchestrator) plan(jobType models.JobType) []stage {
	in := o.ingester
	teams := stage{StepTeams, "Syncing teams...", []string{cache.GroupTeams},
		func(ctx context.Context, _ int) (Result, error) { return in.SyncTeams(ctx) }}
	rosters := stage{StepRosters, "Syncing rosters...", []string{cache.GroupTeams, cache.GroupPlayers}, in.SyncRosters}
	games := stage{StepGames, "Syncing games...", []string{cache.GroupGames}, in.SyncGames}
	stats := stage{StepStats, "Syncing player stats...", []string{cache.GroupStats, cache.GroupLeaders, cache.GroupPlayers}, in.SyncStats}
	standings := stage{StepStandings, "Syncing standings...", []string{cache.GroupStandings}, in.SyncStandings}
	boxScores := stage{StepBoxScores, "Syncing box scores...", []string{cache.GroupGames, cache.GroupLeaders}, in.SyncBoxScores}
	linescores := stage{StepLinescores, "Syncing linescores...", []string{cache.GroupGames}, in.SyncLinescores}
	saber := stage{StepSabermetrics, "Syncing sabermetrics...", []string{cache.GroupStats, cache.GroupLeaders}, in.SyncSabermetrics}
	boards := stage{StepLeaderboards, "Syncing leaderboards...", []string{cache.GroupStats, cache.GroupLeaders}, in.SyncLeaderboards}

	switch jobType {
	case models.JobTypeFullSync:
		return []stage{teams, rosters, games, stats, standings}
	case models.JobTypeTeams:
		return []stage{teams}
	case models.JobTypeRosters:
		return []stage{rosters}
	case models.JobTypeGames:
		return []stage{games}
	case models.JobTypeStats:
		return []stage{stats}
	case models.JobTypeStandings:
		return []stage{standings}
	case models.JobTypeBoxScores:
		return []stage{boxScores, linescores}
	case models.JobTypeLinescores:
		return []stage{linescores}
	case models.JobTypeSabermetrics:
		return []stage{saber, boards}
	}
	return nil
}

// resolveSeason defaults the season to the current one. Teams are not season scoped.
func (o *Orchestrator) resolveSeason(jobType models.JobType, season *int) *int {
	if season != nil || jobType == models.JobTypeTeams {
		return season
	}
	current := models.CurrentSeason(o.now())
	return &current
}

// Trigger creates a job and runs it in the background. Conflicts are returned synchronously;
// step failures are reported through the job's FAILED state.
func (o *Orchestrator) Trigger(ctx context.Context, jobType models.JobType, season *int, trigger models.TriggerType, actorID *int64) (*models.SyncJob, error) {
	job, err := o.create(ctx, jobType, season, trigger, actorID)
	if err != nil {
		return nil, err
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if err := o.execute(o.ctx, job); err != nil && !errors.Is(err, ErrCancelled) {
			log.Error().Err(err).Int64("job_id", job.ID).Msg("Background sync failed")
		}
	}()
	return job, nil
}

// Run creates a job and runs it on the calling goroutine, returning the final job state
func (o *Orchestrator) Run(ctx context.Context, jobType models.JobType, season *int, trigger models.TriggerType) (*models.SyncJob, error) {
	job, err := o.create(ctx, jobType, season, trigger, nil)
	if err != nil {
		return nil, err
	}

	runErr := o.execute(ctx, job)
	final, err := o.jobs.Get(context.WithoutCancel(ctx), job.ID)
	if err != nil {
		return nil, err
	}
	return final, runErr
}

// RunFullSync runs teams, rosters, games, stats and standings under one FULL_SYNC job
func (o *Orchestrator) RunFullSync(ctx context.Context, season *int, trigger models.TriggerType) (*models.SyncJob, error) {
	return o.Run(ctx, models.JobTypeFullSync, season, trigger)
}

// RunTeamsSync runs a tracked teams sync
func (o *Orchestrator) RunTeamsSync(ctx context.Context, trigger models.TriggerType) (*models.SyncJob, error) {
	return o.Run(ctx, models.JobTypeTeams, nil, trigger)
}

// RunRostersSync runs a tracked rosters sync
func (o *Orchestrator) RunRostersSync(ctx context.Context, season *int, trigger models.TriggerType) (*models.SyncJob, error) {
	return o.Run(ctx, models.JobTypeRosters, season, trigger)
}

// RunGamesSync runs a tracked games sync
func (o *Orchestrator) RunGamesSync(ctx context.Context, season *int, trigger models.TriggerType) (*models.SyncJob, error) {
	return o.Run(ctx, models.JobTypeGames, season, trigger)
}

// RunStatsSync runs a tracked player stats sync
func (o *Orchestrator) RunStatsSync(ctx context.Context, season *int, trigger models.TriggerType) (*models.SyncJob, error) {
	return o.Run(ctx, models.JobTypeStats, season, trigger)
}

// RunStandingsSync runs a tracked standings sync
func (o *Orchestrator) RunStandingsSync(ctx context.Context, season *int, trigger models.TriggerType) (*models.SyncJob, error) {
	return o.Run(ctx, models.JobTypeStandings, season, trigger)
}

// RunBoxScoresSync runs box scores then linescores under one BOX_SCORES job
func (o *Orchestrator) RunBoxScoresSync(ctx context.Context, season *int, trigger models.TriggerType) (*models.SyncJob, error) {
	return o.Run(ctx, models.JobTypeBoxScores, season, trigger)
}

// RunLinescoresSync runs a tracked linescores sync
func (o *Orchestrator) RunLinescoresSync(ctx context.Context, season *int, trigger models.TriggerType) (*models.SyncJob, error) {
	return o.Run(ctx, models.JobTypeLinescores, season, trigger)
}

// RunSabermetricsSync runs sabermetrics then leaderboards under one SABERMETRICS job
func (o *Orchestrator) RunSabermetricsSync(ctx context.Context, season *int, trigger models.TriggerType) (*models.SyncJob, error) {
	return o.Run(ctx, models.JobTypeSabermetrics, season, trigger)
}

// RunUntracked runs a job type's steps without creating a job
func (o *Orchestrator) RunUntracked(ctx context.Context, jobType models.JobType, season int) (Result, error) {
	stages := o.plan(jobType)
	if stages == nil {
		return Result{}, fmt.Errorf("no sync plan for job type %s", jobType)
	}
	return o.runStages(ctx, string(jobType), stages, season)
}

// RunLeaderboards refreshes the Savant leaderboard values without a job
func (o *Orchestrator) RunLeaderboards(ctx context.Context, season int) (Result, error) {
	var boards []stage
	for _, st := range o.plan(models.JobTypeSabermetrics) {
		if st.name == StepLeaderboards {
			boards = append(boards, st)
		}
	}
	return o.runStages(ctx, StepLeaderboards, boards, season)
}

func (o *Orchestrator) runStages(ctx context.Context, name string, stages []stage, season int) (Result, error) {
	start := time.Now()
	log.Info().Str("sync", name).Int("season", season).Msg("Running untracked sync")

	var total Result
	for _, st := range stages {
		res, err := st.run(ctx, season)
		total.Add(res)
		o.evict(ctx, st.groups)
		if err != nil {
			metrics.RecordSync(name, "failed", time.Since(start).Seconds())
			return total, fmt.Errorf("%s step failed: %w", st.name, err)
		}
	}

	metrics.RecordSync(name, "success", time.Since(start).Seconds())
	log.Info().
		Str("sync", name).
		Int("created", total.Created).
		Int("updated", total.Updated).
		Dur("duration", time.Since(start)).
		Msg("Untracked sync completed")
	return total, nil
}

// Close cancels background runs and waits for them to finish
func (o *Orchestrator) Close() {
	o.cancel()
	o.wg.Wait()
}

// Wait blocks until background runs started by Trigger have finished
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) create(ctx context.Context, jobType models.JobType, season *int, trigger models.TriggerType, actorID *int64) (*models.SyncJob, error) {
	if o.plan(jobType) == nil {
		return nil, fmt.Errorf("no sync plan for job type %s", jobType)
	}
	return o.jobs.Create(ctx, jobType, o.resolveSeason(jobType, season), trigger, actorID)
}

// execute drives a created job through its stages. Job state is written with a context that
// outlives ctx so a cancelled run can still record its outcome.
func (o *Orchestrator) execute(ctx context.Context, job *models.SyncJob) error {
	jobCtx := context.WithoutCancel(ctx)
	start := time.Now()
	name := string(job.JobType)
	season := models.CurrentSeason(o.now())
	if job.Season.Valid {
		season = int(job.Season.Int32)
	}

	log.Info().
		Int64("job_id", job.ID).
		Str("job_type", name).
		Int("season", season).
		Msg("Starting tracked sync")

	if _, err := o.jobs.Start(jobCtx, job.ID); err != nil {
		return o.stopped(jobCtx, job, err, start)
	}

	stages := o.plan(job.JobType)
	total := len(stages)
	var result Result
	for i, st := range stages {
		if _, err := o.jobs.UpdateProgress(jobCtx, job.ID, i, &total, st.label); err != nil {
			return o.stopped(jobCtx, job, err, start)
		}

		res, err := st.run(ctx, season)
		result.Add(res)
		o.evict(jobCtx, st.groups)
		if err != nil {
			log.Error().
				Err(err).
				Int64("job_id", job.ID).
				Str("step", st.name).
				Msg("Sync step failed")
			metrics.RecordError("ingestion", st.name)
			if _, ferr := o.jobs.Fail(jobCtx, job.ID, err.Error()); ferr != nil {
				return o.stopped(jobCtx, job, ferr, start)
			}
			metrics.RecordSync(name, "failed", time.Since(start).Seconds())
			return fmt.Errorf("%s step failed: %w", st.name, err)
		}
	}

	if _, err := o.jobs.Complete(jobCtx, job.ID, result.Created, result.Updated, result.Errors); err != nil {
		return o.stopped(jobCtx, job, err, start)
	}

	metrics.RecordSync(name, "success", time.Since(start).Seconds())
	log.Info().
		Int64("job_id", job.ID).
		Str("job_type", name).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("errors", result.Errors).
		Dur("duration", time.Since(start)).
		Msg("Tracked sync completed")
	return nil
}

// stopped handles a job service error mid-run. A terminal job means it was cancelled externally;
// any other error fails the job so it does not stay active and block later runs.
func (o *Orchestrator) stopped(ctx context.Context, job *models.SyncJob, err error, start time.Time) error {
	if errors.Is(err, syncjob.ErrJobTerminal) {
		log.Info().Int64("job_id", job.ID).Msg("Sync job cancelled, stopping at step boundary")
		metrics.RecordSync(string(job.JobType), "cancelled", time.Since(start).Seconds())
		return ErrCancelled
	}
	if _, ferr := o.jobs.Fail(ctx, job.ID, err.Error()); ferr != nil && !errors.Is(ferr, syncjob.ErrJobTerminal) {
		log.Error().
			Err(ferr).
			Int64("job_id", job.ID).
			Msg("Failed to mark sync job failed, it stays active until the next restart")
	}
	metrics.RecordSync(string(job.JobType), "failed", time.Since(start).Seconds())
	return fmt.Errorf("failed to update job %d: %w", job.ID, err)
}

func (o *Orchestrator) evict(ctx context.Context, groups []string) {
	if len(groups) == 0 {
		return
	}
	if err := o.cache.EvictGroups(ctx, groups...); err != nil {
		log.Warn().Err(err).Strs("groups", groups).Msg("Cache eviction failed")
	}
}
