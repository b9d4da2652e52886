package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mlbstats/ingestion/internal/config"
	"mlbstats/ingestion/internal/ingestion"
	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/syncjob"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Runner executes the syncs the scheduler fires
type Runner interface {
	Run(ctx context.Context, jobType models.JobType, season *int, trigger models.TriggerType) (*models.SyncJob, error)
	RunLeaderboards(ctx context.Context, season int) (ingestion.Result, error)
}

var _ Runner = (*ingestion.Orchestrator)(nil)

// task is one cron entry. Leaderboards have no job type and run untracked.
type task struct {
	name    string
	spec    string
	jobType models.JobType
}

func (t task) label() string {
	if t.jobType == "" {
		return ingestion.StepLeaderboards
	}
	return string(t.jobType)
}

// Scheduler fires recurring syncs for the current season.
// Overlap with a running job is left to the job service's conflict rules: a firing that
// conflicts is logged and skipped.
type Scheduler struct {
	cfg    *config.Config
	runner Runner
	cron   *cron.Cron
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, runner Runner) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		runner: runner,
		cron:   cron.New(cron.WithSeconds()),
		now:    time.Now,
	}
}

func (s *Scheduler) tasks() []task {
	return []task{
		{"CRON_DAILY_STATS", s.cfg.CronDailyStats, models.JobTypeStats},
		{"CRON_HOURLY_GAMES", s.cfg.CronHourlyGames, models.JobTypeGames},
		{"CRON_WEEKLY_ROSTERS", s.cfg.CronWeeklyRosters, models.JobTypeRosters},
		{"CRON_DAILY_STANDINGS", s.cfg.CronDailyStandings, models.JobTypeStandings},
		{"CRON_SABERMETRICS", s.cfg.CronSabermetrics, models.JobTypeSabermetrics},
		{"CRON_LEADERBOARDS", s.cfg.CronLeaderboards, ""},
	}
}

// Start registers the cron entries and starts the scheduler. Runs use a context derived from ctx
// that is cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")
	s.ctx, s.cancel = context.WithCancel(ctx)

	for _, t := range s.tasks() {
		if t.spec == "" {
			log.Info().Str("task", t.name).Msg("Sync schedule disabled")
			continue
		}
		if _, err := s.cron.AddFunc(t.spec, func() { s.fire(t) }); err != nil {
			s.cancel()
			return fmt.Errorf("failed to schedule %s: %w", t.name, err)
		}
		log.Info().
			Str("task", t.name).
			Str("sync", t.label()).
			Str("schedule", t.spec).
			Msg("Sync scheduled")
	}

	s.cron.Start()
	return nil
}

// Stop stops firing new syncs, cancels running ones and waits for them to return
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	done := s.cron.Stop()
	if s.cancel != nil {
		s.cancel()
	}
	<-done.Done()

	log.Info().Msg("Scheduler stopped")
}

// fire runs one scheduled sync for the current season
func (s *Scheduler) fire(t task) {
	season := models.CurrentSeason(s.now())
	start := time.Now()
	log.Info().Str("sync", t.label()).Int("season", season).Msg("Running scheduled sync")

	if t.jobType == "" {
		res, err := s.runner.RunLeaderboards(s.ctx, season)
		if err != nil {
			metrics.RecordScheduledRun(t.label(), "failed")
			log.Error().Err(err).Str("sync", t.label()).Msg("Scheduled sync failed")
			return
		}
		metrics.RecordScheduledRun(t.label(), "success")
		log.Info().
			Str("sync", t.label()).
			Int("updated", res.Updated).
			Dur("duration", time.Since(start)).
			Msg("Scheduled sync completed")
		return
	}

	job, err := s.runner.Run(s.ctx, t.jobType, &season, models.TriggerScheduled)
	var conflict *syncjob.ConflictError
	switch {
	case errors.As(err, &conflict):
		metrics.RecordScheduledRun(t.label(), "skipped")
		log.Info().
			Str("sync", t.label()).
			Int64("existing_job_id", conflict.ExistingJobID).
			Str("existing_job_type", string(conflict.JobType)).
			Msg("Skipping scheduled sync, another job is in progress")
	case errors.Is(err, ingestion.ErrCancelled):
		metrics.RecordScheduledRun(t.label(), "cancelled")
		log.Info().Str("sync", t.label()).Msg("Scheduled sync cancelled")
	case err != nil:
		metrics.RecordScheduledRun(t.label(), "failed")
		log.Error().Err(err).Str("sync", t.label()).Msg("Scheduled sync failed")
	default:
		metrics.RecordScheduledRun(t.label(), "success")
		log.Info().
			Str("sync", t.label()).
			Int64("job_id", job.ID).
			Int("created", job.RecordsCreated).
			Int("updated", job.RecordsUpdated).
			Dur("duration", time.Since(start)).
			Msg("Scheduled sync completed")
	}
}
