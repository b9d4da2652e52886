// Package syncjob tracks ingestion runs: creation under mutual exclusion, lifecycle transitions,
// progress broadcasting to live observers and data freshness reporting.
package syncjob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// DefaultStreamTimeout bounds how long a progress subscription stays open
const DefaultStreamTimeout = 30 * time.Minute

// Service is the single writer of sync job state
type Service struct {
	store         Store
	broadcaster   Broadcaster
	streamTimeout time.Duration
	now           func() time.Time

	// mutations of one job are serialized so observers see its transitions in order
	mu    sync.Mutex
	locks map[int64]*jobLock
}

type jobLock struct {
	sync.Mutex
	refs int
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithStreamTimeout overrides the subscription timeout
func WithStreamTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.streamTimeout = d
		}
	}
}

// NewService creates a job service
func NewService(store Store, broadcaster Broadcaster, opts ...Option) *Service {
	s := &Service{
		store:         store,
		broadcaster:   broadcaster,
		streamTimeout: DefaultStreamTimeout,
		now:           time.Now,
		locks:         make(map[int64]*jobLock),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create records a PENDING job, or returns a *ConflictError when an active job blocks it
func (s *Service) Create(ctx context.Context, jobType models.JobType, season *int, trigger models.TriggerType, actorID *int64) (*models.SyncJob, error) {
	job := &models.SyncJob{
		JobType:     jobType,
		Status:      models.JobStatusPending,
		Season:      models.NullSeason(season),
		TriggeredBy: trigger,
		CreatedAt:   s.now(),
	}
	if actorID != nil {
		job.ActorID = sql.NullInt64{Int64: *actorID, Valid: true}
	}

	created, err := s.store.CreateIfNoConflict(ctx, job)
	if err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			metrics.RecordJobConflict(string(jobType))
			log.Warn().
				Str("job_type", string(jobType)).
				Int64("existing_job_id", conflict.ExistingJobID).
				Str("existing_job_type", string(conflict.JobType)).
				Msg("Sync job rejected by active job")
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to create sync job: %w", err)
	}

	metrics.RecordJobTransition(string(jobType), string(models.JobStatusPending))
	log.Info().
		Int64("job_id", created.ID).
		Str("job_type", string(jobType)).
		Str("triggered_by", string(trigger)).
		Msg("Created sync job")
	return created, nil
}

// Start moves a PENDING job to RUNNING
func (s *Service) Start(ctx context.Context, id int64) (*models.SyncJob, error) {
	return s.mutate(ctx, id, func(job *models.SyncJob) error {
		if job.Status != models.JobStatusPending {
			return fmt.Errorf("%w: cannot start job in status %s", ErrInvalidTransition, job.Status)
		}
		job.Status = models.JobStatusRunning
		job.StartedAt = sql.NullTime{Time: s.now(), Valid: true}
		return nil
	})
}

// UpdateProgress records processed items, the optional total and the current step label.
// Processed never decreases and is capped at a known total. A total below the processed count, or
// one that would lower the reported percentage, is rejected with ErrInvalidTransition.
func (s *Service) UpdateProgress(ctx context.Context, id int64, processed int, total *int, step string) (*models.SyncJob, error) {
	return s.mutate(ctx, id, func(job *models.SyncJob) error {
		if job.Status != models.JobStatusRunning {
			return fmt.Errorf("%w: cannot record progress for job in status %s", ErrInvalidTransition, job.Status)
		}
		before := job.ProgressPercentage()
		if total != nil {
			if *total < job.ProcessedItems {
				return fmt.Errorf("%w: total %d is below processed %d", ErrInvalidTransition, *total, job.ProcessedItems)
			}
			job.TotalItems = models.NullInt32(total)
		}
		if processed > job.ProcessedItems {
			job.ProcessedItems = processed
		}
		capProcessed(job)
		if pct := job.ProgressPercentage(); pct < before {
			return fmt.Errorf("%w: progress would drop from %d%% to %d%%", ErrInvalidTransition, before, pct)
		}
		if step != "" {
			job.CurrentStep = models.NullString(step)
		}
		return nil
	})
}

// IncrementProgress advances processed items by one
func (s *Service) IncrementProgress(ctx context.Context, id int64, step string) (*models.SyncJob, error) {
	return s.mutate(ctx, id, func(job *models.SyncJob) error {
		if job.Status != models.JobStatusRunning {
			return fmt.Errorf("%w: cannot record progress for job in status %s", ErrInvalidTransition, job.Status)
		}
		job.ProcessedItems++
		capProcessed(job)
		if step != "" {
			job.CurrentStep = models.NullString(step)
		}
		return nil
	})
}

// Complete marks the job COMPLETED with its record counters
func (s *Service) Complete(ctx context.Context, id int64, created, updated, errorCount int) (*models.SyncJob, error) {
	return s.mutate(ctx, id, func(job *models.SyncJob) error {
		job.Status = models.JobStatusCompleted
		job.RecordsCreated = created
		job.RecordsUpdated = updated
		job.ErrorCount = errorCount
		if job.TotalItems.Valid {
			job.ProcessedItems = int(job.TotalItems.Int32)
		}
		job.CompletedAt = sql.NullTime{Time: s.now(), Valid: true}
		return nil
	})
}

// Fail marks the job FAILED with an error message
func (s *Service) Fail(ctx context.Context, id int64, message string) (*models.SyncJob, error) {
	return s.mutate(ctx, id, func(job *models.SyncJob) error {
		job.Status = models.JobStatusFailed
		job.ErrorMessage = models.NullString(message)
		job.CompletedAt = sql.NullTime{Time: s.now(), Valid: true}
		return nil
	})
}

// Cancel marks a PENDING or RUNNING job CANCELLED
func (s *Service) Cancel(ctx context.Context, id int64) (*models.SyncJob, error) {
	return s.mutate(ctx, id, func(job *models.SyncJob) error {
		job.Status = models.JobStatusCancelled
		job.CompletedAt = sql.NullTime{Time: s.now(), Valid: true}
		return nil
	})
}

// mutate loads the job, applies fn, persists and broadcasts the result. Terminal jobs are never changed.
func (s *Service) mutate(ctx context.Context, id int64, fn func(*models.SyncJob) error) (*models.SyncJob, error) {
	unlock := s.lockJob(id)
	defer unlock()

	job, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: job %d is %s", ErrJobTerminal, id, job.Status)
	}

	previous := job.Status
	if err := fn(job); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update sync job %d: %w", id, err)
	}

	s.broadcaster.Publish(job.Snapshot())
	if job.Status != previous {
		s.logTransition(job)
	}
	if job.Status.IsTerminal() {
		s.broadcaster.Close(job.ID)
	}
	return job, nil
}

// lockJob acquires the mutation lock for one job. Locks are dropped once no caller holds or waits on them.
func (s *Service) lockJob(id int64) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &jobLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

func (s *Service) logTransition(job *models.SyncJob) {
	metrics.RecordJobTransition(string(job.JobType), string(job.Status))

	event := log.Info()
	if job.Status == models.JobStatusFailed {
		event = log.Error().Str("error", job.ErrorMessage.String)
	}
	event = event.
		Int64("job_id", job.ID).
		Str("job_type", string(job.JobType)).
		Str("status", string(job.Status))
	if job.Status == models.JobStatusCompleted {
		event = event.
			Int("records_created", job.RecordsCreated).
			Int("records_updated", job.RecordsUpdated).
			Int("error_count", job.ErrorCount)
	}
	event.Msg("Sync job transitioned")
}

func capProcessed(job *models.SyncJob) {
	if job.TotalItems.Valid && job.ProcessedItems > int(job.TotalItems.Int32) {
		job.ProcessedItems = int(job.TotalItems.Int32)
	}
}

// Get returns a job by id
func (s *Service) Get(ctx context.Context, id int64) (*models.SyncJob, error) {
	return s.store.Get(ctx, id)
}

// Recent returns the newest jobs first
func (s *Service) Recent(ctx context.Context, limit int) ([]*models.SyncJob, error) {
	return s.store.Recent(ctx, limit)
}

// Active returns PENDING and RUNNING jobs, oldest first
func (s *Service) Active(ctx context.Context) ([]*models.SyncJob, error) {
	return s.store.Active(ctx)
}

// RunningJob returns the active job of a type, or nil
func (s *Service) RunningJob(ctx context.Context, jobType models.JobType) (*models.SyncJob, error) {
	return s.store.ActiveByType(ctx, jobType)
}

// Subscribe streams snapshots of a job. The first value is the current snapshot. The channel closes
// when the job reaches a terminal state, the subscription times out or ctx is done.
func (s *Service) Subscribe(ctx context.Context, id int64) (<-chan models.JobSnapshot, error) {
	// held so no transition slips between reading the snapshot and registering
	unlock := s.lockJob(id)
	defer unlock()

	job, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status.IsTerminal() {
		ch := make(chan models.JobSnapshot, 1)
		ch <- job.Snapshot()
		close(ch)
		return ch, nil
	}

	ch, unsubscribe := s.broadcaster.Subscribe(id, job.Snapshot(), s.streamTimeout)
	context.AfterFunc(ctx, unsubscribe)
	return ch, nil
}

// Freshness reports every job type in display order
func (s *Service) Freshness(ctx context.Context) ([]Freshness, error) {
	out := make([]Freshness, 0, len(models.AllJobTypes))
	for _, t := range models.AllJobTypes {
		f, err := s.FreshnessFor(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// FreshnessFor reports the freshness of one job type
func (s *Service) FreshnessFor(ctx context.Context, jobType models.JobType) (Freshness, error) {
	last, err := s.store.LastCompleted(ctx, jobType)
	if err != nil {
		return Freshness{}, fmt.Errorf("failed to load last %s sync: %w", jobType, err)
	}
	return freshnessOf(jobType, last, s.now()), nil
}
