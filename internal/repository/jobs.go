package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/syncjob"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// jobCreateLockKey serializes job creation across connections
const jobCreateLockKey = 0x6d6c6273796e63

const maxCreateAttempts = 3

// JobRepository handles sync job persistence
type JobRepository struct {
	db *Database
}

var _ syncjob.Store = (*JobRepository)(nil)

const jobColumns = `
	id, job_type, status, season, triggered_by, triggered_by_user_id,
	total_items, processed_items, current_step, started_at, completed_at,
	records_created, records_updated, error_count, error_message, created_at
`

func scanJob(row pgx.Row) (*models.SyncJob, error) {
	var j models.SyncJob
	err := row.Scan(
		&j.ID, &j.JobType, &j.Status, &j.Season, &j.TriggeredBy, &j.ActorID,
		&j.TotalItems, &j.ProcessedItems, &j.CurrentStep, &j.StartedAt, &j.CompletedAt,
		&j.RecordsCreated, &j.RecordsUpdated, &j.ErrorCount, &j.ErrorMessage, &j.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func collectJobs(rows pgx.Rows) ([]*models.SyncJob, error) {
	defer rows.Close()

	var jobs []*models.SyncJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync jobs: %w", err)
	}
	return jobs, nil
}

// CreateIfNoConflict inserts the job unless an active job conflicts with it. The conflict check
// and the insert run in one transaction holding an advisory lock.
func (r *JobRepository) CreateIfNoConflict(ctx context.Context, job *models.SyncJob) (*models.SyncJob, error) {
	start := time.Now()
	var created *models.SyncJob

	var err error
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		created, err = r.createTx(ctx, job)
		if !isRetryable(err) {
			break
		}
		log.Debug().Int("attempt", attempt).Err(err).Msg("Retrying sync job creation")
	}
	observe("insert", "sync_jobs", start, err)

	if err != nil {
		var conflict *syncjob.ConflictError
		if errors.As(err, &conflict) {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to create sync job: %w", err)
	}
	return created, nil
}

func (r *JobRepository) createTx(ctx context.Context, job *models.SyncJob) (*models.SyncJob, error) {
	var created *models.SyncJob

	err := pgx.BeginTxFunc(ctx, r.db.Pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(jobCreateLockKey)); err != nil {
			return fmt.Errorf("failed to acquire job lock: %w", err)
		}

		rows, err := tx.Query(ctx, `SELECT `+jobColumns+` FROM sync_jobs
			WHERE status IN ('PENDING', 'RUNNING') ORDER BY created_at, id`)
		if err != nil {
			return fmt.Errorf("failed to load active jobs: %w", err)
		}
		active, err := collectJobs(rows)
		if err != nil {
			return err
		}
		if c := syncjob.CheckConflict(active, job.JobType); c != nil {
			return c
		}

		created, err = scanJob(tx.QueryRow(ctx, `
			INSERT INTO sync_jobs (job_type, status, season, triggered_by, triggered_by_user_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+jobColumns,
			job.JobType, job.Status, job.Season, job.TriggeredBy, job.ActorID, job.CreatedAt,
		))
		if err != nil {
			return fmt.Errorf("failed to insert sync job: %w", err)
		}
		return nil
	})
	return created, err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}

// Update writes every mutable column of a job
func (r *JobRepository) Update(ctx context.Context, job *models.SyncJob) error {
	start := time.Now()
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE sync_jobs SET
			status = $1,
			total_items = $2,
			processed_items = $3,
			current_step = $4,
			started_at = $5,
			completed_at = $6,
			records_created = $7,
			records_updated = $8,
			error_count = $9,
			error_message = $10
		WHERE id = $11
	`,
		job.Status, job.TotalItems, job.ProcessedItems, job.CurrentStep,
		job.StartedAt, job.CompletedAt, job.RecordsCreated, job.RecordsUpdated,
		job.ErrorCount, job.ErrorMessage, job.ID,
	)
	observe("update", "sync_jobs", start, err)

	if err != nil {
		return fmt.Errorf("failed to update sync job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return syncjob.ErrJobNotFound
	}
	return nil
}

// Get retrieves a job by id
func (r *JobRepository) Get(ctx context.Context, id int64) (*models.SyncJob, error) {
	job, err := scanJob(r.db.Pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM sync_jobs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, syncjob.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync job: %w", err)
	}
	return job, nil
}

// Recent returns the newest jobs first
func (r *JobRepository) Recent(ctx context.Context, limit int) ([]*models.SyncJob, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+jobColumns+` FROM sync_jobs
		ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent sync jobs: %w", err)
	}
	return collectJobs(rows)
}

// Active returns PENDING and RUNNING jobs, oldest first
func (r *JobRepository) Active(ctx context.Context) ([]*models.SyncJob, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+jobColumns+` FROM sync_jobs
		WHERE status IN ('PENDING', 'RUNNING') ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sync jobs: %w", err)
	}
	return collectJobs(rows)
}

// ActiveByType returns the active job of a type, or nil
func (r *JobRepository) ActiveByType(ctx context.Context, jobType models.JobType) (*models.SyncJob, error) {
	job, err := scanJob(r.db.Pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM sync_jobs
		WHERE job_type = $1 AND status IN ('PENDING', 'RUNNING')
		ORDER BY created_at LIMIT 1`, jobType))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active %s job: %w", jobType, err)
	}
	return job, nil
}

// LastCompleted returns the most recently completed job of a type, or nil
func (r *JobRepository) LastCompleted(ctx context.Context, jobType models.JobType) (*models.SyncJob, error) {
	job, err := scanJob(r.db.Pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM sync_jobs
		WHERE job_type = $1 AND status = 'COMPLETED'
		ORDER BY completed_at DESC LIMIT 1`, jobType))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last completed %s job: %w", jobType, err)
	}
	return job, nil
}

// FailOrphaned fails jobs left active by a previous process so they stop blocking new jobs
func (r *JobRepository) FailOrphaned(ctx context.Context, message string) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE sync_jobs SET status = 'FAILED', error_message = $1, completed_at = NOW()
		WHERE status IN ('PENDING', 'RUNNING')
	`, message)
	if err != nil {
		return 0, fmt.Errorf("failed to fail orphaned sync jobs: %w", err)
	}
	return result.RowsAffected(), nil
}
