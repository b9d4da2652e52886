package syncjob

import (
	"context"
	"sort"
	"sync"

	"mlbstats/ingestion/internal/models"
)

// Store persists sync jobs. CreateIfNoConflict must evaluate CheckConflict and insert the job
// as one atomic operation.
type Store interface {
	CreateIfNoConflict(ctx context.Context, job *models.SyncJob) (*models.SyncJob, error)
	Update(ctx context.Context, job *models.SyncJob) error
	Get(ctx context.Context, id int64) (*models.SyncJob, error)
	Recent(ctx context.Context, limit int) ([]*models.SyncJob, error)
	Active(ctx context.Context) ([]*models.SyncJob, error)
	ActiveByType(ctx context.Context, jobType models.JobType) (*models.SyncJob, error)
	LastCompleted(ctx context.Context, jobType models.JobType) (*models.SyncJob, error)
}

// CheckConflict applies the mutual exclusion rules to the currently active jobs, ordered oldest first.
// An active FULL_SYNC blocks every request, a FULL_SYNC request is blocked by any active job, and
// otherwise only an active job of the same type blocks.
func CheckConflict(active []*models.SyncJob, requested models.JobType) *ConflictError {
	conflict := func(j *models.SyncJob) *ConflictError {
		return &ConflictError{ExistingJobID: j.ID, JobType: j.JobType, Requested: requested}
	}

	for _, j := range active {
		if j.JobType == models.JobTypeFullSync {
			return conflict(j)
		}
	}
	if requested == models.JobTypeFullSync && len(active) > 0 {
		return conflict(active[0])
	}
	for _, j := range active {
		if j.JobType == requested {
			return conflict(j)
		}
	}
	return nil
}

// MemoryStore is a process-local Store
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	jobs   map[int64]*models.SyncJob
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[int64]*models.SyncJob)}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) CreateIfNoConflict(_ context.Context, job *models.SyncJob) (*models.SyncJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c := CheckConflict(m.activeLocked(), job.JobType); c != nil {
		return nil, c
	}
	m.nextID++
	stored := job.Clone()
	stored.ID = m.nextID
	m.jobs[stored.ID] = stored
	return stored.Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, job *models.SyncJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[job.ID]; !ok {
		return ErrJobNotFound
	}
	m.jobs[job.ID] = job.Clone()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id int64) (*models.SyncJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job.Clone(), nil
}

func (m *MemoryStore) Recent(_ context.Context, limit int) ([]*models.SyncJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.sortedLocked()
	// newest first
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return cloneAll(all), nil
}

func (m *MemoryStore) Active(_ context.Context) ([]*models.SyncJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAll(m.activeLocked()), nil
}

func (m *MemoryStore) ActiveByType(_ context.Context, jobType models.JobType) (*models.SyncJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, j := range m.activeLocked() {
		if j.JobType == jobType {
			return j.Clone(), nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) LastCompleted(_ context.Context, jobType models.JobType) (*models.SyncJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var last *models.SyncJob
	for _, j := range m.jobs {
		if j.JobType != jobType || j.Status != models.JobStatusCompleted || !j.CompletedAt.Valid {
			continue
		}
		if last == nil || j.CompletedAt.Time.After(last.CompletedAt.Time) {
			last = j
		}
	}
	if last == nil {
		return nil, nil
	}
	return last.Clone(), nil
}

func (m *MemoryStore) sortedLocked() []*models.SyncJob {
	out := make([]*models.SyncJob, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

func (m *MemoryStore) activeLocked() []*models.SyncJob {
	var out []*models.SyncJob
	for _, j := range m.sortedLocked() {
		if j.Status.IsActive() {
			out = append(out, j)
		}
	}
	return out
}

func cloneAll(jobs []*models.SyncJob) []*models.SyncJob {
	out := make([]*models.SyncJob, len(jobs))
	for i, j := range jobs {
		out[i] = j.Clone()
	}
	return out
}
