package syncjob

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mlbstats/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (*Service, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(NewMemoryStore(), NewChannelBroadcaster(16), WithClock(clock.Now), WithStreamTimeout(time.Minute))
	return svc, clock
}

func intPtr(v int) *int { return &v }

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	job, err := svc.Create(ctx, models.JobTypeTeams, intPtr(2025), models.TriggerManual, nil)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Equal(t, int32(2025), job.Season.Int32)

	job, err = svc.Start(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusRunning, job.Status)
	assert.True(t, job.StartedAt.Valid, "Start should stamp startedAt")

	job, err = svc.UpdateProgress(ctx, job.ID, 1, intPtr(4), "Syncing teams...")
	require.NoError(t, err)
	assert.Equal(t, 25, job.ProgressPercentage())
	assert.Equal(t, "Syncing teams...", job.CurrentStep.String)

	job, err = svc.IncrementProgress(ctx, job.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 50, job.ProgressPercentage())

	job, err = svc.Complete(ctx, job.ID, 30, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Equal(t, 100, job.ProgressPercentage())
	assert.Equal(t, 30, job.RecordsCreated)
	assert.Equal(t, 1, job.ErrorCount)
	assert.True(t, job.CompletedAt.Valid)
}

func TestService_ProgressBounds(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	job, err := svc.Create(ctx, models.JobTypeGames, nil, models.TriggerScheduled, nil)
	require.NoError(t, err)
	_, err = svc.Start(ctx, job.ID)
	require.NoError(t, err)

	job, err = svc.UpdateProgress(ctx, job.ID, 3, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 0, job.ProgressPercentage(), "Unknown total should report 0")

	job, err = svc.UpdateProgress(ctx, job.ID, 10, intPtr(5), "")
	require.NoError(t, err)
	assert.Equal(t, 5, job.ProcessedItems, "Processed should be capped at total")
	assert.Equal(t, 100, job.ProgressPercentage())

	job, err = svc.UpdateProgress(ctx, job.ID, 2, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 5, job.ProcessedItems, "Processed should never decrease")

	_, err = svc.UpdateProgress(ctx, job.ID, 5, intPtr(4), "")
	assert.ErrorIs(t, err, ErrInvalidTransition, "A total below processed should be rejected")
	_, err = svc.UpdateProgress(ctx, job.ID, 5, intPtr(20), "")
	assert.ErrorIs(t, err, ErrInvalidTransition, "A larger total would lower the percentage")

	stored, err := svc.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.ProcessedItems)
	assert.Equal(t, int32(5), stored.TotalItems.Int32)
	assert.Equal(t, 100, stored.ProgressPercentage())
}

func TestService_ProgressNeverMovesBackwards(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	job, err := svc.Create(ctx, models.JobTypeBoxScores, nil, models.TriggerManual, nil)
	require.NoError(t, err)
	_, err = svc.Start(ctx, job.ID)
	require.NoError(t, err)

	job, err = svc.UpdateProgress(ctx, job.ID, 5, intPtr(10), "")
	require.NoError(t, err)
	assert.Equal(t, 50, job.ProgressPercentage())

	_, err = svc.UpdateProgress(ctx, job.ID, 5, intPtr(20), "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.UpdateProgress(ctx, job.ID, 5, intPtr(4), "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	job, err = svc.UpdateProgress(ctx, job.ID, 8, intPtr(12), "")
	require.NoError(t, err, "A larger total is fine when processed keeps pace")
	assert.Equal(t, 8, job.ProcessedItems)
	assert.Equal(t, 66, job.ProgressPercentage())
}

// gatedStore holds updates of one job until released
type gatedStore struct {
	*MemoryStore
	gated   int64
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) Update(ctx context.Context, job *models.SyncJob) error {
	if job.ID == g.gated {
		g.entered <- struct{}{}
		<-g.release
	}
	return g.MemoryStore.Update(ctx, job)
}

func TestService_SlowWriteDoesNotBlockOtherJobs(t *testing.T) {
	ctx := context.Background()
	store := &gatedStore{
		MemoryStore: NewMemoryStore(),
		entered:     make(chan struct{}, 1),
		release:     make(chan struct{}),
	}
	svc := NewService(store, NewChannelBroadcaster(16))

	slow, err := svc.Create(ctx, models.JobTypeGames, nil, models.TriggerManual, nil)
	require.NoError(t, err)
	fast, err := svc.Create(ctx, models.JobTypeStandings, nil, models.TriggerManual, nil)
	require.NoError(t, err)
	store.gated = slow.ID

	slowDone := make(chan error, 1)
	go func() {
		_, err := svc.Start(ctx, slow.ID)
		slowDone <- err
	}()
	<-store.entered

	fastDone := make(chan error, 1)
	go func() {
		_, err := svc.Start(ctx, fast.ID)
		fastDone <- err
	}()
	select {
	case err := <-fastDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start of another job waited on the slow write")
	}

	close(store.release)
	require.NoError(t, <-slowDone)

	for _, id := range []int64{slow.ID, fast.ID} {
		job, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.JobStatusRunning, job.Status)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Empty(t, svc.locks, "Job locks should be released once idle")
}

func TestService_InvalidTransitions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	job, err := svc.Create(ctx, models.JobTypeStats, nil, models.TriggerManual, nil)
	require.NoError(t, err)

	_, err = svc.UpdateProgress(ctx, job.ID, 1, nil, "")
	assert.ErrorIs(t, err, ErrInvalidTransition, "Progress on a pending job should be rejected")

	_, err = svc.Start(ctx, job.ID)
	require.NoError(t, err)
	_, err = svc.Start(ctx, job.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Start(ctx, 999)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestService_TerminalJobsAreImmutable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	job, err := svc.Create(ctx, models.JobTypeStandings, nil, models.TriggerManual, nil)
	require.NoError(t, err)
	_, err = svc.Start(ctx, job.ID)
	require.NoError(t, err)
	done, err := svc.Fail(ctx, job.ID, "upstream unavailable")
	require.NoError(t, err)

	_, err = svc.Complete(ctx, job.ID, 1, 1, 0)
	assert.ErrorIs(t, err, ErrJobTerminal)
	_, err = svc.Cancel(ctx, job.ID)
	assert.ErrorIs(t, err, ErrJobTerminal)
	_, err = svc.UpdateProgress(ctx, job.ID, 1, nil, "")
	assert.ErrorIs(t, err, ErrJobTerminal)

	stored, err := svc.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, stored.Status)
	assert.Equal(t, "upstream unavailable", stored.ErrorMessage.String)
	assert.Equal(t, done.CompletedAt, stored.CompletedAt)
}

func TestService_CancelPending(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	job, err := svc.Create(ctx, models.JobTypeRosters, nil, models.TriggerManual, nil)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, cancelled.Status)

	_, err = svc.Start(ctx, job.ID)
	assert.ErrorIs(t, err, ErrJobTerminal)

	again, err := svc.Create(ctx, models.JobTypeRosters, nil, models.TriggerManual, nil)
	require.NoError(t, err, "Cancelled job should release the type")
	assert.NotEqual(t, job.ID, again.ID)
}

func TestService_Conflicts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	full, err := svc.Create(ctx, models.JobTypeFullSync, nil, models.TriggerScheduled, nil)
	require.NoError(t, err)

	_, err = svc.Create(ctx, models.JobTypeTeams, nil, models.TriggerManual, nil)
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, full.ID, conflict.ExistingJobID)
	assert.Equal(t, models.JobTypeFullSync, conflict.JobType)
}

func TestService_ConcurrentCreateAdmitsOne(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, models.JobTypeGames, nil, models.TriggerManual, nil)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if IsConflict(err) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 19, conflicts)
}

func TestService_SubscribeReceivesTransitionsInOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	job, err := svc.Create(ctx, models.JobTypeBoxScores, nil, models.TriggerManual, nil)
	require.NoError(t, err)

	stream, err := svc.Subscribe(ctx, job.ID)
	require.NoError(t, err)

	_, err = svc.Start(ctx, job.ID)
	require.NoError(t, err)
	_, err = svc.UpdateProgress(ctx, job.ID, 1, intPtr(2), "Syncing box scores...")
	require.NoError(t, err)
	_, err = svc.Complete(ctx, job.ID, 5, 0, 0)
	require.NoError(t, err)

	var statuses []models.JobStatus
	var last models.JobSnapshot
	for s := range stream {
		statuses = append(statuses, s.Status)
		last = s
	}
	assert.Equal(t, []models.JobStatus{
		models.JobStatusPending,
		models.JobStatusRunning,
		models.JobStatusRunning,
		models.JobStatusCompleted,
	}, statuses)
	assert.Equal(t, 100, last.ProgressPercentage)
	assert.Equal(t, 5, last.RecordsCreated)
}

func TestService_SubscribeTerminalJob(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	job, err := svc.Create(ctx, models.JobTypeTeams, nil, models.TriggerManual, nil)
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, job.ID)
	require.NoError(t, err)

	stream, err := svc.Subscribe(ctx, job.ID)
	require.NoError(t, err)

	snapshot, ok := <-stream
	require.True(t, ok)
	assert.Equal(t, models.JobStatusCancelled, snapshot.Status)
	_, open := <-stream
	assert.False(t, open)

	_, err = svc.Subscribe(ctx, 404)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestService_SubscribeContextCancel(t *testing.T) {
	svc, _ := newTestService(t)

	job, err := svc.Create(context.Background(), models.JobTypeTeams, nil, models.TriggerManual, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := svc.Subscribe(ctx, job.ID)
	require.NoError(t, err)
	<-stream
	cancel()

	select {
	case _, open := <-stream:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not close after context cancellation")
	}
}

func TestService_Freshness(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(t)

	job, err := svc.Create(ctx, models.JobTypeGames, nil, models.TriggerScheduled, nil)
	require.NoError(t, err)
	_, err = svc.Start(ctx, job.ID)
	require.NoError(t, err)
	_, err = svc.Complete(ctx, job.ID, 0, 0, 0)
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	f, err := svc.FreshnessFor(ctx, models.JobTypeGames)
	require.NoError(t, err)
	assert.Equal(t, FreshnessFresh, f.Level)
	assert.Equal(t, "30 minutes ago", f.Description)
	require.NotNil(t, f.LastSyncedAt)

	clock.Advance(150 * time.Minute)
	f, err = svc.FreshnessFor(ctx, models.JobTypeGames)
	require.NoError(t, err)
	assert.Equal(t, FreshnessStale, f.Level)
	assert.Equal(t, "3 hours ago", f.Description)

	clock.Advance(7 * time.Hour)
	f, err = svc.FreshnessFor(ctx, models.JobTypeGames)
	require.NoError(t, err)
	assert.Equal(t, FreshnessCritical, f.Level)

	all, err := svc.Freshness(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(models.AllJobTypes))
	assert.Equal(t, models.JobTypeFullSync, all[0].Type)
	assert.Equal(t, "Never synced", all[0].Description)
}
