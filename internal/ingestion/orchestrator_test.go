package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mlbstats/ingestion/internal/cache"
	"mlbstats/ingestion/internal/client"
	"mlbstats/ingestion/internal/client/mocks"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/syncjob"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// recordingBroadcaster keeps every published snapshot
type recordingBroadcaster struct {
	*syncjob.ChannelBroadcaster

	mu        sync.Mutex
	snapshots []models.JobSnapshot
}

func (r *recordingBroadcaster) Publish(s models.JobSnapshot) {
	r.mu.Lock()
	r.snapshots = append(r.snapshots, s)
	r.mu.Unlock()
	r.ChannelBroadcaster.Publish(s)
}

func (r *recordingBroadcaster) steps() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, s := range r.snapshots {
		if s.CurrentStep == nil {
			continue
		}
		if len(out) == 0 || out[len(out)-1] != *s.CurrentStep {
			out = append(out, *s.CurrentStep)
		}
	}
	return out
}

type recordingCache struct {
	cache.Nop

	mu      sync.Mutex
	evicted []string
}

func (c *recordingCache) EvictGroups(_ context.Context, groups ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evicted = append(c.evicted, groups...)
	return nil
}

type orchestratorFixture struct {
	api   *fakeAPI
	db    *memDB
	jobs  *syncjob.Service
	bc    *recordingBroadcaster
	cache *recordingCache
	orch  *Orchestrator
}

func newOrchestratorFixture(t *testing.T, feed client.LeaderboardFeed) *orchestratorFixture {
	t.Helper()
	f := &orchestratorFixture{
		api:   newFakeAPI(),
		bc:    &recordingBroadcaster{ChannelBroadcaster: syncjob.NewChannelBroadcaster(0)},
		cache: &recordingCache{},
	}
	var in *Ingester
	in, f.db = newTestIngester(f.api, feed)
	f.jobs = syncjob.NewService(syncjob.NewMemoryStore(), f.bc)
	f.orch = NewOrchestrator(in, f.jobs, f.cache)
	f.orch.now = func() time.Time { return time.Date(2024, 7, 4, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(f.orch.Close)

	f.api.teams = []client.Team{team(147, "New York Yankees", "American League East")}
	f.api.rosters[147] = []client.RosterEntry{rosterEntry(999001, "Minor Leaguer", "SS", "Infielder")}
	return f
}

func TestRunFullSync_ProgressAndCompletion(t *testing.T) {
	f := newOrchestratorFixture(t, nil)

	job, err := f.orch.RunFullSync(context.Background(), nil, models.TriggerManual)
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Equal(t, int32(2024), job.Season.Int32, "Season should default to the current year")
	assert.Equal(t, int32(5), job.TotalItems.Int32)
	assert.Equal(t, 5, job.ProcessedItems)
	assert.Equal(t, 100, job.ProgressPercentage())
	assert.Equal(t, 2, job.RecordsCreated, "One team and one roster entry")
	assert.True(t, job.CompletedAt.Valid)

	assert.Equal(t, []string{
		"Syncing teams...",
		"Syncing rosters...",
		"Syncing games...",
		"Syncing player stats...",
		"Syncing standings...",
	}, f.bc.steps())

	assert.Equal(t, 1, f.api.callCount("standings"))
}

func TestRunFullSync_StepFailureFailsJob(t *testing.T) {
	f := newOrchestratorFixture(t, nil)
	f.api.scheduleErr = errors.New("schedule unavailable")

	job, err := f.orch.RunFullSync(context.Background(), nil, models.TriggerScheduled)
	require.Error(t, err)
	assert.ErrorContains(t, err, "games step failed")

	require.NotNil(t, job)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage.String, "schedule unavailable")
	assert.Equal(t, models.TriggerScheduled, job.TriggeredBy)
	assert.Len(t, f.db.teams, 1, "Earlier steps keep their writes")
	assert.Zero(t, f.api.callCount("standings"), "Later steps should not run")
}

func TestRunFullSync_CancelStopsAtStepBoundary(t *testing.T) {
	f := newOrchestratorFixture(t, nil)
	f.api.onTeams = func(ctx context.Context) {
		running, err := f.jobs.RunningJob(ctx, models.JobTypeFullSync)
		require.NoError(t, err)
		require.NotNil(t, running)
		_, err = f.jobs.Cancel(ctx, running.ID)
		require.NoError(t, err)
	}

	job, err := f.orch.RunFullSync(context.Background(), nil, models.TriggerManual)
	assert.ErrorIs(t, err, ErrCancelled)
	require.NotNil(t, job)
	assert.Equal(t, models.JobStatusCancelled, job.Status)
	assert.Zero(t, f.api.callCount("roster"), "No step should start after cancellation")
}

func TestTrigger_ConflictWhileRunning(t *testing.T) {
	f := newOrchestratorFixture(t, nil)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.api.onTeams = func(context.Context) {
		once.Do(func() { close(started) })
		<-release
	}

	full, err := f.orch.Trigger(ctx, models.JobTypeFullSync, nil, models.TriggerManual, nil)
	require.NoError(t, err)
	<-started

	_, err = f.orch.Trigger(ctx, models.JobTypeTeams, nil, models.TriggerManual, nil)
	var conflict *syncjob.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, full.ID, conflict.ExistingJobID)
	assert.Equal(t, models.JobTypeFullSync, conflict.JobType)

	close(release)
	f.orch.Wait()

	final, err := f.jobs.Get(ctx, full.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, final.Status)
}

// flakyJobStore fails one Update call
type flakyJobStore struct {
	*syncjob.MemoryStore

	mu      sync.Mutex
	updates int
	failOn  int
}

func (s *flakyJobStore) Update(ctx context.Context, job *models.SyncJob) error {
	s.mu.Lock()
	s.updates++
	n := s.updates
	s.mu.Unlock()
	if n == s.failOn {
		return errors.New("connection reset by peer")
	}
	return s.MemoryStore.Update(ctx, job)
}

func TestRun_JobStoreErrorFailsJob(t *testing.T) {
	tests := []struct {
		name   string
		failOn int
	}{
		{"start", 1},
		{"progress", 2},
		{"complete", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			api := newFakeAPI()
			api.teams = []client.Team{team(147, "New York Yankees", "American League East")}
			in, _ := newTestIngester(api, nil)
			store := &flakyJobStore{MemoryStore: syncjob.NewMemoryStore(), failOn: tt.failOn}
			jobs := syncjob.NewService(store, syncjob.NewChannelBroadcaster(0))
			orch := NewOrchestrator(in, jobs, cache.Nop{})
			t.Cleanup(orch.Close)

			job, err := orch.RunTeamsSync(ctx, models.TriggerManual)
			assert.ErrorContains(t, err, "connection reset by peer")
			require.NotNil(t, job)
			assert.Equal(t, models.JobStatusFailed, job.Status)
			assert.Contains(t, job.ErrorMessage.String, "connection reset by peer")

			active, err := jobs.Active(ctx)
			require.NoError(t, err)
			assert.Empty(t, active)

			_, err = jobs.Create(ctx, models.JobTypeFullSync, nil, models.TriggerManual, nil)
			assert.NoError(t, err, "A failed job should not block new runs")
		})
	}
}

func TestRunTeamsSync_HasNoSeason(t *testing.T) {
	f := newOrchestratorFixture(t, nil)

	job, err := f.orch.RunTeamsSync(context.Background(), models.TriggerManual)
	require.NoError(t, err)
	assert.False(t, job.Season.Valid)
	assert.Equal(t, int32(1), job.TotalItems.Int32)
	assert.Equal(t, []string{cache.GroupTeams}, f.cache.evicted)
}

func TestRunBoxScoresSync_RunsLinescores(t *testing.T) {
	f := newOrchestratorFixture(t, nil)

	job, err := f.orch.RunBoxScoresSync(context.Background(), intp(2023), models.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Equal(t, int32(2023), job.Season.Int32)
	assert.Equal(t, int32(2), job.TotalItems.Int32)
	assert.Equal(t, []string{"Syncing box scores...", "Syncing linescores..."}, f.bc.steps())
}

func TestRunSabermetricsSync_IncludesLeaderboards(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mocks.NewMockLeaderboardFeed(ctrl)
	feed.EXPECT().FetchOAA(gomock.Any(), 2024).Return("player_id,oaa\n", nil)
	feed.EXPECT().FetchExpectedStats(gomock.Any(), 2024).Return("player_id,xba\n", nil)
	feed.EXPECT().FetchSprintSpeed(gomock.Any(), 2024).Return("player_id,sprint_speed\n", nil)

	f := newOrchestratorFixture(t, feed)
	job, err := f.orch.RunSabermetricsSync(context.Background(), nil, models.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Equal(t, []string{"Syncing sabermetrics...", "Syncing leaderboards..."}, f.bc.steps())
}

func TestRunUntracked_CreatesNoJob(t *testing.T) {
	f := newOrchestratorFixture(t, nil)
	ctx := context.Background()

	res, err := f.orch.RunUntracked(ctx, models.JobTypeStandings, 2024)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Equal(t, []string{cache.GroupStandings}, f.cache.evicted)

	jobs, err := f.jobs.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestRunLeaderboards_Untracked(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mocks.NewMockLeaderboardFeed(ctrl)
	feed.EXPECT().FetchOAA(gomock.Any(), 2024).Return("", errors.New("down"))
	feed.EXPECT().FetchExpectedStats(gomock.Any(), 2024).Return("", errors.New("down"))
	feed.EXPECT().FetchSprintSpeed(gomock.Any(), 2024).Return("", errors.New("down"))

	f := newOrchestratorFixture(t, feed)
	_, err := f.orch.RunLeaderboards(context.Background(), 2024)
	assert.ErrorContains(t, err, "leaderboards step failed")
	assert.Equal(t, []string{cache.GroupStats, cache.GroupLeaders}, f.cache.evicted)
}

func TestRun_UnknownJobType(t *testing.T) {
	f := newOrchestratorFixture(t, nil)

	_, err := f.orch.Run(context.Background(), models.JobType("BOGUS"), nil, models.TriggerManual)
	assert.ErrorContains(t, err, "no sync plan")
}

func TestPlan_CoversEveryJobType(t *testing.T) {
	f := newOrchestratorFixture(t, nil)
	for _, jt := range models.AllJobTypes {
		assert.NotEmpty(t, f.orch.plan(jt), "job type %s", jt)
	}
}
