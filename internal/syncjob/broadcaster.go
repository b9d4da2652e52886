package syncjob

import (
	"sync"
	"time"

	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Broadcaster fans job snapshots out to live subscribers
type Broadcaster interface {
	// Publish delivers a snapshot to every subscriber of its job
	Publish(snapshot models.JobSnapshot)
	// Subscribe registers a subscriber whose channel starts with initial and closes after timeout.
	// The returned func unsubscribes and is safe to call more than once.
	Subscribe(jobID int64, initial models.JobSnapshot, timeout time.Duration) (<-chan models.JobSnapshot, func())
	// Close ends every subscription for a job
	Close(jobID int64)
	// Subscribers returns the number of live subscribers for a job
	Subscribers(jobID int64) int
}

const defaultSubscriberBuffer = 64

type subscriber struct {
	ch    chan models.JobSnapshot
	timer *time.Timer
}

// ChannelBroadcaster keeps one buffered channel per subscriber. A send that would block is
// treated as a failed delivery and drops only that subscriber.
type ChannelBroadcaster struct {
	buffer int

	mu   sync.Mutex
	subs map[int64]map[uuid.UUID]*subscriber
}

// NewChannelBroadcaster creates a broadcaster. A non-positive buffer uses the default.
func NewChannelBroadcaster(buffer int) *ChannelBroadcaster {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &ChannelBroadcaster{
		buffer: buffer,
		subs:   make(map[int64]map[uuid.UUID]*subscriber),
	}
}

var _ Broadcaster = (*ChannelBroadcaster)(nil)

func (b *ChannelBroadcaster) Subscribe(jobID int64, initial models.JobSnapshot, timeout time.Duration) (<-chan models.JobSnapshot, func()) {
	id := uuid.New()
	sub := &subscriber{ch: make(chan models.JobSnapshot, b.buffer)}
	sub.ch <- initial

	b.mu.Lock()
	if b.subs[jobID] == nil {
		b.subs[jobID] = make(map[uuid.UUID]*subscriber)
	}
	b.subs[jobID][id] = sub
	if timeout > 0 {
		sub.timer = time.AfterFunc(timeout, func() {
			log.Debug().Int64("job_id", jobID).Msg("Progress subscription timed out")
			b.remove(jobID, id)
		})
	}
	b.mu.Unlock()
	metrics.SubscriberAdded()

	return sub.ch, func() { b.remove(jobID, id) }
}

func (b *ChannelBroadcaster) Publish(snapshot models.JobSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subs[snapshot.ID] {
		select {
		case sub.ch <- snapshot:
		default:
			log.Debug().Int64("job_id", snapshot.ID).Msg("Failed to deliver progress event, removing subscriber")
			b.dropLocked(snapshot.ID, id)
		}
	}
}

func (b *ChannelBroadcaster) Close(jobID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id := range b.subs[jobID] {
		b.dropLocked(jobID, id)
	}
}

func (b *ChannelBroadcaster) Subscribers(jobID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[jobID])
}

func (b *ChannelBroadcaster) remove(jobID int64, id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dropLocked(jobID, id)
}

func (b *ChannelBroadcaster) dropLocked(jobID int64, id uuid.UUID) {
	subs := b.subs[jobID]
	sub, ok := subs[id]
	if !ok {
		return
	}
	if sub.timer != nil {
		sub.timer.Stop()
	}
	close(sub.ch)
	delete(subs, id)
	if len(subs) == 0 {
		delete(b.subs, jobID)
	}
	metrics.SubscriberRemoved()
}
