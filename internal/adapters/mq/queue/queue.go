// Package queue carries roster changes from the service to background
// consumers.
//
// Enqueue never blocks: the service holds its lock while publishing, so a
// full queue drops the change and counts it.
package queue

import (
	"context"
	"sync"

	"github.com/TissotPA/Match/internal/domain/model"
	"github.com/TissotPA/Match/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
)

// Change is the payload type flowing through the queue.
type Change = model.Change

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a change to the queue.
	// Returns false if the queue is full or closed and the change was dropped.
	Enqueue(ctx context.Context, c Change) bool

	// Dequeue returns a channel that will receive changes as they become available.
	// The channel will be closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Change

	// Len returns the current number of queued changes.
	Len(ctx context.Context) int

	// Close stops accepting changes. Queued changes are still delivered.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	changes  chan Change
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.changes = make(chan Change, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a change to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, c Change) bool { //nolint:gocritic // hugeParam: Change is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueDrop()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case <-ctx.Done():
		metrics.RecordQueueDrop()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
	}

	select {
	case q.changes <- c:
		metrics.RecordQueueEnqueue()
		q.reportSize()
		return true
	default:
		metrics.RecordQueueDrop()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that will receive changes as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Change {
	out := make(chan Change)
	go func() {
		defer close(out)
		for c := range q.changes {
			select {
			case out <- c:
				metrics.RecordQueueDequeue()
				q.reportSize()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued changes.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return q.reportSize()
}

func (q *InMemoryQueue) reportSize() int {
	size := len(q.changes)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close stops accepting changes.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.changes)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
