// Package queue buffers resolved battles on their way to the history store.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/mealmax/internal/domain/model"
	"github.com/okian/mealmax/pkg/metrics"
)

const defaultQueueCapacity = 10000

// Record is the payload flowing through the queue.
type Record = model.BattleRecord

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a record without blocking. It returns ErrFull or ErrClosed
	// when the record was not accepted.
	Enqueue(ctx context.Context, r Record) error
	// Dequeue returns a channel of records that is closed once the queue is
	// closed and drained.
	Dequeue(ctx context.Context) <-chan Record
	Len(ctx context.Context) int
	// Close stops intake. Buffered records remain readable.
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	records  chan Record
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.records = make(chan Record, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a record to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Record) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return err
	}

	select {
	case q.records <- r:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.records))
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return fmt.Errorf("%w: capacity %d", ErrFull, q.capacity)
	}
}

// Dequeue returns a channel that receives records as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Record {
	out := make(chan Record)

	go func() {
		defer close(out)
		for r := range q.records {
			select {
			case out <- r:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.records))
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Len returns the current number of queued records.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.records)
	metrics.UpdateQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.records)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
