// Package worker persists queued battle records.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/mealmax/internal/adapters/mq/queue"
	"github.com/okian/mealmax/internal/domain/model"
	"github.com/okian/mealmax/pkg/logger"
	"github.com/okian/mealmax/pkg/metrics"
)

const defaultShutdownTimeout = 30 * time.Second

// Recorder persists one battle record.
type Recorder interface {
	RecordBattle(ctx context.Context, rec model.BattleRecord) error
}

// Queue defines how workers receive records.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Record
}

// Worker processes queued records.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue drains.
	Run(ctx context.Context)

	// Shutdown stops the worker without waiting for the queue to drain.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker reads records off a queue and hands them to a Recorder.
type InMemoryWorker struct {
	queue    Queue
	recorder Recorder
	name     string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		recorder: recorder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.GetOrNop().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	records := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case rec, ok := <-records:
			if !ok {
				return
			}
			if err := w.process(ctx, rec); err != nil {
				w.logger.Error(ctx, "error recording battle", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, rec queue.Record) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.recorder.RecordBattle(ctx, rec); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "record_error")
		metrics.RecordErrorByType("record_error", "medium")
		return fmt.Errorf("record battle %s: %w", rec.BattleID, err)
	}

	metrics.RecordHistoryRecorded()
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers         []*InMemoryWorker
	queue           Queue
	shutdownTimeout time.Duration
	logger          logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below 1 uses
// runtime.NumCPU().
func NewPool(workerCount int, q Queue, recorder Recorder, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers:         make([]*InMemoryWorker, workerCount),
		queue:           q,
		shutdownTimeout: defaultShutdownTimeout,
		logger:          logger.GetOrNop().Named("worker-pool"),
	}

	for _, opt := range opts {
		opt(pool)
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q, recorder,
			WithLogger(pool.logger),
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it. Workers
// still busy when the timeout expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, p.shutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-drainCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			w.shutdownOnce.Do(func() { close(w.shutdown) })
		}
	}

	metrics.UpdateWorkerCount(0)
	if timedOut {
		return fmt.Errorf("worker pool drain: %w", drainCtx.Err())
	}
	return nil
}
