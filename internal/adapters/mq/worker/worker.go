// Package worker drains the change queue and hands each change to handlers.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/TissotPA/Match/internal/domain/model"
	"github.com/TissotPA/Match/pkg/logger"
	"github.com/TissotPA/Match/pkg/metrics"
)

// Default worker configuration constants.
const (
	poolShutdownTimeout = 30 * time.Second
)

// Change abstracts what workers read off the queue.
type Change = model.Change

// Handler consumes one change. Handlers must tolerate changes arriving out
// of version order when more than one worker runs.
type Handler interface {
	Handle(ctx context.Context, c Change) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, c Change) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, c Change) error { return f(ctx, c) }

// Queue defines how workers receive changes.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Change
}

// Worker processes changes with the provided handlers.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown waits for the worker to stop.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	handlers []Handler
	name     string

	done chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, handlers []Handler, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		handlers: handlers,
		name:     "worker",
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop. It returns once the queue is closed and
// drained, or when ctx is cancelled.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	changes := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			if err := w.process(ctx, c); err != nil {
				w.logger.Error(ctx, "error processing change",
					logger.Uint64("version", c.Version),
					logger.String("kind", string(c.Kind)),
					logger.Error(err))
			}
		}
	}
}

// Shutdown waits for Run to return.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs every handler; one failing handler does not skip the others.
func (w *InMemoryWorker) process(ctx context.Context, c Change) error { //nolint:gocritic // hugeParam: Change is passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	var errs []error
	for _, h := range w.handlers {
		if err := h.Handle(ctx, c); err != nil {
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "handler_error")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	cancel  context.CancelFunc

	logger logger.Logger
}

// NewPool creates a worker pool. workerCount < 1 uses one worker per CPU.
func NewPool(workerCount int, queue Queue, handlers ...Handler) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(queue, handlers, WithName("worker-"+strconv.Itoa(i)))
	}
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerCount(len(p.workers))
}

// Shutdown closes the queue and lets workers drain it. Workers still busy
// when ctx expires are cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			timedOut = true
			break
		}
	}
	if p.cancel != nil {
		p.cancel()
	}
	metrics.UpdateWorkerCount(0)
	if timedOut {
		return fmt.Errorf("worker pool: %w", shutdownCtx.Err())
	}
	return nil
}
