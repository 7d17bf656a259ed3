package background

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrExecutorStopped is returned by Enqueue after the executor shut down.
	ErrExecutorStopped = errors.New("background: executor stopped")
	// ErrQueueFull is returned by Enqueue when the job queue is at capacity.
	ErrQueueFull = errors.New("background: queue full")
)

// Config holds executor settings loaded from environment variables.
type Config struct {
	Workers         int           `env:"BACKGROUND_WORKERS" envDefault:"2"`
	QueueSize       int           `env:"BACKGROUND_QUEUE_SIZE" envDefault:"64"`
	ShutdownTimeout time.Duration `env:"BACKGROUND_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Job is a unit of deferred work. The context is cancelled only when the
// shutdown drain timeout expires, so jobs started before shutdown get a
// chance to finish.
type Job func(ctx context.Context) error

type job struct {
	name string
	fn   Job
}

// Executor runs enqueued jobs on a fixed pool of workers.
type Executor struct {
	jobs            chan job
	workers         int
	shutdownTimeout time.Duration
	logger          *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// qmu serializes Enqueue sends against the channel close in Stop.
	qmu     sync.RWMutex
	stopped bool

	jobsDone    atomic.Int64
	jobsFailed  atomic.Int64
	jobsDropped atomic.Int64
}

// Stats provides observability counters for monitoring and debugging.
type Stats struct {
	Done    int64 // Jobs that completed without error
	Failed  int64 // Jobs that returned an error or panicked
	Dropped int64 // Jobs rejected because the queue was full
	Queued  int   // Jobs currently waiting for a worker
}

// Option configures an Executor.
type Option func(*Executor)

// WithWorkers sets the number of concurrent workers. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithQueueSize sets the job queue capacity. Values below 1 are ignored.
func WithQueueSize(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.jobs = make(chan job, n)
		}
	}
}

// WithShutdownTimeout sets how long Stop waits for in-flight jobs.
func WithShutdownTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.shutdownTimeout = d
		}
	}
}

// WithLogger sets the logger for job lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an executor with the given options.
func New(opts ...Option) (*Executor, error) {
	e := &Executor{
		jobs:            make(chan job, 64),
		workers:         2,
		shutdownTimeout: 30 * time.Second,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewFromConfig creates an executor from configuration. Additional options
// override config values.
func NewFromConfig(cfg Config, opts ...Option) (*Executor, error) {
	allOpts := append([]Option{
		WithWorkers(cfg.Workers),
		WithQueueSize(cfg.QueueSize),
		WithShutdownTimeout(cfg.ShutdownTimeout),
	}, opts...)

	return New(allOpts...)
}

// Enqueue submits a job without blocking. It returns ErrQueueFull when all
// queue slots are taken and ErrExecutorStopped after shutdown began; both
// cases are also logged so callers can treat the error as advisory.
func (e *Executor) Enqueue(name string, fn Job) error {
	if fn == nil {
		return nil
	}

	e.qmu.RLock()
	defer e.qmu.RUnlock()

	if e.stopped {
		e.logger.Warn("job rejected, executor stopped", slog.String("job", name))
		return ErrExecutorStopped
	}

	select {
	case e.jobs <- job{name: name, fn: fn}:
		return nil
	default:
		e.jobsDropped.Add(1)
		e.logger.Warn("job dropped, queue full",
			slog.String("job", name),
			slog.Int("queue_size", cap(e.jobs)))
		return ErrQueueFull
	}
}

// start launches the workers. Registration is synchronous: once start
// returns, every worker is counted in wg, so a subsequent Stop waits for
// the queue to drain rather than returning on an empty WaitGroup.
func (e *Executor) start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		return fmt.Errorf("background: executor already started")
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.cancel = cancel

	e.logger.InfoContext(ctx, "background executor started",
		slog.Int("workers", e.workers),
		slog.Int("queue_size", cap(e.jobs)))

	for i := 0; i < e.workers; i++ {
		e.wg.Add(1)
		go e.worker(runCtx)
	}
	return nil
}

// Start launches the workers and blocks until the context is cancelled.
// Use Run for the errgroup pattern.
func (e *Executor) Start(ctx context.Context) error {
	if err := e.start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return ctx.Err()
}

// Stop refuses new jobs and waits for queued and in-flight work to drain,
// bounded by the shutdown timeout. After the timeout the job context is
// cancelled and remaining jobs are abandoned.
func (e *Executor) Stop() error {
	e.qmu.Lock()
	if e.stopped {
		e.qmu.Unlock()
		return nil
	}
	e.stopped = true
	close(e.jobs)
	e.qmu.Unlock()

	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(e.shutdownTimeout)
	defer timer.Stop()

	select {
	case <-done:
		if cancel != nil {
			cancel()
		}
		e.logger.Info("background executor stopped cleanly")
		return nil
	case <-timer.C:
		if cancel != nil {
			cancel()
		}
		<-done
		e.logger.Warn("background executor shutdown timeout exceeded, jobs abandoned",
			slog.Duration("timeout", e.shutdownTimeout))
		return fmt.Errorf("background: shutdown timeout exceeded after %s", e.shutdownTimeout)
	}
}

// Run provides errgroup compatibility: the returned function starts the
// executor and drains it when the context is cancelled. Workers are running
// before cancellation is observed, so jobs enqueued against an
// already-cancelled context still drain through Stop.
func (e *Executor) Run(ctx context.Context) func() error {
	return func() error {
		if err := e.start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return e.Stop()
	}
}

// Stats returns a snapshot of the executor counters.
func (e *Executor) Stats() Stats {
	return Stats{
		Done:    e.jobsDone.Load(),
		Failed:  e.jobsFailed.Load(),
		Dropped: e.jobsDropped.Load(),
		Queued:  len(e.jobs),
	}
}

func (e *Executor) worker(ctx context.Context) {
	defer e.wg.Done()

	for j := range e.jobs {
		e.process(ctx, j)
	}
}

func (e *Executor) process(ctx context.Context, j job) {
	start := time.Now()

	// Panic recovery keeps one bad job from killing the worker.
	defer func() {
		if r := recover(); r != nil {
			e.jobsFailed.Add(1)
			e.logger.Error("background job panicked",
				slog.String("job", j.name),
				slog.Any("panic", r))
		}
	}()

	if err := j.fn(ctx); err != nil {
		e.jobsFailed.Add(1)
		e.logger.Error("background job failed",
			slog.String("job", j.name),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return
	}

	e.jobsDone.Add(1)
	e.logger.Debug("background job completed",
		slog.String("job", j.name),
		slog.Duration("duration", time.Since(start)))
}
