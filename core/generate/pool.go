package generate

import (
	"context"
	"sync"

	"github.com/dmitrymomot/qrgen/pkg/async"
)

// DefaultRenderWorkers bounds concurrent encode+render work when no pool
// size is configured.
const DefaultRenderWorkers = 4

// Pool is a bounded worker pool for CPU-bound render jobs. Submitters wait
// only for their own job; the fixed worker count keeps rendering from
// starving request intake.
type Pool struct {
	jobs      chan renderJob
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type renderJob struct {
	run    func() ([]byte, error)
	future *async.Future[[]byte]
}

// NewPool starts a pool with the given number of workers.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = DefaultRenderWorkers
	}

	p := &Pool{jobs: make(chan renderJob)}
	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job.future.Complete(job.run())
	}
}

// Submit hands fn to a worker and blocks until it completes or ctx is
// canceled. Cancellation abandons the wait; a job already dispatched runs
// to completion.
func (p *Pool) Submit(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	future := async.NewFuture[[]byte]()

	select {
	case p.jobs <- renderJob{run: fn, future: future}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return future.Await(ctx)
}

// Close stops accepting jobs and waits for in-flight work to finish.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.jobs)
		p.wg.Wait()
	})
}
