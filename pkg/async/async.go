// Package async provides a small future primitive for handing CPU-bound
// work to another goroutine while the caller waits only on its own result.
package async

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned by AwaitWithTimeout when the deadline elapses
// before the computation completes.
var ErrTimeout = errors.New("async: await timed out")

// Future is the pending result of an asynchronous computation.
type Future[T any] struct {
	value T
	err   error
	done  chan struct{}
}

// NewFuture returns an unresolved future. Complete must be called exactly
// once by the producing side.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Complete resolves the future. A second call panics on the closed channel,
// matching the single-producer contract.
func (f *Future[T]) Complete(value T, err error) {
	f.value = value
	f.err = err
	close(f.done)
}

// Await blocks until the future resolves or the context is canceled.
// On cancellation the computation itself is not interrupted.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AwaitWithTimeout blocks until resolution or the timeout, whichever first.
func (f *Future[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-time.After(timeout):
		var zero T
		return zero, ErrTimeout
	}
}

// IsComplete reports without blocking whether the future has resolved.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Run executes fn on a new goroutine and returns its future.
func Run[T any](fn func() (T, error)) *Future[T] {
	f := NewFuture[T]()
	go func() {
		f.Complete(fn())
	}()
	return f
}
