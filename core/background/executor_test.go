package background_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/qrgen/core/background"
)

func startExecutor(t *testing.T, exec *background.Executor) context.CancelFunc {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = exec.Run(ctx)()
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("executor did not stop")
		}
	})
	return cancel
}

func TestExecutor_RunsJobs(t *testing.T) {
	t.Parallel()

	exec, err := background.New(background.WithWorkers(2))
	require.NoError(t, err)
	startExecutor(t, exec)

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		require.NoError(t, exec.Enqueue("count", func(ctx context.Context) error {
			defer wg.Done()
			count.Add(1)
			return nil
		}))
	}
	wg.Wait()

	assert.Equal(t, int32(10), count.Load())
	assert.Eventually(t, func() bool {
		return exec.Stats().Done == 10
	}, time.Second, 10*time.Millisecond)
}

func TestExecutor_QueueFull(t *testing.T) {
	t.Parallel()

	exec, err := background.New(
		background.WithWorkers(1),
		background.WithQueueSize(1),
	)
	require.NoError(t, err)
	startExecutor(t, exec)

	block := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, exec.Enqueue("blocker", func(ctx context.Context) error {
		close(block)
		<-release
		return nil
	}))
	<-block

	// Worker is busy; the single queue slot fills, then the next job drops.
	require.NoError(t, exec.Enqueue("queued", func(ctx context.Context) error { return nil }))
	err = exec.Enqueue("dropped", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, background.ErrQueueFull)
	assert.Equal(t, int64(1), exec.Stats().Dropped)

	close(release)
}

func TestExecutor_StopDrainsQueuedJobs(t *testing.T) {
	t.Parallel()

	exec, err := background.New(
		background.WithWorkers(1),
		background.WithQueueSize(16),
		background.WithShutdownTimeout(5*time.Second),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- exec.Run(ctx)() }()

	var count atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, exec.Enqueue("slow", func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			count.Add(1)
			return nil
		}))
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("executor did not stop")
	}

	assert.Equal(t, int32(5), count.Load())
}

func TestExecutor_DrainsWhenCancelledBeforeStart(t *testing.T) {
	t.Parallel()

	exec, err := background.New(
		background.WithWorkers(1),
		background.WithQueueSize(16),
		background.WithShutdownTimeout(5*time.Second),
	)
	require.NoError(t, err)

	var count atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, exec.Enqueue("queued-early", func(ctx context.Context) error {
			count.Add(1)
			return nil
		}))
	}

	// Cancel before Run ever executes: workers must still come up and
	// drain the queue before Stop returns.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, exec.Run(ctx)())

	assert.Equal(t, int32(5), count.Load())
	assert.Equal(t, int64(5), exec.Stats().Done)
}

func TestExecutor_EnqueueAfterStop(t *testing.T) {
	t.Parallel()

	exec, err := background.New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- exec.Run(ctx)() }()

	// Let the executor start before cancelling.
	require.NoError(t, exec.Enqueue("noop", func(ctx context.Context) error { return nil }))
	cancel()
	require.NoError(t, <-done)

	err = exec.Enqueue("late", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, background.ErrExecutorStopped)
}

func TestExecutor_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	exec, err := background.New(background.WithWorkers(1))
	require.NoError(t, err)
	startExecutor(t, exec)

	require.NoError(t, exec.Enqueue("panics", func(ctx context.Context) error {
		panic("boom")
	}))

	done := make(chan struct{})
	require.NoError(t, exec.Enqueue("after", func(ctx context.Context) error {
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive panic")
	}
	assert.Equal(t, int64(1), exec.Stats().Failed)
}

func TestExecutor_FailedJobCounted(t *testing.T) {
	t.Parallel()

	exec, err := background.New(background.WithWorkers(1))
	require.NoError(t, err)
	startExecutor(t, exec)

	require.NoError(t, exec.Enqueue("fails", func(ctx context.Context) error {
		return errors.New("upload failed")
	}))

	assert.Eventually(t, func() bool {
		return exec.Stats().Failed == 1
	}, time.Second, 10*time.Millisecond)
}

func TestExecutor_NewFromConfig(t *testing.T) {
	t.Parallel()

	exec, err := background.NewFromConfig(background.Config{
		Workers:         3,
		QueueSize:       8,
		ShutdownTimeout: time.Second,
	})
	require.NoError(t, err)
	require.NotNil(t, exec)
}

func TestExecutor_NilJobIgnored(t *testing.T) {
	t.Parallel()

	exec, err := background.New()
	require.NoError(t, err)
	assert.NoError(t, exec.Enqueue("nil", nil))
}
