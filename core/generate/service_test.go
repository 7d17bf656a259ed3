package generate_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/qrgen/core/artifact"
	"github.com/dmitrymomot/qrgen/core/generate"
	"github.com/dmitrymomot/qrgen/core/qr"
)

func TestService_Generate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("defaults produce a cached PNG artifact", func(t *testing.T) {
		t.Parallel()

		cache := artifact.NewCache()
		svc := generate.New(cache)
		defer svc.Close()

		a, err := svc.Generate(ctx, generate.Params{Data: "https://example.com", Border: 4})
		require.NoError(t, err)

		assert.NotEmpty(t, a.ID)
		assert.Equal(t, "https://example.com", a.Data)
		assert.Equal(t, qr.FormatPNG, a.Format)
		assert.Equal(t, qr.LevelM, a.Level)
		assert.Equal(t, 10, a.Size)
		assert.NotEmpty(t, a.Bytes)
		assert.False(t, a.CreatedAt.IsZero())

		cached, err := cache.Get(a.ID)
		require.NoError(t, err)
		assert.Same(t, a, cached)
	})

	t.Run("fixed clock and id generator", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		svc := generate.New(artifact.NewCache(),
			generate.WithClock(func() time.Time { return now }),
			generate.WithIDGenerator(func() string { return "fixed-id" }),
		)
		defer svc.Close()

		a, err := svc.Generate(ctx, generate.Params{Data: "x"})
		require.NoError(t, err)
		assert.Equal(t, "fixed-id", a.ID)
		assert.Equal(t, now, a.CreatedAt)
	})

	t.Run("encode failure propagates and caches nothing", func(t *testing.T) {
		t.Parallel()

		cache := artifact.NewCache()
		svc := generate.New(cache)
		defer svc.Close()

		_, err := svc.Generate(ctx, generate.Params{Data: ""})
		assert.ErrorIs(t, err, qr.ErrEmptyContent)
		assert.Zero(t, cache.Len())
	})

	t.Run("render failure propagates", func(t *testing.T) {
		t.Parallel()

		svc := generate.New(artifact.NewCache())
		defer svc.Close()

		_, err := svc.Generate(ctx, generate.Params{Data: "x", FillColor: "no-such-color"})
		assert.ErrorIs(t, err, qr.ErrInvalidColor)
	})

	t.Run("preview is the base64 of the rendered bytes", func(t *testing.T) {
		t.Parallel()

		svc := generate.New(artifact.NewCache())
		defer svc.Close()

		a, err := svc.Generate(ctx, generate.Params{Data: "preview"})
		require.NoError(t, err)
		assert.Equal(t, base64.StdEncoding.EncodeToString(a.Bytes), svc.Preview(a))
	})

	t.Run("concurrent generations all land in the cache", func(t *testing.T) {
		t.Parallel()

		cache := artifact.NewCache()
		svc := generate.New(cache, generate.WithWorkers(4))
		defer svc.Close()

		const n = 50
		var wg sync.WaitGroup
		wg.Add(n)
		for i := range n {
			go func(i int) {
				defer wg.Done()
				if _, err := svc.Generate(ctx, generate.Params{Data: fmt.Sprintf("item-%d", i)}); err != nil {
					t.Errorf("generate %d: %v", i, err)
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, n, cache.Len())
	})
}

func TestService_GenerateBatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("preserves input order", func(t *testing.T) {
		t.Parallel()

		cache := artifact.NewCache()
		svc := generate.New(cache)
		defer svc.Close()

		items := []string{"a", "b", "c"}
		results, err := svc.GenerateBatch(ctx, items, generate.Params{Format: qr.FormatPNG})
		require.NoError(t, err)
		require.Len(t, results, 3)

		for i, a := range results {
			assert.Equal(t, items[i], a.Data)

			cached, err := cache.Get(a.ID)
			require.NoError(t, err)
			assert.Same(t, a, cached)
		}
	})

	t.Run("first failure aborts the batch", func(t *testing.T) {
		t.Parallel()

		svc := generate.New(artifact.NewCache())
		defer svc.Close()

		_, err := svc.GenerateBatch(ctx, []string{"ok", "", "never"}, generate.Params{})
		assert.ErrorIs(t, err, qr.ErrEmptyContent)
	})

	t.Run("empty batch yields empty result", func(t *testing.T) {
		t.Parallel()

		svc := generate.New(artifact.NewCache())
		defer svc.Close()

		results, err := svc.GenerateBatch(ctx, nil, generate.Params{})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestService_Healthcheck(t *testing.T) {
	t.Parallel()

	cache := artifact.NewCache()
	svc := generate.New(cache)
	defer svc.Close()

	require.NoError(t, svc.Healthcheck(context.Background()))

	// The probe artifact must not linger in the cache.
	assert.Zero(t, cache.Len())
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	svc := generate.NewFromConfig(generate.Config{RenderWorkers: 2}, artifact.NewCache())
	defer svc.Close()

	a, err := svc.Generate(context.Background(), generate.Params{Data: "cfg"})
	require.NoError(t, err)
	assert.NotEmpty(t, a.Bytes)
}
