package artifact_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/qrgen/core/artifact"
	"github.com/dmitrymomot/qrgen/core/qr"
)

func newArtifact(id string, size int) *artifact.Artifact {
	return &artifact.Artifact{
		ID:        id,
		Data:      "data-" + id,
		Format:    qr.FormatPNG,
		Level:     qr.LevelM,
		Size:      10,
		Border:    4,
		Bytes:     make([]byte, size),
		CreatedAt: time.Now().UTC(),
	}
}

func TestCache(t *testing.T) {
	t.Parallel()

	t.Run("put then get returns the same artifact", func(t *testing.T) {
		t.Parallel()

		cache := artifact.NewCache()
		a := newArtifact("one", 128)
		cache.Put(a)

		got, err := cache.Get("one")
		require.NoError(t, err)
		assert.Same(t, a, got)
	})

	t.Run("unknown id yields ErrNotFound", func(t *testing.T) {
		t.Parallel()

		cache := artifact.NewCache()
		_, err := cache.Get("missing")
		assert.ErrorIs(t, err, artifact.ErrNotFound)
	})

	t.Run("remove deletes the entry and its size", func(t *testing.T) {
		t.Parallel()

		cache := artifact.NewCache()
		cache.Put(newArtifact("a", 100))
		cache.Put(newArtifact("b", 50))

		cache.Remove("a")

		_, err := cache.Get("a")
		assert.ErrorIs(t, err, artifact.ErrNotFound)
		assert.Equal(t, 1, cache.Len())
		assert.Equal(t, int64(50), cache.Stats().TotalBytes)

		// Removing an absent id is a no-op.
		cache.Remove("a")
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("put overwrites colliding id without double counting", func(t *testing.T) {
		t.Parallel()

		cache := artifact.NewCache()
		cache.Put(newArtifact("same", 100))
		cache.Put(newArtifact("same", 40))

		stats := cache.Stats()
		assert.Equal(t, 1, stats.Count)
		assert.Equal(t, int64(40), stats.TotalBytes)
	})

	t.Run("stats reports count, total and average", func(t *testing.T) {
		t.Parallel()

		cache := artifact.NewCache()
		sizes := []int{100, 200, 300}
		for i, size := range sizes {
			cache.Put(newArtifact(fmt.Sprintf("id-%d", i), size))
		}

		stats := cache.Stats()
		assert.Equal(t, len(sizes), stats.Count)
		assert.Equal(t, int64(600), stats.TotalBytes)
		assert.Equal(t, int64(200), stats.AverageBytes)
	})

	t.Run("empty cache stats are zero", func(t *testing.T) {
		t.Parallel()

		stats := artifact.NewCache().Stats()
		assert.Zero(t, stats.Count)
		assert.Zero(t, stats.TotalBytes)
		assert.Zero(t, stats.AverageBytes)
	})

	t.Run("clear empties the cache", func(t *testing.T) {
		t.Parallel()

		cache := artifact.NewCache()
		cache.Put(newArtifact("x", 10))
		cache.Clear()

		assert.Zero(t, cache.Len())
		assert.Zero(t, cache.Stats().TotalBytes)
	})
}

func TestCache_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	cache := artifact.NewCache()

	const n = 1000
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("id-%d", i)
			cache.Put(newArtifact(id, 10))
			if _, err := cache.Get(id); err != nil {
				t.Errorf("get %s: %v", id, err)
			}
			cache.Stats()
		}(i)
	}
	wg.Wait()

	stats := cache.Stats()
	assert.Equal(t, n, stats.Count)
	assert.Equal(t, int64(n*10), stats.TotalBytes)
}
