package artifact

import (
	"errors"
	"sync"
)

// ErrNotFound is returned when no artifact exists for the requested id.
var ErrNotFound = errors.New("artifact: not found")

// Stats is a point-in-time snapshot of cache contents. It is not
// transactionally consistent with concurrent inserts.
type Stats struct {
	Count        int   `json:"count"`
	TotalBytes   int64 `json:"total_bytes"`
	AverageBytes int64 `json:"average_bytes"`
}

// Cache is a process-lifetime mapping from artifact id to artifact.
// Safe for concurrent use. There is no TTL and no capacity bound; entries
// live until Remove or Clear.
type Cache struct {
	mu         sync.RWMutex
	items      map[string]*Artifact
	totalBytes int64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		items: make(map[string]*Artifact),
	}
}

// Put inserts the artifact, replacing any existing entry with the same id.
func (c *Cache) Put(a *Artifact) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.items[a.ID]; ok {
		c.totalBytes -= int64(prev.SizeBytes())
	}
	c.items[a.ID] = a
	c.totalBytes += int64(a.SizeBytes())
}

// Get returns the artifact for id, or ErrNotFound.
func (c *Cache) Get(id string) (*Artifact, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	a, ok := c.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

// Remove deletes the entry for id if present. Used for ephemeral probe
// artifacts that must not accumulate.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if a, ok := c.items[id]; ok {
		c.totalBytes -= int64(a.SizeBytes())
		delete(c.items, id)
	}
}

// Len returns the number of cached artifacts.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns a snapshot of cache size counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{
		Count:      len(c.items),
		TotalBytes: c.totalBytes,
	}
	if s.Count > 0 {
		s.AverageBytes = s.TotalBytes / int64(s.Count)
	}
	return s
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*Artifact)
	c.totalBytes = 0
}
