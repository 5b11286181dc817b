// Package rowcache provides a per-resource, time-boxed snapshot of all
// decoded rows. Reads tolerate staleness up to the TTL; writes are expected
// to Invalidate before resolving rows and again after the store mutation
// succeeds, so a completed write is never shadowed by a stale snapshot.
package rowcache

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is the maximum staleness window served to readers.
const DefaultTTL = 5 * time.Minute

// Loader fetches and decodes all rows from the store, header excluded.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Cache holds one snapshot per resource type.
type Cache[T any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	load       Loader[T]
	snapshot   []T
	capturedAt time.Time
}

// New builds a cache around the given loader. A non-positive ttl falls back
// to DefaultTTL.
func New[T any](ttl time.Duration, load Loader[T]) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[T]{ttl: ttl, load: load}
}

// Read returns the cached snapshot when fresh, otherwise loads through the
// store and captures a new one. The lock is held across the load so a miss
// triggers exactly one store read no matter how many readers race.
// Callers must not mutate the returned slice.
func (c *Cache[T]) Read(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil && time.Since(c.capturedAt) < c.ttl {
		return c.snapshot, nil
	}

	loaded, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		loaded = []T{}
	}

	c.snapshot = loaded
	c.capturedAt = time.Now()
	return c.snapshot, nil
}

// Invalidate clears the snapshot. Idempotent and cheap.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.capturedAt = time.Time{}
	c.mu.Unlock()
}
