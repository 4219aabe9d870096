package events

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a read-through entity cache evicted by invalidation events.
// Every eviction advances a generation so a read that raced an invalidation
// cannot repopulate the cache with the value it loaded.
type Cache[T any] struct {
	entity Entity
	cache  *gocache.Cache

	mu         sync.Mutex
	generation uint64
}

// NewCache creates a cache for entity records that expire after ttl.
func NewCache[T any](entity Entity, ttl, cleanupInterval time.Duration) *Cache[T] {
	return &Cache[T]{
		entity: entity,
		cache:  gocache.New(ttl, cleanupInterval),
	}
}

// Get returns the cached record for id.
func (c *Cache[T]) Get(id string) (T, bool) {
	if v, ok := c.cache.Get(id); ok {
		return v.(T), true
	}
	var zero T
	return zero, false
}

// Generation returns a token to pass to Set after loading a record.
func (c *Cache[T]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Set stores v for id unless an invalidation arrived after gen was taken.
func (c *Cache[T]) Set(id string, v T, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return
	}
	c.cache.SetDefault(id, v)
}

// Invalidate evicts the record named by e when it belongs to this cache's entity.
func (c *Cache[T]) Invalidate(_ context.Context, e Event) {
	if e.Entity != c.entity {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.cache.Delete(e.ID)
}

// Len returns the number of cached records, including expired ones not yet cleaned up.
func (c *Cache[T]) Len() int {
	return c.cache.ItemCount()
}
