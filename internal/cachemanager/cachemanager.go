// Package cachemanager wraps go-cache with a typed interface. The
// marketplace uses it as a read cache for glyph records, which are immutable
// once minted and therefore never need invalidation.
package cachemanager

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kalepail/smol-sc/internal/log"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// Cache is a typed in-memory cache for one use case.
type Cache[V any] struct {
	useCase string
	cache   *gocache.Cache
}

// New creates a cache with the default expiration and cleanup interval.
func New[V any](useCase string) *Cache[V] {
	return NewWithExpiration[V](useCase, DefaultExpiration, DefaultCleanupInterval)
}

// NewWithExpiration creates a cache with explicit expiration settings.
func NewWithExpiration[V any](useCase string, defaultExpiration, cleanupInterval time.Duration) *Cache[V] {
	return &Cache[V]{
		useCase: useCase,
		cache:   gocache.New(defaultExpiration, cleanupInterval),
	}
}

// Get retrieves an item from the cache by its key.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	value, found := c.cache.Get(key)
	if !found {
		return zero, false
	}

	v, ok := value.(V)
	if !ok {
		log.Error(log.CatDB, "wrong type assertion when getting cached value", "useCase", c.useCase, "key", key)
		return zero, false
	}

	log.Debug(log.CatDB, "cache hit", "useCase", c.useCase, "key", key)
	return v, true
}

// Set stores a value under key with the cache's default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.cache.Set(key, value, gocache.DefaultExpiration)
}

// Delete removes keys from the cache.
func (c *Cache[V]) Delete(keys ...string) {
	for _, key := range keys {
		c.cache.Delete(key)
	}
}

// Flush drops every cached entry.
func (c *Cache[V]) Flush() {
	c.cache.Flush()
}

// Len reports the number of cached entries.
func (c *Cache[V]) Len() int {
	return c.cache.ItemCount()
}
