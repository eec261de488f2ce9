// Package thumbnail implements the asynchronous thumbnail pipeline: a bounded
// LRU of decoded images, a registry of which URL each display slot is waiting
// for, and a single background worker that resolves requests and posts results
// back to the caller's context.
package thumbnail

import (
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of decoded thumbnails kept in memory.
const DefaultCacheSize = 50

// LRU is a thread-safe least-recently-used cache with a fixed capacity.
//
// Get and Set both mark an entry as recently used. Set evicts the least
// recently used entry under the same lock as the insert, so Len never
// exceeds the capacity.
type LRU[K comparable, V any] struct {
	capacity int
	cache    *lru.Cache[K, V]
}

// NewLRU creates a new LRU cache with the given capacity.
// A zero or negative capacity is treated as 1.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	// lru.New only fails for a non-positive size
	cache, _ := lru.New[K, V](capacity)
	return &LRU[K, V]{capacity: capacity, cache: cache}
}

// Get retrieves a value by key and marks it as recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	return c.cache.Get(key)
}

// Peek retrieves a value without touching its recency.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	return c.cache.Peek(key)
}

// Set adds or updates a value and marks it as recently used.
// It reports whether an older entry was evicted to make room.
func (c *LRU[K, V]) Set(key K, value V) (evicted bool) {
	return c.cache.Add(key, value)
}

// Remove deletes a key. Missing keys are a no-op.
func (c *LRU[K, V]) Remove(key K) {
	c.cache.Remove(key)
}

// Len returns the number of items currently in the cache.
func (c *LRU[K, V]) Len() int {
	return c.cache.Len()
}

// Cap returns the configured capacity.
func (c *LRU[K, V]) Cap() int {
	return c.capacity
}

// Keys returns the cached keys, most recently used first.
func (c *LRU[K, V]) Keys() []K {
	keys := c.cache.Keys() // oldest first
	slices.Reverse(keys)
	return keys
}

// Clear removes all items from the cache.
func (c *LRU[K, V]) Clear() {
	c.cache.Purge()
}
