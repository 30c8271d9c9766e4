// Package cache provides a bounded in-memory file content cache with
// oldest-inserted-first eviction.
//
// The cache is owned by the enumeration phase and shared read-only
// afterwards, so it does no locking of its own. Callers that need
// concurrent mutation must provide their own synchronization.
package cache

import (
	"os"
)

// DefaultCapacity is the default total content budget: 1 GiB.
const DefaultCapacity int64 = 1 << 30

// Cache is a bounded content cache keyed by file path. When inserting
// an entry would exceed the capacity, the oldest-inserted entries are
// evicted until the new entry fits. A single entry larger than the
// whole capacity resets the cache and is served uncached.
type Cache struct {
	capacity int64
	size     int64
	entries  map[string][]byte
	order    []string // insertion order, oldest first
}

// New creates a cache with the given capacity in bytes. A capacity of
// zero or less falls back to DefaultCapacity.
func New(capacity int64) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string][]byte),
	}
}

// Get returns the cached content for key, if present.
func (c *Cache) Get(key string) ([]byte, bool) {
	content, ok := c.entries[key]
	return content, ok
}

// Put inserts content under key, evicting the oldest entries as needed.
// Content larger than the whole capacity resets the cache and is not
// stored. Re-inserting an existing key replaces its content but keeps
// its original insertion position.
func (c *Cache) Put(key string, content []byte) {
	if int64(len(content)) > c.capacity {
		c.Reset()
		return
	}

	if old, ok := c.entries[key]; ok {
		c.size -= int64(len(old))
		c.entries[key] = content
		c.size += int64(len(content))
		c.evict()
		return
	}

	c.entries[key] = content
	c.order = append(c.order, key)
	c.size += int64(len(content))
	c.evict()
}

// evict removes oldest-inserted entries until size fits the capacity.
func (c *Cache) evict() {
	for c.size > c.capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		if content, ok := c.entries[oldest]; ok {
			c.size -= int64(len(content))
			delete(c.entries, oldest)
		}
	}
}

// Reset discards all cached entries.
func (c *Cache) Reset() {
	c.entries = make(map[string][]byte)
	c.order = nil
	c.size = 0
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Size returns the total byte size of all cached content.
func (c *Cache) Size() int64 {
	return c.size
}

// ReadFile returns the content of the file at path, serving it from the
// cache when possible and reading it from disk (and caching it) on a
// miss. The path itself is the cache key.
func (c *Cache) ReadFile(path string) ([]byte, error) {
	if content, ok := c.Get(path); ok {
		return content, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c.Put(path, content)
	return content, nil
}
