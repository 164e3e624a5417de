package layoutcache

import (
	"sync"
	"sync/atomic"
)

// Default configuration constants.
const (
	// shardCount is the number of shards for reduced lock contention.
	// Must be a power of 2 for fast modulo via bitwise AND.
	shardCount = 16

	// DefaultCapacity is the default maximum entries per shard.
	// Total default capacity: 16 shards * 256 = 4096 layouts.
	DefaultCapacity = 256

	shardMask = shardCount - 1
)

// Cache is a thread-safe, sharded LRU cache from layout keys to layouts.
// V is whatever the caller's layout engine produces for a paragraph
// (shaped runs, line boxes); the cache stores it as-is and callers must
// not mutate cached values.
//
// Cache is safe for concurrent use.
type Cache[V any] struct {
	shards   [shardCount]*shard[V]
	capacity int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// shard is one lock domain of the cache.
type shard[V any] struct {
	mu      sync.RWMutex
	entries map[Key]*entry[V]
	lru     lruList
}

// entry holds a cached layout with its LRU node.
type entry[V any] struct {
	value V
	node  *lruNode
}

// New creates a cache with the given per-shard capacity.
// If capacity <= 0, DefaultCapacity is used.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache[V]{capacity: capacity}
	for i := range c.shards {
		c.shards[i] = &shard[V]{entries: make(map[Key]*entry[V])}
	}
	return c
}

func (c *Cache[V]) shardFor(key *Key) *shard[V] {
	return c.shards[key.hash()&shardMask]
}

// Get retrieves a cached layout. On a hit the entry moves to the front of
// its shard's LRU list.
func (c *Cache[V]) Get(key Key) (V, bool) {
	s := c.shardFor(&key)

	// Fast path: read lock to check existence.
	s.mu.RLock()
	_, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	// Slow path: write lock for the LRU update. Re-check, the entry may
	// have been evicted between the locks.
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	s.lru.MoveToFront(e.node)
	value := e.value
	s.mu.Unlock()

	c.hits.Add(1)
	return value, true
}

// Set stores a layout, evicting the shard's oldest entries past capacity.
func (c *Cache[V]) Set(key Key, value V) {
	s := c.shardFor(&key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[key]; ok {
		existing.value = value
		s.lru.MoveToFront(existing.node)
		return
	}

	for s.lru.Len() >= c.capacity {
		oldest, ok := s.lru.RemoveOldest()
		if !ok {
			break
		}
		delete(s.entries, oldest)
		c.evictions.Add(1)
	}

	node := s.lru.PushFront(key)
	s.entries[key] = &entry[V]{value: value, node: node}
}

// GetOrCreate returns the cached layout or computes it with create.
// The create function runs under the shard lock so concurrent requests for
// the same paragraph lay it out once; keep it to pure layout work.
func (c *Cache[V]) GetOrCreate(key Key, create func() V) V {
	s := c.shardFor(&key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.lru.MoveToFront(e.node)
		c.hits.Add(1)
		return e.value
	}

	c.misses.Add(1)
	value := create()

	for s.lru.Len() >= c.capacity {
		oldest, ok := s.lru.RemoveOldest()
		if !ok {
			break
		}
		delete(s.entries, oldest)
		c.evictions.Add(1)
	}

	node := s.lru.PushFront(key)
	s.entries[key] = &entry[V]{value: value, node: node}
	return value
}

// Delete removes an entry, reporting whether it existed.
func (c *Cache[V]) Delete(key Key) bool {
	s := c.shardFor(&key)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.lru.Remove(e.node)
	delete(s.entries, key)
	return true
}

// Clear removes all entries from the cache.
func (c *Cache[V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[Key]*entry[V])
		s.lru.Clear()
		s.mu.Unlock()
	}
}

// Len returns the total number of entries across all shards.
func (c *Cache[V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}

// Capacity returns the per-shard capacity.
func (c *Cache[V]) Capacity() int { return c.capacity }

// TotalCapacity returns the capacity summed over all shards.
func (c *Cache[V]) TotalCapacity() int { return c.capacity * shardCount }

// Stats contains cache statistics for monitoring.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the per-shard capacity.
	Capacity int
	// TotalCapacity is the total capacity across all shards.
	TotalCapacity int
	// Hits is the number of cache hits.
	Hits uint64
	// Misses is the number of cache misses.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0.0 to 1.0.
	HitRate float64
	// Evictions is the number of entries evicted.
	Evictions uint64
}

// Stats returns current cache statistics.
func (c *Cache[V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return Stats{
		Len:           c.Len(),
		Capacity:      c.capacity,
		TotalCapacity: c.TotalCapacity(),
		Hits:          hits,
		Misses:        misses,
		HitRate:       hitRate,
		Evictions:     c.evictions.Load(),
	}
}

// ResetStats resets all statistics counters to zero.
func (c *Cache[V]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}
