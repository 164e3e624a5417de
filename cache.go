package textatlas

// DefaultCacheCapacity is the default entry limit for the rendered-glyph
// cache. 4096 glyphs covers several screens of multilingual text; typical
// UI frames touch a few hundred distinct fingerprints.
const DefaultCacheCapacity = 4096

// cacheEntry is a cache slot threaded into the LRU list. The head is the
// most recently used entry, the tail the least.
type cacheEntry struct {
	fp    Fingerprint
	glyph *RenderedGlyph // nil means known blank
	prev  *cacheEntry
	next  *cacheEntry
}

// Cache memoizes rasterized glyphs by fingerprint. A hit may carry a nil
// RenderedGlyph: that is a known-blank entry (whitespace, failed or
// oversized rasterization) and is as much a hit as a visible glyph.
//
// The cache is bounded. When inserting over capacity, the least recently
// used entry is evicted and the eviction handler, if set, receives it so
// the owner can release the glyph's atlas rectangle.
//
// Lookup and Insert are deliberately separate so rasterization and texture
// uploads happen between them, never inside a cache mutation. GetOrRender
// composes the two for the common path.
//
// Cache is NOT safe for concurrent use.
type Cache struct {
	capacity int
	entries  map[Fingerprint]*cacheEntry
	head     *cacheEntry
	tail     *cacheEntry
	onEvict  func(Fingerprint, *RenderedGlyph)

	hits      uint64
	misses    uint64
	evictions uint64
}

// NewCache creates a cache holding at most capacity fingerprints.
// If capacity <= 0, DefaultCacheCapacity is used.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[Fingerprint]*cacheEntry),
	}
}

// SetEvictionHandler installs fn to be called once for every evicted or
// deleted entry with a non-nil glyph. The handler runs with the cache in a
// consistent state but must not call back into the cache.
func (c *Cache) SetEvictionHandler(fn func(Fingerprint, *RenderedGlyph)) {
	c.onEvict = fn
}

// Lookup returns the cached rendering for fp. A (nil, true) result is a
// known-blank glyph; (nil, false) is a miss. Hits refresh the entry's LRU
// position.
func (c *Cache) Lookup(fp Fingerprint) (*RenderedGlyph, bool) {
	e, ok := c.entries[fp]
	if !ok {
		c.misses++
		return nil, false
	}
	c.moveToFront(e)
	c.hits++
	return e.glyph, true
}

// Insert stores the rendering for fp, evicting the least recently used
// entry if the cache is full. A nil glyph records a known blank. Inserting
// over an existing fingerprint replaces its value in place without
// invoking the eviction handler.
func (c *Cache) Insert(fp Fingerprint, glyph *RenderedGlyph) {
	if e, ok := c.entries[fp]; ok {
		e.glyph = glyph
		c.moveToFront(e)
		return
	}

	for len(c.entries) >= c.capacity {
		c.evictOldest()
	}

	e := &cacheEntry{fp: fp, glyph: glyph}
	c.pushFront(e)
	c.entries[fp] = e
}

// Reserve makes room for an upcoming insertion: if the cache is at
// capacity, the least recently used entry is evicted now, not at Insert
// time. Calling it before allocating atlas space lets the displaced
// rectangle be reused by the very placement that displaced it.
func (c *Cache) Reserve() {
	for len(c.entries) >= c.capacity {
		c.evictOldest()
	}
}

// GetOrRender returns the cached rendering for fp, calling render on a
// miss and memoizing its result. The render callback runs with no cache
// state held, so it is free to rasterize and upload textures.
//
// A render error is memoized as blank and returned: repeated requests for
// a failing glyph cost one rasterization attempt total, and the caller can
// log the first failure. A (nil, nil) render result is memoized as blank.
func (c *Cache) GetOrRender(fp Fingerprint, render func() (*RenderedGlyph, error)) (*RenderedGlyph, error) {
	if glyph, ok := c.Lookup(fp); ok {
		return glyph, nil
	}
	glyph, err := render()
	if err != nil {
		c.Insert(fp, nil)
		return nil, err
	}
	c.Insert(fp, glyph)
	return glyph, nil
}

// Delete removes the entry for fp, reporting whether it existed. A removed
// non-blank entry is passed to the eviction handler so its atlas rectangle
// can be reclaimed.
func (c *Cache) Delete(fp Fingerprint) bool {
	e, ok := c.entries[fp]
	if !ok {
		return false
	}
	c.unlink(e)
	delete(c.entries, fp)
	if e.glyph != nil && c.onEvict != nil {
		c.onEvict(e.fp, e.glyph)
	}
	return true
}

// Clear drops every entry without invoking the eviction handler. Callers
// clearing the cache typically reset the texture pool alongside it, which
// reclaims all atlas space at once.
func (c *Cache) Clear() {
	c.entries = make(map[Fingerprint]*cacheEntry)
	c.head = nil
	c.tail = nil
}

// Len returns the number of cached fingerprints, blanks included.
func (c *Cache) Len() int { return len(c.entries) }

// Capacity returns the entry limit.
func (c *Cache) Capacity() int { return c.capacity }

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the entry limit.
	Capacity int
	// Hits is the number of lookups that found an entry.
	Hits uint64
	// Misses is the number of lookups that found nothing.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0.0 to 1.0.
	HitRate float64
	// Evictions is the number of entries displaced by capacity pressure.
	Evictions uint64
}

// Stats returns current cache statistics.
func (c *Cache) Stats() CacheStats {
	var hitRate float64
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return CacheStats{
		Len:       len(c.entries),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		HitRate:   hitRate,
		Evictions: c.evictions,
	}
}

// ResetStats resets all statistics counters to zero.
func (c *Cache) ResetStats() {
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}

// evictOldest removes the tail entry and notifies the eviction handler for
// non-blank glyphs.
func (c *Cache) evictOldest() {
	e := c.tail
	if e == nil {
		return
	}
	c.unlink(e)
	delete(c.entries, e.fp)
	c.evictions++
	if e.glyph != nil && c.onEvict != nil {
		c.onEvict(e.fp, e.glyph)
	}
}

func (c *Cache) pushFront(e *cacheEntry) {
	if c.head == nil {
		c.head = e
		c.tail = e
		return
	}
	e.next = c.head
	c.head.prev = e
	c.head = e
}

func (c *Cache) moveToFront(e *cacheEntry) {
	if e == c.head {
		return
	}
	c.unlink(e)
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *Cache) unlink(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}
