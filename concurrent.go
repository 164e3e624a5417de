package textatlas

import "sync"

// ConcurrentBatcher wraps a Batcher with a single mutex for callers that
// build frames from multiple goroutines. The whole glyph path (cache,
// pool, texture uploads) runs under the one lock, so cross-goroutine
// draw order is whatever the lock grants; quads within one DrawRun call
// stay contiguous and ordered.
//
// Rendering from one goroutine per frame is the fast path; reach for this
// wrapper only when the frame is assembled concurrently.
type ConcurrentBatcher struct {
	mu sync.Mutex
	b  *Batcher
}

// NewConcurrentBatcher creates a mutex-guarded batcher.
func NewConcurrentBatcher(store TextureStore, scaler Scaler, cfg Config) (*ConcurrentBatcher, error) {
	b, err := NewBatcher(store, scaler, cfg)
	if err != nil {
		return nil, err
	}
	return &ConcurrentBatcher{b: b}, nil
}

// DrawRun appends quads for the run under the lock.
func (c *ConcurrentBatcher) DrawRun(run GlyphRun) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.b.DrawRun(run)
}

// Flush returns the frame's draw commands and starts a new frame.
func (c *ConcurrentBatcher) Flush() []DrawCommand {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.b.Flush()
}

// Clear drops the cache and all atlas placements.
func (c *ConcurrentBatcher) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.b.Clear()
}

// Stats returns a snapshot of cache and pool state.
func (c *ConcurrentBatcher) Stats() BatcherStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.b.Stats()
}
