package textatlas

import (
	"errors"
	"math"
)

// commandKey identifies a draw command bucket within a frame.
type commandKey struct {
	texture int
	color   bool
}

// Batcher converts shaped glyph runs into textured quads, batched into one
// draw command per (texture, format) pair. It owns the rendered-glyph
// cache and the texture pool and wires cache eviction to atlas reclamation.
//
// Per frame: call DrawRun for every run, then Flush to take the
// accumulated commands. Individual glyph failures (unrasterizable,
// oversized, pool exhausted) are logged and skipped; they never abort the
// run or the frame.
//
// Batcher is NOT safe for concurrent use; see ConcurrentBatcher.
type Batcher struct {
	cache  *Cache
	pool   *TexturePool
	scaler Scaler

	invSize  float64
	commands []DrawCommand
	index    map[commandKey]int
}

// NewBatcher creates a batcher drawing through the given store and
// rasterizing through the given scaler.
func NewBatcher(store TextureStore, scaler Scaler, cfg Config) (*Batcher, error) {
	if scaler == nil {
		return nil, ErrNilScaler
	}
	pool, err := NewTexturePool(store, cfg)
	if err != nil {
		return nil, err
	}
	cache := NewCache(cfg.CacheCapacity)
	cache.SetEvictionHandler(func(_ Fingerprint, g *RenderedGlyph) {
		pool.Release(g)
	})
	return &Batcher{
		cache:   cache,
		pool:    pool,
		scaler:  scaler,
		invSize: 1.0 / float64(cfg.TextureSize),
		index:   make(map[commandKey]int),
	}, nil
}

// DrawRun appends quads for every visible glyph of the run to the current
// frame. The pen starts at the run origin and consumes each glyph's
// advance whether or not the glyph produced pixels.
func (b *Batcher) DrawRun(run GlyphRun) {
	advance := 0.0
	for _, g := range run.Glyphs {
		penX := run.X + advance + g.XOffset
		penY := run.Y - g.YOffset
		advance += g.Advance

		offset := FractOffset(penX, penY)
		fp := MakeFingerprint(run.Font, g.ID, run.Size, offset)

		glyph, ok := b.cache.Lookup(fp)
		if !ok {
			glyph = b.render(fp, run.Font, g.ID, run.Size, offset)
		}
		if glyph == nil {
			continue
		}
		b.appendQuad(glyph, penX, penY)
	}
}

// render rasterizes and places one glyph, memoizing the outcome. It runs
// between cache Lookup and Insert, never inside them, so scaler and GPU
// work stays out of cache mutation.
//
// Blank, failed, and oversized glyphs are memoized as blank: they cost one
// attempt total. Pool exhaustion and upload failures are NOT memoized, so
// the glyph can land once eviction or recovery makes room.
func (b *Batcher) render(fp Fingerprint, font FontID, id GlyphID, size float64, offset SubpixelOffset) *RenderedGlyph {
	img, err := b.scaler.Rasterize(font, id, size, offset)
	if err != nil {
		Logger().Debug("glyph rasterization failed",
			"font", font, "glyph", id, "size", size, "error", err)
		b.cache.Insert(fp, nil)
		return nil
	}
	if img.Empty() {
		b.cache.Insert(fp, nil)
		return nil
	}

	// Evict before placing so a displaced glyph's atlas slot is already
	// free for this placement.
	b.cache.Reserve()
	placed, err := b.pool.Place(img)
	if err != nil {
		var oversized *OversizedGlyphError
		var full *PoolFullError
		switch {
		case errors.As(err, &oversized):
			Logger().Warn("oversized glyph skipped",
				"font", font, "glyph", id, "size", size,
				"w", oversized.Width, "h", oversized.Height, "max", oversized.Max)
			b.cache.Insert(fp, nil)
		case errors.As(err, &full):
			Logger().Warn("glyph skipped, texture pool full",
				"font", font, "glyph", id, "textures", full.MaxTextures)
		default:
			Logger().Debug("glyph placement failed",
				"font", font, "glyph", id, "error", err)
		}
		return nil
	}

	b.cache.Insert(fp, placed)
	return placed
}

// appendQuad adds the glyph's quad to its (texture, format) command,
// creating the command on first use so command order is deterministic.
func (b *Batcher) appendQuad(g *RenderedGlyph, penX, penY float64) {
	key := commandKey{texture: g.Texture, color: g.Color}
	i, ok := b.index[key]
	if !ok {
		handle, err := b.pool.Handle(g.Texture)
		if err != nil {
			Logger().Debug("stale texture index in cache", "texture", g.Texture)
			return
		}
		b.commands = append(b.commands, DrawCommand{Texture: handle, Color: g.Color})
		i = len(b.commands) - 1
		b.index[key] = i
	}

	// Snap to the pixel grid: the fractional part became the subpixel
	// offset the glyph was rasterized with.
	x0 := math.Floor(penX) + float64(g.OffsetX)
	y0 := math.Floor(penY) - float64(g.OffsetY)

	u0 := float64(g.AtlasX) * b.invSize
	v0 := float64(g.AtlasY) * b.invSize
	u1 := float64(g.AtlasX+g.Width) * b.invSize
	v1 := float64(g.AtlasY+g.Height) * b.invSize

	b.commands[i].Quads = append(b.commands[i].Quads, Quad{
		X0: float32(x0),
		Y0: float32(y0),
		X1: float32(x0 + float64(g.Width)),
		Y1: float32(y0 + float64(g.Height)),
		U0: float32(u0),
		V0: float32(v0),
		U1: float32(u1),
		V1: float32(v1),
	})
}

// Flush returns the frame's draw commands, grouped by texture and format
// in first-use order, and starts a new empty frame. Identical input since
// the last Flush yields identical output.
func (b *Batcher) Flush() []DrawCommand {
	cmds := b.commands
	b.commands = nil
	clear(b.index)
	return cmds
}

// Clear drops the cache and all atlas placements, keeping the textures.
// Useful when the caller knows the displayed text changed wholesale.
func (b *Batcher) Clear() {
	b.cache.Clear()
	b.pool.Reset()
	b.commands = nil
	clear(b.index)
}

// BatcherStats aggregates cache and pool statistics.
type BatcherStats struct {
	Cache       CacheStats
	Textures    int
	MemoryUsage int
}

// Stats returns a snapshot of the batcher's cache and pool state.
func (b *Batcher) Stats() BatcherStats {
	return BatcherStats{
		Cache:       b.cache.Stats(),
		Textures:    b.pool.Count(),
		MemoryUsage: b.pool.MemoryUsage(),
	}
}

// CacheLen returns the number of cached fingerprints, blanks included.
func (b *Batcher) CacheLen() int { return b.cache.Len() }
