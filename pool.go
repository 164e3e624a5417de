package textatlas

import (
	"fmt"

	"github.com/gogpu/textatlas/internal/pack"
)

// poolTexture pairs a GPU texture handle with the packer that hands out
// rectangles inside it.
type poolTexture struct {
	id     TextureID
	packer *pack.Packer
}

// TexturePool owns the atlas textures glyphs are packed into. Textures are
// created lazily through the TextureStore, all of the same size, and live
// for the lifetime of the pool; indices into the pool are stable and are
// what RenderedGlyph.Texture refers to.
//
// Place walks the textures in creation order and takes the first fit, so
// older textures fill up before new ones are created. When every texture
// is full the pool grows by one, up to MaxTextures.
//
// TexturePool is NOT safe for concurrent use.
type TexturePool struct {
	store    TextureStore
	textures []poolTexture
	size     int
	padding  int
	max      int
}

// NewTexturePool creates an empty pool. No texture is created until the
// first Place call demands one.
func NewTexturePool(store TextureStore, cfg Config) (*TexturePool, error) {
	if store == nil {
		return nil, ErrNilTextureStore
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TexturePool{
		store:   store,
		size:    cfg.TextureSize,
		padding: cfg.Padding,
		max:     cfg.MaxTextures,
	}, nil
}

// Place allocates atlas space for the image, uploads its pixels, and
// returns the resulting cache value. The image must be non-empty; callers
// short-circuit blank images before reaching the pool.
//
// Failure modes: an image that cannot fit an empty texture returns
// *OversizedGlyphError, a pool at its texture limit with no room anywhere
// returns *PoolFullError, and store failures are returned wrapped.
func (p *TexturePool) Place(img *GlyphImage) (*RenderedGlyph, error) {
	if img.Empty() {
		return nil, fmt.Errorf("textatlas: cannot place empty image")
	}

	padW := img.Width + p.padding
	padH := img.Height + p.padding
	if padW > p.size || padH > p.size {
		return nil, &OversizedGlyphError{
			Width:  img.Width,
			Height: img.Height,
			Max:    p.size - p.padding,
		}
	}

	for i := range p.textures {
		x, y, ok := p.textures[i].packer.Alloc(padW, padH)
		if !ok {
			continue
		}
		if err := p.upload(i, x, y, img); err != nil {
			p.textures[i].packer.Free(pack.Rect{X: x, Y: y, W: padW, H: padH})
			return nil, err
		}
		return p.rendered(i, x, y, img), nil
	}

	if len(p.textures) >= p.max {
		Logger().Warn("glyph texture pool exhausted", "textures", len(p.textures))
		return nil, &PoolFullError{MaxTextures: p.max}
	}

	idx, err := p.grow()
	if err != nil {
		return nil, err
	}
	x, y, ok := p.textures[idx].packer.Alloc(padW, padH)
	if !ok {
		// Guarded above: a padded glyph always fits an empty texture.
		return nil, &OversizedGlyphError{Width: img.Width, Height: img.Height, Max: p.size - p.padding}
	}
	if err := p.upload(idx, x, y, img); err != nil {
		p.textures[idx].packer.Free(pack.Rect{X: x, Y: y, W: padW, H: padH})
		return nil, err
	}
	return p.rendered(idx, x, y, img), nil
}

// Release returns a glyph's atlas rectangle to its texture for reuse.
// It is the cache eviction handler's job to call this; the glyph must have
// come from this pool.
func (p *TexturePool) Release(g *RenderedGlyph) {
	if g == nil || g.Texture < 0 || g.Texture >= len(p.textures) {
		return
	}
	p.textures[g.Texture].packer.Free(pack.Rect{
		X: g.AtlasX,
		Y: g.AtlasY,
		W: g.Width + p.padding,
		H: g.Height + p.padding,
	})
	Logger().Debug("atlas slot reclaimed",
		"texture", g.Texture, "x", g.AtlasX, "y", g.AtlasY,
		"w", g.Width, "h", g.Height)
}

// Handle maps a stable texture index to its GPU handle.
func (p *TexturePool) Handle(index int) (TextureID, error) {
	if index < 0 || index >= len(p.textures) {
		return 0, ErrInvalidTexture
	}
	return p.textures[index].id, nil
}

// Count returns the number of textures created so far.
func (p *TexturePool) Count() int { return len(p.textures) }

// Size returns the texture edge length in pixels.
func (p *TexturePool) Size() int { return p.size }

// TextureIDs returns the GPU handles of all textures in creation order.
func (p *TexturePool) TextureIDs() []TextureID {
	ids := make([]TextureID, len(p.textures))
	for i, t := range p.textures {
		ids[i] = t.id
	}
	return ids
}

// MemoryUsage returns the GPU memory consumed by the pool's textures, in
// bytes (RGBA8).
func (p *TexturePool) MemoryUsage() int {
	return len(p.textures) * p.size * p.size * 4
}

// Utilization returns the fraction of texture index i covered by live
// allocations, or 0 for an invalid index.
func (p *TexturePool) Utilization(index int) float64 {
	if index < 0 || index >= len(p.textures) {
		return 0
	}
	return p.textures[index].packer.Utilization()
}

// Reset clears every texture's allocator, abandoning all placements. The
// textures themselves are kept for reuse; their pixel contents are stale
// until overwritten, so the owning cache must be cleared alongside.
func (p *TexturePool) Reset() {
	for i := range p.textures {
		p.textures[i].packer.Reset()
	}
}

// grow appends one texture to the pool and returns its index.
func (p *TexturePool) grow() (int, error) {
	id, err := p.store.CreateTexture(p.size, p.size)
	if err != nil {
		return 0, fmt.Errorf("textatlas: create atlas texture: %w", err)
	}
	p.textures = append(p.textures, poolTexture{
		id:     id,
		packer: pack.New(p.size, p.size),
	})
	idx := len(p.textures) - 1
	Logger().Info("atlas texture created",
		"index", idx, "size", p.size, "texture", id)
	return idx, nil
}

// rendered builds the cache value for a placed image.
func (p *TexturePool) rendered(index, x, y int, img *GlyphImage) *RenderedGlyph {
	return &RenderedGlyph{
		Texture: index,
		Width:   img.Width,
		Height:  img.Height,
		OffsetX: img.OffsetX,
		OffsetY: img.OffsetY,
		AtlasX:  x,
		AtlasY:  y,
		Color:   img.Format == FormatColor,
	}
}

// upload writes the image pixels into the texture at (x, y). The padded
// margin is uploaded transparent so reclaimed slots never bleed a previous
// tenant's pixels into the sampling border.
func (p *TexturePool) upload(index, x, y int, img *GlyphImage) error {
	w := img.Width + p.padding
	h := img.Height + p.padding

	rgba := make([]byte, w*h*4)
	switch img.Format {
	case FormatAlpha:
		if len(img.Pixels) < img.Width*img.Height {
			return fmt.Errorf("textatlas: alpha glyph pixel buffer too short: %d < %d",
				len(img.Pixels), img.Width*img.Height)
		}
		// Coverage goes into the R channel; the shader tints it.
		for gy := range img.Height {
			src := gy * img.Width
			dst := gy * w * 4
			for gx := range img.Width {
				rgba[dst+gx*4] = img.Pixels[src+gx]
			}
		}
	case FormatColor:
		if len(img.Pixels) < img.Width*img.Height*4 {
			return fmt.Errorf("textatlas: color glyph pixel buffer too short: %d < %d",
				len(img.Pixels), img.Width*img.Height*4)
		}
		for gy := range img.Height {
			copy(rgba[gy*w*4:gy*w*4+img.Width*4], img.Pixels[gy*img.Width*4:(gy+1)*img.Width*4])
		}
	default:
		panic("textatlas: unsupported glyph format " + img.Format.String())
	}

	if err := p.store.UpdateTexture(p.textures[index].id, x, y, w, h, rgba); err != nil {
		return fmt.Errorf("textatlas: upload glyph pixels: %w", err)
	}
	return nil
}
