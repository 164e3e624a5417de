package textatlas

// GlyphFormat describes the pixel layout of a rasterized glyph.
type GlyphFormat uint8

const (
	// FormatAlpha is an 8-bit coverage mask, one byte per pixel, row-major.
	// Rendered by multiplying coverage with the text color.
	FormatAlpha GlyphFormat = iota

	// FormatColor is 8-bit RGBA, four bytes per pixel, row-major. Rendered
	// as-is (emoji and other color glyphs); the text color is ignored.
	FormatColor
)

// BytesPerPixel returns the pixel stride for the format.
func (f GlyphFormat) BytesPerPixel() int {
	if f == FormatColor {
		return 4
	}
	return 1
}

// String returns a human-readable format name.
func (f GlyphFormat) String() string {
	switch f {
	case FormatAlpha:
		return "alpha"
	case FormatColor:
		return "color"
	default:
		return "unknown"
	}
}

// GlyphImage is a rasterized glyph as produced by a Scaler: pixel data plus
// the placement of the bitmap relative to the pen position.
//
// OffsetX is the distance from the pen to the left edge of the bitmap.
// OffsetY is the distance from the baseline up to the top edge (positive
// means the bitmap top sits above the baseline).
type GlyphImage struct {
	Width   int
	Height  int
	OffsetX int
	OffsetY int
	Format  GlyphFormat
	Pixels  []byte
}

// Empty reports whether the image has no visible pixels. Whitespace glyphs
// rasterize to empty images and are cached as blank.
func (g *GlyphImage) Empty() bool {
	return g == nil || g.Width <= 0 || g.Height <= 0
}

// RenderedGlyph records where a glyph's pixels live in the texture pool and
// how to place them relative to the pen. It is the value stored in the
// rendered-glyph cache; all fields are immutable after insertion.
type RenderedGlyph struct {
	// Texture is the index of the owning texture in the pool. Indices are
	// stable for the lifetime of the pool.
	Texture int

	// Width and Height are the bitmap dimensions in pixels.
	Width  int
	Height int

	// OffsetX and OffsetY position the bitmap relative to the pen:
	// left bearing and baseline-to-top rise, in pixels.
	OffsetX int
	OffsetY int

	// AtlasX and AtlasY are the top-left corner of the glyph's rectangle
	// inside the texture, in pixels.
	AtlasX int
	AtlasY int

	// Color is true for RGBA glyphs (emoji), false for alpha masks.
	Color bool
}
