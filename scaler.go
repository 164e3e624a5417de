package textatlas

// Scaler rasterizes glyphs on cache misses. Implementations own the font
// data; the cache addresses fonts only through the opaque FontID the
// implementation assigned when the font was registered.
//
// Rasterize renders the glyph at the given pixel size. The subpixel offset
// is the raw fractional pen position, not the bucket representative;
// implementations may use it to shift the outline before sampling, or
// ignore it.
//
// The returned image must use FormatAlpha or FormatColor. Any other format
// is a contract violation and panics during upload. A (nil, nil) return
// means the glyph has no visible pixels (whitespace); it is cached as blank
// and produces no geometry. A non-nil error also caches blank, after a
// debug log entry, so one bad glyph never aborts a frame.
type Scaler interface {
	Rasterize(font FontID, glyph GlyphID, size float64, offset SubpixelOffset) (*GlyphImage, error)
}

// ScalerFunc adapts a function to the Scaler interface.
type ScalerFunc func(font FontID, glyph GlyphID, size float64, offset SubpixelOffset) (*GlyphImage, error)

// Rasterize calls f.
func (f ScalerFunc) Rasterize(font FontID, glyph GlyphID, size float64, offset SubpixelOffset) (*GlyphImage, error) {
	return f(font, glyph, size, offset)
}
