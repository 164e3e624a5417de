package textatlas

// ShapedGlyph is one positioned glyph from an externally shaped run.
// Offsets and advance are in pixels; YOffset is positive upward, as text
// shapers produce it, and is flipped internally for the y-down canvas.
type ShapedGlyph struct {
	ID      GlyphID
	XOffset float64
	YOffset float64
	Advance float64
}

// GlyphRun is a horizontal run of shaped glyphs sharing one font and size.
// X, Y is the absolute pen start: the baseline's left end in canvas
// coordinates. The pen advances by each glyph's Advance after the glyph is
// placed, whitespace included.
//
// Runs come out of a text layout engine; this package only renders them.
type GlyphRun struct {
	Font   FontID
	Size   float64
	X      float64
	Y      float64
	Glyphs []ShapedGlyph
}
