package gotext

import (
	"math"

	"github.com/go-text/typesetting/font"

	"github.com/gogpu/textatlas"
)

// Rasterize implements [textatlas.Scaler].
//
// Glyph data is resolved color-first: a COLRv0 base glyph renders as
// flattened color layers, an embedded bitmap strike (CBDT, sbix) decodes
// and scales to the requested size, and everything else rasterizes the
// monochrome outline as an alpha coverage mask. Whitespace and otherwise
// empty glyphs return (nil, nil) and cache as blank.
func (s *Source) Rasterize(fontID textatlas.FontID, glyph textatlas.GlyphID, size float64, offset textatlas.SubpixelOffset) (*textatlas.GlyphImage, error) {
	entry, err := s.lookup(fontID)
	if err != nil {
		return nil, err
	}

	face, release := entry.acquireFace()
	defer release()

	scale := size / float64(face.Upem())

	// COLRv0 base glyph IDs are 16-bit, so larger IDs cannot be color.
	if entry.colr != nil && glyph <= math.MaxUint16 {
		if layers, ok := entry.colr.glyph(uint16(glyph)); ok {
			return renderLayers(face, layers, scale, offset)
		}
	}

	switch data := face.GlyphData(font.GID(glyph)).(type) {
	case font.GlyphOutline:
		return renderOutline(data.Segments, scale, offset)
	case font.GlyphBitmap:
		return renderBitmap(face, font.GID(glyph), data, size, scale)
	case font.GlyphSVG:
		// OT-SVG needs a full SVG renderer. Render as blank rather than
		// guessing at an outline the font may not carry.
		textatlas.Logger().Debug("gotext: svg glyph not supported",
			"font", uint64(fontID), "glyph", uint32(glyph))
		return nil, nil
	default:
		return nil, nil
	}
}
