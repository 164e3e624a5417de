// Package gotext rasterizes glyphs with go-text/typesetting, turning glyph
// outlines, embedded bitmap strikes, and COLR layer glyphs into the alpha
// and color images the textatlas cache stores.
//
// The entry point is [Source]: register font data with [Source.AddFont]
// (or a pre-built face with [Source.AddFace]), hand the returned
// [textatlas.FontID] to your shaper, and pass the Source itself to the
// batcher as its [textatlas.Scaler].
//
//	src := gotext.NewSource()
//	fontID, err := src.AddFont(ttfBytes)
//	if err != nil { ... }
//	batcher := textatlas.NewBatcher(cache, src)
//
// Glyph data is resolved in color-first order: COLRv0 layer glyphs render
// as flattened RGBA images, embedded PNG strikes (CBDT, sbix) are decoded
// and scaled, and everything else falls back to the monochrome outline
// rasterized as an 8-bit coverage mask. OT-SVG glyphs are not supported
// and render as blank.
package gotext
