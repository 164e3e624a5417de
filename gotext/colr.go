package gotext

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/vector"

	"github.com/gogpu/textatlas"
)

// sfnt table tags.
const (
	colrTag = 0x434F4C52 // 'COLR'
	cpalTag = 0x4350414C // 'CPAL'
)

// foregroundPalette marks a layer painted in the text color rather than a
// CPAL entry.
const foregroundPalette = 0xFFFF

var (
	errInvalidCOLR = errors.New("gotext: invalid COLR table")
	errInvalidCPAL = errors.New("gotext: invalid CPAL table")
	errCOLRVersion = errors.New("gotext: unsupported COLR version")
)

// colorTable holds the parsed COLRv0 layer records and the default CPAL
// palette for one font.
type colorTable struct {
	baseGlyphs []baseGlyph
	layers     []layerRecord
	palette    []color.RGBA
}

// baseGlyph maps a glyph ID to its run of layer records. Records are
// sorted by glyph ID in the table.
type baseGlyph struct {
	glyph      uint16
	firstLayer uint16
	numLayers  uint16
}

// layerRecord is one layer: the glyph whose outline to fill and the
// palette entry to fill it with.
type layerRecord struct {
	glyph   uint16
	palette uint16
}

// colorLayer is a resolved layer ready to render.
type colorLayer struct {
	glyph uint16
	color color.RGBA
}

// fontTable returns the raw bytes of the named table from a single-font
// sfnt file, or nil when the file is not sfnt or lacks the table.
func fontTable(data []byte, tag uint32) []byte {
	if len(data) < 12 {
		return nil
	}
	switch binary.BigEndian.Uint32(data[0:4]) {
	case 0x00010000, 0x4F54544F, 0x74727565: // TrueType, 'OTTO', 'true'
	default:
		return nil
	}
	numTables := int(binary.BigEndian.Uint16(data[4:6]))
	if 12+numTables*16 > len(data) {
		return nil
	}
	for i := 0; i < numTables; i++ {
		rec := 12 + i*16
		if binary.BigEndian.Uint32(data[rec:rec+4]) != tag {
			continue
		}
		offset := binary.BigEndian.Uint32(data[rec+8 : rec+12])
		length := binary.BigEndian.Uint32(data[rec+12 : rec+16])
		end := uint64(offset) + uint64(length)
		if end > uint64(len(data)) {
			return nil
		}
		return data[offset:end]
	}
	return nil
}

// parseColorTables parses COLRv0 records and the default CPAL palette.
func parseColorTables(colrData, cpalData []byte) (*colorTable, error) {
	t := &colorTable{}
	if err := t.parseCOLR(colrData); err != nil {
		return nil, err
	}
	if err := t.parseCPAL(cpalData); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *colorTable) parseCOLR(data []byte) error {
	if len(data) < 14 {
		return errInvalidCOLR
	}
	version := binary.BigEndian.Uint16(data[0:2])
	// COLRv1 extends v0 with gradient paint graphs; the v0 records parsed
	// here are its required compatibility subset.
	if version > 1 {
		return errCOLRVersion
	}
	numBase := int(binary.BigEndian.Uint16(data[2:4]))
	baseOffset := int(binary.BigEndian.Uint32(data[4:8]))
	layerOffset := int(binary.BigEndian.Uint32(data[8:12]))
	numLayers := int(binary.BigEndian.Uint16(data[12:14]))

	if baseOffset+numBase*6 > len(data) || layerOffset+numLayers*4 > len(data) {
		return errInvalidCOLR
	}

	t.baseGlyphs = make([]baseGlyph, numBase)
	for i := range t.baseGlyphs {
		pos := baseOffset + i*6
		t.baseGlyphs[i] = baseGlyph{
			glyph:      binary.BigEndian.Uint16(data[pos : pos+2]),
			firstLayer: binary.BigEndian.Uint16(data[pos+2 : pos+4]),
			numLayers:  binary.BigEndian.Uint16(data[pos+4 : pos+6]),
		}
	}

	t.layers = make([]layerRecord, numLayers)
	for i := range t.layers {
		pos := layerOffset + i*4
		t.layers[i] = layerRecord{
			glyph:   binary.BigEndian.Uint16(data[pos : pos+2]),
			palette: binary.BigEndian.Uint16(data[pos+2 : pos+4]),
		}
	}
	return nil
}

// parseCPAL reads palette 0. Fonts ship alternate palettes for dark mode
// and similar; the cache has no channel to select one, so every glyph uses
// the default palette.
func (t *colorTable) parseCPAL(data []byte) error {
	if len(data) < 12 {
		return errInvalidCPAL
	}
	numEntries := int(binary.BigEndian.Uint16(data[2:4]))
	numPalettes := int(binary.BigEndian.Uint16(data[4:6]))
	recordsOffset := int(binary.BigEndian.Uint32(data[8:12]))
	if numPalettes == 0 || 12+numPalettes*2 > len(data) {
		return errInvalidCPAL
	}
	first := int(binary.BigEndian.Uint16(data[12:14]))

	t.palette = make([]color.RGBA, numEntries)
	for i := range t.palette {
		pos := recordsOffset + (first+i)*4
		if pos+4 > len(data) {
			return errInvalidCPAL
		}
		// CPAL color records are BGRA.
		t.palette[i] = color.RGBA{B: data[pos], G: data[pos+1], R: data[pos+2], A: data[pos+3]}
	}
	return nil
}

// glyph returns the resolved layers for a color glyph, bottom to top, or
// ok=false when the glyph has no COLR record. Foreground layers resolve to
// opaque black: the cache stores color glyphs without knowing the text
// color, and black matches what rasterizers default to when no foreground
// is supplied.
func (t *colorTable) glyph(id uint16) ([]colorLayer, bool) {
	lo, hi := 0, len(t.baseGlyphs)
	for lo < hi {
		mid := (lo + hi) / 2
		if t.baseGlyphs[mid].glyph < id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= len(t.baseGlyphs) || t.baseGlyphs[lo].glyph != id {
		return nil, false
	}
	base := t.baseGlyphs[lo]

	first, count := int(base.firstLayer), int(base.numLayers)
	if count == 0 || first+count > len(t.layers) {
		return nil, false
	}

	layers := make([]colorLayer, count)
	for i := range layers {
		rec := t.layers[first+i]
		c := color.RGBA{A: 0xFF}
		if rec.palette != foregroundPalette {
			if int(rec.palette) >= len(t.palette) {
				return nil, false
			}
			c = t.palette[rec.palette]
		}
		layers[i] = colorLayer{glyph: rec.glyph, color: c}
	}
	return layers, true
}

// renderLayers flattens a COLRv0 glyph into a single RGBA image. Each
// layer is an outline filled with its palette color; the canvas covers the
// union of the layer bounds and layers composite bottom to top.
func renderLayers(face *font.Face, layers []colorLayer, scale float64, off textatlas.SubpixelOffset) (*textatlas.GlyphImage, error) {
	type drawable struct {
		segs []opentype.Segment
		col  color.RGBA
	}
	ds := make([]drawable, 0, len(layers))

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, l := range layers {
		outline, ok := face.GlyphData(font.GID(l.glyph)).(font.GlyphOutline)
		if !ok {
			continue
		}
		a, b, c, d, ok := pixelBounds(outline.Segments, scale, off)
		if !ok {
			continue
		}
		minX = math.Min(minX, a)
		minY = math.Min(minY, b)
		maxX = math.Max(maxX, c)
		maxY = math.Max(maxY, d)
		ds = append(ds, drawable{segs: outline.Segments, col: l.color})
	}
	if len(ds) == 0 {
		return nil, nil
	}

	left := int(math.Floor(minX))
	top := int(math.Floor(minY))
	w := int(math.Ceil(maxX)) - left
	h := int(math.Ceil(maxY)) - top
	if w <= 0 || h <= 0 {
		return nil, nil
	}
	if w > maxGlyphSide || h > maxGlyphSide {
		return nil, fmt.Errorf("gotext: glyph bounds %dx%d exceed limit", w, h)
	}

	result := image.NewRGBA(image.Rect(0, 0, w, h))
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r := rasterPool.Get().(*vector.Rasterizer)
	defer rasterPool.Put(r)

	for _, d := range ds {
		r.Reset(w, h)
		// Src coverage overwrites the whole mask, so it can be reused
		// across layers without clearing.
		r.DrawOp = draw.Src
		fillSegments(r, d.segs, scale, off.X-float64(left), off.Y-float64(top))
		r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

		draw.DrawMask(result, result.Bounds(), image.NewUniform(d.col), image.Point{}, mask, image.Point{}, draw.Over)
	}

	return &textatlas.GlyphImage{
		Width:   w,
		Height:  h,
		OffsetX: left,
		OffsetY: -top,
		Format:  textatlas.FormatColor,
		Pixels:  result.Pix,
	}, nil
}
