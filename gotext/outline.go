package gotext

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"sync"

	"github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/vector"

	"github.com/gogpu/textatlas"
)

// maxGlyphSide caps rasterized glyph dimensions. Corrupt outlines can
// declare absurd extents; failing them here keeps one bad glyph from
// allocating an enormous mask.
const maxGlyphSide = 1 << 14

var rasterPool = sync.Pool{
	New: func() any { return &vector.Rasterizer{} },
}

// renderOutline rasterizes an outline into an 8-bit coverage mask. The
// outline is shifted by the subpixel offset before sampling and the mask is
// tight around the covered pixels; OffsetX and OffsetY place it back
// relative to the pen.
func renderOutline(segs []opentype.Segment, scale float64, off textatlas.SubpixelOffset) (*textatlas.GlyphImage, error) {
	minX, minY, maxX, maxY, ok := pixelBounds(segs, scale, off)
	if !ok {
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

	r := rasterPool.Get().(*vector.Rasterizer)
	defer rasterPool.Put(r)
	r.Reset(w, h)
	r.DrawOp = draw.Src
	fillSegments(r, segs, scale, off.X-float64(left), off.Y-float64(top))

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return &textatlas.GlyphImage{
		Width:   w,
		Height:  h,
		OffsetX: left,
		OffsetY: -top,
		Format:  textatlas.FormatAlpha,
		Pixels:  mask.Pix,
	}, nil
}

// pixelBounds walks the outline in pixel space (y-down) and returns its
// bounding box, curve control points included. ok is false when the
// outline has no drawing ops; whitespace glyphs are a bare MoveTo or
// nothing at all.
func pixelBounds(segs []opentype.Segment, scale float64, off textatlas.SubpixelOffset) (minX, minY, maxX, maxY float64, ok bool) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, seg := range segs {
		if seg.Op != opentype.SegmentOpMoveTo {
			ok = true
		}
		for i := 0; i < segPoints(seg.Op); i++ {
			x := float64(seg.Args[i].X)*scale + off.X
			y := -float64(seg.Args[i].Y)*scale + off.Y
			minX = math.Min(minX, x)
			minY = math.Min(minY, y)
			maxX = math.Max(maxX, x)
			maxY = math.Max(maxY, y)
		}
	}
	return minX, minY, maxX, maxY, ok
}

// fillSegments walks the outline into the rasterizer. dx and dy translate
// pixel-space coordinates into the rasterizer's positive quadrant; the Y
// axis flips from font units (y-up) to raster rows (y-down). Subpaths are
// closed implicitly when the rasterizer draws.
func fillSegments(r *vector.Rasterizer, segs []opentype.Segment, scale, dx, dy float64) {
	px := func(p opentype.SegmentPoint) (float32, float32) {
		return float32(float64(p.X)*scale + dx), float32(-float64(p.Y)*scale + dy)
	}
	for _, seg := range segs {
		switch seg.Op {
		case opentype.SegmentOpMoveTo:
			x, y := px(seg.Args[0])
			r.MoveTo(x, y)
		case opentype.SegmentOpLineTo:
			x, y := px(seg.Args[0])
			r.LineTo(x, y)
		case opentype.SegmentOpQuadTo:
			bx, by := px(seg.Args[0])
			cx, cy := px(seg.Args[1])
			r.QuadTo(bx, by, cx, cy)
		case opentype.SegmentOpCubeTo:
			bx, by := px(seg.Args[0])
			cx, cy := px(seg.Args[1])
			ex, ey := px(seg.Args[2])
			r.CubeTo(bx, by, cx, cy, ex, ey)
		}
	}
}

// segPoints returns how many of the segment's Args are meaningful.
func segPoints(op opentype.SegmentOp) int {
	switch op {
	case opentype.SegmentOpQuadTo:
		return 2
	case opentype.SegmentOpCubeTo:
		return 3
	default:
		return 1
	}
}
