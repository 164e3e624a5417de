package gotext

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/go-text/typesetting/font"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/textatlas"
)

// renderBitmap decodes an embedded bitmap strike (CBDT or sbix) and scales
// it to the requested size. Only PNG strikes are supported; that covers the
// color emoji fonts in circulation. The subpixel offset does not apply
// here, bitmaps land on whole pixels.
func renderBitmap(face *font.Face, gid font.GID, bm font.GlyphBitmap, size, scale float64) (*textatlas.GlyphImage, error) {
	if len(bm.Data) == 0 {
		return nil, nil
	}

	var src image.Image
	switch bm.Format {
	case font.PNG:
		img, err := png.Decode(bytes.NewReader(bm.Data))
		if err != nil {
			return nil, fmt.Errorf("gotext: decode bitmap strike: %w", err)
		}
		src = img
	default:
		// JPEG, TIFF, and the raw black-and-white family are rare enough
		// in real fonts that decoding them has not been worth it.
		return nil, fmt.Errorf("gotext: unsupported bitmap strike format %d", bm.Format)
	}

	w, h, offX, offY := bitmapPlacement(face, gid, src, size, scale)
	if w <= 0 || h <= 0 {
		return nil, nil
	}
	if w > maxGlyphSide || h > maxGlyphSide {
		return nil, fmt.Errorf("gotext: glyph bounds %dx%d exceed limit", w, h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	return &textatlas.GlyphImage{
		Width:   w,
		Height:  h,
		OffsetX: offX,
		OffsetY: offY,
		Format:  textatlas.FormatColor,
		Pixels:  dst.Pix,
	}, nil
}

// bitmapPlacement sizes and positions the scaled strike. Glyph extents are
// in font units (y-up, height negative). Absent usable extents the strike
// keeps its aspect ratio at the requested height and sits on the baseline.
func bitmapPlacement(face *font.Face, gid font.GID, src image.Image, size, scale float64) (w, h, offX, offY int) {
	if ext, ok := face.GlyphExtents(gid); ok && ext.Width != 0 && ext.Height != 0 {
		w = int(math.Round(float64(ext.Width) * scale))
		h = int(math.Round(math.Abs(float64(ext.Height)) * scale))
		offX = int(math.Round(float64(ext.XBearing) * scale))
		offY = int(math.Round(float64(ext.YBearing) * scale))
		return w, h, offX, offY
	}
	sb := src.Bounds()
	h = int(math.Round(size))
	if sb.Dy() > 0 {
		w = int(math.Round(float64(sb.Dx()) * float64(h) / float64(sb.Dy())))
	}
	return w, h, 0, h
}
