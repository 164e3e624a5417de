package gotext

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/textatlas"
)

func testFace(t *testing.T) *font.Face {
	t.Helper()
	face, err := font.ParseTTF(bytes.NewReader(goregular.TTF))
	if err != nil {
		t.Fatalf("ParseTTF() error = %v", err)
	}
	return face
}

// encodePNG builds a small solid-color strike.
func encodePNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestRenderBitmap_EmptyData(t *testing.T) {
	img, err := renderBitmap(nil, 0, font.GlyphBitmap{}, 16, 0.01)
	if err != nil {
		t.Fatalf("renderBitmap(empty) error = %v", err)
	}
	if img != nil {
		t.Errorf("renderBitmap(empty) = %+v, want nil", img)
	}
}

func TestRenderBitmap_UnsupportedFormat(t *testing.T) {
	for _, format := range []font.BitmapFormat{font.JPG, font.TIFF, font.BlackAndWhite} {
		bm := font.GlyphBitmap{Format: format, Data: []byte{1, 2, 3}}
		if _, err := renderBitmap(nil, 0, bm, 16, 0.01); err == nil {
			t.Errorf("renderBitmap(format %d) error = nil, want unsupported", format)
		}
	}
}

func TestRenderBitmap_InvalidPNG(t *testing.T) {
	bm := font.GlyphBitmap{Format: font.PNG, Data: []byte{1, 2, 3, 4}}
	if _, err := renderBitmap(nil, 0, bm, 16, 0.01); err == nil {
		t.Error("renderBitmap(bad PNG) error = nil, want decode error")
	}
}

func TestRenderBitmap_PNG(t *testing.T) {
	face := testFace(t)
	gid, ok := face.Cmap.Lookup('A')
	if !ok {
		t.Fatal("no glyph for 'A'")
	}

	strike := encodePNG(t, 8, 8, color.RGBA{R: 0xFF, A: 0xFF})
	bm := font.GlyphBitmap{Format: font.PNG, Data: strike}
	scale := 16 / float64(face.Upem())

	img, err := renderBitmap(face, gid, bm, 16, scale)
	if err != nil {
		t.Fatalf("renderBitmap() error = %v", err)
	}
	if img == nil {
		t.Fatal("renderBitmap() = nil")
	}
	if img.Format != textatlas.FormatColor {
		t.Errorf("Format = %v, want FormatColor", img.Format)
	}
	if img.Width <= 0 || img.Height <= 0 {
		t.Fatalf("size = %dx%d, want positive", img.Width, img.Height)
	}
	if len(img.Pixels) != img.Width*img.Height*4 {
		t.Errorf("len(Pixels) = %d, want %d", len(img.Pixels), img.Width*img.Height*4)
	}
	// The solid red strike must stay red after scaling.
	if r, a := img.Pixels[0], img.Pixels[3]; r < 200 || a < 200 {
		t.Errorf("corner pixel = (R %d, A %d), want solid red", r, a)
	}
}

func TestRenderBitmap_Oversized(t *testing.T) {
	face := testFace(t)
	gid, ok := face.Cmap.Lookup('A')
	if !ok {
		t.Fatal("no glyph for 'A'")
	}
	strike := encodePNG(t, 4, 4, color.RGBA{A: 0xFF})
	bm := font.GlyphBitmap{Format: font.PNG, Data: strike}

	size := 1e9
	if _, err := renderBitmap(face, gid, bm, size, size/float64(face.Upem())); err == nil {
		t.Error("renderBitmap(absurd size) error = nil, want limit error")
	}
}

func TestBitmapPlacement_Extents(t *testing.T) {
	face := testFace(t)
	gid, ok := face.Cmap.Lookup('A')
	if !ok {
		t.Fatal("no glyph for 'A'")
	}
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))

	w, h, _, offY := bitmapPlacement(face, gid, src, 16, 16/float64(face.Upem()))
	if w < 4 || w > 30 || h < 6 || h > 30 {
		t.Errorf("placement = %dx%d, implausible for 'A' at 16px", w, h)
	}
	if offY <= 0 {
		t.Errorf("offY = %d, want above the baseline", offY)
	}
}

func TestBitmapPlacement_Fallback(t *testing.T) {
	face := testFace(t)
	gid, ok := face.Cmap.Lookup(' ')
	if !ok {
		t.Fatal("no glyph for space")
	}
	// The space has no extents worth using, so the strike keeps its aspect
	// ratio at the requested height and sits on the baseline.
	src := image.NewRGBA(image.Rect(0, 0, 16, 8))

	w, h, offX, offY := bitmapPlacement(face, gid, src, 32, 32/float64(face.Upem()))
	if h != 32 {
		t.Errorf("h = %d, want 32", h)
	}
	if w != 64 {
		t.Errorf("w = %d, want 64 (2:1 strike)", w)
	}
	if offX != 0 || offY != 32 {
		t.Errorf("offset = (%d,%d), want (0,32)", offX, offY)
	}
}
