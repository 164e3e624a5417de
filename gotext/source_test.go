package gotext

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/textatlas"
)

func newTestSource(t *testing.T) (*Source, textatlas.FontID) {
	t.Helper()
	src := NewSource()
	id, err := src.AddFont(goregular.TTF)
	if err != nil {
		t.Fatalf("AddFont() error = %v", err)
	}
	return src, id
}

// glyphID resolves a rune in Go Regular to its glyph index.
func glyphID(t testing.TB, r rune) textatlas.GlyphID {
	t.Helper()
	face, err := font.ParseTTF(bytes.NewReader(goregular.TTF))
	if err != nil {
		t.Fatalf("ParseTTF() error = %v", err)
	}
	gid, ok := face.Cmap.Lookup(r)
	if !ok {
		t.Fatalf("Go Regular has no glyph for %q", r)
	}
	return textatlas.GlyphID(gid)
}

func TestNewSource(t *testing.T) {
	src := NewSource()
	if src.Len() != 0 {
		t.Errorf("Len() = %d, want 0", src.Len())
	}
}

func TestSource_AddFont(t *testing.T) {
	src, id := newTestSource(t)
	if id == 0 {
		t.Error("AddFont() = 0, want nonzero FontID")
	}
	if src.Len() != 1 {
		t.Errorf("Len() = %d, want 1", src.Len())
	}
}

func TestSource_AddFont_Dedupe(t *testing.T) {
	src, id := newTestSource(t)
	again, err := src.AddFont(goregular.TTF)
	if err != nil {
		t.Fatalf("AddFont() second call error = %v", err)
	}
	if again != id {
		t.Errorf("AddFont() same bytes = %d, want %d", again, id)
	}
	if src.Len() != 1 {
		t.Errorf("Len() = %d after duplicate add, want 1", src.Len())
	}
}

func TestSource_AddFont_Invalid(t *testing.T) {
	src := NewSource()
	if _, err := src.AddFont(nil); err == nil {
		t.Error("AddFont(nil) error = nil, want error")
	}
	if _, err := src.AddFont([]byte("definitely not a font")); err == nil {
		t.Error("AddFont(garbage) error = nil, want error")
	}
	if src.Len() != 0 {
		t.Errorf("Len() = %d after failed adds, want 0", src.Len())
	}
}

func TestSource_AddFace(t *testing.T) {
	src, fontID := newTestSource(t)

	face, err := font.ParseTTF(bytes.NewReader(goregular.TTF))
	if err != nil {
		t.Fatalf("ParseTTF() error = %v", err)
	}
	faceID, err := src.AddFace(face)
	if err != nil {
		t.Fatalf("AddFace() error = %v", err)
	}
	if faceID == 0 || faceID == fontID {
		t.Errorf("AddFace() = %d, want nonzero id distinct from %d", faceID, fontID)
	}
	if src.Len() != 2 {
		t.Errorf("Len() = %d, want 2", src.Len())
	}
}

func TestSource_AddFace_Nil(t *testing.T) {
	src := NewSource()
	if _, err := src.AddFace(nil); err == nil {
		t.Error("AddFace(nil) error = nil, want error")
	}
}

func TestSource_Remove(t *testing.T) {
	src, id := newTestSource(t)

	src.Remove(id)
	if src.Len() != 0 {
		t.Errorf("Len() = %d after Remove, want 0", src.Len())
	}

	_, err := src.Rasterize(id, glyphID(t, 'A'), 16, textatlas.SubpixelOffset{})
	if !errors.Is(err, ErrUnknownFont) {
		t.Errorf("Rasterize() after Remove error = %v, want ErrUnknownFont", err)
	}

	// Removing twice is a no-op.
	src.Remove(id)
}

func TestSource_Remove_ReAdd(t *testing.T) {
	src, id := newTestSource(t)
	src.Remove(id)

	again, err := src.AddFont(goregular.TTF)
	if err != nil {
		t.Fatalf("AddFont() after Remove error = %v", err)
	}
	if again == 0 || again == id {
		t.Errorf("AddFont() after Remove = %d, want a fresh nonzero id (old was %d)", again, id)
	}
	if src.Len() != 1 {
		t.Errorf("Len() = %d, want 1", src.Len())
	}
}

func TestSource_Rasterize_UnknownFont(t *testing.T) {
	src := NewSource()
	_, err := src.Rasterize(42, 1, 16, textatlas.SubpixelOffset{})
	if !errors.Is(err, ErrUnknownFont) {
		t.Errorf("Rasterize() error = %v, want ErrUnknownFont", err)
	}
}
