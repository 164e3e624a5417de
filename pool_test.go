package textatlas

import (
	"errors"
	"testing"
)

// mockStore records texture operations for assertions.
type mockStore struct {
	nextID    TextureID
	created   []mockTexture
	updates   []mockUpdate
	createErr error
	updateErr error
}

type mockTexture struct {
	id   TextureID
	w, h int
}

type mockUpdate struct {
	id         TextureID
	x, y, w, h int
	pixels     []byte
}

func (s *mockStore) CreateTexture(w, h int) (TextureID, error) {
	if s.createErr != nil {
		return 0, s.createErr
	}
	s.nextID++
	s.created = append(s.created, mockTexture{id: s.nextID, w: w, h: h})
	return s.nextID, nil
}

func (s *mockStore) UpdateTexture(id TextureID, x, y, w, h int, pixels []byte) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	cp := make([]byte, len(pixels))
	copy(cp, pixels)
	s.updates = append(s.updates, mockUpdate{id: id, x: x, y: y, w: w, h: h, pixels: cp})
	return nil
}

func testPoolConfig() Config {
	cfg := DefaultConfig()
	cfg.TextureSize = 64
	cfg.MaxTextures = 4
	return cfg
}

func alphaImage(w, h int) *GlyphImage {
	px := make([]byte, w*h)
	for i := range px {
		px[i] = byte(i + 1)
	}
	return &GlyphImage{Width: w, Height: h, Format: FormatAlpha, Pixels: px}
}

func colorImage(w, h int) *GlyphImage {
	px := make([]byte, w*h*4)
	for i := range px {
		px[i] = byte(i + 1)
	}
	return &GlyphImage{Width: w, Height: h, Format: FormatColor, Pixels: px}
}

func TestNewTexturePool_NilStore(t *testing.T) {
	if _, err := NewTexturePool(nil, testPoolConfig()); !errors.Is(err, ErrNilTextureStore) {
		t.Errorf("NewTexturePool(nil) error = %v, want ErrNilTextureStore", err)
	}
}

func TestNewTexturePool_InvalidConfig(t *testing.T) {
	cfg := testPoolConfig()
	cfg.TextureSize = 100 // not a power of 2
	_, err := NewTexturePool(&mockStore{}, cfg)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("NewTexturePool error = %v, want *ConfigError", err)
	}
}

func TestTexturePool_LazyCreation(t *testing.T) {
	store := &mockStore{}
	pool, err := NewTexturePool(store, testPoolConfig())
	if err != nil {
		t.Fatalf("NewTexturePool() = %v", err)
	}

	if pool.Count() != 0 || len(store.created) != 0 {
		t.Fatal("pool created textures before first placement")
	}

	if _, err := pool.Place(alphaImage(4, 4)); err != nil {
		t.Fatalf("Place() = %v", err)
	}

	if pool.Count() != 1 {
		t.Errorf("Count() = %d after first placement, want 1", pool.Count())
	}
	if len(store.created) != 1 || store.created[0].w != 64 || store.created[0].h != 64 {
		t.Errorf("store created %+v, want one 64x64 texture", store.created)
	}
}

func TestTexturePool_PlaceAlphaUploadsRChannel(t *testing.T) {
	store := &mockStore{}
	pool, _ := NewTexturePool(store, testPoolConfig())

	img := &GlyphImage{Width: 2, Height: 2, Format: FormatAlpha, Pixels: []byte{10, 20, 30, 40}}
	g, err := pool.Place(img)
	if err != nil {
		t.Fatalf("Place() = %v", err)
	}
	if g.Color {
		t.Error("alpha glyph marked Color")
	}
	if g.Width != 2 || g.Height != 2 {
		t.Errorf("rendered size = %dx%d, want 2x2", g.Width, g.Height)
	}

	if len(store.updates) != 1 {
		t.Fatalf("store received %d updates, want 1", len(store.updates))
	}
	up := store.updates[0]
	// Upload covers the padded rectangle (glyph + 1px margin).
	if up.w != 3 || up.h != 3 {
		t.Fatalf("upload region %dx%d, want 3x3", up.w, up.h)
	}
	if len(up.pixels) != 3*3*4 {
		t.Fatalf("upload buffer %d bytes, want %d", len(up.pixels), 3*3*4)
	}

	// Coverage lands in R, other channels stay zero, margin stays clear.
	wantR := [][2]int{{0, 10}, {1, 20}, {2, 30}, {3, 40}} // glyph pixel index -> coverage
	for _, rw := range wantR {
		px := rw[0]
		row := px / 2
		col := px % 2
		off := (row*3 + col) * 4
		if int(up.pixels[off]) != rw[1] {
			t.Errorf("pixel (%d,%d) R = %d, want %d", col, row, up.pixels[off], rw[1])
		}
		if up.pixels[off+1] != 0 || up.pixels[off+2] != 0 || up.pixels[off+3] != 0 {
			t.Errorf("pixel (%d,%d) GBA = (%d,%d,%d), want zeros",
				col, row, up.pixels[off+1], up.pixels[off+2], up.pixels[off+3])
		}
	}
	// Margin column x=2 of row 0 must be transparent.
	off := 2 * 4
	for i := range 4 {
		if up.pixels[off+i] != 0 {
			t.Errorf("margin pixel byte %d = %d, want 0", i, up.pixels[off+i])
		}
	}
}

func TestTexturePool_PlaceColorPassthrough(t *testing.T) {
	store := &mockStore{}
	pool, _ := NewTexturePool(store, testPoolConfig())

	img := colorImage(2, 1)
	g, err := pool.Place(img)
	if err != nil {
		t.Fatalf("Place() = %v", err)
	}
	if !g.Color {
		t.Error("color glyph not marked Color")
	}

	up := store.updates[0]
	for i := range 8 {
		if up.pixels[i] != byte(i+1) {
			t.Errorf("color byte %d = %d, want %d", i, up.pixels[i], i+1)
		}
	}
}

func TestTexturePool_OversizedGlyph(t *testing.T) {
	store := &mockStore{}
	pool, _ := NewTexturePool(store, testPoolConfig())

	// 64x10 pads to 65x11 and cannot fit a 64px texture.
	_, err := pool.Place(alphaImage(64, 10))
	var oversized *OversizedGlyphError
	if !errors.As(err, &oversized) {
		t.Fatalf("Place() error = %v, want *OversizedGlyphError", err)
	}
	if oversized.Width != 64 || oversized.Height != 10 {
		t.Errorf("error dims %dx%d, want 64x10", oversized.Width, oversized.Height)
	}
	if pool.Count() != 0 {
		t.Error("oversized placement created a texture")
	}

	// The largest placeable glyph (63x63, padded to 64x64) still fits.
	if _, err := pool.Place(alphaImage(63, 63)); err != nil {
		t.Errorf("Place(63x63) = %v, want success", err)
	}
}

func TestTexturePool_GrowthAndFirstFit(t *testing.T) {
	store := &mockStore{}
	pool, _ := NewTexturePool(store, testPoolConfig())

	// Fill texture 0 completely.
	if _, err := pool.Place(alphaImage(63, 63)); err != nil {
		t.Fatalf("fill placement: %v", err)
	}
	// Next glyph forces growth.
	g, err := pool.Place(alphaImage(10, 10))
	if err != nil {
		t.Fatalf("Place after full texture: %v", err)
	}
	if g.Texture != 1 {
		t.Errorf("glyph landed on texture %d, want 1", g.Texture)
	}
	if pool.Count() != 2 {
		t.Errorf("Count() = %d, want 2", pool.Count())
	}

	// Texture 0 is full, so the next small glyph goes to texture 1 as well.
	g2, err := pool.Place(alphaImage(5, 5))
	if err != nil {
		t.Fatalf("Place() = %v", err)
	}
	if g2.Texture != 1 {
		t.Errorf("glyph landed on texture %d, want 1 (first fit in creation order)", g2.Texture)
	}
}

func TestTexturePool_GrowthLeavesEarlierTexturesUntouched(t *testing.T) {
	store := &mockStore{}
	pool, _ := NewTexturePool(store, testPoolConfig())

	if _, err := pool.Place(alphaImage(63, 63)); err != nil {
		t.Fatalf("fill placement: %v", err)
	}
	usedBefore := pool.Utilization(0)
	updatesBefore := len(store.updates)

	if _, err := pool.Place(alphaImage(20, 20)); err != nil {
		t.Fatalf("growth placement: %v", err)
	}

	if got := pool.Utilization(0); got != usedBefore {
		t.Errorf("texture 0 utilization changed %v -> %v during growth", usedBefore, got)
	}
	for _, up := range store.updates[updatesBefore:] {
		if up.id == store.created[0].id {
			t.Error("growth placement uploaded into texture 0")
		}
	}
}

func TestTexturePool_PoolFull(t *testing.T) {
	store := &mockStore{}
	cfg := testPoolConfig()
	cfg.MaxTextures = 1
	pool, _ := NewTexturePool(store, cfg)

	if _, err := pool.Place(alphaImage(63, 63)); err != nil {
		t.Fatalf("fill placement: %v", err)
	}
	_, err := pool.Place(alphaImage(10, 10))
	var full *PoolFullError
	if !errors.As(err, &full) {
		t.Fatalf("Place() error = %v, want *PoolFullError", err)
	}
	if full.MaxTextures != 1 {
		t.Errorf("PoolFullError.MaxTextures = %d, want 1", full.MaxTextures)
	}
}

func TestTexturePool_ReleaseReuse(t *testing.T) {
	store := &mockStore{}
	pool, _ := NewTexturePool(store, testPoolConfig())

	g, err := pool.Place(alphaImage(16, 16))
	if err != nil {
		t.Fatalf("Place() = %v", err)
	}
	pool.Release(g)

	g2, err := pool.Place(alphaImage(16, 16))
	if err != nil {
		t.Fatalf("Place after Release: %v", err)
	}
	if g2.Texture != g.Texture || g2.AtlasX != g.AtlasX || g2.AtlasY != g.AtlasY {
		t.Errorf("reused slot = texture %d (%d,%d), want texture %d (%d,%d)",
			g2.Texture, g2.AtlasX, g2.AtlasY, g.Texture, g.AtlasX, g.AtlasY)
	}
	if pool.Count() != 1 {
		t.Errorf("Count() = %d, want 1 (reuse must not grow the pool)", pool.Count())
	}
}

func TestTexturePool_UploadErrorFreesSlot(t *testing.T) {
	store := &mockStore{}
	pool, _ := NewTexturePool(store, testPoolConfig())

	// Prime the pool so the failing placement does not go through grow().
	if _, err := pool.Place(alphaImage(8, 8)); err != nil {
		t.Fatalf("priming placement: %v", err)
	}

	bang := errors.New("device lost")
	store.updateErr = bang
	_, err := pool.Place(alphaImage(8, 8))
	if !errors.Is(err, bang) {
		t.Fatalf("Place() error = %v, want wrapped %v", err, bang)
	}

	// The slot allocated for the failed upload must be reusable.
	store.updateErr = nil
	used := pool.Utilization(0)
	g, err := pool.Place(alphaImage(8, 8))
	if err != nil {
		t.Fatalf("Place after recovery: %v", err)
	}
	if g == nil {
		t.Fatal("Place returned nil glyph")
	}
	if got := pool.Utilization(0); got <= used {
		t.Errorf("utilization %v after recovery, want > %v", got, used)
	}
}

func TestTexturePool_HandleAndIDs(t *testing.T) {
	store := &mockStore{}
	pool, _ := NewTexturePool(store, testPoolConfig())

	if _, err := pool.Handle(0); !errors.Is(err, ErrInvalidTexture) {
		t.Errorf("Handle(0) on empty pool error = %v, want ErrInvalidTexture", err)
	}

	g, _ := pool.Place(alphaImage(4, 4))
	id, err := pool.Handle(g.Texture)
	if err != nil {
		t.Fatalf("Handle(%d) = %v", g.Texture, err)
	}
	if id != store.created[0].id {
		t.Errorf("Handle returned %d, want %d", id, store.created[0].id)
	}
	ids := pool.TextureIDs()
	if len(ids) != 1 || ids[0] != id {
		t.Errorf("TextureIDs() = %v, want [%d]", ids, id)
	}
}

func TestTexturePool_MemoryUsage(t *testing.T) {
	store := &mockStore{}
	pool, _ := NewTexturePool(store, testPoolConfig())
	if pool.MemoryUsage() != 0 {
		t.Errorf("MemoryUsage() = %d on empty pool, want 0", pool.MemoryUsage())
	}
	pool.Place(alphaImage(4, 4))
	want := 64 * 64 * 4
	if pool.MemoryUsage() != want {
		t.Errorf("MemoryUsage() = %d, want %d", pool.MemoryUsage(), want)
	}
}

func TestTexturePool_Reset(t *testing.T) {
	store := &mockStore{}
	pool, _ := NewTexturePool(store, testPoolConfig())

	pool.Place(alphaImage(63, 63))
	pool.Reset()

	if pool.Count() != 1 {
		t.Errorf("Count() = %d after Reset, want 1 (textures are kept)", pool.Count())
	}
	if got := pool.Utilization(0); got != 0 {
		t.Errorf("Utilization(0) = %v after Reset, want 0", got)
	}
	// Full-size placement fits again without growing.
	g, err := pool.Place(alphaImage(63, 63))
	if err != nil {
		t.Fatalf("Place after Reset: %v", err)
	}
	if g.Texture != 0 {
		t.Errorf("placement went to texture %d, want 0", g.Texture)
	}
}

func TestTexturePool_UnsupportedFormatPanics(t *testing.T) {
	store := &mockStore{}
	pool, _ := NewTexturePool(store, testPoolConfig())

	defer func() {
		if recover() == nil {
			t.Error("Place with invalid format did not panic")
		}
	}()
	img := &GlyphImage{Width: 2, Height: 2, Format: GlyphFormat(99), Pixels: make([]byte, 16)}
	pool.Place(img)
}
