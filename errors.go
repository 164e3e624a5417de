package textatlas

import (
	"errors"
	"fmt"
)

// Sentinel errors for the textatlas package.
var (
	// ErrNilScaler is returned when a Batcher is constructed without a scaler.
	ErrNilScaler = errors.New("textatlas: scaler is nil")

	// ErrNilTextureStore is returned when a TexturePool is constructed
	// without a texture store.
	ErrNilTextureStore = errors.New("textatlas: texture store is nil")

	// ErrAtlasFull signals that a texture's allocator has no room left for
	// the requested rectangle. Callers treat it as control flow: try the
	// next texture or grow the pool.
	ErrAtlasFull = errors.New("textatlas: atlas region full")

	// ErrInvalidTexture is returned when a texture index is out of range
	// for the pool.
	ErrInvalidTexture = errors.New("textatlas: invalid texture index")
)

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "textatlas: invalid config." + e.Field + ": " + e.Reason
}

// OversizedGlyphError is returned when a rasterized glyph cannot fit an
// empty atlas texture even after padding. The glyph is skipped and cached
// as blank; rendering continues without it.
type OversizedGlyphError struct {
	Width  int
	Height int
	Max    int
}

func (e *OversizedGlyphError) Error() string {
	return fmt.Sprintf("textatlas: glyph %dx%d exceeds maximum atlas slot %dx%d",
		e.Width, e.Height, e.Max, e.Max)
}

// PoolFullError is returned when every texture is full and the pool has
// reached its configured texture limit.
type PoolFullError struct {
	MaxTextures int
}

func (e *PoolFullError) Error() string {
	return fmt.Sprintf("textatlas: all %d textures are full", e.MaxTextures)
}
