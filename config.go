package textatlas

// Config holds the tunables for a glyph Batcher and the pool and cache
// underneath it.
type Config struct {
	// TextureSize is the atlas texture size (width = height).
	// Must be a power of 2. Default: 512
	TextureSize int

	// Padding is the gap kept around each glyph to prevent sampling bleed.
	// Default: 1
	Padding int

	// MaxTextures limits how many atlas textures the pool may create.
	// Default: 32
	MaxTextures int

	// CacheCapacity is the rendered-glyph cache entry limit.
	// 0 selects DefaultCacheCapacity.
	CacheCapacity int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		TextureSize:   512,
		Padding:       1,
		MaxTextures:   32,
		CacheCapacity: DefaultCacheCapacity,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TextureSize < 64 {
		return &ConfigError{Field: "TextureSize", Reason: "must be at least 64"}
	}
	if c.TextureSize > 8192 {
		return &ConfigError{Field: "TextureSize", Reason: "must be at most 8192"}
	}
	if c.TextureSize&(c.TextureSize-1) != 0 {
		return &ConfigError{Field: "TextureSize", Reason: "must be power of 2"}
	}
	if c.Padding < 0 {
		return &ConfigError{Field: "Padding", Reason: "must be non-negative"}
	}
	if c.Padding >= c.TextureSize/4 {
		return &ConfigError{Field: "Padding", Reason: "must be less than quarter TextureSize"}
	}
	if c.MaxTextures < 1 {
		return &ConfigError{Field: "MaxTextures", Reason: "must be at least 1"}
	}
	if c.MaxTextures > 256 {
		return &ConfigError{Field: "MaxTextures", Reason: "must be at most 256"}
	}
	if c.CacheCapacity < 0 {
		return &ConfigError{Field: "CacheCapacity", Reason: "must be non-negative"}
	}
	return nil
}
