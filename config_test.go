package textatlas

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v, want nil", err)
	}
	if cfg.TextureSize != 512 {
		t.Errorf("TextureSize = %d, want 512", cfg.TextureSize)
	}
	if cfg.Padding != 1 {
		t.Errorf("Padding = %d, want 1", cfg.Padding)
	}
	if cfg.CacheCapacity != DefaultCacheCapacity {
		t.Errorf("CacheCapacity = %d, want %d", cfg.CacheCapacity, DefaultCacheCapacity)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"texture size too small", func(c *Config) { c.TextureSize = 32 }, "TextureSize"},
		{"texture size too large", func(c *Config) { c.TextureSize = 16384 }, "TextureSize"},
		{"texture size not pow2", func(c *Config) { c.TextureSize = 500 }, "TextureSize"},
		{"negative padding", func(c *Config) { c.Padding = -1 }, "Padding"},
		{"padding too large", func(c *Config) { c.Padding = 200 }, "Padding"},
		{"zero max textures", func(c *Config) { c.MaxTextures = 0 }, "MaxTextures"},
		{"excessive max textures", func(c *Config) { c.MaxTextures = 1000 }, "MaxTextures"},
		{"negative cache capacity", func(c *Config) { c.CacheCapacity = -1 }, "CacheCapacity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() returned %T, want *ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("ConfigError.Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}
