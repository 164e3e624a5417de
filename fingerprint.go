package textatlas

import "math"

// FontID identifies a font to the cache and the scaler. It is an opaque
// capability: the caller (usually a Scaler implementation) assigns a unique
// value per distinct font face and variation setting, and the cache never
// inspects font data itself. Two fonts with the same FontID are treated as
// the same font.
type FontID uint64

// GlyphID is a glyph index within a font, as produced by text shaping.
type GlyphID uint32

// SubpixelOffset is the fractional part of a glyph's pen position, in
// [0, 1) per axis. It is forwarded verbatim to the scaler so hinting and
// antialiasing can account for the glyph's placement within a pixel.
type SubpixelOffset struct {
	X float64
	Y float64
}

// Fingerprint is the identity of a rendered glyph bitmap. Two requests with
// equal fingerprints are interchangeable: same glyph, same font, same size
// bucket, same subpixel bucket. It is a comparable value usable as a map key.
//
// Size is quantized to tenths of a pixel and the subpixel offset to tenths
// of a pixel per axis, so nearby positions share cache entries instead of
// rendering near-identical bitmaps.
type Fingerprint struct {
	Font       FontID
	Glyph      GlyphID
	SizeBucket uint16
	SubpixelX  uint8
	SubpixelY  uint8
}

// MakeFingerprint builds the cache key for a glyph at the given size and
// subpixel offset. Size is clamped to [0, 6553.5] before bucketing.
func MakeFingerprint(font FontID, glyph GlyphID, size float64, offset SubpixelOffset) Fingerprint {
	return Fingerprint{
		Font:       font,
		Glyph:      glyph,
		SizeBucket: quantizeSize(size),
		SubpixelX:  quantizeOffset(offset.X),
		SubpixelY:  quantizeOffset(offset.Y),
	}
}

// FractOffset extracts the subpixel offset of a pen position. The result is
// normalized into [0, 1) per axis, so negative positions quantize the same
// way as positive ones.
func FractOffset(x, y float64) SubpixelOffset {
	return SubpixelOffset{
		X: x - math.Floor(x),
		Y: y - math.Floor(y),
	}
}

// quantizeSize maps a pixel size to its bucket: tenths of a pixel,
// truncated. 12.0 and 12.04 share a bucket; 12.0 and 12.15 do not.
func quantizeSize(size float64) uint16 {
	if size <= 0 {
		return 0
	}
	s := size * 10
	if s >= math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(s)
}

// quantizeOffset maps a fractional offset to one of ten buckets per pixel.
// The input is expected in [0, 1); out-of-range values are clamped so the
// result always fits [0, 9].
func quantizeOffset(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	b := int(v * 10)
	if b > 9 {
		b = 9
	}
	return uint8(b)
}
