// Package layoutcache memoizes text layout results. Shaping and line
// breaking dominate text frame cost; storing the finished layout keyed by
// content and layout parameters lets unchanged paragraphs skip both.
//
// The cache does not know the layout type: it is generic over whatever the
// caller's layout engine produces. The key captures everything that can
// change a layout: the text itself (hashed), the font, the size, the wrap
// width, and the resolved base direction.
package layoutcache

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/gogpu/textatlas"
)

// Key identifies a cached layout. All layout inputs participate; equal
// keys mean interchangeable layouts.
type Key struct {
	// TextHash is the FNV-1a hash of the paragraph text.
	TextHash uint64

	// Font identifies the font the layout was produced with.
	Font textatlas.FontID

	// SizeBits is the IEEE 754 bit pattern of the font size (float32).
	// Bit patterns compare exactly; float equality does not.
	SizeBits uint32

	// MaxWidthBits is the bit pattern of the wrap width, or of -1 when the
	// layout is unwrapped.
	MaxWidthBits uint32

	// Direction is the resolved base direction: never DirectionAuto.
	Direction Direction
}

// NewKey builds the cache key for a paragraph. A DirectionAuto dir is
// resolved from the text content before keying, so "auto" and an explicit
// direction that matches the content share cache entries. Pass a negative
// maxWidth for unwrapped layout.
func NewKey(text string, font textatlas.FontID, size float64, maxWidth float64, dir Direction) Key {
	if maxWidth < 0 {
		maxWidth = -1
	}
	return Key{
		TextHash:     hashString(text),
		Font:         font,
		SizeBits:     math.Float32bits(float32(size)),
		MaxWidthBits: math.Float32bits(float32(maxWidth)),
		Direction:    ResolveDirection(text, dir),
	}
}

// hashString computes the FNV-1a hash of a string.
func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}

// hash computes a shard-selection hash over all key fields.
func (k *Key) hash() uint64 {
	var buf [25]byte
	binary.LittleEndian.PutUint64(buf[0:], k.TextHash)
	binary.LittleEndian.PutUint64(buf[8:], uint64(k.Font))
	binary.LittleEndian.PutUint32(buf[16:], k.SizeBits)
	binary.LittleEndian.PutUint32(buf[20:], k.MaxWidthBits)
	buf[24] = byte(k.Direction)
	h := fnv.New64a()
	_, _ = h.Write(buf[:])
	return h.Sum64()
}
