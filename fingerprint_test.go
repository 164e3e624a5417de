package textatlas

import (
	"math"
	"testing"
)

func TestQuantizeSize(t *testing.T) {
	tests := []struct {
		size float64
		want uint16
	}{
		{0, 0},
		{-3, 0},
		{12.0, 120},
		{12.04, 120},
		{12.15, 121},
		{16.0, 160},
		{6553.5, 65535},
		{100000, math.MaxUint16},
	}
	for _, tt := range tests {
		if got := quantizeSize(tt.size); got != tt.want {
			t.Errorf("quantizeSize(%v) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestQuantizeOffset(t *testing.T) {
	tests := []struct {
		v    float64
		want uint8
	}{
		{0, 0},
		{0.04, 0},
		{0.06, 0},
		{0.099, 0},
		{0.15, 1},
		{0.5, 5},
		{0.95, 9},
		{0.999999, 9},
	}
	for _, tt := range tests {
		if got := quantizeOffset(tt.v); got != tt.want {
			t.Errorf("quantizeOffset(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestFractOffset(t *testing.T) {
	tests := []struct {
		x, y         float64
		wantX, wantY float64
	}{
		{10.25, 3.5, 0.25, 0.5},
		{10, 3, 0, 0},
		{-0.25, -1.75, 0.75, 0.25}, // negatives normalize into [0, 1)
	}
	for _, tt := range tests {
		got := FractOffset(tt.x, tt.y)
		if math.Abs(got.X-tt.wantX) > 1e-12 || math.Abs(got.Y-tt.wantY) > 1e-12 {
			t.Errorf("FractOffset(%v, %v) = %+v, want (%v, %v)",
				tt.x, tt.y, got, tt.wantX, tt.wantY)
		}
	}
}

func TestMakeFingerprint_Buckets(t *testing.T) {
	base := MakeFingerprint(1, 42, 16.0, SubpixelOffset{X: 0.04, Y: 0})

	// Nearby subpixel offsets share the fingerprint.
	same := MakeFingerprint(1, 42, 16.0, SubpixelOffset{X: 0.06, Y: 0})
	if base != same {
		t.Errorf("offsets 0.04 and 0.06 produced different fingerprints:\n%+v\n%+v", base, same)
	}

	// A different tenth-of-a-pixel bucket does not.
	diff := MakeFingerprint(1, 42, 16.0, SubpixelOffset{X: 0.15, Y: 0})
	if base == diff {
		t.Error("offsets 0.04 and 0.15 produced the same fingerprint")
	}

	// Every identity component participates.
	if base == MakeFingerprint(2, 42, 16.0, SubpixelOffset{X: 0.04, Y: 0}) {
		t.Error("font change did not change the fingerprint")
	}
	if base == MakeFingerprint(1, 43, 16.0, SubpixelOffset{X: 0.04, Y: 0}) {
		t.Error("glyph change did not change the fingerprint")
	}
	if base == MakeFingerprint(1, 42, 17.0, SubpixelOffset{X: 0.04, Y: 0}) {
		t.Error("size change did not change the fingerprint")
	}
	if base == MakeFingerprint(1, 42, 16.0, SubpixelOffset{X: 0.04, Y: 0.2}) {
		t.Error("vertical offset change did not change the fingerprint")
	}
}

func TestMakeFingerprint_SizeTenths(t *testing.T) {
	a := MakeFingerprint(1, 1, 12.0, SubpixelOffset{})
	b := MakeFingerprint(1, 1, 12.04, SubpixelOffset{})
	c := MakeFingerprint(1, 1, 12.15, SubpixelOffset{})
	if a != b {
		t.Error("sizes 12.0 and 12.04 should share a bucket")
	}
	if a == c {
		t.Error("sizes 12.0 and 12.15 should not share a bucket")
	}
}
