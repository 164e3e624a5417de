//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/textatlas"
)

// Vertex layout shared by both glyph pipelines: position vec2<f32> at
// shader location 0, texture coordinate vec2<f32> at location 1.
const (
	vertexStride    = 16
	verticesPerQuad = 4
	indicesPerQuad  = 6

	// uniformSize is the byte size of GlyphUniforms in the shader:
	// screen_size vec4<f32> followed by color vec4<f32>.
	uniformSize = 32
)

// maxQuadsUint16 is the largest quad count addressable with 16-bit indices.
// Quad 16383 emits vertices 65532..65535, the last valid uint16 values.
const maxQuadsUint16 = 16384

func putF32(buf []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
}

// countQuads returns the total quad count across all commands.
func countQuads(commands []textatlas.DrawCommand) int {
	n := 0
	for _, cmd := range commands {
		n += len(cmd.Quads)
	}
	return n
}

// buildQuadVertexData serializes every quad of every command, in command
// order, as four vertices each. The corner order pairs with the index
// pattern from buildQuadIndexData to form two triangles per quad.
func buildQuadVertexData(commands []textatlas.DrawCommand) []byte {
	data := make([]byte, countQuads(commands)*verticesPerQuad*vertexStride)
	off := 0
	put := func(x, y, u, v float32) {
		putF32(data, off, x)
		putF32(data, off+4, y)
		putF32(data, off+8, u)
		putF32(data, off+12, v)
		off += vertexStride
	}
	for _, cmd := range commands {
		for _, q := range cmd.Quads {
			put(q.X0, q.Y0, q.U0, q.V0)
			put(q.X1, q.Y0, q.U1, q.V0)
			put(q.X1, q.Y1, q.U1, q.V1)
			put(q.X0, q.Y1, q.U0, q.V1)
		}
	}
	return data
}

// buildQuadIndexData emits the 16-bit index pattern 0,1,2 2,3,0 for each
// quad. Callers must keep quadCount within maxQuadsUint16.
func buildQuadIndexData(quadCount int) []byte {
	data := make([]byte, quadCount*indicesPerQuad*2)
	off := 0
	for i := 0; i < quadCount; i++ {
		base := uint16(i * verticesPerQuad)
		for _, rel := range [indicesPerQuad]uint16{0, 1, 2, 2, 3, 0} {
			binary.LittleEndian.PutUint16(data[off:], base+rel)
			off += 2
		}
	}
	return data
}

// makeGlyphUniform packs the per-frame uniform block. The color arrives
// straight from DrawOptions and is premultiplied here; the fragment stages
// expect premultiplied values.
func makeGlyphUniform(viewportWidth, viewportHeight int, color [4]float32) [uniformSize]byte {
	var data [uniformSize]byte
	putF32(data[:], 0, float32(viewportWidth))
	putF32(data[:], 4, float32(viewportHeight))
	a := color[3]
	putF32(data[:], 16, color[0]*a)
	putF32(data[:], 20, color[1]*a)
	putF32(data[:], 24, color[2]*a)
	putF32(data[:], 28, a)
	return data
}
