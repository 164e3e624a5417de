package textatlas

// Quad is one glyph rectangle ready for the GPU: a destination rectangle in
// screen space and the matching texture coordinates in the atlas.
type Quad struct {
	// Position of quad corners in screen space, pixels.
	X0, Y0, X1, Y1 float32

	// UV coordinates into the atlas texture, [0, 1].
	U0, V0, U1, V1 float32
}

// DrawCommand groups every quad of a frame that samples the same texture
// with the same pixel format. A frame of text produces one command per
// (texture, format) pair actually used, so draw call count stays bounded by
// the pool size rather than the glyph count.
type DrawCommand struct {
	// Texture is the GPU handle of the atlas texture to bind.
	Texture TextureID

	// Color selects the pipeline: false samples an alpha mask and tints it
	// with the text color, true samples RGBA directly.
	Color bool

	// Quads holds the glyph rectangles, in emission order.
	Quads []Quad
}

// DrawOptions carries the per-frame parameters a Drawer applies to every
// command: the viewport that maps screen pixels to clip space and the text
// color. Color is straight (non-premultiplied) RGBA in [0, 1]. Alpha-mask
// commands are tinted with the whole color; color-bitmap commands keep
// their own colors and are scaled by Color's alpha only.
type DrawOptions struct {
	ViewportWidth  int
	ViewportHeight int
	Color          [4]float32
}

// Drawer consumes the commands a Batcher emits for one frame. backend/wgpu
// implements it over a HAL device; tests and examples implement it with
// recording stubs.
type Drawer interface {
	Draw(commands []DrawCommand, opts DrawOptions) error
}
