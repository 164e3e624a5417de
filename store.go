package textatlas

// TextureID is an opaque GPU texture handle issued by a TextureStore.
// The pool maps its stable texture indices to these handles; draw commands
// carry them back to the renderer.
type TextureID uint64

// TextureStore abstracts the GPU for the texture pool: creating atlas
// textures and uploading glyph pixels into them. Implementations live in
// backend/wgpu (raw HAL device) and integration/gpurender (shared
// application context).
//
// CreateTexture must return a fully transparent RGBA texture of the given
// size. UpdateTexture replaces the rectangle at (x, y) with the given
// pixels, tightly packed RGBA rows of 4*width bytes.
type TextureStore interface {
	CreateTexture(width, height int) (TextureID, error)
	UpdateTexture(id TextureID, x, y, width, height int, pixels []byte) error
}
