// Package gpurender bridges the texture pool to host applications that own
// their GPU context through gpucontext.
//
// Store implements textatlas.TextureStore without touching the GPU at call
// time: atlas pages live in CPU mirrors, and Sync pushes dirty pages through
// the host renderer once per frame. The data flow is:
//
//	TexturePool (CreateTexture/UpdateTexture) -> CPU mirror -> Sync -> GPU texture
//
// gpucontext renderers create and replace whole textures; there is no
// partial-region upload. Store therefore applies region updates to the
// mirror and re-uploads the full page on Sync, which for glyph atlases is
// a handful of textures at most.
//
// # Usage
//
// With a gogpu application:
//
//	store, err := gpurender.New(app.GPUContextProvider())
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	batcher, err := textatlas.NewBatcher(store, scaler, textatlas.DefaultConfig())
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    // ... atlas.DrawRun for the frame's text ...
//	    if _, err := store.Sync(dc.AsTextureDrawer().TextureCreator()); err != nil {
//	        log.Print(err)
//	    }
//	    // bind store.Texture(id) pages in the host's own text pass
//	})
//
// # Thread Safety
//
// Store is NOT safe for concurrent use. Drive it from the frame loop, or
// wrap the owning atlas in textatlas.NewConcurrent and call Sync from the
// same goroutine that renders.
//
// # Integration Without Circular Imports
//
// The package names only gpucontext interfaces plus a local TextureCreator
// declaration matching the creator surface gogpu renderers expose, so no
// dependency on a concrete GPU framework is needed.
package gpurender
