// Package textatlas renders shaped glyph runs into GPU texture atlases.
//
// # Overview
//
// textatlas sits between a text layout engine and the GPU: it takes shaped
// glyph runs (glyph IDs with positions and advances), rasterizes each glyph
// once per distinct fingerprint, packs the bitmaps into a pool of atlas
// textures, and emits draw commands batched by texture and pixel format.
//
// # Quick Start
//
//	import "github.com/gogpu/textatlas"
//
//	// store implements textatlas.TextureStore (see backend/wgpu or
//	// integration/gpurender), scaler implements textatlas.Scaler (see gotext).
//	batcher, err := textatlas.NewBatcher(store, scaler, textatlas.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Per frame: feed shaped runs, then take the draw commands.
//	batcher.DrawRun(run)
//	for _, cmd := range batcher.Flush() {
//	    // bind cmd.Texture, draw cmd.Quads with the alpha or color pipeline
//	}
//
// # Architecture
//
// The glyph path is cache -> pool -> commands:
//   - Fingerprint: glyph ID + font + size bucket + subpixel bucket
//   - Cache: bounded LRU from fingerprint to atlas placement; evictions
//     hand their rectangles back to the pool for reuse
//   - TexturePool: fixed-size RGBA textures, created lazily, packed with a
//     skyline allocator (internal/pack)
//   - Batcher: walks runs, advances the pen, and groups quads into one
//     DrawCommand per (texture, format) pair
//
// Shaping, bidi analysis, and line breaking happen upstream; this package
// consumes their output. The layoutcache subpackage memoizes that upstream
// work, gotext implements Scaler over go-text/typesetting, and the
// backend/wgpu and integration/gpurender subpackages implement
// TextureStore for real devices.
//
// # Coordinate System
//
//   - Origin (0,0) at top-left, X right, Y down
//   - Run positions are baseline pen positions in pixels
//   - Glyph bitmaps carry y-up bearings, flipped during quad emission
//
// # Concurrency
//
// Batcher, Cache, and TexturePool are single-goroutine types. Use
// ConcurrentBatcher when a frame is assembled from multiple goroutines.
package textatlas
