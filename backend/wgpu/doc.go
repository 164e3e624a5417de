// Package wgpu submits glyph atlases and draw commands to a GPU through the
// gogpu/wgpu hardware abstraction layer.
//
// The Renderer implements textatlas.TextureStore on top of hal.Device and
// hal.Queue: each atlas texture keeps a CPU-side RGBA mirror, UpdateTexture
// writes into the mirror and marks it dirty, and Flush uploads dirty mirrors
// with a single queue.WriteTexture per texture. It also implements
// textatlas.Drawer: Draw builds per-frame vertex, index, and uniform buffers
// from the batcher's commands and records one indexed draw per command into
// a render pass on the configured target view.
//
// Two render pipelines share one WGSL module and one vertex layout
// (16 bytes per vertex: position vec2, tex_coord vec2). The alpha pipeline
// samples the atlas R channel and multiplies it with the uniform text color;
// the color pipeline samples RGBA directly and scales by the uniform alpha.
// Both blend premultiplied over the target.
//
// Shader modules are created from WGSL source when the device ingests it;
// otherwise the source is compiled to SPIR-V with gogpu/naga and retried.
//
// Usage with an application-owned device:
//
//	renderer, err := wgpu.NewRenderer(device, queue, wgpu.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer renderer.Destroy()
//
//	batcher, err := textatlas.NewBatcher(renderer, scaler, textatlas.DefaultConfig())
//	...
//
//	// Per frame:
//	renderer.SetTarget(surfaceView, width, height)
//	batcher.DrawRun(run)
//	err = renderer.Draw(batcher.Flush(), textatlas.DrawOptions{
//	    ViewportWidth:  width,
//	    ViewportHeight: height,
//	    Color:          [4]float32{0, 0, 0, 1},
//	})
//
// Applications that record into their own render pass use BuildFrame and
// RecordDraws instead of Draw; Flush must still run before the pass begins
// so atlas uploads are ordered ahead of the draws that sample them.
package wgpu
