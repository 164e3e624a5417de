//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/textatlas"
	"github.com/gogpu/wgpu/hal"
)

// Frame holds the GPU buffers for one batch of commands: a shared vertex
// and index buffer covering every quad, the uniform block, and one draw
// record per command. Frames are single-use; destroy after recording.
type Frame struct {
	vertBuf     hal.Buffer
	idxBuf      hal.Buffer
	uniformBuf  hal.Buffer
	uniformBind hal.BindGroup
	draws       []frameDraw
}

// frameDraw is one indexed draw: a contiguous index range over the shared
// buffers, sampling one atlas with one pipeline.
type frameDraw struct {
	color      bool
	atlas      hal.BindGroup
	firstIndex uint32
	indexCount uint32
}

// BuildFrame serializes commands into GPU buffers for an external render
// pass. Callers flush atlas uploads first, record with RecordDraws inside
// their pass, and destroy the frame once the pass is submitted. Draw wraps
// this sequence for the common case.
func (r *Renderer) BuildFrame(commands []textatlas.DrawCommand, opts textatlas.DrawOptions) (*Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buildFrameLocked(commands, opts)
}

func (r *Renderer) buildFrameLocked(commands []textatlas.DrawCommand, opts textatlas.DrawOptions) (*Frame, error) {
	quadCount := countQuads(commands)
	if quadCount == 0 {
		return &Frame{}, nil
	}
	if quadCount > r.config.MaxQuads {
		return nil, fmt.Errorf("%w: %d quads exceeds max %d", ErrQuadOverflow, quadCount, r.config.MaxQuads)
	}
	if err := r.ensurePipelinesLocked(); err != nil {
		return nil, err
	}

	frame := &Frame{}
	var err error
	if frame.vertBuf, err = r.createFilledBuffer("glyph_vertices", buildQuadVertexData(commands), gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst); err != nil {
		return nil, err
	}
	if frame.idxBuf, err = r.createFilledBuffer("glyph_indices", buildQuadIndexData(quadCount), gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst); err != nil {
		r.destroyFrameLocked(frame)
		return nil, err
	}
	uniform := makeGlyphUniform(opts.ViewportWidth, opts.ViewportHeight, opts.Color)
	if frame.uniformBuf, err = r.createFilledBuffer("glyph_uniforms", uniform[:], gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst); err != nil {
		r.destroyFrameLocked(frame)
		return nil, err
	}
	if frame.uniformBind, err = r.pipes.createUniformBindGroup(r.device, frame.uniformBuf, uniformSize); err != nil {
		r.destroyFrameLocked(frame)
		return nil, err
	}

	// The vertex and index buffers hold every quad in command order, so
	// each command maps to one contiguous index range.
	firstIndex := uint32(0)
	for _, cmd := range commands {
		if len(cmd.Quads) == 0 {
			continue
		}
		t, ok := r.textures[cmd.Texture]
		if !ok {
			r.destroyFrameLocked(frame)
			return nil, fmt.Errorf("%w: %d", ErrUnknownTexture, cmd.Texture)
		}
		if t.bind == nil {
			t.bind, err = r.pipes.createAtlasBindGroup(r.device, t.view, fmt.Sprintf("glyph_atlas_bind_%d", cmd.Texture))
			if err != nil {
				r.destroyFrameLocked(frame)
				return nil, err
			}
		}
		indexCount := uint32(len(cmd.Quads) * indicesPerQuad)
		frame.draws = append(frame.draws, frameDraw{
			color:      cmd.Color,
			atlas:      t.bind,
			firstIndex: firstIndex,
			indexCount: indexCount,
		})
		firstIndex += indexCount
	}
	return frame, nil
}

func (r *Renderer) createFilledBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s buffer: %w", label, err)
	}
	r.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// RecordDraws records the frame's draws into an in-progress render pass.
// Pipeline and atlas bind switches are skipped while consecutive draws
// share them; the batcher orders commands to make such runs common.
func (r *Renderer) RecordDraws(pass hal.RenderPassEncoder, frame *Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recordDrawsLocked(pass, frame)
}

func (r *Renderer) recordDrawsLocked(pass hal.RenderPassEncoder, frame *Frame) {
	if frame == nil || len(frame.draws) == 0 || r.pipes == nil {
		return
	}
	pass.SetVertexBuffer(0, frame.vertBuf, 0)
	pass.SetIndexBuffer(frame.idxBuf, gputypes.IndexFormatUint16, 0)
	pass.SetBindGroup(0, frame.uniformBind, nil)

	var pipeline hal.RenderPipeline
	var atlas hal.BindGroup
	for _, d := range frame.draws {
		if p := r.pipes.pipelineFor(d.color); p != pipeline {
			pipeline = p
			pass.SetPipeline(pipeline)
		}
		if d.atlas != atlas {
			atlas = d.atlas
			pass.SetBindGroup(1, atlas, nil)
		}
		pass.DrawIndexed(d.indexCount, 1, d.firstIndex, 0, 0)
	}
}

// DestroyFrame releases the frame's buffers and uniform bind group. Atlas
// bind groups belong to the renderer and survive for later frames.
func (r *Renderer) DestroyFrame(frame *Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyFrameLocked(frame)
}

func (r *Renderer) destroyFrameLocked(frame *Frame) {
	if frame == nil {
		return
	}
	if frame.uniformBind != nil {
		r.device.DestroyBindGroup(frame.uniformBind)
		frame.uniformBind = nil
	}
	if frame.uniformBuf != nil {
		r.device.DestroyBuffer(frame.uniformBuf)
		frame.uniformBuf = nil
	}
	if frame.idxBuf != nil {
		r.device.DestroyBuffer(frame.idxBuf)
		frame.idxBuf = nil
	}
	if frame.vertBuf != nil {
		r.device.DestroyBuffer(frame.vertBuf)
		frame.vertBuf = nil
	}
	frame.draws = nil
}
