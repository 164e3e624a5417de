//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// glyphPipelines bundles the GPU objects shared by every frame: one shader
// module with both fragment entry points, the bind group layouts (group 0
// uniforms, group 1 atlas texture and sampler), and the two render
// pipelines. Built lazily on first draw so a Renderer that only stores
// atlases never touches the pipeline path.
type glyphPipelines struct {
	module        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	atlasLayout   hal.BindGroupLayout
	layout        hal.PipelineLayout
	sampler       hal.Sampler
	alpha         hal.RenderPipeline
	color         hal.RenderPipeline
}

func newGlyphPipelines(device hal.Device, format gputypes.TextureFormat) (*glyphPipelines, error) {
	p := &glyphPipelines{}
	if err := p.init(device, format); err != nil {
		p.destroy(device)
		return nil, err
	}
	return p, nil
}

func (p *glyphPipelines) init(device hal.Device, format gputypes.TextureFormat) error {
	var err error
	p.module, err = createShaderModule(device, "glyph_shader")
	if err != nil {
		return err
	}

	p.uniformLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "glyph_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create uniform bind group layout: %w", err)
	}

	p.atlasLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "glyph_atlas_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create atlas bind group layout: %w", err)
	}

	p.layout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "glyph_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.uniformLayout, p.atlasLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}

	p.sampler, err = device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "glyph_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create sampler: %w", err)
	}

	p.alpha, err = p.createPipeline(device, "glyph_pipeline_alpha", "fs_alpha", format)
	if err != nil {
		return err
	}
	p.color, err = p.createPipeline(device, "glyph_pipeline_color", "fs_color", format)
	return err
}

func (p *glyphPipelines) createPipeline(device hal.Device, label, fragEntry string, format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	blend := gputypes.BlendStatePremultiplied()
	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: p.layout,
		Vertex: hal.VertexState{
			Module:     p.module,
			EntryPoint: "vs_main",
			Buffers: []gputypes.VertexBufferLayout{
				{
					ArrayStride: vertexStride,
					StepMode:    gputypes.VertexStepModeVertex,
					Attributes: []gputypes.VertexAttribute{
						{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
						{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &hal.FragmentState{
			Module:     p.module,
			EntryPoint: fragEntry,
			Targets: []gputypes.ColorTargetState{
				{Format: format, Blend: &blend, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create render pipeline %s: %w", label, err)
	}
	return pipeline, nil
}

// pipelineFor selects the pipeline matching a command's texture kind.
func (p *glyphPipelines) pipelineFor(color bool) hal.RenderPipeline {
	if color {
		return p.color
	}
	return p.alpha
}

// createAtlasBindGroup binds one atlas texture view with the shared sampler
// as bind group 1.
func (p *glyphPipelines) createAtlasBindGroup(device hal.Device, view hal.TextureView, label string) (hal.BindGroup, error) {
	bind, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label,
		Layout: p.atlasLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: view},
			{Binding: 1, Resource: p.sampler},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create atlas bind group: %w", err)
	}
	return bind, nil
}

// createUniformBindGroup binds the per-frame uniform buffer as bind group 0.
func (p *glyphPipelines) createUniformBindGroup(device hal.Device, buf hal.Buffer, size uint64) (hal.BindGroup, error) {
	bind, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "glyph_uniform_bind",
		Layout: p.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: size}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create uniform bind group: %w", err)
	}
	return bind, nil
}

func (p *glyphPipelines) destroy(device hal.Device) {
	if p.color != nil {
		device.DestroyRenderPipeline(p.color)
		p.color = nil
	}
	if p.alpha != nil {
		device.DestroyRenderPipeline(p.alpha)
		p.alpha = nil
	}
	if p.sampler != nil {
		device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.layout != nil {
		device.DestroyPipelineLayout(p.layout)
		p.layout = nil
	}
	if p.atlasLayout != nil {
		device.DestroyBindGroupLayout(p.atlasLayout)
		p.atlasLayout = nil
	}
	if p.uniformLayout != nil {
		device.DestroyBindGroupLayout(p.uniformLayout)
		p.uniformLayout = nil
	}
	if p.module != nil {
		device.DestroyShaderModule(p.module)
		p.module = nil
	}
}
