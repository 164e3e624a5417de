//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/textatlas"
	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrNilDevice is returned by NewRenderer when no HAL device is supplied.
	ErrNilDevice = errors.New("wgpu: nil device")
	// ErrNilQueue is returned by NewRenderer when no HAL queue is supplied.
	ErrNilQueue = errors.New("wgpu: nil queue")
	// ErrNoTarget is returned by Draw before SetTarget has been called.
	ErrNoTarget = errors.New("wgpu: no render target set")
	// ErrUnknownTexture is returned for texture IDs this renderer did not issue.
	ErrUnknownTexture = errors.New("wgpu: unknown texture id")
	// ErrRegionOutOfBounds is returned when an update region exceeds the texture.
	ErrRegionOutOfBounds = errors.New("wgpu: update region out of bounds")
	// ErrPixelDataSize is returned when the pixel slice does not match the region.
	ErrPixelDataSize = errors.New("wgpu: pixel data size mismatch")
	// ErrQuadOverflow is returned when a frame exceeds Config.MaxQuads.
	ErrQuadOverflow = errors.New("wgpu: too many quads in frame")
)

// Config controls renderer limits and the render target format.
type Config struct {
	// ColorFormat is the format of the target views passed to SetTarget
	// and of external passes that RecordDraws records into.
	ColorFormat gputypes.TextureFormat
	// MaxQuads caps the quads drawn per frame. The index buffer uses
	// 16-bit indices, so values above 16384 are clamped to it.
	MaxQuads int
}

// DefaultConfig targets a BGRA8 surface with the full 16-bit quad limit.
func DefaultConfig() Config {
	return Config{
		ColorFormat: gputypes.TextureFormatBGRA8Unorm,
		MaxQuads:    maxQuadsUint16,
	}
}

// atlasTexture is one GPU atlas page plus its CPU mirror. All updates land
// in the mirror; Flush uploads dirty mirrors in one WriteTexture each.
type atlasTexture struct {
	tex    hal.Texture
	view   hal.TextureView
	bind   hal.BindGroup // created on first draw that samples this page
	width  int
	height int
	mirror []byte
	dirty  bool
}

// Renderer implements textatlas.TextureStore and textatlas.Drawer over a
// HAL device and queue. See the package documentation for the data flow.
type Renderer struct {
	device hal.Device
	queue  hal.Queue
	config Config

	mu       sync.Mutex
	pipes    *glyphPipelines
	nextID   textatlas.TextureID
	textures map[textatlas.TextureID]*atlasTexture
	order    []textatlas.TextureID

	target       hal.TextureView
	targetWidth  int
	targetHeight int
}

var (
	_ textatlas.TextureStore = (*Renderer)(nil)
	_ textatlas.Drawer       = (*Renderer)(nil)
)

// NewRenderer wraps an open HAL device and its queue. The caller keeps
// ownership of both; Destroy releases only the objects the renderer made.
func NewRenderer(device hal.Device, queue hal.Queue, config Config) (*Renderer, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if queue == nil {
		return nil, ErrNilQueue
	}
	if config.ColorFormat == gputypes.TextureFormatUndefined {
		config.ColorFormat = gputypes.TextureFormatBGRA8Unorm
	}
	if config.MaxQuads <= 0 || config.MaxQuads > maxQuadsUint16 {
		config.MaxQuads = maxQuadsUint16
	}
	return &Renderer{
		device:   device,
		queue:    queue,
		config:   config,
		nextID:   1,
		textures: make(map[textatlas.TextureID]*atlasTexture),
	}, nil
}

// CreateTexture allocates an RGBA8 atlas page. The page reads as fully
// transparent until updated: the zeroed mirror is marked dirty so the
// first Flush clears the GPU texture.
func (r *Renderer) CreateTexture(width, height int) (textatlas.TextureID, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("wgpu: invalid texture size %dx%d", width, height)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label: fmt.Sprintf("glyph_atlas_%d", r.nextID),
		Size: hal.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("wgpu: create atlas texture: %w", err)
	}
	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         fmt.Sprintf("glyph_atlas_view_%d", r.nextID),
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.device.DestroyTexture(tex)
		return 0, fmt.Errorf("wgpu: create atlas texture view: %w", err)
	}

	id := r.nextID
	r.nextID++
	r.textures[id] = &atlasTexture{
		tex:    tex,
		view:   view,
		width:  width,
		height: height,
		mirror: make([]byte, width*height*4),
		dirty:  true,
	}
	r.order = append(r.order, id)
	return id, nil
}

// UpdateTexture copies tightly packed RGBA rows into the mirror of the
// given page. The GPU copy happens on the next Flush or Draw.
func (r *Renderer) UpdateTexture(id textatlas.TextureID, x, y, width, height int, pixels []byte) error {
	if width == 0 || height == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, id)
	}
	if x < 0 || y < 0 || width < 0 || height < 0 || x+width > t.width || y+height > t.height {
		return fmt.Errorf("%w: %dx%d at (%d, %d) in %dx%d", ErrRegionOutOfBounds, width, height, x, y, t.width, t.height)
	}
	if len(pixels) != width*height*4 {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrPixelDataSize, len(pixels), width*height*4)
	}

	rowBytes := width * 4
	for row := 0; row < height; row++ {
		dst := ((y+row)*t.width + x) * 4
		copy(t.mirror[dst:dst+rowBytes], pixels[row*rowBytes:(row+1)*rowBytes])
	}
	t.dirty = true
	return nil
}

// Flush uploads every dirty atlas page and returns the number uploaded.
// Draw calls it implicitly; applications recording into their own pass
// must call it before the pass begins.
func (r *Renderer) Flush() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushLocked()
}

func (r *Renderer) flushLocked() int {
	uploaded := 0
	for _, id := range r.order {
		t := r.textures[id]
		if !t.dirty {
			continue
		}
		r.queue.WriteTexture(
			&hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
			t.mirror,
			&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(t.width * 4), RowsPerImage: uint32(t.height)},
			&hal.Extent3D{Width: uint32(t.width), Height: uint32(t.height), DepthOrArrayLayers: 1},
		)
		t.dirty = false
		uploaded++
	}
	return uploaded
}

// SetTarget points Draw at a render target view, typically the surface
// texture of the current frame. The view must match Config.ColorFormat.
func (r *Renderer) SetTarget(view hal.TextureView, width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = view
	r.targetWidth = width
	r.targetHeight = height
}

// Draw uploads dirty atlases, encodes one render pass over the current
// target, and blocks until the GPU finishes. The pass loads the existing
// target contents, so text composites over whatever was drawn before.
// A zero viewport in opts falls back to the SetTarget dimensions.
func (r *Renderer) Draw(commands []textatlas.DrawCommand, opts textatlas.DrawOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.target == nil {
		return ErrNoTarget
	}
	r.flushLocked()
	if countQuads(commands) == 0 {
		return nil
	}
	if opts.ViewportWidth == 0 && opts.ViewportHeight == 0 {
		opts.ViewportWidth = r.targetWidth
		opts.ViewportHeight = r.targetHeight
	}

	frame, err := r.buildFrameLocked(commands, opts)
	if err != nil {
		return err
	}
	defer r.destroyFrameLocked(frame)

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "glyph_draw_encoder"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("glyph_draw"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	pass := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "glyph_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{View: r.target, LoadOp: gputypes.LoadOpLoad, StoreOp: gputypes.StoreOpStore},
		},
	})
	r.recordDrawsLocked(pass, frame)
	pass.End()

	cmdBuffer, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer cmdBuffer.Destroy()

	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuffer}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit glyph draw: %w", err)
	}
	if _, err := r.device.Wait(fence, 1, 5_000_000_000); err != nil {
		return fmt.Errorf("wgpu: wait for glyph draw: %w", err)
	}
	return nil
}

func (r *Renderer) ensurePipelinesLocked() error {
	if r.pipes != nil {
		return nil
	}
	pipes, err := newGlyphPipelines(r.device, r.config.ColorFormat)
	if err != nil {
		return err
	}
	r.pipes = pipes
	return nil
}

// Destroy releases every GPU object the renderer created. The device and
// queue stay open. The renderer must not be used afterwards.
func (r *Renderer) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		t := r.textures[id]
		if t.bind != nil {
			r.device.DestroyBindGroup(t.bind)
		}
		r.device.DestroyTextureView(t.view)
		r.device.DestroyTexture(t.tex)
	}
	r.textures = make(map[textatlas.TextureID]*atlasTexture)
	r.order = nil

	if r.pipes != nil {
		r.pipes.destroy(r.device)
		r.pipes = nil
	}
	r.target = nil
}
