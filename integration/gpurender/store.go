package gpurender

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/textatlas"
)

// Common errors returned by Store operations.
var (
	// ErrNilProvider is returned when a nil DeviceProvider is passed to New.
	ErrNilProvider = errors.New("gpurender: nil DeviceProvider")

	// ErrStoreClosed is returned when operations are attempted on a closed store.
	ErrStoreClosed = errors.New("gpurender: store is closed")

	// ErrNilCreator is returned by Sync when no texture creator is supplied.
	ErrNilCreator = errors.New("gpurender: nil texture creator")

	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("gpurender: invalid dimensions")

	// ErrUnknownTexture is returned for texture IDs this store did not issue.
	ErrUnknownTexture = errors.New("gpurender: unknown texture id")

	// ErrRegionOutOfBounds is returned when an update region exceeds the page.
	ErrRegionOutOfBounds = errors.New("gpurender: update region out of bounds")

	// ErrPixelDataSize is returned when the pixel slice does not match the region.
	ErrPixelDataSize = errors.New("gpurender: pixel data size mismatch")
)

// TextureCreator creates GPU textures from RGBA pixel data. This matches the
// creator surface gogpu renderers expose (dc.AsTextureDrawer().TextureCreator());
// declaring it locally keeps the package free of a concrete framework import.
type TextureCreator interface {
	NewTextureFromRGBA(width, height int, data []byte) (any, error)
}

// textureDestroyer is the interface for destroying textures.
// This matches the gogpu.Texture.Destroy signature.
type textureDestroyer interface {
	Destroy()
}

// page is one atlas texture: the host's GPU texture (nil until the first
// Sync) plus the CPU mirror all updates land in.
type page struct {
	tex    any
	width  int
	height int
	mirror []byte
	dirty  bool
}

// Store implements textatlas.TextureStore over a host gpucontext. Pages are
// created and updated in CPU mirrors immediately; GPU textures materialize
// on Sync, when the host's texture creator is available.
//
// Store is NOT safe for concurrent use.
type Store struct {
	provider gpucontext.DeviceProvider
	nextID   textatlas.TextureID
	pages    map[textatlas.TextureID]*page
	order    []textatlas.TextureID
	closed   bool
}

var _ textatlas.TextureStore = (*Store)(nil)

// New creates a Store bound to the host's device provider. The provider
// should come from the host framework, e.g. gogpu.App.GPUContextProvider().
func New(provider gpucontext.DeviceProvider) (*Store, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	return &Store{
		provider: provider,
		nextID:   1,
		pages:    make(map[textatlas.TextureID]*page),
	}, nil
}

// CreateTexture allocates an atlas page. The page exists only as a zeroed
// CPU mirror until Sync runs; reads through the eventual GPU texture see
// fully transparent pixels, because the mirror uploads as created.
func (s *Store) CreateTexture(width, height int) (textatlas.TextureID, error) {
	if s.closed {
		return 0, ErrStoreClosed
	}
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	id := s.nextID
	s.nextID++
	s.pages[id] = &page{
		width:  width,
		height: height,
		mirror: make([]byte, width*height*4),
		dirty:  true,
	}
	s.order = append(s.order, id)
	return id, nil
}

// UpdateTexture copies tightly packed RGBA rows into the page mirror. The
// GPU sees the change after the next Sync.
func (s *Store) UpdateTexture(id textatlas.TextureID, x, y, width, height int, pixels []byte) error {
	if s.closed {
		return ErrStoreClosed
	}
	if width == 0 || height == 0 {
		return nil
	}

	p, ok := s.pages[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, id)
	}
	if x < 0 || y < 0 || width < 0 || height < 0 || x+width > p.width || y+height > p.height {
		return fmt.Errorf("%w: %dx%d at (%d, %d) in %dx%d", ErrRegionOutOfBounds, width, height, x, y, p.width, p.height)
	}
	if len(pixels) != width*height*4 {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrPixelDataSize, len(pixels), width*height*4)
	}

	rowBytes := width * 4
	for row := 0; row < height; row++ {
		dst := ((y+row)*p.width + x) * 4
		copy(p.mirror[dst:dst+rowBytes], pixels[row*rowBytes:(row+1)*rowBytes])
	}
	p.dirty = true
	return nil
}

// Sync pushes every dirty page to the GPU through the host's creator and
// returns the number of pages synced. Call once per frame, before the host
// samples the atlas textures.
//
// Pages without a GPU texture are created with NewTextureFromRGBA. Existing
// textures update in place when the host texture supports it; otherwise the
// page is recreated and the old texture destroyed. NewTextureFromRGBA waits
// for the GPU internally, so the old texture is idle when destroyed.
func (s *Store) Sync(creator TextureCreator) (int, error) {
	if s.closed {
		return 0, ErrStoreClosed
	}
	if creator == nil {
		return 0, ErrNilCreator
	}

	synced := 0
	for _, id := range s.order {
		p := s.pages[id]
		if !p.dirty {
			continue
		}

		if p.tex != nil {
			if updater, ok := p.tex.(gpucontext.TextureUpdater); ok {
				if err := updater.UpdateData(p.mirror); err != nil {
					return synced, fmt.Errorf("gpurender: update texture %d: %w", id, err)
				}
				p.dirty = false
				synced++
				continue
			}
		}

		tex, err := creator.NewTextureFromRGBA(p.width, p.height, p.mirror)
		if err != nil {
			return synced, fmt.Errorf("gpurender: create texture %d: %w", id, err)
		}
		// Atlas pixels are premultiplied (color glyphs come from
		// image.RGBA), so the host should composite with its
		// BlendFactorOne pipeline.
		if pt, ok := tex.(interface{ SetPremultiplied(bool) }); ok {
			pt.SetPremultiplied(true)
		}

		old := p.tex
		p.tex = tex
		if old != nil {
			if destroyer, ok := old.(textureDestroyer); ok {
				destroyer.Destroy()
			}
		}
		p.dirty = false
		synced++
	}
	return synced, nil
}

// Texture returns the GPU texture backing a page, or nil before the first
// Sync. The host asserts the value to its own texture type for binding.
func (s *Store) Texture(id textatlas.TextureID) any {
	if s.closed {
		return nil
	}
	p, ok := s.pages[id]
	if !ok {
		return nil
	}
	return p.tex
}

// Dirty reports whether any page has changes waiting for Sync.
func (s *Store) Dirty() bool {
	for _, p := range s.pages {
		if p.dirty {
			return true
		}
	}
	return false
}

// Provider returns the DeviceProvider the store was created with.
// Returns nil if the store is closed.
func (s *Store) Provider() gpucontext.DeviceProvider {
	if s.closed {
		return nil
	}
	return s.provider
}

// Close destroys every GPU texture the store created and releases the
// mirrors. Close is idempotent - multiple calls are safe.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	for _, id := range s.order {
		p := s.pages[id]
		if p.tex != nil {
			if destroyer, ok := p.tex.(textureDestroyer); ok {
				destroyer.Destroy()
			}
			p.tex = nil
		}
	}
	s.pages = nil
	s.order = nil
	s.provider = nil
	return nil
}

// NullProvider is a DeviceProvider with nil implementations. It lets a
// Store be built for CPU-only paths and tests, where every page stays a
// mirror until a real creator shows up.
type NullProvider struct{}

// Device returns nil for the null provider.
func (NullProvider) Device() gpucontext.Device { return nil }

// Queue returns nil for the null provider.
func (NullProvider) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null provider.
func (NullProvider) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null provider.
func (NullProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var _ gpucontext.DeviceProvider = NullProvider{}
