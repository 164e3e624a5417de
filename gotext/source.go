package gotext

import (
	"bytes"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/go-text/typesetting/font"

	"github.com/gogpu/textatlas"
)

// ErrUnknownFont is returned by Rasterize when the FontID was never
// registered with this Source (or has been removed).
var ErrUnknownFont = errors.New("gotext: font not registered")

// Source is a font registry that implements [textatlas.Scaler]. It owns the
// parsed fonts and hands out the opaque FontIDs the cache keys on.
//
// Source is safe for concurrent use. Fonts registered through AddFont are
// rasterized from a fresh font.Face per call (font.Font is read-only and
// thread-safe, font.Face is not), so concurrent rasterization never blocks
// on a shared face.
type Source struct {
	mu     sync.RWMutex
	fonts  map[textatlas.FontID]*fontEntry
	byHash map[uint64]textatlas.FontID
	nextID uint64
}

// fontEntry is one registered font. Entries are immutable after
// construction except for the serialized face access below.
type fontEntry struct {
	font *font.Font
	colr *colorTable

	// face is set only for entries registered via AddFace. Faces are not
	// safe for concurrent use, so faceMu serializes rasterization through
	// them. AddFont entries leave face nil and mint a fresh one per call.
	faceMu sync.Mutex
	face   *font.Face

	hash    uint64
	hasHash bool
}

// acquireFace returns a face usable for one rasterization plus its release
// function.
func (e *fontEntry) acquireFace() (*font.Face, func()) {
	if e.face != nil {
		e.faceMu.Lock()
		return e.face, e.faceMu.Unlock
	}
	return font.NewFace(e.font), func() {}
}

// NewSource creates an empty font registry.
func NewSource() *Source {
	return &Source{
		fonts:  make(map[textatlas.FontID]*fontEntry),
		byHash: make(map[uint64]textatlas.FontID),
	}
}

// AddFont parses TTF or OTF font data and registers it, returning the
// FontID to use in glyph requests. Registering the same bytes twice returns
// the FontID assigned the first time.
//
// The data is also scanned for COLRv0/CPAL color tables; when present,
// color glyphs from this font rasterize as layered RGBA images.
func (s *Source) AddFont(data []byte) (textatlas.FontID, error) {
	if len(data) == 0 {
		return 0, errors.New("gotext: empty font data")
	}
	h := hashBytes(data)

	s.mu.RLock()
	id, ok := s.byHash[h]
	s.mu.RUnlock()
	if ok {
		return id, nil
	}

	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("gotext: parse font: %w", err)
	}

	var colr *colorTable
	if colrData, cpalData := fontTable(data, colrTag), fontTable(data, cpalTag); len(colrData) > 0 && len(cpalData) > 0 {
		ct, err := parseColorTables(colrData, cpalData)
		if err != nil {
			textatlas.Logger().Debug("gotext: ignoring color tables", "err", err)
		} else {
			colr = ct
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byHash[h]; ok {
		return id, nil
	}
	id = s.assign(&fontEntry{font: face.Font, colr: colr, hash: h, hasHash: true})
	s.byHash[h] = id
	return id, nil
}

// AddFace registers a pre-built face, for callers that parsed the font
// themselves or applied variation coordinates. The face is used as-is:
// faces are not safe for concurrent use, so rasterization through it is
// serialized. COLR color glyphs are not available on this path since the
// raw table data is no longer reachable; prefer AddFont where possible.
func (s *Source) AddFace(face *font.Face) (textatlas.FontID, error) {
	if face == nil || face.Font == nil {
		return 0, errors.New("gotext: nil face")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assign(&fontEntry{font: face.Font, face: face}), nil
}

// Remove unregisters a font. Rasterization requests for its FontID fail
// with ErrUnknownFont afterwards; glyphs already cached stay valid until
// evicted.
func (s *Source) Remove(id textatlas.FontID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.fonts[id]
	if !ok {
		return
	}
	delete(s.fonts, id)
	if e.hasHash {
		delete(s.byHash, e.hash)
	}
}

// Len returns the number of registered fonts.
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fonts)
}

// assign stores the entry under the next FontID. Caller holds s.mu.
// IDs start at 1 so the zero FontID never refers to a registered font.
func (s *Source) assign(e *fontEntry) textatlas.FontID {
	s.nextID++
	id := textatlas.FontID(s.nextID)
	s.fonts[id] = e
	return id
}

func (s *Source) lookup(id textatlas.FontID) (*fontEntry, error) {
	s.mu.RLock()
	e, ok := s.fonts[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFont, id)
	}
	return e, nil
}

func hashBytes(data []byte) uint64 {
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64()
}
