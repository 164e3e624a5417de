// Package pack implements the rectangle packing used by atlas textures:
// a bottom-left skyline packer extended with a free list, so rectangles
// released by cache eviction can be reused without repacking.
package pack

// Rect is a rectangle within the packer bounds, in pixels.
type Rect struct {
	X, Y, W, H int
}

// Area returns the rectangle's area in square pixels.
func (r Rect) Area() int { return r.W * r.H }

// node is one skyline span: the top edge of the packed region from x to
// x+width sits at height y.
type node struct {
	x, y, width int
}

// Packer allocates axis-aligned rectangles from a fixed-size area using the
// bottom-left skyline heuristic. Allocations never move: a rectangle stays
// where it was placed until Free returns it or Reset clears the packer.
// Freed rectangles go to a free list that Alloc consults before touching
// the skyline, so long-lived atlases recycle slots instead of growing.
//
// Packer is NOT safe for concurrent use.
type Packer struct {
	width  int
	height int
	nodes  []node
	free   []Rect
	used   int
}

// New creates a packer for a width*height pixel area.
func New(width, height int) *Packer {
	p := &Packer{
		width:  width,
		height: height,
		nodes:  make([]node, 0, 64),
	}
	p.nodes = append(p.nodes, node{x: 0, y: 0, width: width})
	return p
}

// Width returns the packable area width in pixels.
func (p *Packer) Width() int { return p.width }

// Height returns the packable area height in pixels.
func (p *Packer) Height() int { return p.height }

// Used returns the total area of live allocations, in square pixels.
func (p *Packer) Used() int { return p.used }

// Utilization returns the fraction of the area covered by live allocations.
func (p *Packer) Utilization() float64 {
	total := p.width * p.height
	if total == 0 {
		return 0
	}
	return float64(p.used) / float64(total)
}

// Alloc finds room for a w*h rectangle. It returns the top-left corner of
// the placement and ok=true, or ok=false when neither the free list nor the
// skyline has room. Zero or negative dimensions never fit.
func (p *Packer) Alloc(w, h int) (x, y int, ok bool) {
	if w <= 0 || h <= 0 || w > p.width || h > p.height {
		return 0, 0, false
	}

	// Reuse a freed rectangle when one is large enough. Best fit by area
	// keeps big slots available for big glyphs; the unused remainder of the
	// chosen slot is discarded, which is acceptable because text workloads
	// free and reallocate near-identical sizes.
	best := -1
	for i, r := range p.free {
		if r.W < w || r.H < h {
			continue
		}
		if best == -1 || r.Area() < p.free[best].Area() {
			best = i
		}
	}
	if best != -1 {
		r := p.free[best]
		p.free[best] = p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
		p.used += w * h
		return r.X, r.Y, true
	}

	// Bottom-left skyline fit: lowest resulting top edge wins, narrower
	// span breaks ties.
	bestH := p.height
	bestW := p.width
	bestI := -1
	bestX := -1
	bestY := -1
	for i := range p.nodes {
		fy := p.fits(i, w, h)
		if fy == -1 {
			continue
		}
		if fy+h < bestH || (fy+h == bestH && p.nodes[i].width < bestW) {
			bestI = i
			bestW = p.nodes[i].width
			bestH = fy + h
			bestX = p.nodes[i].x
			bestY = fy
		}
	}
	if bestI == -1 {
		return 0, 0, false
	}

	p.addLevel(bestI, bestX, bestY, w, h)
	p.used += w * h
	return bestX, bestY, true
}

// Free returns a previously allocated rectangle to the free list. The
// caller must pass exactly the rectangle Alloc produced; freeing arbitrary
// regions corrupts the utilization accounting.
func (p *Packer) Free(r Rect) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	p.free = append(p.free, r)
	p.used -= r.Area()
	if p.used < 0 {
		p.used = 0
	}
}

// Reset clears every allocation and the free list, restoring the empty
// skyline. Pixel contents of the backing texture are unaffected.
func (p *Packer) Reset() {
	p.nodes = p.nodes[:0]
	p.nodes = append(p.nodes, node{x: 0, y: 0, width: p.width})
	p.free = p.free[:0]
	p.used = 0
}

// fits checks whether a w*h rectangle dropped at skyline span i has room,
// walking the spans it would cover like a tetris piece. It returns the
// resulting y position, or -1 when the rectangle would exceed the bounds.
func (p *Packer) fits(i, w, h int) int {
	x := p.nodes[i].x
	y := p.nodes[i].y
	if x+w > p.width {
		return -1
	}
	spaceLeft := w
	for spaceLeft > 0 {
		if i == len(p.nodes) {
			return -1
		}
		if p.nodes[i].y > y {
			y = p.nodes[i].y
		}
		if y+h > p.height {
			return -1
		}
		spaceLeft -= p.nodes[i].width
		i++
	}
	return y
}

// addLevel raises the skyline over the placed rectangle: insert the new
// span, clip the spans it shadows, and merge adjacent spans of equal height.
func (p *Packer) addLevel(idx, x, y, w, h int) {
	p.insertNode(idx, x, y+h, w)

	for i := idx + 1; i < len(p.nodes); i++ {
		prev := p.nodes[i-1]
		curr := p.nodes[i]
		if curr.x >= prev.x+prev.width {
			break
		}
		shrink := prev.x + prev.width - curr.x
		p.nodes[i].x += shrink
		p.nodes[i].width -= shrink
		if p.nodes[i].width <= 0 {
			p.removeNode(i)
			i--
		} else {
			break
		}
	}

	for i := 0; i < len(p.nodes)-1; i++ {
		if p.nodes[i].y == p.nodes[i+1].y {
			p.nodes[i].width += p.nodes[i+1].width
			p.removeNode(i + 1)
			i--
		}
	}
}

func (p *Packer) insertNode(idx, x, y, w int) {
	p.nodes = append(p.nodes, node{})
	copy(p.nodes[idx+1:], p.nodes[idx:])
	p.nodes[idx] = node{x: x, y: y, width: w}
}

func (p *Packer) removeNode(idx int) {
	p.nodes = append(p.nodes[:idx], p.nodes[idx+1:]...)
}
