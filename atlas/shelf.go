// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

// shelfAllocator implements shelf-based rectangle packing with support for
// freeing rectangles.
//
// The layer is divided into horizontal shelves. A shelf's height is fixed by
// the first item placed on it. Among the shelves tall enough and with a gap
// wide enough, the one with the smallest height wins, and the item takes its
// leftmost such gap. If no shelf fits, a new shelf is opened below the last
// one. Freed items leave gaps that later items can
// reuse, and trailing shelves that become empty are released.
type shelfAllocator struct {
	size    uint32
	shelves []shelf

	// Tracking for utilization
	usedArea  uint64
	itemCount int
}

// shelf represents a horizontal strip in the layer.
type shelf struct {
	y      uint32
	height uint32
	spans  []span // occupied ranges, sorted by x
}

// span is an occupied horizontal range on a shelf.
type span struct {
	x     uint32
	width uint32
}

// newShelfAllocator creates an allocator for a size x size layer.
func newShelfAllocator(size uint32) *shelfAllocator {
	return &shelfAllocator{
		size:    size,
		shelves: make([]shelf, 0, 16),
	}
}

// allocate finds space for a w x h rectangle.
// Returns the top-left corner and true, or false if the layer has no room.
func (a *shelfAllocator) allocate(w, h uint32) (x, y uint32, ok bool) {
	if w == 0 || h == 0 || w > a.size || h > a.size {
		return 0, 0, false
	}

	// Try existing shelves tall enough, preferring the tightest fit.
	best := -1
	var bestX uint32
	for i := range a.shelves {
		s := &a.shelves[i]
		if h > s.height {
			continue
		}
		gx, found := s.findGap(w, a.size)
		if !found {
			continue
		}
		if best < 0 || s.height < a.shelves[best].height {
			best = i
			bestX = gx
		}
	}
	if best >= 0 {
		a.shelves[best].insert(span{x: bestX, width: w})
		a.usedArea += uint64(w) * uint64(h)
		a.itemCount++
		return bestX, a.shelves[best].y, true
	}

	// Open a new shelf below the last one.
	newY := uint32(0)
	if n := len(a.shelves); n > 0 {
		last := a.shelves[n-1]
		newY = last.y + last.height
	}
	if newY+h > a.size {
		return 0, 0, false
	}
	a.shelves = append(a.shelves, shelf{
		y:      newY,
		height: h,
		spans:  []span{{x: 0, width: w}},
	})
	a.usedArea += uint64(w) * uint64(h)
	a.itemCount++
	return 0, newY, true
}

// free releases the rectangle previously returned at (x, y) with size w x h.
// Returns false if no such rectangle is allocated.
func (a *shelfAllocator) free(x, y, w, h uint32) bool {
	for i := range a.shelves {
		s := &a.shelves[i]
		if s.y != y {
			continue
		}
		if !s.remove(x, w) {
			return false
		}
		a.usedArea -= uint64(w) * uint64(h)
		a.itemCount--
		a.releaseTrailing()
		return true
	}
	return false
}

// releaseTrailing drops empty shelves at the bottom so their space can be
// reopened with a different height.
func (a *shelfAllocator) releaseTrailing() {
	for n := len(a.shelves); n > 0 && len(a.shelves[n-1].spans) == 0; n = len(a.shelves) {
		a.shelves = a.shelves[:n-1]
	}
}

// isEmpty returns true if nothing is allocated.
func (a *shelfAllocator) isEmpty() bool {
	return a.itemCount == 0
}

// utilization returns the fraction of the layer area in use (0.0 to 1.0).
func (a *shelfAllocator) utilization() float64 {
	total := uint64(a.size) * uint64(a.size)
	if total == 0 {
		return 0
	}
	return float64(a.usedArea) / float64(total)
}

// findGap returns the x of the first gap at least w wide.
func (s *shelf) findGap(w, limit uint32) (uint32, bool) {
	var cursor uint32
	for _, sp := range s.spans {
		if sp.x-cursor >= w {
			return cursor, true
		}
		cursor = sp.x + sp.width
	}
	if limit-cursor >= w {
		return cursor, true
	}
	return 0, false
}

// insert adds sp keeping spans sorted by x.
func (s *shelf) insert(sp span) {
	i := 0
	for i < len(s.spans) && s.spans[i].x < sp.x {
		i++
	}
	s.spans = append(s.spans, span{})
	copy(s.spans[i+1:], s.spans[i:])
	s.spans[i] = sp
}

// remove deletes the span starting at x with width w.
func (s *shelf) remove(x, w uint32) bool {
	for i, sp := range s.spans {
		if sp.x == x && sp.width == w {
			s.spans = append(s.spans[:i], s.spans[i+1:]...)
			return true
		}
	}
	return false
}
