// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import "fmt"

// Size is a width and height in pixels.
type Size struct {
	Width  uint32
	Height uint32
}

// IsEmpty returns true if either dimension is zero.
func (s Size) IsEmpty() bool {
	return s.Width == 0 || s.Height == 0
}

// String returns a string representation of the size.
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Allocation is a single rectangle inside one layer of the atlas.
type Allocation struct {
	x, y  uint32
	size  Size
	layer int

	// full is set when the allocation owns the whole layer.
	full bool
}

// NewAllocation returns an allocation at (x, y) on layer with the given size.
// It is mainly useful for building entries outside an Atlas, e.g. in tests.
func NewAllocation(x, y uint32, size Size, layer int) Allocation {
	return Allocation{x: x, y: y, size: size, layer: layer}
}

// Position returns the top-left corner of the allocation in layer pixels.
func (a Allocation) Position() (x, y uint32) {
	return a.x, a.y
}

// Size returns the allocation size.
func (a Allocation) Size() Size {
	return a.size
}

// Layer returns the index of the layer holding the allocation.
func (a Allocation) Layer() int {
	return a.layer
}

// String returns a string representation of the allocation.
func (a Allocation) String() string {
	return fmt.Sprintf("Allocation(%d,%d %s layer=%d)", a.x, a.y, a.size, a.layer)
}

// Fragment is one tile of a fragmented entry.
type Fragment struct {
	// Position is the offset of the tile inside the source image.
	Position [2]uint32

	// Allocation is where the tile lives in the atlas.
	Allocation Allocation
}

// EntryKind distinguishes contiguous from fragmented entries.
type EntryKind uint8

const (
	// EntryContiguous is an image held in a single allocation.
	EntryContiguous EntryKind = iota

	// EntryFragmented is an image split across several allocations.
	EntryFragmented
)

// String returns the kind name.
func (k EntryKind) String() string {
	switch k {
	case EntryContiguous:
		return "Contiguous"
	case EntryFragmented:
		return "Fragmented"
	default:
		return fmt.Sprintf("EntryKind(%d)", uint8(k))
	}
}

// Entry describes where an image lives in the atlas.
//
// A contiguous entry wraps one Allocation. A fragmented entry carries the
// logical image size and its fragments in allocation order; the order never
// changes for the lifetime of the entry.
type Entry struct {
	kind       EntryKind
	size       Size
	allocation Allocation
	fragments  []Fragment
}

// Contiguous returns an entry backed by a single allocation.
func Contiguous(a Allocation) Entry {
	return Entry{kind: EntryContiguous, size: a.size, allocation: a}
}

// Fragmented returns an entry of the given logical size made of fragments.
// The slice is retained; callers must not modify it afterwards.
func Fragmented(size Size, fragments []Fragment) Entry {
	return Entry{kind: EntryFragmented, size: size, fragments: fragments}
}

// Kind returns the entry kind.
func (e Entry) Kind() EntryKind {
	return e.kind
}

// Size returns the logical image size.
func (e Entry) Size() Size {
	return e.size
}

// Allocation returns the allocation of a contiguous entry.
// Returns false for fragmented entries.
func (e Entry) Allocation() (Allocation, bool) {
	if e.kind != EntryContiguous {
		return Allocation{}, false
	}
	return e.allocation, true
}

// Fragments returns the fragments of a fragmented entry, nil otherwise.
func (e Entry) Fragments() []Fragment {
	return e.fragments
}

// Layers returns the distinct layer indices used by the entry, in first-use order.
func (e Entry) Layers() []int {
	if e.kind == EntryContiguous {
		return []int{e.allocation.layer}
	}
	var layers []int
	for _, f := range e.fragments {
		seen := false
		for _, l := range layers {
			if l == f.Allocation.layer {
				seen = true
				break
			}
		}
		if !seen {
			layers = append(layers, f.Allocation.layer)
		}
	}
	return layers
}
