// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vector

import (
	"hash/fnv"
	"sync/atomic"
)

var nextID atomic.Uint64

// generatedBit is set on counter ids and clear on path ids.
const generatedBit = 1 << 63

func generatedID() uint64 {
	return nextID.Add(1) | generatedBit
}

// Handle identifies an SVG document and where its data comes from.
// Handles built from the same path share an id.
type Handle struct {
	id  uint64
	src *source
}

type source struct {
	path  string
	bytes []byte
}

// FromPath returns a handle for the SVG file at path.
func FromPath(path string) Handle {
	h := fnv.New64a()
	_, _ = h.Write([]byte("svg:"))
	_, _ = h.Write([]byte(path))
	return Handle{id: h.Sum64() &^ generatedBit, src: &source{path: path}}
}

// FromBytes returns a handle for SVG data held in memory.
// The slice is retained and must not be modified.
func FromBytes(data []byte) Handle {
	return Handle{id: generatedID(), src: &source{bytes: data}}
}

// ID returns the stable identifier of the handle.
func (h Handle) ID() uint64 {
	return h.id
}

// Path returns the file path of a path handle, or "".
func (h Handle) Path() string {
	if h.src == nil {
		return ""
	}
	return h.src.path
}
