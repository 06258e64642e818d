// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"hash/fnv"
	"sync/atomic"
)

// nextID hands out ids for handles without a stable name.
var nextID atomic.Uint64

// generatedBit is set on counter ids and clear on path ids, so the two never
// collide.
const generatedBit = 1 << 63

func generatedID() uint64 {
	return nextID.Add(1) | generatedBit
}

// Handle identifies a raster image and where its data comes from.
//
// Handles built from the same path share an id. Handles built from bytes or
// pixels get a process-unique id, so copies of a Handle refer to the same
// cache entry but two calls to FromBytes never do.
type Handle struct {
	id  uint64
	src *source
}

// source holds exactly one of the data origins.
type source struct {
	path  string
	bytes []byte
	rgba  *Image
}

// FromPath returns a handle for the image file at path.
func FromPath(path string) Handle {
	h := fnv.New64a()
	_, _ = h.Write([]byte("path:"))
	_, _ = h.Write([]byte(path))
	return Handle{id: h.Sum64() &^ generatedBit, src: &source{path: path}}
}

// FromBytes returns a handle for encoded image data.
// The slice is retained and must not be modified.
func FromBytes(data []byte) Handle {
	return Handle{id: generatedID(), src: &source{bytes: data}}
}

// FromRGBA returns a handle for width x height premultiplied RGBA pixels.
// The slice is retained and must not be modified.
func FromRGBA(width, height uint32, pixels []byte) Handle {
	return Handle{
		id:  generatedID(),
		src: &source{rgba: &Image{Width: width, Height: height, Pixels: pixels}},
	}
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
