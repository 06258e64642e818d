// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package imageatlas

import "github.com/gogpu/imageatlas/atlas"

// AtlasRegion is the part of the texture array a shader samples for an
// image, in normalized layer coordinates.
type AtlasRegion struct {
	UVMin [2]float32
	UVMax [2]float32
	Layer uint32
}

// RegionFromEntry converts an atlas placement into a sampling region for
// layers of layerSize pixels.
//
// A contiguous entry maps its allocation rectangle. A fragmented entry maps
// the rectangle of the logical image size placed at the first fragment's
// position, on the first fragment's layer; the other fragments are not
// represented. A fragmented entry without fragments, or a zero layerSize,
// yields the zero region.
func RegionFromEntry(entry atlas.Entry, layerSize uint32) AtlasRegion {
	if layerSize == 0 {
		return AtlasRegion{}
	}
	s := float32(layerSize)

	if alloc, ok := entry.Allocation(); ok {
		x, y := alloc.Position()
		size := alloc.Size()
		return AtlasRegion{
			UVMin: [2]float32{float32(x) / s, float32(y) / s},
			UVMax: [2]float32{float32(x+size.Width) / s, float32(y+size.Height) / s},
			Layer: uint32(alloc.Layer()),
		}
	}

	fragments := entry.Fragments()
	if len(fragments) == 0 {
		return AtlasRegion{}
	}
	first := fragments[0]
	x, y := first.Position[0], first.Position[1]
	size := entry.Size()
	return AtlasRegion{
		UVMin: [2]float32{float32(x) / s, float32(y) / s},
		UVMax: [2]float32{float32(x+size.Width) / s, float32(y+size.Height) / s},
		Layer: uint32(first.Allocation.Layer()),
	}
}
