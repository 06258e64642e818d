// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package imageatlas

import (
	"image/color"

	"github.com/gogpu/imageatlas/atlas"
	"github.com/gogpu/imageatlas/vector"
)

// MeasureSVG returns the natural size of an SVG document rounded up to
// whole pixels, parsing it if needed. Documents that fail to parse measure
// 1x1. Returns the zero size when vector images are disabled.
func (c *Cache) MeasureSVG(h vector.Handle) atlas.Size {
	if c.vector == nil || c.closed {
		return atlas.Size{}
	}
	return c.vector.Load(h).Viewport()
}

// UploadVector returns the placement of an SVG document rendered at
// ceil(size*scale) pixels, optionally recolored with fill, rasterizing it
// and recording the upload into enc if this combination is not placed yet.
// Returns false for unparseable documents, zero pixel sizes and a full
// atlas.
func (c *Cache) UploadVector(enc atlas.Encoder, h vector.Handle, fill *color.NRGBA, size [2]float32, scale float32) (atlas.Entry, bool) {
	if c.vector == nil || c.closed {
		return atlas.Entry{}, false
	}
	return c.vector.Upload(enc, h, fill, size, scale, c.atlas)
}

// EnsureVectorRegion returns the sampling region of an SVG rasterization,
// creating it if needed.
func (c *Cache) EnsureVectorRegion(enc atlas.Encoder, h vector.Handle, fill *color.NRGBA, size [2]float32, scale float32) (AtlasRegion, bool) {
	entry, ok := c.UploadVector(enc, h, fill, size, scale)
	if !ok {
		return AtlasRegion{}, false
	}
	return RegionFromEntry(entry, c.atlas.LayerSize()), true
}

// CachedVectorRegion returns the sampling region of an existing SVG
// rasterization without creating one. A hit keeps the rasterization and its
// document alive through the next Trim.
func (c *Cache) CachedVectorRegion(h vector.Handle, fill *color.NRGBA, size [2]float32, scale float32) (AtlasRegion, bool) {
	if c.vector == nil || c.closed {
		return AtlasRegion{}, false
	}
	entry, ok := c.vector.Entry(h, fill, size, scale)
	if !ok {
		return AtlasRegion{}, false
	}
	return RegionFromEntry(entry, c.atlas.LayerSize()), true
}
