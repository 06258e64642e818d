// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package imageatlas

import (
	"github.com/gogpu/imageatlas/atlas"
	"github.com/gogpu/imageatlas/raster"
)

// MeasureImage returns the natural size of a raster image, decoding it if
// needed. Images that fail to decode measure 1x1. Measuring never places
// the image in the atlas. Returns the zero size when raster images are
// disabled.
func (c *Cache) MeasureImage(h raster.Handle) atlas.Size {
	if c.raster == nil || c.closed {
		return atlas.Size{}
	}
	return c.raster.Load(h).Dimensions()
}

// UploadRaster returns the atlas placement of a raster image, placing it
// and recording the pixel upload into enc if it has none yet.
// Returns false if the image cannot be decoded or the atlas is full.
func (c *Cache) UploadRaster(enc atlas.Encoder, h raster.Handle) (atlas.Entry, bool) {
	if c.raster == nil || c.closed {
		return atlas.Entry{}, false
	}
	return c.raster.Upload(enc, h, c.atlas)
}

// EnsureRasterRegion returns the sampling region of a raster image,
// uploading it through enc if it is not in the atlas yet. Repeated calls
// for a placed image record no further uploads.
func (c *Cache) EnsureRasterRegion(enc atlas.Encoder, h raster.Handle) (AtlasRegion, bool) {
	entry, ok := c.UploadRaster(enc, h)
	if !ok {
		return AtlasRegion{}, false
	}
	return RegionFromEntry(entry, c.atlas.LayerSize()), true
}

// CachedRasterRegion returns the sampling region of a raster image that is
// already placed, without placing it otherwise. A hit keeps the image alive
// through the next Trim.
func (c *Cache) CachedRasterRegion(h raster.Handle) (AtlasRegion, bool) {
	if c.raster == nil || c.closed {
		return AtlasRegion{}, false
	}
	entry, ok := c.raster.Entry(h)
	if !ok {
		return AtlasRegion{}, false
	}
	return RegionFromEntry(entry, c.atlas.LayerSize()), true
}
