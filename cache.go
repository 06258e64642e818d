// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package imageatlas

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/imageatlas/atlas"
	"github.com/gogpu/imageatlas/raster"
	"github.com/gogpu/imageatlas/vector"
)

// Cache places raster images and SVG documents into a shared texture atlas
// and keeps them there while they are used.
//
// Cache is not safe for concurrent use.
type Cache struct {
	atlas  *atlas.Atlas
	raster *raster.Cache // nil when KindRaster is disabled
	vector *vector.Cache // nil when KindVector is disabled
	kinds  Kind

	trims  uint64
	closed bool
}

// New creates a cache whose atlas texture is created on device and exposed
// through bind groups of layout. The layout must declare a 2D-array float
// texture at binding 0.
func New(device atlas.Device, layout hal.BindGroupLayout, opts ...Option) (*Cache, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.kinds&KindAll == 0 {
		return nil, ErrNoKinds
	}
	if o.decodePool < 0 {
		return nil, ErrInvalidDecodePool
	}

	a, err := atlas.New(device, layout, o.atlas)
	if err != nil {
		return nil, fmt.Errorf("imageatlas: %w", err)
	}

	c := &Cache{atlas: a, kinds: o.kinds}
	if o.kinds.Has(KindRaster) {
		if o.decodePool > 0 {
			c.raster, err = raster.NewCacheWithPool(o.decodePool)
			if err != nil {
				a.Close()
				return nil, fmt.Errorf("imageatlas: %w", err)
			}
		} else {
			c.raster = raster.NewCache()
		}
	}
	if o.kinds.Has(KindVector) {
		c.vector = vector.NewCache()
	}

	slogger().Debug("image cache created",
		"kinds", o.kinds.String(),
		"layer_size", o.atlas.LayerSize,
		"decode_pool", o.decodePool)
	return c, nil
}

// NewFromProvider creates a cache on the device of a host application.
// Providers exposing HalDevice() are used through it; otherwise Device()
// must return a value implementing atlas.Device.
func NewFromProvider(provider gpucontext.DeviceProvider, layout hal.BindGroupLayout, opts ...Option) (*Cache, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	type halProvider interface {
		HalDevice() any
	}
	var dev any
	if hp, ok := provider.(halProvider); ok {
		dev = hp.HalDevice()
	} else {
		dev = provider.Device()
	}
	device, ok := dev.(atlas.Device)
	if !ok || device == nil {
		return nil, ErrUnsupportedDevice
	}
	return New(device, layout, opts...)
}

// Kinds returns the enabled image kinds.
func (c *Cache) Kinds() Kind {
	return c.kinds
}

// BindGroup returns the bind group of the atlas texture. It is replaced when
// the atlas grows.
func (c *Cache) BindGroup() hal.BindGroup {
	return c.atlas.BindGroup()
}

// LayerCount returns the number of layers in the atlas texture.
func (c *Cache) LayerCount() int {
	return c.atlas.LayerCount()
}

// TextureLayout returns the bind group layout the cache was created with.
func (c *Cache) TextureLayout() hal.BindGroupLayout {
	return c.atlas.BindGroupLayout()
}

// LayerSize returns the edge length of an atlas layer in pixels.
func (c *Cache) LayerSize() uint32 {
	return c.atlas.LayerSize()
}

// Atlas returns the underlying atlas.
func (c *Cache) Atlas() *atlas.Atlas {
	return c.atlas
}

// Trim evicts every image and rasterization not requested since the
// previous Trim and frees its space in the atlas. Call it once per frame,
// after the frame's ensure and lookup calls.
func (c *Cache) Trim() {
	if c.closed {
		return
	}
	if c.raster != nil {
		c.raster.Trim(c.atlas)
	}
	if c.vector != nil {
		c.vector.Trim(c.atlas)
	}
	c.trims++
}

// Stats is a snapshot of cache occupancy.
type Stats struct {
	// Layers is the number of layers in the atlas texture.
	Layers int

	// RasterImages is the number of cached raster images, placed or not.
	RasterImages int
	// RasterPlaced is the number of raster images with a placement.
	RasterPlaced int

	// VectorSources is the number of parsed SVG documents.
	VectorSources int
	// VectorPlaced is the number of rasterizations with a placement.
	VectorPlaced int

	// Trims is the number of Trim calls so far.
	Trims uint64

	// Utilization is the used fraction of the reserved atlas area.
	Utilization float64
}

// Stats returns a snapshot of cache occupancy.
func (c *Cache) Stats() Stats {
	s := Stats{
		Layers:      c.atlas.LayerCount(),
		Trims:       c.trims,
		Utilization: c.atlas.Stats().Utilization,
	}
	if c.raster != nil {
		s.RasterImages = c.raster.Len()
		s.RasterPlaced = c.raster.Placed()
	}
	if c.vector != nil {
		s.VectorSources = c.vector.Len()
		s.VectorPlaced = c.vector.Placed()
	}
	return s
}

// Close drops every cached image and releases the atlas texture, view and
// bind group. Calling Close more than once is a no-op.
func (c *Cache) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if c.raster != nil {
		c.raster.Clear(nil)
	}
	if c.vector != nil {
		c.vector.Clear(nil)
	}
	c.atlas.Close()
	slogger().Debug("image cache closed", "trims", c.trims)
}
