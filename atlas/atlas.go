// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device is the subset of hal.Device the atlas needs to manage its texture.
// Any hal.Device satisfies it.
type Device interface {
	CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error)
	DestroyTexture(texture hal.Texture)
	CreateTextureView(texture hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error)
	DestroyTextureView(view hal.TextureView)
	CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error)
	DestroyBindGroup(group hal.BindGroup)
}

// textureFormat is the pixel format of every layer.
const textureFormat = gputypes.TextureFormatRGBA8Unorm

// layer is one slice of the texture array.
type layer struct {
	alloc *shelfAllocator

	// full is set while a single allocation owns the whole layer.
	full bool
}

func (l *layer) isEmpty() bool {
	return !l.full && l.alloc.isEmpty()
}

// Atlas is a GPU texture array whose layers are packed with images.
//
// Allocate and Remove only touch CPU-side bookkeeping. The texture grows to
// the number of reserved layers on the next Upload or Sync, which records the
// copy of the old layers into the caller's encoder.
//
// Atlas is not safe for concurrent use.
type Atlas struct {
	device Device
	layout hal.BindGroupLayout
	cfg    Config

	layers []*layer

	texture       hal.Texture
	view          hal.TextureView
	bindGroup     hal.BindGroup
	textureLayers int

	closed bool
}

// New creates an atlas with a single empty layer.
func New(device Device, layout hal.BindGroupLayout, cfg Config) (*Atlas, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if layout == nil {
		return nil, ErrNilLayout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Atlas{
		device: device,
		layout: layout,
		cfg:    cfg,
	}
	a.layers = append(a.layers, a.newLayer())

	tex, view, group, err := a.createTexture(1)
	if err != nil {
		return nil, err
	}
	a.texture, a.view, a.bindGroup = tex, view, group
	a.textureLayers = 1

	slogger().Debug("atlas created",
		"layer_size", cfg.LayerSize,
		"max_layers", cfg.MaxLayers)
	return a, nil
}

// LayerSize returns the edge length of every layer in pixels.
func (a *Atlas) LayerSize() uint32 {
	return a.cfg.LayerSize
}

// LayerCount returns the number of layers in the texture array.
func (a *Atlas) LayerCount() int {
	return a.textureLayers
}

// BindGroup returns the bind group exposing the texture array at binding 0.
// The bind group is replaced whenever the atlas grows.
func (a *Atlas) BindGroup() hal.BindGroup {
	return a.bindGroup
}

// BindGroupLayout returns the layout the bind group was created with.
func (a *Atlas) BindGroupLayout() hal.BindGroupLayout {
	return a.layout
}

// Allocate reserves space for a width x height image.
//
// Images with the exact layer size claim a whole empty layer. Images that
// fit inside a layer are packed into the first layer with room. Larger
// images are split into layer-sized tiles in row-major order and returned as
// a fragmented entry. New layers are reserved as needed up to MaxLayers.
// Returns false if the image is empty, larger than MaxLayers layers, or the
// atlas is exhausted.
func (a *Atlas) Allocate(width, height uint32) (Entry, bool) {
	if a.closed || width == 0 || height == 0 {
		return Entry{}, false
	}

	size := a.cfg.LayerSize
	if uint64(width)*uint64(height) > uint64(size)*uint64(size)*uint64(a.cfg.MaxLayers) {
		slogger().Warn("atlas exhausted",
			"width", width, "height", height, "max_layers", a.cfg.MaxLayers)
		return Entry{}, false
	}

	reserved := len(a.layers)
	if width <= size && height <= size {
		alloc, ok := a.allocateSingle(width, height)
		if !ok {
			a.releaseReserved(reserved)
			slogger().Warn("atlas exhausted",
				"width", width, "height", height, "layers", len(a.layers))
			return Entry{}, false
		}
		return Contiguous(alloc), true
	}

	var fragments []Fragment
	for y := uint32(0); y < height; y += size {
		for x := uint32(0); x < width; x += size {
			w := min(size, width-x)
			h := min(size, height-y)
			alloc, ok := a.allocateSingle(w, h)
			if !ok {
				for _, f := range fragments {
					a.deallocate(f.Allocation)
				}
				a.releaseReserved(reserved)
				slogger().Warn("atlas exhausted",
					"width", width, "height", height, "layers", len(a.layers))
				return Entry{}, false
			}
			fragments = append(fragments, Fragment{
				Position:   [2]uint32{x, y},
				Allocation: alloc,
			})
		}
	}

	slogger().Debug("atlas fragmented allocation",
		"width", width, "height", height, "fragments", len(fragments))
	return Fragmented(Size{Width: width, Height: height}, fragments), true
}

// allocateSingle places a rectangle no larger than a layer.
func (a *Atlas) allocateSingle(w, h uint32) (Allocation, bool) {
	size := a.cfg.LayerSize

	if w == size && h == size {
		for i, l := range a.layers {
			if l.isEmpty() {
				l.full = true
				return Allocation{size: Size{w, h}, layer: i, full: true}, true
			}
		}
		l, i, ok := a.reserveLayer()
		if !ok {
			return Allocation{}, false
		}
		l.full = true
		return Allocation{size: Size{w, h}, layer: i, full: true}, true
	}

	for i, l := range a.layers {
		if l.full {
			continue
		}
		if x, y, ok := l.alloc.allocate(w, h); ok {
			return Allocation{x: x, y: y, size: Size{w, h}, layer: i}, true
		}
	}

	l, i, ok := a.reserveLayer()
	if !ok {
		return Allocation{}, false
	}
	x, y, ok := l.alloc.allocate(w, h)
	if !ok {
		return Allocation{}, false
	}
	return Allocation{x: x, y: y, size: Size{w, h}, layer: i}, true
}

// reserveLayer appends a new empty layer if MaxLayers allows it.
func (a *Atlas) reserveLayer() (*layer, int, bool) {
	if len(a.layers) >= a.cfg.MaxLayers {
		return nil, 0, false
	}
	l := a.newLayer()
	a.layers = append(a.layers, l)
	return l, len(a.layers) - 1, true
}

// releaseReserved drops empty layers past n that the texture does not hold yet.
func (a *Atlas) releaseReserved(n int) {
	n = max(n, a.textureLayers)
	for len(a.layers) > n && a.layers[len(a.layers)-1].isEmpty() {
		a.layers = a.layers[:len(a.layers)-1]
	}
}

func (a *Atlas) newLayer() *layer {
	return &layer{alloc: newShelfAllocator(a.cfg.LayerSize)}
}

// Remove frees every allocation of entry. Layers reserved past the texture
// that become empty are dropped.
func (a *Atlas) Remove(entry Entry) {
	if a.closed {
		return
	}
	switch entry.Kind() {
	case EntryContiguous:
		a.deallocate(entry.allocation)
	case EntryFragmented:
		for _, f := range entry.fragments {
			a.deallocate(f.Allocation)
		}
	}
	a.releaseReserved(0)
}

func (a *Atlas) deallocate(alloc Allocation) {
	if alloc.layer < 0 || alloc.layer >= len(a.layers) {
		return
	}
	l := a.layers[alloc.layer]
	if alloc.full {
		l.full = false
		return
	}
	if !l.alloc.free(alloc.x, alloc.y, alloc.size.Width, alloc.size.Height) {
		slogger().Warn("atlas: freeing unknown allocation", "allocation", alloc.String())
	}
}

// Upload allocates space for a width x height RGBA image and records the
// pixel writes into enc. pixels holds tightly packed rows of 4 bytes per
// pixel. Returns false if the image cannot be placed or written; no space is
// held in that case.
func (a *Atlas) Upload(enc Encoder, width, height uint32, pixels []byte) (Entry, bool) {
	if a.closed || enc == nil {
		return Entry{}, false
	}
	if uint64(len(pixels)) < uint64(width)*uint64(height)*4 {
		slogger().Warn("atlas upload rejected", "error", ErrShortPixels,
			"width", width, "height", height, "bytes", len(pixels))
		return Entry{}, false
	}

	entry, ok := a.Allocate(width, height)
	if !ok {
		return Entry{}, false
	}
	if err := a.Write(enc, entry, pixels); err != nil {
		a.Remove(entry)
		slogger().Warn("atlas upload failed", "error", err)
		return Entry{}, false
	}
	return entry, true
}

// Write grows the texture to the reserved layers and records pixels into
// the placement of entry. pixels holds tightly packed rows of entry.Size().
// On error entry is still allocated; the caller decides whether to Remove it.
func (a *Atlas) Write(enc Encoder, entry Entry, pixels []byte) error {
	if a.closed {
		return ErrClosed
	}
	if enc == nil {
		return ErrNilEncoder
	}
	size := entry.Size()
	if uint64(len(pixels)) < uint64(size.Width)*uint64(size.Height)*4 {
		return ErrShortPixels
	}
	if err := a.Sync(enc); err != nil {
		return err
	}
	return a.write(enc, entry, size.Width, pixels)
}

// write records one texture write per allocation of entry.
func (a *Atlas) write(enc Encoder, entry Entry, stride uint32, pixels []byte) error {
	if alloc, ok := entry.Allocation(); ok {
		return a.writeRegion(enc, alloc, 0, 0, stride, pixels)
	}
	for _, f := range entry.Fragments() {
		if err := a.writeRegion(enc, f.Allocation, f.Position[0], f.Position[1], stride, pixels); err != nil {
			return err
		}
	}
	return nil
}

// writeRegion copies the sub-image at (srcX, srcY) with the allocation's size
// out of pixels and records it into the allocation.
func (a *Atlas) writeRegion(enc Encoder, alloc Allocation, srcX, srcY, stride uint32, pixels []byte) error {
	w, h := alloc.size.Width, alloc.size.Height
	data := pixels
	if srcX != 0 || srcY != 0 || w != stride {
		data = make([]byte, int(w)*int(h)*4)
		rowBytes := int(w) * 4
		for row := uint32(0); row < h; row++ {
			src := (int(srcY+row)*int(stride) + int(srcX)) * 4
			copy(data[int(row)*rowBytes:], pixels[src:src+rowBytes])
		}
	} else {
		data = pixels[:int(w)*int(h)*4]
	}

	return enc.WriteTexture(hal.ImageCopyTexture{
		Texture:  a.texture,
		MipLevel: 0,
		Origin:   hal.Origin3D{X: alloc.x, Y: alloc.y, Z: uint32(alloc.layer)},
		Aspect:   gputypes.TextureAspectAll,
	}, data, w, h)
}

// Sync grows the texture array to the number of reserved layers, recording
// the copy of existing layers into enc. The previous texture, view and bind
// group are released once enc runs its deferred work.
func (a *Atlas) Sync(enc Encoder) error {
	if a.closed {
		return ErrClosed
	}
	want := len(a.layers)
	if want <= a.textureLayers {
		return nil
	}

	tex, view, group, err := a.createTexture(want)
	if err != nil {
		return err
	}

	size := a.cfg.LayerSize
	var copies []hal.TextureCopy
	for i := 0; i < a.textureLayers; i++ {
		if a.layers[i].isEmpty() {
			continue
		}
		copies = append(copies, hal.TextureCopy{
			SrcBase: hal.ImageCopyTexture{
				Texture: a.texture,
				Origin:  hal.Origin3D{Z: uint32(i)},
				Aspect:  gputypes.TextureAspectAll,
			},
			DstBase: hal.ImageCopyTexture{
				Texture: tex,
				Origin:  hal.Origin3D{Z: uint32(i)},
				Aspect:  gputypes.TextureAspectAll,
			},
			Size: hal.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 1},
		})
	}
	if len(copies) > 0 {
		enc.CopyTextureToTexture(a.texture, tex, copies)
	}

	oldTex, oldView, oldGroup := a.texture, a.view, a.bindGroup
	enc.Defer(func() {
		a.destroy(oldTex, oldView, oldGroup)
	})

	slogger().Debug("atlas grown",
		"from", a.textureLayers, "to", want, "copied", len(copies))

	a.texture, a.view, a.bindGroup = tex, view, group
	a.textureLayers = want
	return nil
}

// createTexture creates a texture array with n layers, its view and bind group.
func (a *Atlas) createTexture(n int) (hal.Texture, hal.TextureView, hal.BindGroup, error) {
	size := a.cfg.LayerSize

	tex, err := a.device.CreateTexture(&hal.TextureDescriptor{
		Label:         a.cfg.Label,
		Size:          hal.Extent3D{Width: size, Height: size, DepthOrArrayLayers: uint32(n)},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        textureFormat,
		Usage: gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageCopyDst |
			gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("atlas: create texture (%d layers): %w", n, err)
	}

	view, err := a.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           a.cfg.Label + "_view",
		Format:          textureFormat,
		Dimension:       gputypes.TextureViewDimension2DArray,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: uint32(n),
	})
	if err != nil {
		a.device.DestroyTexture(tex)
		return nil, nil, nil, fmt.Errorf("atlas: create texture view: %w", err)
	}

	group, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  a.cfg.Label + "_bind",
		Layout: a.layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{
				TextureView: view.NativeHandle(),
			}},
		},
	})
	if err != nil {
		a.device.DestroyTextureView(view)
		a.device.DestroyTexture(tex)
		return nil, nil, nil, fmt.Errorf("atlas: create bind group: %w", err)
	}
	return tex, view, group, nil
}

func (a *Atlas) destroy(tex hal.Texture, view hal.TextureView, group hal.BindGroup) {
	if group != nil {
		a.device.DestroyBindGroup(group)
	}
	if view != nil {
		a.device.DestroyTextureView(view)
	}
	if tex != nil {
		a.device.DestroyTexture(tex)
	}
}

// Stats reports layer usage.
type Stats struct {
	Layers      int
	EmptyLayers int
	FullLayers  int

	// Utilization is the fraction of the reserved area in use (0.0 to 1.0).
	Utilization float64
}

// Stats returns a snapshot of layer usage.
func (a *Atlas) Stats() Stats {
	s := Stats{Layers: len(a.layers)}
	if len(a.layers) == 0 {
		return s
	}
	var used float64
	for _, l := range a.layers {
		switch {
		case l.full:
			s.FullLayers++
			used++
		case l.isEmpty():
			s.EmptyLayers++
		default:
			used += l.alloc.utilization()
		}
	}
	s.Utilization = used / float64(len(a.layers))
	return s
}

// Close releases the texture, view and bind group. Calling Close more than
// once is a no-op.
func (a *Atlas) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.destroy(a.texture, a.view, a.bindGroup)
	a.texture, a.view, a.bindGroup = nil, nil, nil
	a.layers = nil
	a.textureLayers = 0
}
