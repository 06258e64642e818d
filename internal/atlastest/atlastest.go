// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package atlastest provides a headless GPU device and a recording encoder
// for tests of the atlas and the caches built on it.
package atlastest

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// Device opens a noop HAL device. The device and instance are destroyed
// when the test finishes.
func Device(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		t.Fatal("no noop adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

// Layout creates a bind group layout with a 2D-array float texture at
// binding 0, the layout the atlas expects.
func Layout(t *testing.T, device hal.Device) hal.BindGroupLayout {
	t.Helper()
	layout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "atlas_test_layout",
		Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2DArray,
			},
		}},
	})
	if err != nil {
		t.Fatalf("CreateBindGroupLayout failed: %v", err)
	}
	t.Cleanup(func() { device.DestroyBindGroupLayout(layout) })
	return layout
}

// CountingDevice wraps a hal.Device and tracks texture and bind group
// lifetimes. Bind groups are returned as *BindGroup so tests can tell
// successive groups apart.
type CountingDevice struct {
	hal.Device

	TexturesCreated     int
	TexturesDestroyed   int
	BindGroupsCreated   int
	BindGroupsDestroyed int
}

// BindGroup is a bind group tagged with its creation order, starting at 1.
type BindGroup struct {
	hal.BindGroup
	ID int
}

// NewCountingDevice wraps the noop device from Device.
func NewCountingDevice(t *testing.T) *CountingDevice {
	t.Helper()
	device, _ := Device(t)
	return &CountingDevice{Device: device}
}

// CreateTexture counts the texture.
func (d *CountingDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	tex, err := d.Device.CreateTexture(desc)
	if err == nil {
		d.TexturesCreated++
	}
	return tex, err
}

// DestroyTexture counts the release.
func (d *CountingDevice) DestroyTexture(texture hal.Texture) {
	d.TexturesDestroyed++
	d.Device.DestroyTexture(texture)
}

// CreateBindGroup counts the group and tags it with an ID.
func (d *CountingDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	group, err := d.Device.CreateBindGroup(desc)
	if err != nil {
		return nil, err
	}
	d.BindGroupsCreated++
	return &BindGroup{BindGroup: group, ID: d.BindGroupsCreated}, nil
}

// DestroyBindGroup counts the release and destroys the wrapped group.
func (d *CountingDevice) DestroyBindGroup(group hal.BindGroup) {
	d.BindGroupsDestroyed++
	if g, ok := group.(*BindGroup); ok {
		group = g.BindGroup
	}
	d.Device.DestroyBindGroup(group)
}

// BindGroupID returns the ID of a group created by a CountingDevice, or 0.
func BindGroupID(group hal.BindGroup) int {
	if g, ok := group.(*BindGroup); ok {
		return g.ID
	}
	return 0
}

// Write is one recorded texture write.
type Write struct {
	Dst    hal.ImageCopyTexture
	Width  uint32
	Height uint32
	Data   []byte
}

// Recorder is an atlas.Encoder that records writes and copies in memory.
type Recorder struct {
	Writes []Write
	Copies []hal.TextureCopy

	// Err, when set, is returned by WriteTexture.
	Err error

	deferred []func()
}

// WriteTexture records the write.
func (r *Recorder) WriteTexture(dst hal.ImageCopyTexture, data []byte, width, height uint32) error {
	if r.Err != nil {
		return r.Err
	}
	r.Writes = append(r.Writes, Write{
		Dst:    dst,
		Width:  width,
		Height: height,
		Data:   append([]byte(nil), data...),
	})
	return nil
}

// CopyTextureToTexture records the copy regions.
func (r *Recorder) CopyTextureToTexture(_, _ hal.Texture, regions []hal.TextureCopy) {
	r.Copies = append(r.Copies, regions...)
}

// Defer queues fn until Flush.
func (r *Recorder) Defer(fn func()) {
	r.deferred = append(r.deferred, fn)
}

// Pending returns the number of deferred functions not yet run.
func (r *Recorder) Pending() int {
	return len(r.deferred)
}

// Flush runs deferred functions.
func (r *Recorder) Flush() {
	for _, fn := range r.deferred {
		fn()
	}
	r.deferred = nil
}

// Reset clears recorded writes and copies.
func (r *Recorder) Reset() {
	r.Writes = nil
	r.Copies = nil
}
