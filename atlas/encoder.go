// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Encoder records the GPU work produced by the atlas during a frame.
//
// Writes and copies become visible once the caller submits the underlying
// command buffer. Functions passed to Defer must run after that submission
// has completed; they release resources the recorded commands still refer
// to.
type Encoder interface {
	// WriteTexture records a write of width x height tightly packed RGBA
	// pixels at dst.
	WriteTexture(dst hal.ImageCopyTexture, data []byte, width, height uint32) error

	// CopyTextureToTexture records texture-to-texture copies.
	CopyTextureToTexture(src, dst hal.Texture, regions []hal.TextureCopy)

	// Defer schedules fn to run after submission.
	Defer(fn func())
}

// copyRowAlignment is the required BytesPerRow alignment for buffer to
// texture copies.
const copyRowAlignment = 256

// StagingDevice is the subset of hal.Device used to create staging buffers.
type StagingDevice interface {
	CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error)
	DestroyBuffer(buffer hal.Buffer)
}

// FrameEncoder implements Encoder on top of a hal.CommandEncoder that is
// already recording. Pixel data goes through staging buffers so that writes
// and layer copies execute in recording order.
//
// Typical use:
//
//	cmd.BeginEncoding("frame")
//	enc := atlas.NewFrameEncoder(device, queue, cmd)
//	// ... cache uploads ...
//	buf, _ := cmd.EndEncoding()
//	queue.Submit([]hal.CommandBuffer{buf})
//	enc.Release()
type FrameEncoder struct {
	device  StagingDevice
	queue   hal.Queue
	encoder hal.CommandEncoder

	staging  []hal.Buffer
	deferred []func()

	writes int
	copies int
}

// NewFrameEncoder returns an encoder recording into cmd.
func NewFrameEncoder(device StagingDevice, queue hal.Queue, cmd hal.CommandEncoder) *FrameEncoder {
	return &FrameEncoder{
		device:  device,
		queue:   queue,
		encoder: cmd,
	}
}

// WriteTexture stages data in a buffer with aligned rows and records a
// buffer-to-texture copy.
func (e *FrameEncoder) WriteTexture(dst hal.ImageCopyTexture, data []byte, width, height uint32) error {
	rowBytes := width * 4
	if uint64(len(data)) < uint64(rowBytes)*uint64(height) {
		return ErrShortPixels
	}
	bytesPerRow := alignUp(rowBytes, copyRowAlignment)

	var staged []byte
	if bytesPerRow != rowBytes {
		staged = make([]byte, int(bytesPerRow)*int(height))
		for row := 0; row < int(height); row++ {
			copy(staged[row*int(bytesPerRow):], data[row*int(rowBytes):(row+1)*int(rowBytes)])
		}
	} else {
		staged = data[:int(rowBytes)*int(height)]
	}

	buf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "atlas_staging",
		Size:  uint64(len(staged)),
		Usage: gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("atlas: create staging buffer: %w", err)
	}
	e.staging = append(e.staging, buf)

	if err := e.queue.WriteBuffer(buf, 0, staged); err != nil {
		return fmt.Errorf("atlas: write staging buffer: %w", err)
	}

	e.encoder.CopyBufferToTexture(buf, dst.Texture, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  bytesPerRow,
			RowsPerImage: height,
		},
		TextureBase: dst,
		Size:        hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
	}})
	e.writes++
	return nil
}

// CopyTextureToTexture records the copy into the command encoder.
func (e *FrameEncoder) CopyTextureToTexture(src, dst hal.Texture, regions []hal.TextureCopy) {
	e.encoder.CopyTextureToTexture(src, dst, regions)
	e.copies += len(regions)
}

// Defer schedules fn to run in Release.
func (e *FrameEncoder) Defer(fn func()) {
	e.deferred = append(e.deferred, fn)
}

// Writes returns the number of texture writes recorded so far.
func (e *FrameEncoder) Writes() int {
	return e.writes
}

// Copies returns the number of layer copy regions recorded so far.
func (e *FrameEncoder) Copies() int {
	return e.copies
}

// Release destroys staging buffers and runs deferred work. Call it once the
// submitted command buffer has completed. The encoder may be reused afterwards.
func (e *FrameEncoder) Release() {
	for _, buf := range e.staging {
		e.device.DestroyBuffer(buf)
	}
	e.staging = e.staging[:0]

	for _, fn := range e.deferred {
		fn()
	}
	e.deferred = e.deferred[:0]
	e.writes = 0
	e.copies = 0
}

func alignUp(v, align uint32) uint32 {
	return (v + align - 1) / align * align
}
