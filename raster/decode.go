// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Decoding errors.
var (
	// ErrEmptyData is returned when a handle carries no data.
	ErrEmptyData = errors.New("raster: empty data")

	// ErrInvalidPixels is returned when raw pixels do not match the declared size.
	ErrInvalidPixels = errors.New("raster: pixel data does not match size")
)

// Image is a decoded image in premultiplied RGBA, 4 bytes per pixel with
// tightly packed rows.
type Image struct {
	Width  uint32
	Height uint32
	Pixels []byte
}

// decode loads and decodes the image behind h.
func decode(h Handle) (*Image, error) {
	if h.src == nil {
		return nil, ErrEmptyData
	}
	switch {
	case h.src.rgba != nil:
		img := h.src.rgba
		if uint64(len(img.Pixels)) < uint64(img.Width)*uint64(img.Height)*4 {
			return nil, ErrInvalidPixels
		}
		return img, nil
	case h.src.path != "":
		data, err := os.ReadFile(filepath.Clean(h.src.path))
		if err != nil {
			return nil, fmt.Errorf("raster: open file: %w", err)
		}
		return decodeBytes(data)
	default:
		return decodeBytes(h.src.bytes)
	}
}

// decodeBytes decodes encoded image data, auto-detecting the format.
func decodeBytes(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("raster: decode: %w", err)
	}
	return fromStdImage(img), nil
}

// fromStdImage converts any image.Image to tightly packed premultiplied RGBA.
func fromStdImage(img image.Image) *Image {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == b.Dx()*4 {
		return &Image{Width: uint32(b.Dx()), Height: uint32(b.Dy()), Pixels: rgba.Pix}
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return &Image{Width: uint32(b.Dx()), Height: uint32(b.Dy()), Pixels: dst.Pix}
}
