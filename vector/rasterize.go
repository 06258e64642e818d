// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vector

import (
	"image"
	"image/color"
	"math"

	"github.com/srwiley/rasterx"
)

// pixelSize converts a logical size and scale factor to whole pixels.
// Non-positive and non-finite results become zero.
func pixelSize(size [2]float32, scale float32) (w, h uint32) {
	return toPixels(size[0] * scale), toPixels(size[1] * scale)
}

func toPixels(v float32) uint32 {
	return ceilPixels(float64(v))
}

// ceilPixels rounds v up to whole pixels, clamped to the uint32 range.
func ceilPixels(v float64) uint32 {
	f := math.Ceil(v)
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(f)
}

// rasterize renders the document into a w x h premultiplied RGBA image.
func (s *Source) rasterize(w, h uint32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	scanner := rasterx.NewScannerGV(int(w), int(h), img, img.Bounds())
	dasher := rasterx.NewDasher(int(w), int(h), scanner)

	s.icon.SetTarget(0, 0, float64(w), float64(h))
	s.icon.Draw(dasher, 1.0)
	return img
}

// applyFill replaces the color of every pixel with fill, keeping the
// rendered coverage. Output stays premultiplied.
func applyFill(pix []byte, fill color.NRGBA) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := uint32(pix[i+3]) * uint32(fill.A) / 0xff
		pix[i+0] = uint8(uint32(fill.R) * a / 0xff)
		pix[i+1] = uint8(uint32(fill.G) * a / 0xff)
		pix[i+2] = uint8(uint32(fill.B) * a / 0xff)
		pix[i+3] = uint8(a)
	}
}
