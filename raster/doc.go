// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package raster caches decoded raster images and their atlas placements.
//
// A Handle names an image by path, encoded bytes, or raw RGBA pixels. The
// Cache decodes each handle at most once per residency, uploads its pixels
// into an atlas.Atlas on demand, and evicts entries that were not used since
// the previous Trim.
//
// Supported encodings are PNG, JPEG and GIF from the standard library and
// WebP, BMP and TIFF from golang.org/x/image. Decoded pixels are stored as
// premultiplied RGBA.
//
// Example:
//
//	cache := raster.NewCache()
//	h := raster.FromPath("assets/logo.png")
//	if entry, ok := cache.Upload(enc, h, atl); ok {
//		// draw with entry
//	}
//	cache.Trim(atl) // once per frame
package raster
