// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package imageatlas is a GPU texture atlas cache for raster images and SVG
// documents.
//
// # Overview
//
// A Cache owns one texture array (see package atlas) shared by every image
// it places. Renderers ask the cache for the region of an image each frame;
// the cache decodes or rasterizes the image the first time, records the
// pixel upload into the caller's encoder, and returns the normalized
// coordinates and layer to sample from.
//
// # Frame protocol
//
//	enc := atlas.NewFrameEncoder(device, queue, cmd)
//	for _, img := range visible {
//		region, ok := cache.EnsureRasterRegion(enc, img)
//		if !ok {
//			continue // not decodable or no room
//		}
//		// draw with region and cache.BindGroup()
//	}
//	// end encoding and submit cmd, then:
//	enc.Release()
//	cache.Trim()
//
// Trim evicts every image that was not requested since the previous Trim.
// An image that is drawn every frame is therefore never evicted, and one
// that stops being drawn is evicted after at most two trims.
//
// The bind group returned by BindGroup changes when the atlas grows, so
// renderers must fetch it after the last ensure call of a frame.
//
// # Logging
//
// The package is silent by default. Call SetLogger to route diagnostics
// from the cache, the atlas and both sub-caches to a slog.Logger.
//
// # Concurrency
//
// A Cache is not safe for concurrent use. SetLogger and Logger are.
package imageatlas
