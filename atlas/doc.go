// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package atlas packs RGBA images into the layers of a single GPU texture
// array.
//
// An Atlas owns one 2D-array texture whose layers all share the same square
// edge length (Config.LayerSize). Images that fit in a layer are placed with
// a shelf packer and described by a contiguous Entry. Images larger than a
// layer are cut into LayerSize tiles, each placed on its own, and described
// by a fragmented Entry whose fragments keep the order in which the tiles
// were cut (row-major, top-left first).
//
// When no layer has room, the atlas grows: it creates a larger texture array,
// records a copy of the old layers through the caller's Encoder and rebuilds
// its texture view and bind group. The bind group returned by BindGroup is
// therefore only valid until the next Upload, Write or Sync.
//
// # Uploads
//
// Atlas never submits GPU work. Every pixel write and layer copy is recorded
// into an Encoder supplied by the caller, who must submit it before sampling
// the uploaded pixels. FrameEncoder is the stock implementation over a
// hal.CommandEncoder:
//
//	enc := atlas.NewFrameEncoder(device, queue, commands)
//	entry, ok := a.Upload(enc, w, h, pixels)
//	// ... EndEncoding, queue.Submit ...
//	enc.Release()
//
// Callers that produce pixels on demand can reserve space with Allocate and
// fill it with Write, so nothing is rendered for an image that cannot be
// placed.
//
// Atlas is not safe for concurrent use.
package atlas
