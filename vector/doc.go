// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package vector caches parsed SVG documents and their rasterizations in an
// atlas.Atlas.
//
// A document is parsed once per residency. Each distinct combination of
// pixel size and fill color produces its own rasterization with its own
// placement and lifetime. Parsed documents and rasterizations are trimmed
// independently; using a rasterization also keeps its document alive.
//
// SVG support is the subset handled by github.com/srwiley/oksvg; rendering
// uses github.com/srwiley/rasterx.
package vector
