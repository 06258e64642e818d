// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vector

import (
	"image/color"

	"github.com/gogpu/imageatlas/atlas"
	"github.com/gogpu/imageatlas/internal/retain"
)

// key identifies one rasterization of a document.
type key struct {
	id      uint64
	width   uint32
	height  uint32
	fill    color.NRGBA
	hasFill bool
}

func newKey(h Handle, fill *color.NRGBA, w, hgt uint32) key {
	k := key{id: h.id, width: w, height: hgt}
	if fill != nil {
		k.fill = *fill
		k.hasFill = true
	}
	return k
}

// Cache maps SVG handles to parsed documents and rasterizations.
//
// Cache is not safe for concurrent use.
type Cache struct {
	sources    *retain.Table[uint64, *Source]
	rasterized *retain.Table[key, atlas.Entry]
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		sources:    retain.New[uint64, *Source](),
		rasterized: retain.New[key, atlas.Entry](),
	}
}

// Load returns the parsed document for h, parsing it on first use.
// A failed parse is remembered until the document is trimmed.
func (c *Cache) Load(h Handle) *Source {
	if s, ok := c.sources.Get(h.id); ok {
		return s
	}
	s := parse(h)
	if s.err != nil {
		slogger().Warn("svg load failed", "id", h.id, "path", h.Path(), "state", s.state.String(), "error", s.err)
	}
	c.sources.Set(h.id, s)
	return s
}

// Upload returns the placement of h rendered at size*scale pixels with an
// optional fill color, rasterizing and recording the upload into enc if this
// combination has no placement yet. fill replaces the document's colors and
// keeps its coverage. Returns false for documents that failed to parse, a
// zero pixel size, or a full atlas.
func (c *Cache) Upload(enc atlas.Encoder, h Handle, fill *color.NRGBA, size [2]float32, scale float32, a *atlas.Atlas) (atlas.Entry, bool) {
	w, hgt := pixelSize(size, scale)
	if w == 0 || hgt == 0 {
		return atlas.Entry{}, false
	}

	k := newKey(h, fill, w, hgt)
	if entry, ok := c.rasterized.Get(k); ok {
		c.sources.Touch(h.id)
		return entry, true
	}

	s := c.Load(h)
	if s.state != StateLoaded {
		return atlas.Entry{}, false
	}

	// Place before rasterizing so a target the atlas cannot hold costs nothing.
	entry, ok := a.Allocate(w, hgt)
	if !ok {
		return atlas.Entry{}, false
	}
	img := s.rasterize(w, hgt)
	if fill != nil {
		applyFill(img.Pix, *fill)
	}
	if err := a.Write(enc, entry, img.Pix); err != nil {
		a.Remove(entry)
		slogger().Warn("svg upload failed", "id", h.id, "width", w, "height", hgt, "error", err)
		return atlas.Entry{}, false
	}
	c.rasterized.Set(k, entry)

	slogger().Debug("svg rasterized", "id", h.id, "width", w, "height", hgt, "fill", fill != nil)
	return entry, true
}

// Entry returns the placement of the given rasterization without creating
// one. A hit marks both the rasterization and its document as used.
func (c *Cache) Entry(h Handle, fill *color.NRGBA, size [2]float32, scale float32) (atlas.Entry, bool) {
	w, hgt := pixelSize(size, scale)
	if w == 0 || hgt == 0 {
		return atlas.Entry{}, false
	}
	entry, ok := c.rasterized.Get(newKey(h, fill, w, hgt))
	if !ok {
		return atlas.Entry{}, false
	}
	c.sources.Touch(h.id)
	return entry, true
}

// Trim evicts documents and rasterizations not used since the previous
// Trim, freeing placements in a.
func (c *Cache) Trim(a *atlas.Atlas) {
	nr := c.rasterized.Trim(func(_ key, entry atlas.Entry) {
		a.Remove(entry)
	})
	ns := c.sources.Trim(nil)
	if nr > 0 || ns > 0 {
		slogger().Debug("svg trim",
			"cycle", c.sources.Trims(),
			"evicted_rasterizations", nr,
			"evicted_sources", ns,
			"remaining", c.rasterized.Len())
	}
}

// Len returns the number of parsed documents.
func (c *Cache) Len() int {
	return c.sources.Len()
}

// Placed returns the number of rasterizations with an atlas placement.
func (c *Cache) Placed() int {
	return c.rasterized.Len()
}

// Clear drops every document and rasterization, freeing placements in a
// when a is not nil.
func (c *Cache) Clear(a *atlas.Atlas) {
	c.rasterized.Clear(func(_ key, entry atlas.Entry) {
		if a != nil {
			a.Remove(entry)
		}
	})
	c.sources.Clear(nil)
}
