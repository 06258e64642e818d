// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gogpu/imageatlas/atlas"
	"github.com/gogpu/imageatlas/internal/retain"
)

// Cache maps raster handles to decoded pixels and atlas placements.
//
// Every lookup through Load, Upload or Entry marks the image as used. Trim
// evicts images that were not used since the previous Trim and frees their
// placements.
//
// Cache is not safe for concurrent use.
type Cache struct {
	table *retain.Table[uint64, *Memory]

	// pool keeps recently decoded images so that an evicted image that comes
	// back soon skips decoding. nil when disabled.
	pool *lru.Cache[uint64, *Image]
}

// NewCache returns an empty cache without a decode pool.
func NewCache() *Cache {
	return &Cache{table: retain.New[uint64, *Memory]()}
}

// NewCacheWithPool returns an empty cache that keeps up to poolSize decoded
// images after they leave the cache.
func NewCacheWithPool(poolSize int) (*Cache, error) {
	pool, err := lru.NewWithEvict(poolSize, func(id uint64, img *Image) {
		slogger().Debug("raster decode pool evict", "id", id, "width", img.Width, "height", img.Height)
	})
	if err != nil {
		return nil, fmt.Errorf("raster: decode pool: %w", err)
	}
	return &Cache{
		table: retain.New[uint64, *Memory](),
		pool:  pool,
	}, nil
}

// Load returns the cached record for h, decoding it on first use.
// A failed decode is remembered until the record is trimmed.
func (c *Cache) Load(h Handle) *Memory {
	if m, ok := c.table.Get(h.id); ok {
		return m
	}

	m := newMemory(c.decode(h))
	if m.err != nil {
		slogger().Warn("raster load failed", "id", h.id, "path", h.Path(), "state", m.state.String(), "error", m.err)
	}
	c.table.Set(h.id, m)
	return m
}

func (c *Cache) decode(h Handle) (*Image, error) {
	if c.pool != nil {
		if img, ok := c.pool.Get(h.id); ok {
			return img, nil
		}
	}
	img, err := decode(h)
	if err == nil && c.pool != nil {
		c.pool.Add(h.id, img)
	}
	return img, err
}

// Upload returns the atlas placement for h, decoding the image and
// recording its upload into enc if it has none yet. Returns false if the
// image failed to load or the atlas has no room.
func (c *Cache) Upload(enc atlas.Encoder, h Handle, a *atlas.Atlas) (atlas.Entry, bool) {
	m := c.Load(h)
	switch m.state {
	case StateDevice:
		return m.entry, true
	case StateHost:
	default:
		return atlas.Entry{}, false
	}

	entry, ok := a.Upload(enc, m.image.Width, m.image.Height, m.image.Pixels)
	if !ok {
		return atlas.Entry{}, false
	}
	m.state = StateDevice
	m.entry = entry
	m.image = nil

	slogger().Debug("raster uploaded", "id", h.id, "size", entry.Size().String(), "kind", entry.Kind().String())
	return entry, true
}

// Entry returns the placement of h without creating one.
// A hit marks the image as used.
func (c *Cache) Entry(h Handle) (atlas.Entry, bool) {
	m, ok := c.table.Get(h.id)
	if !ok {
		return atlas.Entry{}, false
	}
	return m.Entry()
}

// Contains reports whether h has a record, without marking it used.
func (c *Cache) Contains(h Handle) bool {
	_, ok := c.table.Peek(h.id)
	return ok
}

// Trim evicts every image not used since the previous Trim, freeing its
// placement in a. Surviving images start the next cycle unused.
func (c *Cache) Trim(a *atlas.Atlas) {
	n := c.table.Trim(func(_ uint64, m *Memory) {
		if m.state == StateDevice {
			a.Remove(m.entry)
		}
	})
	if n > 0 {
		slogger().Debug("raster trim",
			"cycle", c.table.Trims(),
			"evicted", n,
			"remaining", c.table.Len())
	}
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	return c.table.Len()
}

// Placed returns the number of images with an atlas placement.
func (c *Cache) Placed() int {
	n := 0
	c.table.Range(func(_ uint64, m *Memory) bool {
		if m.state == StateDevice {
			n++
		}
		return true
	})
	return n
}

// Clear drops every record, freeing placements in a when a is not nil.
func (c *Cache) Clear(a *atlas.Atlas) {
	c.table.Clear(func(_ uint64, m *Memory) {
		if a != nil && m.state == StateDevice {
			a.Remove(m.entry)
		}
	})
	if c.pool != nil {
		c.pool.Purge()
	}
}
