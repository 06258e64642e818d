// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package imageatlas

import "github.com/gogpu/imageatlas/atlas"

// Option configures a Cache during creation.
//
// Example:
//
//	cache, err := imageatlas.New(device, layout,
//	    imageatlas.WithAtlasConfig(atlas.Config{LayerSize: 1024, MaxLayers: 8}),
//	    imageatlas.WithKinds(imageatlas.KindRaster),
//	)
type Option func(*options)

// options holds optional configuration for Cache creation.
type options struct {
	atlas      atlas.Config
	kinds      Kind
	decodePool int
}

// defaultOptions returns the default cache options.
func defaultOptions() options {
	return options{
		atlas: atlas.DefaultConfig(),
		kinds: KindAll,
	}
}

// WithAtlasConfig sets the texture atlas configuration.
// An empty Label keeps the default label.
func WithAtlasConfig(cfg atlas.Config) Option {
	return func(o *options) {
		if cfg.Label == "" {
			cfg.Label = o.atlas.Label
		}
		o.atlas = cfg
	}
}

// WithKinds restricts the cache to the given image kinds.
// A disabled kind measures as zero and never yields a region.
func WithKinds(kinds ...Kind) Option {
	return func(o *options) {
		o.kinds = 0
		for _, k := range kinds {
			o.kinds |= k
		}
	}
}

// WithDecodePool keeps up to n decoded raster images after they are
// evicted, so an image that returns soon after eviction is not decoded
// again. Zero disables the pool.
func WithDecodePool(n int) Option {
	return func(o *options) {
		o.decodePool = n
	}
}
