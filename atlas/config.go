// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

// Default atlas settings.
const (
	// DefaultLayerSize is the edge length of every layer (2048x2048).
	DefaultLayerSize = 2048

	// MinLayerSize is the smallest accepted layer edge length.
	MinLayerSize = 256

	// MaxLayerSize is the largest accepted layer edge length.
	MaxLayerSize = 8192

	// DefaultMaxLayers bounds how far the texture array may grow.
	DefaultMaxLayers = 16
)

// Config holds atlas configuration.
type Config struct {
	// LayerSize is the width and height of each layer in pixels.
	// Must be a power of 2. Default: 2048
	LayerSize uint32

	// MaxLayers limits the number of layers in the texture array.
	// Default: 16
	MaxLayers int

	// Label is an optional debug label for GPU objects.
	Label string
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		LayerSize: DefaultLayerSize,
		MaxLayers: DefaultMaxLayers,
		Label:     "image_atlas",
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.LayerSize < MinLayerSize {
		return &ConfigError{Field: "LayerSize", Reason: "must be at least 256"}
	}
	if c.LayerSize > MaxLayerSize {
		return &ConfigError{Field: "LayerSize", Reason: "must be at most 8192"}
	}
	if c.LayerSize&(c.LayerSize-1) != 0 {
		return &ConfigError{Field: "LayerSize", Reason: "must be power of 2"}
	}
	if c.MaxLayers < 1 {
		return &ConfigError{Field: "MaxLayers", Reason: "must be at least 1"}
	}
	if c.MaxLayers > 256 {
		return &ConfigError{Field: "MaxLayers", Reason: "must be at most 256"}
	}
	return nil
}
