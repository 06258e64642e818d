// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import "errors"

// Sentinel errors for the atlas package.
var (
	// ErrNilDevice is returned when creating an atlas without a device.
	ErrNilDevice = errors.New("atlas: device is nil")

	// ErrNilLayout is returned when creating an atlas without a bind group layout.
	ErrNilLayout = errors.New("atlas: bind group layout is nil")

	// ErrClosed is returned when operating on a closed atlas.
	ErrClosed = errors.New("atlas: atlas is closed")

	// ErrNilEncoder is returned when writing without an encoder.
	ErrNilEncoder = errors.New("atlas: encoder is nil")

	// ErrShortPixels is returned when pixel data is smaller than width*height*4.
	ErrShortPixels = errors.New("atlas: pixel data is shorter than the image")
)

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "atlas: invalid config." + e.Field + ": " + e.Reason
}
