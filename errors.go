// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package imageatlas

import "errors"

// Sentinel errors for cache construction.
var (
	// ErrNilProvider is returned by NewFromProvider for a nil provider.
	ErrNilProvider = errors.New("imageatlas: device provider is nil")

	// ErrUnsupportedDevice is returned when a provider's device does not
	// expose the HAL interface the atlas needs.
	ErrUnsupportedDevice = errors.New("imageatlas: provider device is not a HAL device")

	// ErrNoKinds is returned when every image kind is disabled.
	ErrNoKinds = errors.New("imageatlas: no image kinds enabled")

	// ErrInvalidDecodePool is returned for a negative decode pool size.
	ErrInvalidDecodePool = errors.New("imageatlas: decode pool size must not be negative")
)
