// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package imageatlas

import "strings"

// Kind selects which image kinds a Cache handles.
type Kind uint8

const (
	// KindRaster enables decoded raster images.
	KindRaster Kind = 1 << iota

	// KindVector enables SVG documents.
	KindVector

	// KindAll enables every kind.
	KindAll = KindRaster | KindVector
)

// Has reports whether every kind in other is enabled in k.
func (k Kind) Has(other Kind) bool {
	return k&other == other
}

// String returns the enabled kinds joined by "|".
func (k Kind) String() string {
	if k == 0 {
		return "None"
	}
	var parts []string
	if k.Has(KindRaster) {
		parts = append(parts, "Raster")
	}
	if k.Has(KindVector) {
		parts = append(parts, "Vector")
	}
	return strings.Join(parts, "|")
}
