// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vector

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/srwiley/oksvg"

	"github.com/gogpu/imageatlas/atlas"
)

// Parsing errors.
var (
	// ErrEmptyData is returned when a handle carries no data.
	ErrEmptyData = errors.New("vector: empty data")

	// ErrNoViewport is returned when a document has neither a viewBox nor a size.
	ErrNoViewport = errors.New("vector: document has no viewport")
)

// State describes the outcome of parsing a document.
type State uint8

const (
	// StateLoaded means the document parsed successfully.
	StateLoaded State = iota

	// StateNotFound means the document source could not be found.
	StateNotFound

	// StateInvalid means the document could not be parsed.
	StateInvalid
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateLoaded:
		return "Loaded"
	case StateNotFound:
		return "NotFound"
	case StateInvalid:
		return "Invalid"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Source is a parsed SVG document.
type Source struct {
	state State
	icon  *oksvg.SvgIcon
	err   error
}

// parse loads and parses the document behind h.
func parse(h Handle) *Source {
	icon, err := readIcon(h)
	switch {
	case err == nil:
		return &Source{state: StateLoaded, icon: icon}
	case errors.Is(err, fs.ErrNotExist):
		return &Source{state: StateNotFound, err: err}
	default:
		return &Source{state: StateInvalid, err: err}
	}
}

func readIcon(h Handle) (*oksvg.SvgIcon, error) {
	if h.src == nil {
		return nil, ErrEmptyData
	}
	data := h.src.bytes
	if h.src.path != "" {
		var err error
		data, err = os.ReadFile(filepath.Clean(h.src.path))
		if err != nil {
			return nil, fmt.Errorf("vector: open file: %w", err)
		}
	}
	if len(data) == 0 {
		return nil, ErrEmptyData
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("vector: parse: %w", err)
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		return nil, ErrNoViewport
	}
	return icon, nil
}

// State returns the parse outcome.
func (s *Source) State() State {
	return s.state
}

// Err returns the parse error for NotFound and Invalid documents.
func (s *Source) Err() error {
	return s.err
}

// Viewport returns the document's natural size rounded up to whole pixels.
// Documents that failed to parse measure 1x1.
func (s *Source) Viewport() atlas.Size {
	if s.state != StateLoaded {
		return atlas.Size{Width: 1, Height: 1}
	}
	return atlas.Size{
		Width:  ceilPixels(s.icon.ViewBox.W),
		Height: ceilPixels(s.icon.ViewBox.H),
	}
}
