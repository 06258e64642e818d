// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/gogpu/imageatlas/atlas"
)

// State describes where the pixels of a cached image live.
type State uint8

const (
	// StateHost means the image is decoded and waiting to be uploaded.
	StateHost State = iota

	// StateDevice means the image has a placement in the atlas.
	StateDevice

	// StateNotFound means the image source could not be found.
	StateNotFound

	// StateInvalid means the image data could not be decoded.
	StateInvalid
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateHost:
		return "Host"
	case StateDevice:
		return "Device"
	case StateNotFound:
		return "NotFound"
	case StateInvalid:
		return "Invalid"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Memory is the cached record of one image.
type Memory struct {
	state State
	image *Image
	entry atlas.Entry
	err   error
}

func newMemory(img *Image, err error) *Memory {
	switch {
	case err == nil:
		return &Memory{state: StateHost, image: img}
	case errors.Is(err, fs.ErrNotExist):
		return &Memory{state: StateNotFound, err: err}
	default:
		return &Memory{state: StateInvalid, err: err}
	}
}

// State returns where the image lives.
func (m *Memory) State() State {
	return m.state
}

// Err returns the load error for NotFound and Invalid images.
func (m *Memory) Err() error {
	return m.err
}

// Dimensions returns the natural size of the image. Images that failed to
// load measure 1x1.
func (m *Memory) Dimensions() atlas.Size {
	switch m.state {
	case StateHost:
		return atlas.Size{Width: m.image.Width, Height: m.image.Height}
	case StateDevice:
		return m.entry.Size()
	default:
		return atlas.Size{Width: 1, Height: 1}
	}
}

// Entry returns the atlas placement of a Device image.
func (m *Memory) Entry() (atlas.Entry, bool) {
	if m.state != StateDevice {
		return atlas.Entry{}, false
	}
	return m.entry, true
}
