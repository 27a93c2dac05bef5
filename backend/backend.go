// Package backend defines the host-side adapter the emulation context talks
// to: something that can display a completed frame and report key events.
// It stands in for spec's external collaborators (window/rendering, input
// source) which this core treats as interface-only.
package backend

import (
	"errors"

	"github.com/pockettone/pockettone/joypad"
	"github.com/pockettone/pockettone/ppu"
)

// ErrHostInit is returned when a Backend fails to acquire its host
// resources (terminal screen, window, event pump).
var ErrHostInit = errors.New("backend: host initialization failed")

// Backend is implemented once per host surface (terminal, headless/batch).
// Render and PollInput are called from the host context's own loop, never
// from the emulation goroutine directly.
type Backend interface {
	// Render displays a completed frame. Called once per VBlank.
	Render(frame ppu.Frame) error

	// PollInput reports key transitions observed since the last call, and
	// whether the host wants to quit. Must not block.
	PollInput() (events []joypad.Event, quit bool)

	// Close releases any host resources acquired at construction.
	Close() error
}
