// Package joypad implements the P1 register's 4-bit direction/button
// matrix, selected by writes to bits 4-5, with 1=released/0=pressed and a
// Joypad interrupt on any visible 1->0 transition.
package joypad

import "github.com/pockettone/pockettone/bit"

// Key identifies one of the eight physical inputs.
type Key uint8

const (
	Right Key = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// Event is a single key transition drained from the host input channel.
type Event struct {
	Key     Key
	Pressed bool
}

// Joypad holds the two 4-bit matrices and the P1 select lines.
type Joypad struct {
	dpad          uint8 // bits: Right,Left,Up,Down — 1=released
	buttons       uint8 // bits: A,B,Select,Start — 1=released
	selectButtons bool  // P1 bit 5, 0 = buttons visible
	selectDpad    bool  // P1 bit 4, 0 = dpad visible
}

func New() *Joypad {
	return &Joypad{dpad: 0x0F, buttons: 0x0F}
}

// ReadP1 returns the current P1 register value: bits 6-7 always 1, bits 4-5
// echo the select lines, bits 0-3 the selected matrix half (ANDed together
// if both halves are selected).
func (j *Joypad) ReadP1() uint8 {
	lower := uint8(0x0F)
	if !j.selectDpad {
		lower &= j.dpad
	}
	if !j.selectButtons {
		lower &= j.buttons
	}

	v := lower | 0xC0
	if j.selectDpad {
		v |= 0x10
	}
	if j.selectButtons {
		v |= 0x20
	}
	return v
}

func (j *Joypad) WriteP1(value uint8) {
	j.selectDpad = value&0x10 != 0
	j.selectButtons = value&0x20 != 0
}

// Apply presses or releases key and reports whether the change is a
// Joypad-interrupt-raising 1->0 transition on a currently-visible bit.
func (j *Joypad) Apply(e Event) (interrupt bool) {
	before := j.ReadP1() & 0x0F

	switch e.Key {
	case Right:
		j.dpad = setReleased(j.dpad, 0, e.Pressed)
	case Left:
		j.dpad = setReleased(j.dpad, 1, e.Pressed)
	case Up:
		j.dpad = setReleased(j.dpad, 2, e.Pressed)
	case Down:
		j.dpad = setReleased(j.dpad, 3, e.Pressed)
	case A:
		j.buttons = setReleased(j.buttons, 0, e.Pressed)
	case B:
		j.buttons = setReleased(j.buttons, 1, e.Pressed)
	case Select:
		j.buttons = setReleased(j.buttons, 2, e.Pressed)
	case Start:
		j.buttons = setReleased(j.buttons, 3, e.Pressed)
	}

	after := j.ReadP1() & 0x0F
	return before&^after != 0 // any bit that went 1->0
}

func setReleased(matrix uint8, idx uint8, pressed bool) uint8 {
	if pressed {
		return bit.Reset(idx, matrix)
	}
	return bit.Set(idx, matrix)
}
