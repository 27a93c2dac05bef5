// Package timer implements DIV/TIMA/TMA/TAC: a 16-bit divider whose
// TAC-selected bit increments TIMA on its falling edge, with TIMA-overflow
// reload delayed by one tick.
package timer

import (
	"github.com/pockettone/pockettone/addr"
	"github.com/pockettone/pockettone/bit"
)

// Timer owns the DIV/TIMA/TMA/TAC registers and the falling-edge/overflow
// latches needed to reproduce the DMG's exact increment timing.
type Timer struct {
	counter uint16 // internal divider; DIV is its high byte
	lastBit bool

	tima uint8
	tma  uint8
	tac  uint8

	reloadPending bool
}

// New returns a timer with DIV/TIMA/TMA/TAC all zeroed, matching
// post-boot-ROM state for the registers this core models explicitly.
func New() *Timer {
	return &Timer{}
}

var tacBit = [4]uint8{9, 3, 5, 7}

// Tick advances the timer by one machine cycle (4 clocks). Returns true if
// the Timer interrupt should be latched into IF this tick.
func (t *Timer) Tick() bool {
	requestInterrupt := false

	if t.reloadPending {
		t.tima = t.tma
		requestInterrupt = true
		t.reloadPending = false
	}

	for i := 0; i < 4; i++ {
		t.counter++

		if t.reloadPending {
			// overflow already latched this tick: the reload itself
			// happens at the top of the next Tick call.
			continue
		}

		enabled := t.tac&0x04 != 0
		var bit9 bool
		if enabled {
			bit9 = bit.IsSet16(uint16(tacBit[t.tac&0x03]), t.counter)
		}

		if t.lastBit && !bit9 {
			if t.tima == 0xFF {
				t.tima = 0
				t.reloadPending = true
			} else {
				t.tima++
			}
		}
		t.lastBit = bit9
	}

	return requestInterrupt
}

func (t *Timer) Read(address uint16) uint8 {
	switch address {
	case addr.DIV:
		return uint8(t.counter >> 8)
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	default:
		return 0xFF
	}
}

func (t *Timer) Write(address uint16, value uint8) {
	switch address {
	case addr.DIV:
		t.counter = 0
	case addr.TIMA:
		t.tima = value
		// A write during the pending window cancels the TMA reload: the
		// written value sticks instead of being overwritten next tick.
		t.reloadPending = false
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value & 0x07
	}
}
