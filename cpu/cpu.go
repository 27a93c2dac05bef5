// Package cpu implements the Sharp SM83 instruction interpreter: decode,
// the generic operand abstraction, the full opcode and CB-prefixed tables,
// and interrupt/HALT servicing.
package cpu

import (
	"errors"
	"fmt"

	"github.com/pockettone/pockettone/addr"
)

// ErrIllegalOpcode is returned by Step when the fetched opcode is one of the
// eleven unassigned SM83 encodings.
var ErrIllegalOpcode = errors.New("cpu: illegal opcode")

var illegalOpcodes = map[uint8]bool{
	0xD3: true, 0xDB: true, 0xDD: true, 0xE3: true, 0xE4: true,
	0xEB: true, 0xEC: true, 0xED: true, 0xF4: true, 0xFC: true, 0xFD: true,
}

// CPU holds the only mutable reference to the bus during execution.
type CPU struct {
	regs registers
	bus  Bus

	ime        bool
	imePending bool // EI takes effect after the following instruction
	halted     bool
	haltBug    bool

	currentOpcode uint16
	cycles        uint64
}

// New creates a CPU wired to bus and resets it to post-boot-ROM state.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.Reset()
	return c
}

// Reset restores register and control state to the values left by the
// boot ROM at 0x0100.
func (c *CPU) Reset() {
	c.regs.reset()
	c.ime = false
	c.imePending = false
	c.halted = false
	c.haltBug = false
}

func (c *CPU) tick() {
	c.cycles += 4
	c.bus.Tick()
}

// PC returns the current program counter, for debuggers/disassemblers.
func (c *CPU) PC() uint16 { return c.regs.pc }

// Cycles returns the total elapsed clock count since reset.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Halted reports whether the CPU is currently halted.
func (c *CPU) Halted() bool { return c.halted }

// Step advances the CPU by one instruction, first servicing a pending
// interrupt if IME is set and one is requested. Returns ErrIllegalOpcode if
// the fetched opcode is unassigned.
func (c *CPU) Step() error {
	c.serviceInterrupts()

	if c.halted {
		c.tick()
		return nil
	}

	opcode := c.fetch()

	eiWasPending := c.imePending
	err := c.execute(opcode)
	if eiWasPending {
		c.imePending = false
		c.ime = true
	}
	return err
}

// fetch reads the opcode at PC, combining a 0xCB prefix byte with its
// successor into a single 16-bit value (0xCBxx), and advances PC past it.
func (c *CPU) fetch() uint16 {
	op := c.bus.ReadByte(c.regs.pc)
	if c.haltBug {
		// HALT bug: PC fails to advance past the opcode that follows HALT.
		c.haltBug = false
	} else {
		c.regs.pc++
	}
	c.tick()

	if op != 0xCB {
		return uint16(op)
	}

	cb := c.bus.ReadByte(c.regs.pc)
	c.regs.pc++
	c.tick()
	return 0xCB00 | uint16(cb)
}

func (c *CPU) execute(opcode uint16) error {
	if opcode < 0x100 && illegalOpcodes[uint8(opcode)] {
		return fmt.Errorf("%w: 0x%02X at 0x%04X", ErrIllegalOpcode, opcode, c.regs.pc-1)
	}

	c.currentOpcode = opcode
	if opcode&0xCB00 == 0xCB00 {
		cbTable[uint8(opcode)](c)
		return nil
	}
	opcodeTable[uint8(opcode)](c)
	return nil
}

// serviceInterrupts dispatches the highest-priority pending interrupt when
// IME is set, or un-halts without servicing when IME is clear. Returns true
// if an interrupt was found pending (serviced or not).
func (c *CPU) serviceInterrupts() bool {
	pending := c.bus.PendingInterrupts()
	if pending == 0 {
		return false
	}

	if c.halted {
		c.halted = false
		if !c.ime {
			return true
		}
	}

	if !c.ime {
		return true
	}

	var flag uint8
	var vector uint16
	switch {
	case pending&uint8(addr.VBlankInterrupt) != 0:
		flag, vector = uint8(addr.VBlankInterrupt), 0x40
	case pending&addr.LCDSTATInterrupt != 0:
		flag, vector = addr.LCDSTATInterrupt, 0x48
	case pending&addr.TimerInterrupt != 0:
		flag, vector = addr.TimerInterrupt, 0x50
	case pending&addr.SerialInterrupt != 0:
		flag, vector = addr.SerialInterrupt, 0x58
	case pending&addr.JoypadInterrupt != 0:
		flag, vector = addr.JoypadInterrupt, 0x60
	default:
		return true
	}

	c.bus.ClearInterrupt(flag)
	c.ime = false
	c.tick()
	c.tick()
	c.pushU16(c.regs.pc)
	c.regs.pc = vector
	return true
}

// pushU16 spends 3 machine cycles: the internal SP decrement, then one
// write per byte. Combined with the opcode fetch this gives PUSH rr its
// specified 4 machine cycles, and combined with the 2 idle cycles of
// interrupt dispatch gives the 5-machine-cycle (20 clock) dispatch cost.
func (c *CPU) pushU16(v uint16) {
	c.regs.sp -= 2
	c.tick()
	c.bus.WriteByte(c.regs.sp+1, uint8(v>>8))
	c.tick()
	c.bus.WriteByte(c.regs.sp, uint8(v))
	c.tick()
}

// popU16 spends 2 machine cycles (one per byte read), giving POP rr its
// specified 3 machine cycles once the opcode fetch is included.
func (c *CPU) popU16() uint16 {
	lo := c.bus.ReadByte(c.regs.sp)
	c.tick()
	hi := c.bus.ReadByte(c.regs.sp + 1)
	c.tick()
	c.regs.sp += 2
	return uint16(hi)<<8 | uint16(lo)
}
