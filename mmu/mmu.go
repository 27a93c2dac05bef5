// Package mmu implements the unified memory bus: address decoding across
// cartridge ROM/RAM, VRAM, work RAM, OAM, high RAM and I/O registers, the
// OAM DMA overlay, and the IF/IE interrupt registers. Every 4-clock Tick
// forwards to the timer, PPU, serial, and joypad in that order.
package mmu

import (
	"github.com/pockettone/pockettone/addr"
	"github.com/pockettone/pockettone/cart"
	"github.com/pockettone/pockettone/joypad"
	"github.com/pockettone/pockettone/ppu"
	"github.com/pockettone/pockettone/serial"
	"github.com/pockettone/pockettone/timer"
)

const dmaLengthBytes = 160

// MMU is the single owner of every memory-mapped peripheral.
type MMU struct {
	cart *cart.Cartridge

	wram [0x2000]byte
	hram [0x7F]byte

	// 0xFF10-0xFF3F audio registers are unimplemented; kept as plain RAM
	// so test ROMs that poke them do not observe a crash or a stuck value.
	audio [0x30]byte

	ifReg uint8
	ieReg uint8

	ppu    *ppu.PPU
	timer  *timer.Timer
	serial *serial.Serial
	joypad *joypad.Joypad

	dmaActive  bool
	dmaSrcHigh uint8
	dmaOffset  int

	// Input is drained non-blockingly, once per Tick, into the joypad.
	Input <-chan joypad.Event
}

// New constructs an MMU with a cartridge and fresh peripherals. input may be
// nil (no host attached, e.g. in unit tests).
func New(c *cart.Cartridge, input <-chan joypad.Event) *MMU {
	return &MMU{
		cart:   c,
		ifReg:  0xE0,
		ppu:    ppu.New(),
		timer:  timer.New(),
		serial: serial.New(),
		joypad: joypad.New(),
		Input:  input,
	}
}

// PPU exposes the owned PPU so the harness can wire FrameOut before running.
func (m *MMU) PPU() *ppu.PPU { return m.ppu }

func (m *MMU) ReadByte(a uint16) uint8 {
	switch {
	case a <= 0x7FFF:
		return m.cart.Read(a)
	case a >= 0x8000 && a <= 0x9FFF:
		return m.ppu.ReadVRAM(a - 0x8000)
	case a >= 0xA000 && a <= 0xBFFF:
		return m.cart.Read(a)
	case a >= 0xC000 && a <= 0xDFFF:
		return m.wram[a-0xC000]
	case a >= 0xE000 && a <= 0xFDFF:
		return m.wram[a-0xE000]
	case a >= 0xFE00 && a <= 0xFE9F:
		return m.ppu.ReadOAM(a - 0xFE00)
	case a >= 0xFEA0 && a <= 0xFEFF:
		return 0x00
	case a == addr.P1:
		return m.joypad.ReadP1()
	case a == addr.SB || a == addr.SC:
		return m.serial.Read(a)
	case a == addr.DIV || a == addr.TIMA || a == addr.TMA || a == addr.TAC:
		return m.timer.Read(a)
	case a == addr.IF:
		return m.ifReg | 0xE0
	case a == addr.DMA:
		return m.dmaSrcHigh
	case a >= addr.LCDC && a <= addr.WX:
		return m.ppu.ReadReg(a)
	case a >= addr.AudioStart && a <= addr.AudioEnd:
		return m.audio[a-addr.AudioStart]
	case a >= 0xFF80 && a <= 0xFFFE:
		return m.hram[a-0xFF80]
	case a == addr.IE:
		return m.ieReg
	default:
		return 0xFF
	}
}

func (m *MMU) WriteByte(a uint16, v uint8) {
	switch {
	case a <= 0x7FFF:
		m.cart.Write(a, v)
	case a >= 0x8000 && a <= 0x9FFF:
		m.ppu.WriteVRAM(a-0x8000, v)
	case a >= 0xA000 && a <= 0xBFFF:
		m.cart.Write(a, v)
	case a >= 0xC000 && a <= 0xDFFF:
		m.wram[a-0xC000] = v
	case a >= 0xE000 && a <= 0xFDFF:
		m.wram[a-0xE000] = v
	case a >= 0xFE00 && a <= 0xFE9F:
		m.ppu.WriteOAM(a-0xFE00, v)
	case a >= 0xFEA0 && a <= 0xFEFF:
		// unusable, writes discarded
	case a == addr.P1:
		// Selecting a half with a key already held is also a visible 1->0
		// transition and raises the Joypad interrupt.
		before := m.joypad.ReadP1() & 0x0F
		m.joypad.WriteP1(v)
		if before&^(m.joypad.ReadP1()&0x0F) != 0 {
			m.RequestInterrupt(addr.JoypadInterrupt)
		}
	case a == addr.SB || a == addr.SC:
		m.serial.Write(a, v)
	case a == addr.DIV || a == addr.TIMA || a == addr.TMA || a == addr.TAC:
		m.timer.Write(a, v)
	case a == addr.IF:
		m.ifReg = v | 0xE0
	case a == addr.DMA:
		m.startDMA(v)
	case a >= addr.LCDC && a <= addr.WX:
		m.ppu.WriteReg(a, v)
	case a >= addr.AudioStart && a <= addr.AudioEnd:
		m.audio[a-addr.AudioStart] = v
	case a >= 0xFF80 && a <= 0xFFFE:
		m.hram[a-0xFF80] = v
	case a == addr.IE:
		m.ieReg = v
	}
}

func (m *MMU) ReadWord(a uint16) uint16 {
	return uint16(m.ReadByte(a+1))<<8 | uint16(m.ReadByte(a))
}

func (m *MMU) WriteWord(a uint16, v uint16) {
	m.WriteByte(a, uint8(v))
	m.WriteByte(a+1, uint8(v>>8))
}

func (m *MMU) startDMA(srcHigh uint8) {
	m.dmaActive = true
	m.dmaSrcHigh = srcHigh
	m.dmaOffset = 0
}

// Tick advances every peripheral by one machine cycle (4 clocks): a pending
// DMA byte copy, then timer, PPU, serial, and joypad, OR-ing any raised
// interrupt into IF. DMA does not block CPU reads in this design.
func (m *MMU) Tick() {
	if m.dmaActive {
		src := uint16(m.dmaSrcHigh)<<8 + uint16(m.dmaOffset)
		v := m.ReadByte(src)
		m.ppu.DMAWriteOAM(uint16(m.dmaOffset), v)
		m.dmaOffset++
		if m.dmaOffset >= dmaLengthBytes {
			m.dmaActive = false
		}
	}

	if m.timer.Tick() {
		m.RequestInterrupt(addr.TimerInterrupt)
	}
	m.RequestInterrupt(m.ppu.Tick())
	if m.serial.Tick() {
		m.RequestInterrupt(addr.SerialInterrupt)
	}
	m.drainInput()
}

func (m *MMU) drainInput() {
	for {
		select {
		case e, ok := <-m.Input:
			if !ok {
				m.Input = nil
				return
			}
			if m.joypad.Apply(e) {
				m.RequestInterrupt(addr.JoypadInterrupt)
			}
		default:
			return
		}
	}
}

func (m *MMU) RequestInterrupt(flag uint8) { m.ifReg |= flag }
func (m *MMU) ClearInterrupt(flag uint8)   { m.ifReg &^= flag }
func (m *MMU) PendingInterrupts() uint8    { return m.ifReg & m.ieReg & 0x1F }
