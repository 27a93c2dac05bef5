// Package ppu implements the LCD mode state machine (OAM-scan, pixel
// transfer, HBlank, VBlank), a background pixel fetcher feeding a bounded
// FIFO, and frame emission over a rendezvous channel. Sprites and the
// window layer are out of scope; only background rendering is implemented.
package ppu

import "github.com/pockettone/pockettone/addr"

// LCDC bit masks.
const (
	lcdcBGEnable   uint8 = 1 << 0
	lcdcOBJEnable  uint8 = 1 << 1
	lcdcOBJSize    uint8 = 1 << 2
	lcdcBGMap      uint8 = 1 << 3
	lcdcTileSel    uint8 = 1 << 4
	lcdcWinEnable  uint8 = 1 << 5
	lcdcWinMap     uint8 = 1 << 6
	lcdcLCDEnable  uint8 = 1 << 7
)

// STAT bit masks.
const (
	statModeMask  uint8 = 0x03
	statCoinFlag  uint8 = 1 << 2
	statIntHBlank uint8 = 1 << 3
	statIntVBlank uint8 = 1 << 4
	statIntOAM    uint8 = 1 << 5
	statIntLYC    uint8 = 1 << 6
)

// Mode is one of the four LCD controller states.
type Mode uint8

const (
	ModeHBlank Mode = 0
	ModeVBlank Mode = 1
	ModeOAM    Mode = 2
	ModeTransfer Mode = 3
)

const (
	oamScanClocks   = 80
	scanlineClocks  = 456
	vblankStartLine = 144
	totalLines      = 154
)

// PPU owns VRAM, OAM, the control/status registers, and the fetcher/FIFO
// pipeline. FrameOut, when non-nil, receives a completed Frame at every
// VBlank entry; the send is a rendezvous (the caller should give it an
// unbuffered channel) and is this core's sole throttling mechanism.
type PPU struct {
	vram [0x2000]byte
	oam  [0xA0]byte

	lcdc, stat         uint8
	scy, scx           uint8
	ly, lyc            uint8
	bgp, obp0, obp1    uint8
	wy, wx             uint8

	lineClock int // clocks elapsed since the current scanline started
	x         uint8 // pixels written to the current scanline so far

	fetcher fetcher
	fifo    pixelFifo
	frame   Frame

	FrameOut chan<- Frame
}

func New() *PPU {
	p := &PPU{lcdc: 0x91, bgp: 0xFC, stat: ModeStatBits(ModeOAM)}
	return p
}

// ModeStatBits packs a mode into STAT's low two bits.
func ModeStatBits(m Mode) uint8 { return uint8(m) & statModeMask }

func (p *PPU) Mode() Mode { return Mode(p.stat & statModeMask) }

func (p *PPU) setMode(m Mode) { p.stat = (p.stat &^ statModeMask) | uint8(m) }

// Tick advances the PPU by one machine cycle (4 clocks). Returns the OR of
// any interrupts (addr.VBlankInterrupt / addr.LCDSTATInterrupt) raised this
// tick, for the MMU to fold into IF.
func (p *PPU) Tick() uint8 {
	if p.lcdc&lcdcLCDEnable == 0 {
		p.ly = 0
		p.lineClock = 0
		p.setMode(ModeHBlank)
		return 0
	}

	var interrupts uint8
	p.lineClock += 4

	switch p.Mode() {
	case ModeOAM:
		if p.lineClock >= oamScanClocks {
			p.setMode(ModeTransfer)
			p.x = 0
			p.fetcher.reset()
			p.fifo.reset(p.scx)
		}

	case ModeTransfer:
		p.fetcher.step(p)
		p.fetcher.step(p)
		// The FIFO shifts out at most one pixel per dot; a machine cycle
		// is 4 dots, so up to 4 pops are attempted here. Matching this
		// rate to the fetcher's 8-pixels-per-2-ticks supply is what keeps
		// Transfer within budget so HBlank can fill the line out to a
		// fixed 456 clocks.
		for i := 0; i < 4 && p.x < Width; i++ {
			v, ok := p.fifo.pop()
			if !ok {
				continue // empty, or a discarded fine-scroll pixel; either way the dot is spent
			}
			shade := (p.bgp >> (v * 2)) & 0x03
			if int(p.ly) < Height && int(p.x) < Width {
				p.frame[p.ly][p.x] = shade
			}
			p.x++
		}
		if p.x >= Width {
			p.setMode(ModeHBlank)
			if p.stat&statIntHBlank != 0 {
				interrupts |= addr.LCDSTATInterrupt
			}
		}

	case ModeHBlank:
		if p.lineClock >= scanlineClocks {
			p.lineClock = 0
			p.ly++
			if p.ly >= vblankStartLine {
				p.setMode(ModeVBlank)
				interrupts |= uint8(addr.VBlankInterrupt)
				if p.stat&(statIntVBlank|statIntOAM) != 0 {
					interrupts |= addr.LCDSTATInterrupt
				}
				p.emitFrame()
			} else {
				p.setMode(ModeOAM)
				if p.stat&statIntOAM != 0 {
					interrupts |= addr.LCDSTATInterrupt
				}
			}
		}

	case ModeVBlank:
		if p.lineClock >= scanlineClocks {
			p.lineClock = 0
			p.ly++
			if p.ly >= totalLines {
				p.ly = 0
				p.setMode(ModeOAM)
				if p.stat&statIntOAM != 0 {
					interrupts |= addr.LCDSTATInterrupt
				}
			}
		}
	}

	coincidence := p.ly == p.lyc
	if coincidence {
		p.stat |= statCoinFlag
	} else {
		p.stat &^= statCoinFlag
	}
	if coincidence && p.stat&statIntLYC != 0 {
		interrupts |= addr.LCDSTATInterrupt
	}

	return interrupts
}

func (p *PPU) emitFrame() {
	if p.FrameOut == nil {
		return
	}
	p.FrameOut <- p.frame
}

// VRAM/OAM access: blocked (0xFF reads, discarded writes) during the modes
// real hardware denies the CPU bus access to each region.

func (p *PPU) ReadVRAM(address uint16) uint8 {
	if p.Mode() == ModeTransfer {
		return 0xFF
	}
	return p.vram[address]
}

func (p *PPU) WriteVRAM(address uint16, v uint8) {
	if p.Mode() == ModeTransfer {
		return
	}
	p.vram[address] = v
}

func (p *PPU) ReadOAM(address uint16) uint8 {
	switch p.Mode() {
	case ModeTransfer, ModeOAM:
		return 0xFF
	}
	return p.oam[address]
}

func (p *PPU) WriteOAM(address uint16, v uint8) {
	switch p.Mode() {
	case ModeTransfer, ModeOAM:
		return
	}
	p.oam[address] = v
}

// DMAWriteOAM bypasses the mode-based blocking rules: OAM DMA writes the
// byte directly, as the hardware's DMA controller owns the bus during the
// copy rather than going through the CPU-facing access path.
func (p *PPU) DMAWriteOAM(address uint16, v uint8) { p.oam[address] = v }

func (p *PPU) ReadReg(address uint16) uint8 {
	switch address {
	case addr.LCDC:
		return p.lcdc
	case addr.STAT:
		return p.stat | 0x80
	case addr.SCY:
		return p.scy
	case addr.SCX:
		return p.scx
	case addr.LY:
		return p.ly
	case addr.LYC:
		return p.lyc
	case addr.BGP:
		return p.bgp
	case addr.OBP0:
		return p.obp0
	case addr.OBP1:
		return p.obp1
	case addr.WY:
		return p.wy
	case addr.WX:
		return p.wx
	default:
		return 0xFF
	}
}

func (p *PPU) WriteReg(address uint16, v uint8) {
	switch address {
	case addr.LCDC:
		p.lcdc = v
	case addr.STAT:
		p.stat = (p.stat & statModeMask) | (v &^ statModeMask)
	case addr.SCY:
		p.scy = v
	case addr.SCX:
		p.scx = v
	case addr.LY:
		// read-only
	case addr.LYC:
		p.lyc = v
	case addr.BGP:
		p.bgp = v
	case addr.OBP0:
		p.obp0 = v
	case addr.OBP1:
		p.obp1 = v
	case addr.WY:
		p.wy = v
	case addr.WX:
		p.wx = v
	}
}
