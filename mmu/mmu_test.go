package mmu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pockettone/pockettone/addr"
	"github.com/pockettone/pockettone/cart"
	"github.com/pockettone/pockettone/joypad"
)

func testCartridge(t *testing.T) *cart.Cartridge {
	t.Helper()
	data := make([]byte, 0x8000) // cartridge type defaults to 0x00 (ROM ONLY)
	c, err := cart.Load(data)
	require.NoError(t, err)
	return c
}

func TestWRAMReadWrite(t *testing.T) {
	m := New(testCartridge(t), nil)
	m.WriteByte(0xC010, 0x42)
	assert.Equal(t, uint8(0x42), m.ReadByte(0xC010))
}

func TestEchoRAMMirrorsWRAM(t *testing.T) {
	m := New(testCartridge(t), nil)
	m.WriteByte(0xC010, 0x99)
	assert.Equal(t, uint8(0x99), m.ReadByte(0xE010), "0xE000-0xFDFF mirrors WRAM")

	m.WriteByte(0xE020, 0x11)
	assert.Equal(t, uint8(0x11), m.ReadByte(0xC020))
}

func TestUnusableRegionReadsZero(t *testing.T) {
	m := New(testCartridge(t), nil)
	assert.Equal(t, uint8(0x00), m.ReadByte(0xFEA0))
	m.WriteByte(0xFEA0, 0xFF) // writes are discarded
	assert.Equal(t, uint8(0x00), m.ReadByte(0xFEA0))
}

func TestHRAMReadWrite(t *testing.T) {
	m := New(testCartridge(t), nil)
	m.WriteByte(0xFF80, 0x7A)
	assert.Equal(t, uint8(0x7A), m.ReadByte(0xFF80))
	m.WriteByte(0xFFFD, 0x01)
	assert.Equal(t, uint8(0x01), m.ReadByte(0xFFFD))
}

func TestIFTopBitsAlwaysReadAsSet(t *testing.T) {
	m := New(testCartridge(t), nil)
	m.WriteByte(uint16(addr.IF), 0x00)
	assert.Equal(t, uint8(0xE0), m.ReadByte(uint16(addr.IF)), "bits 5-7 of IF are unimplemented and always read 1")

	m.WriteByte(uint16(addr.IF), uint8(addr.VBlankInterrupt))
	assert.Equal(t, uint8(0xE0|uint8(addr.VBlankInterrupt)), m.ReadByte(uint16(addr.IF)))
}

func TestIERoundTripsExactly(t *testing.T) {
	m := New(testCartridge(t), nil)
	m.WriteByte(addr.IE, 0xFF)
	assert.Equal(t, uint8(0xFF), m.ReadByte(addr.IE))
}

func TestOAMDMACopiesFromSourceOverTicks(t *testing.T) {
	m := New(testCartridge(t), nil)
	for i := uint16(0); i < dmaLengthBytes; i++ {
		m.WriteByte(0xC000+i, uint8(i))
	}

	m.WriteByte(addr.DMA, 0xC0) // source 0xC000, copies into OAM 0xFE00+

	for i := 0; i < dmaLengthBytes; i++ {
		m.Tick()
	}

	assert.False(t, m.dmaActive, "DMA completes after dmaLengthBytes ticks")
	assert.Equal(t, dmaLengthBytes, m.dmaOffset)
}

func TestJoypadEventsAppliedOnTick(t *testing.T) {
	input := make(chan joypad.Event, 1)
	m := New(testCartridge(t), input)
	m.WriteByte(addr.P1, 0x20) // select dpad half

	input <- joypad.Event{Key: joypad.Right, Pressed: true}
	m.Tick()

	assert.Equal(t, uint8(0), m.ReadByte(addr.P1)&0x01, "Right now reads pressed")
}

func TestAudioRegistersAreWritableScratchRAM(t *testing.T) {
	m := New(testCartridge(t), nil)
	m.WriteByte(addr.NR10, 0x80)
	assert.Equal(t, uint8(0x80), m.ReadByte(addr.NR10))
}
