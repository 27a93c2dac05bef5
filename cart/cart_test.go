package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func romWithHeader(cartridgeType uint8, title string) []byte {
	data := make([]byte, 0x8000) // a plausible 32KiB ROM-only image
	copy(data[0x134:0x134+16], title)
	data[0x147] = cartridgeType
	data[0x148] = 0x00
	data[0x149] = 0x00
	return data
}

func TestLoadAcceptsROMOnly(t *testing.T) {
	data := romWithHeader(0x00, "POCKETTONE")
	c, err := Load(data)
	require.NoError(t, err)
	assert.Equal(t, "POCKETTONE", c.Header.Title)
	assert.Equal(t, uint8(0x00), c.Header.CartridgeType)
}

func TestLoadRejectsUnsupportedMBC(t *testing.T) {
	data := romWithHeader(0x01, "MBC1GAME") // MBC1, unsupported
	_, err := Load(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedMBC)
}

func TestLoadRejectsImageTooSmall(t *testing.T) {
	_, err := Load(make([]byte, 0x10))
	assert.ErrorIs(t, err, ErrImageTooSmall)
}

func TestTitleTrimsTrailingJunk(t *testing.T) {
	data := romWithHeader(0x00, "HI")
	c, err := Load(data)
	require.NoError(t, err)
	assert.Equal(t, "HI", c.Header.Title, "null padding after the title must not leak in")
}

func TestMBC0ReadWriteRoundTrips(t *testing.T) {
	data := romWithHeader(0x00, "RAMTEST")
	c, err := Load(data)
	require.NoError(t, err)

	c.Write(0xA000, 0x42)
	assert.Equal(t, uint8(0x42), c.Read(0xA000))

	c.Write(0x0000, 0xFF) // ROM space: no banking registers, write is a no-op
	assert.Equal(t, data[0], c.Read(0x0000))
}

func TestMBC0ReadsBeyondImageReturnOpenBus(t *testing.T) {
	data := make([]byte, 0x150) // shorter than a real ROM bank
	data[0x147] = 0x00
	c, err := Load(data)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xFF), c.Read(0x7FFF))
}
