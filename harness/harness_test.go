package harness_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pockettone/pockettone/harness"
	"github.com/pockettone/pockettone/ppu"
)

// spinningROM is a minimal MBC0 image whose program is a single infinite
// relative jump, just enough to keep the CPU (and therefore the PPU it
// drives over the bus) running without ever halting or erroring out.
func spinningROM() []byte {
	rom := make([]byte, 0x8000) // cartridge type defaults to 0x00 (ROM ONLY)
	rom[0x100] = 0x18           // JR
	rom[0x101] = 0xFE           // -2: jumps back to itself
	return rom
}

func TestRunEmitsFramesAndStopsCleanly(t *testing.T) {
	emu, err := harness.New(spinningROM())
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- emu.Run() }()

	timeout := time.After(10 * time.Second)
	framesSeen := 0

	for framesSeen < 2 {
		select {
		case frame := <-emu.Frames:
			framesSeen++
			assert.Len(t, frame, ppu.Height)
			assert.Len(t, frame[0], ppu.Width)
			if framesSeen == 2 {
				emu.Stop()
			}
		case err := <-errCh:
			require.NoError(t, err)
			t.Fatal("emulator exited before producing two frames")
		case <-timeout:
			t.Fatal("timed out waiting for frames")
		}
	}

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after Stop")
	}
}

func TestNewRejectsUnsupportedCartridge(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x147] = 0x01 // MBC1: unsupported by this core

	_, err := harness.New(rom)
	require.Error(t, err)
}
