// Package headless implements backend.Backend for batch/test-harness use:
// no window, no input, just frame counting and optional periodic snapshot
// persistence to the JSON grid format spec.md §6 describes.
package headless

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pockettone/pockettone/joypad"
	"github.com/pockettone/pockettone/ppu"
)

// Backend counts emitted frames and, if configured, writes a snapshot every
// Interval frames.
type Backend struct {
	MaxFrames int
	Interval  int
	Dir       string
	ROMName   string

	frameCount int
	last       ppu.Frame
}

// New returns a headless backend that quits PollInput after maxFrames
// frames have been rendered. interval == 0 disables snapshot writing.
func New(maxFrames, interval int, dir, romName string) *Backend {
	return &Backend{MaxFrames: maxFrames, Interval: interval, Dir: dir, ROMName: romName}
}

func (b *Backend) Render(frame ppu.Frame) error {
	b.frameCount++
	b.last = frame

	if b.Interval > 0 && b.frameCount%b.Interval == 0 {
		if err := b.writeSnapshot(b.frameCount); err != nil {
			slog.Error("failed to write snapshot", "frame", b.frameCount, "error", err)
		}
	}
	if b.frameCount%10 == 0 {
		slog.Info("frame progress", "completed", b.frameCount, "total", b.MaxFrames)
	}
	return nil
}

// PollInput never produces events: headless runs have no host input
// source. It reports quit once MaxFrames have been rendered.
func (b *Backend) PollInput() ([]joypad.Event, bool) {
	return nil, b.MaxFrames > 0 && b.frameCount >= b.MaxFrames
}

func (b *Backend) Close() error { return nil }

// FrameCount returns the number of frames rendered so far.
func (b *Backend) FrameCount() int { return b.frameCount }

// LastFrame returns the most recently rendered frame, for callers (tests,
// the CLI's final snapshot) that want it directly rather than via a file.
func (b *Backend) LastFrame() ppu.Frame { return b.last }

// writeSnapshot serializes frame as a row-major JSON array of 23040 shade
// indices, the format the test harness compares byte-for-byte against a
// recorded reference.
func (b *Backend) writeSnapshot(frameNum int) error {
	if err := os.MkdirAll(b.Dir, 0755); err != nil {
		return fmt.Errorf("creating snapshot dir: %w", err)
	}

	flat := make([]int, ppu.Width*ppu.Height) // []uint8 would marshal as a base64 string
	for y := 0; y < ppu.Height; y++ {
		for x := 0; x < ppu.Width; x++ {
			flat[y*ppu.Width+x] = int(b.last[y][x])
		}
	}

	data, err := json.Marshal(flat)
	if err != nil {
		return err
	}

	path := filepath.Join(b.Dir, fmt.Sprintf("%s_frame_%d.json", b.ROMName, frameNum))
	return os.WriteFile(path, data, 0644)
}
