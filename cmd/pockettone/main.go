// Command pockettone runs the emulator core against a cartridge image,
// either interactively in a terminal or headlessly for a fixed frame count.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli"

	"github.com/pockettone/pockettone/backend"
	"github.com/pockettone/pockettone/backend/headless"
	"github.com/pockettone/pockettone/backend/terminal"
	"github.com/pockettone/pockettone/harness"
)

func main() {
	app := cli.NewApp()
	app.Name = "pockettone"
	app.Usage = "pockettone [options] <ROM file>"
	app.Description = "A cycle-accurate emulator core for an 8-bit handheld console"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "headless", Usage: "run without a terminal display"},
		cli.IntFlag{Name: "frames", Usage: "frame count to run in headless mode (required for --headless)"},
		cli.IntFlag{Name: "snapshot-interval", Usage: "write a frame snapshot every N frames in headless mode (0 disables)"},
		cli.StringFlag{Name: "snapshot-dir", Usage: "directory for snapshot files (default: a temp directory)"},
		cli.BoolFlag{Name: "debug", Usage: "enable debug-level logging"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("pockettone exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("debug") {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if c.NArg() == 0 {
		cli.ShowAppHelp(c)
		return errors.New("no ROM path provided")
	}
	romPath := c.Args().Get(0)

	data, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading cartridge image %q: %w", romPath, err)
	}

	emu, err := harness.New(data)
	if err != nil {
		return fmt.Errorf("loading cartridge image %q: %w", romPath, err)
	}

	var bk backend.Backend
	if c.Bool("headless") {
		bk, err = newHeadlessBackend(c, romPath)
	} else {
		bk, err = terminal.New()
	}
	if err != nil {
		return err
	}
	defer bk.Close()

	return runLoop(emu, bk)
}

func newHeadlessBackend(c *cli.Context, romPath string) (*headless.Backend, error) {
	frames := c.Int("frames")
	if frames <= 0 {
		return nil, errors.New("headless mode requires --frames with a positive value")
	}

	interval := c.Int("snapshot-interval")
	dir := c.String("snapshot-dir")
	if interval > 0 && dir == "" {
		tempDir, err := os.MkdirTemp("", "pockettone-snapshots-*")
		if err != nil {
			return nil, fmt.Errorf("creating snapshot directory: %w", err)
		}
		dir = tempDir
	}

	name := filepath.Base(romPath)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return headless.New(frames, interval, dir, name), nil
}

// runLoop is the host context: it drains completed frames to bk, forwards
// bk's input events into the emulation context, and stops both sides on a
// quit signal from either the backend or the OS.
func runLoop(emu *harness.Emulator, bk backend.Backend) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	runErr := make(chan error, 1)
	go func() { runErr <- emu.Run() }()

	for {
		select {
		case frame, ok := <-emu.Frames:
			if !ok {
				return <-runErr
			}
			if err := bk.Render(frame); err != nil {
				emu.Stop()
				return err
			}

			events, quit := bk.PollInput()
			for _, e := range events {
				emu.Input <- e
			}
			if quit {
				emu.Stop()
				return <-runErr
			}

		case <-signals:
			emu.Stop()
			return <-runErr

		case err := <-runErr:
			return err
		}
	}
}
