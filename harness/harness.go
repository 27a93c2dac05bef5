// Package harness drives the emulation context: it owns the CPU/MMU pair,
// advances instructions in a loop, and exposes the rendezvous frame channel
// and unbounded input channel that are this core's only shared state with
// the host context.
package harness

import (
	"log/slog"

	"github.com/pockettone/pockettone/cart"
	"github.com/pockettone/pockettone/cpu"
	"github.com/pockettone/pockettone/joypad"
	"github.com/pockettone/pockettone/mmu"
	"github.com/pockettone/pockettone/ppu"
)

// Emulator owns the CPU and MMU for the lifetime of the process. It is not
// safe to use from more than one goroutine: everything inside Run executes
// sequentially in the emulation context.
type Emulator struct {
	cpu *cpu.CPU
	mmu *mmu.MMU

	// Frames is the rendezvous (unbuffered) channel the PPU sends
	// completed frames on; creating it unbuffered is what makes frame
	// delivery the CPU thread's throttling mechanism.
	Frames chan ppu.Frame

	// Input is the host-facing key up/down event channel: sends to it never
	// block on the emulation context's consumption rate. A forwarding
	// goroutine backs it with a growing slice queue and hands events to the
	// MMU one at a time, so it is unbounded in practice rather than merely
	// deep-buffered.
	Input chan joypad.Event

	stop chan struct{}
}

// New loads data as an MBC0 cartridge and wires a fresh CPU/MMU pair to it.
func New(data []byte) (*Emulator, error) {
	cartridge, err := cart.Load(data)
	if err != nil {
		return nil, err
	}

	e := &Emulator{
		Frames: make(chan ppu.Frame),
		Input:  make(chan joypad.Event),
		stop:   make(chan struct{}),
	}

	mmuInput := make(chan joypad.Event)
	m := mmu.New(cartridge, mmuInput)
	m.PPU().FrameOut = e.Frames
	e.mmu = m
	e.cpu = cpu.New(m)

	go e.forwardInput(mmuInput)

	return e, nil
}

// forwardInput drains e.Input into a growing slice queue and hands events to
// out one at a time, so a send on e.Input never waits on the MMU's own
// once-per-Tick drain rate. Exits when Stop is called or e.Input is closed.
func (e *Emulator) forwardInput(out chan<- joypad.Event) {
	var queue []joypad.Event
	for {
		if len(queue) == 0 {
			select {
			case ev, ok := <-e.Input:
				if !ok {
					return
				}
				queue = append(queue, ev)
			case <-e.stop:
				return
			}
			continue
		}

		select {
		case ev, ok := <-e.Input:
			if !ok {
				return
			}
			queue = append(queue, ev)
		case out <- queue[0]:
			queue = queue[1:]
		case <-e.stop:
			return
		}
	}
}

// Stop signals Run to exit after its current instruction. Safe to call
// from the host context; it is the only cross-goroutine signal besides the
// two channels.
func (e *Emulator) Stop() { close(e.stop) }

// Run steps the CPU until Stop is called or an illegal opcode is hit. It
// blocks on e.Frames whenever the PPU completes a frame, so it must run on
// its own goroutine with a consumer draining Frames, or it will deadlock at
// the first VBlank.
func (e *Emulator) Run() error {
	for {
		select {
		case <-e.stop:
			return nil
		default:
		}

		if err := e.cpu.Step(); err != nil {
			slog.Error("cpu halted on error", "err", err, "pc", e.cpu.PC())
			return err
		}
	}
}
