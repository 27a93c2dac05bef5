// Package terminal implements backend.Backend on top of tcell, rendering
// frames as scaled block characters and synthesizing key-up events from a
// timeout, since terminals only ever report key-down.
package terminal

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pockettone/pockettone/backend"
	"github.com/pockettone/pockettone/joypad"
	"github.com/pockettone/pockettone/ppu"
)

const (
	scaleX = 2 // terminal characters are taller than wide; widen to compensate
	scaleY = 1

	// keyTimeout bridges terminal key-repeat gaps: a key is considered
	// released once this much time passes without seeing it again.
	keyTimeout = 100 * time.Millisecond
)

// shadeChars maps a 2-bit shade index to a block character, darkest last.
var shadeChars = [4]rune{'█', '▓', '▒', ' '}

// Backend is a tcell-backed terminal renderer and keyboard input source.
type Backend struct {
	screen tcell.Screen

	lastSeen map[joypad.Key]time.Time
	pressed  map[joypad.Key]bool
	quit     bool
}

// New opens a tcell screen and readies it for rendering.
func New() (*Backend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", backend.ErrHostInit, err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", backend.ErrHostInit, err)
	}

	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	return &Backend{
		screen:   screen,
		lastSeen: make(map[joypad.Key]time.Time),
		pressed:  make(map[joypad.Key]bool),
	}, nil
}

func (b *Backend) Render(frame ppu.Frame) error {
	for y := 0; y < ppu.Height; y++ {
		for x := 0; x < ppu.Width; x++ {
			char := shadeChars[frame[y][x]&0x03]
			style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
			sx, sy := x*scaleX, y*scaleY
			for dx := 0; dx < scaleX; dx++ {
				b.screen.SetContent(sx+dx, sy, char, nil, style)
			}
		}
	}
	b.screen.Show()
	return nil
}

func (b *Backend) PollInput() ([]joypad.Event, bool) {
	now := time.Now()

	for b.screen.HasPendingEvent() {
		switch ev := b.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape {
				b.quit = true
				continue
			}
			if k, ok := keyBinding(ev); ok {
				b.lastSeen[k] = now
			}
		case *tcell.EventResize:
			b.screen.Sync()
		}
	}

	var events []joypad.Event
	for k, seenAt := range b.lastSeen {
		active := now.Sub(seenAt) < keyTimeout
		if active && !b.pressed[k] {
			events = append(events, joypad.Event{Key: k, Pressed: true})
			b.pressed[k] = true
		} else if !active && b.pressed[k] {
			events = append(events, joypad.Event{Key: k, Pressed: false})
			b.pressed[k] = false
			delete(b.lastSeen, k)
		}
	}

	return events, b.quit
}

func (b *Backend) Close() error {
	b.screen.Fini()
	return nil
}

// keyBinding maps a tcell key event to a Game Boy input, per spec.md §6's
// suggested host binding.
func keyBinding(ev *tcell.EventKey) (joypad.Key, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return joypad.Up, true
	case tcell.KeyDown:
		return joypad.Down, true
	case tcell.KeyLeft:
		return joypad.Left, true
	case tcell.KeyRight:
		return joypad.Right, true
	case tcell.KeyEnter:
		return joypad.Select, true
	}
	switch ev.Rune() {
	case ' ':
		return joypad.Start, true
	case 'a', 'A':
		return joypad.A, true
	case 'b', 'B':
		return joypad.B, true
	}
	return 0, false
}
