package ppu

const (
	// Width and Height are the LCD's visible pixel dimensions.
	Width  = 160
	Height = 144
)

// Frame is a completed row-major grid of 2-bit shade indices, as handed off
// to the host over the frame channel at VBlank entry.
type Frame [Height][Width]uint8
