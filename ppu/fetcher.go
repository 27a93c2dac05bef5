package ppu

// fetcher is the 4-state background pixel fetcher: it advances one state
// every 2 clocks (i.e. two step() calls per machine cycle) and stays in the
// push state until the FIFO holds 8 or fewer pixels, then hands it eight.
type fetcher struct {
	state    fetcherState
	tileCol  uint8 // which background-map column is being fetched
	tileIdx  uint8
	dataLow  uint8
	dataHigh uint8
}

type fetcherState uint8

const (
	stateTileIndex fetcherState = iota
	stateDataHigh
	stateDataLow
	statePush
)

func (f *fetcher) reset() {
	f.state = stateTileIndex
	f.tileCol = 0
}

// step advances the fetcher by one 2-clock state.
func (f *fetcher) step(p *PPU) {
	switch f.state {
	case stateTileIndex:
		base := uint16(0x1800)
		if p.lcdc&lcdcBGMap != 0 {
			base = 0x1C00
		}
		mapY := uint16(p.ly+p.scy) / 8
		mapX := (uint16(f.tileCol) + uint16(p.scx)/8) & 0x1F
		f.tileIdx = p.vram[base+mapY*32+mapX]
		f.state = stateDataHigh

	case stateDataHigh:
		f.dataHigh = p.tileDataByte(f.tileIdx, p.ly, 0)
		f.state = stateDataLow

	case stateDataLow:
		f.dataLow = p.tileDataByte(f.tileIdx, p.ly, 1)
		f.state = statePush

	case statePush:
		if p.fifo.len() > 8 {
			return // FIFO still draining; retry next step
		}
		for bitIdx := 7; bitIdx >= 0; bitIdx-- {
			// The byte at the higher tile-data address (dataLow, fetched
			// second) is the color bit's MSB; dataHigh (fetched first, at
			// the lower address) is the LSB. Matches SM83 hardware.
			hi := (f.dataLow >> uint(bitIdx)) & 1
			lo := (f.dataHigh >> uint(bitIdx)) & 1
			p.fifo.push(hi<<1 | lo)
		}
		f.tileCol++
		f.state = stateTileIndex
	}
}

// tileDataByte reads one pattern byte (plane=0 high, plane=1 low) for the
// row of tileIdx that corresponds to scanline y, honoring LCDC's signed vs.
// unsigned tile-data addressing mode.
func (p *PPU) tileDataByte(tileIdx, y uint8, plane uint8) uint8 {
	row := uint16((y + p.scy) % 8) * 2
	var base uint16
	if p.lcdc&lcdcTileSel != 0 {
		base = uint16(tileIdx) * 16
	} else if tileIdx < 0x80 {
		base = 0x1000 + uint16(tileIdx)*16
	} else {
		base = 0x0800 + uint16(tileIdx-0x80)*16
	}
	return p.vram[base+row+uint16(plane)]
}
