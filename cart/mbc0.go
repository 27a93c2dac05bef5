package cart

// MBC0 is the no-bank-switching controller: ROM is mapped directly into
// 0x0000-0x7FFF, with an optional flat 8 KiB external RAM window at
// 0xA000-0xBFFF.
type MBC0 struct {
	rom []byte
	ram [0x2000]byte
}

// NewMBC0 wraps rom directly; the full image (including header) is kept so
// addresses map 1:1 onto cartridge offsets.
func NewMBC0(rom []byte) *MBC0 {
	return &MBC0{rom: rom}
}

func (m *MBC0) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x7FFF:
		if int(addr) >= len(m.rom) {
			return 0xFF
		}
		return m.rom[addr]
	case addr >= 0xA000 && addr <= 0xBFFF:
		return m.ram[addr-0xA000]
	default:
		return 0xFF
	}
}

func (m *MBC0) Write(addr uint16, value uint8) {
	if addr >= 0xA000 && addr <= 0xBFFF {
		m.ram[addr-0xA000] = value
	}
	// writes into ROM space are no-ops: MBC0 has no banking registers.
}
