// Package cart parses a raw Game Boy cartridge image header and wires it to
// a memory bank controller. Only MBC0 (no banking) is supported; any other
// cartridge type surfaces ErrUnsupportedMBC.
package cart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pockettone/pockettone/bit"
)

// ErrUnsupportedMBC is returned when the cartridge header names a banking
// scheme this core does not implement.
var ErrUnsupportedMBC = errors.New("cart: unsupported memory bank controller")

// ErrImageTooSmall is returned when the image is too short to contain a
// header.
var ErrImageTooSmall = errors.New("cart: image too small to contain a header")

const (
	titleAddr          = 0x134
	titleLength        = 16
	cartridgeTypeAddr  = 0x147
	romSizeAddr        = 0x148
	ramSizeAddr        = 0x149
	headerChecksumAddr = 0x14D
	globalChecksumAddr = 0x14E
	headerEnd          = 0x150
)

// Header holds the cartridge metadata this core can extract, exposed for
// diagnostics even though execution only cares about the MBC type.
type Header struct {
	Title          string
	CartridgeType  uint8
	ROMSizeCode    uint8
	RAMSizeCode    uint8
	HeaderChecksum uint16
	GlobalChecksum uint16
}

// MBC is the interface every memory bank controller implements.
type MBC interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// Cartridge couples a parsed header with its MBC.
type Cartridge struct {
	Header Header
	mbc    MBC
}

// Load parses data as a cartridge image and constructs its MBC. Only
// cartridge type 0x00 (ROM ONLY, i.e. MBC0) is supported.
func Load(data []byte) (*Cartridge, error) {
	if len(data) < headerEnd {
		return nil, ErrImageTooSmall
	}

	h := Header{
		Title:          cleanTitle(data[titleAddr : titleAddr+titleLength]),
		CartridgeType:  data[cartridgeTypeAddr],
		ROMSizeCode:    data[romSizeAddr],
		RAMSizeCode:    data[ramSizeAddr],
		HeaderChecksum: bit.Combine(0, data[headerChecksumAddr]),
		GlobalChecksum: bit.Combine(data[globalChecksumAddr], data[globalChecksumAddr+1]),
	}

	if h.CartridgeType != 0x00 {
		return nil, fmt.Errorf("%w: type 0x%02X", ErrUnsupportedMBC, h.CartridgeType)
	}

	return &Cartridge{Header: h, mbc: NewMBC0(data)}, nil
}

func (c *Cartridge) Read(addr uint16) uint8         { return c.mbc.Read(addr) }
func (c *Cartridge) Write(addr uint16, value uint8) { c.mbc.Write(addr, value) }

func cleanTitle(raw []byte) string {
	end := len(raw)
	for i, b := range raw {
		if b == 0x00 || b < 0x20 || b > 0x7E {
			end = i
			break
		}
	}
	return strings.TrimSpace(string(raw[:end]))
}
