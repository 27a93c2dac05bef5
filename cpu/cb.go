package cpu

// The CB-prefixed table is fully regular: 8 rows of rotate/shift/swap over
// the eight r8index operands (0x00-0x3F), then BIT/RES/SET crossed with all eight bit
// indices and all eight operands. Built once at init instead of 256
// hand-written functions.

var cbTable [256]func(*CPU)

func init() {
	shiftOps := [8]func(c *CPU, v uint8) uint8{
		(*CPU).rlc, (*CPU).rrc, (*CPU).rl, (*CPU).rr,
		(*CPU).sla, (*CPU).sra, (*CPU).swap, (*CPU).srl,
	}

	for row := uint8(0); row < 8; row++ {
		op := shiftOps[row]
		for reg := uint8(0); reg < 8; reg++ {
			r := r8index[reg]
			cbTable[row*8+reg] = func(c *CPU) {
				result := op(c, r.read8(c))
				c.regs.setFlag(flagZ, result == 0)
				r.write8(c, result)
			}
		}
	}

	for bitIdx := uint8(0); bitIdx < 8; bitIdx++ {
		for reg := uint8(0); reg < 8; reg++ {
			r := r8index[reg]
			b := bitIdx
			cbTable[0x40+bitIdx*8+reg] = func(c *CPU) { c.bit(b, r.read8(c)) }
			cbTable[0x80+bitIdx*8+reg] = func(c *CPU) { r.write8(c, c.res(b, r.read8(c))) }
			cbTable[0xC0+bitIdx*8+reg] = func(c *CPU) { r.write8(c, c.set(b, r.read8(c))) }
		}
	}
}
