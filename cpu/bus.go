package cpu

// Bus is the memory-mapped interface the CPU drives. mmu.MMU implements it;
// tests substitute smaller fakes. Every access that the hardware would spend
// a machine cycle on must call Tick exactly once per 4 clocks consumed.
type Bus interface {
	ReadByte(addr uint16) uint8
	WriteByte(addr uint16, value uint8)
	Tick()
	RequestInterrupt(flag uint8)
	PendingInterrupts() uint8
	ClearInterrupt(flag uint8)
}
