package emu

// Bus dispatches physical-address loads and stores to whichever
// component owns that range: DRAM, the UART, or the PLIC. Addresses
// outside every mapped range fault.
type Bus struct {
	memory *Memory
	uart   *UART
	plic   *PLIC
}

// NewBus wires a memory, UART, and PLIC together behind one address
// space.
func NewBus(memory *Memory, uart *UART, plic *PLIC) *Bus {
	return &Bus{memory: memory, uart: uart, plic: plic}
}

// Load reads size bits (8, 16, 32, or 64) from addr.
func (b *Bus) Load(addr uint64, size uint) (uint64, error) {
	switch {
	case addr >= DRAMBase:
		return b.memory.Load(addr, size)
	case addr >= UARTBase && addr < UARTBase+UARTSize:
		return uint64(b.uart.Load(addr - UARTBase)), nil
	case addr >= PLICBase && addr < PLICBase+PLICSize:
		return b.plic.Load(addr), nil
	default:
		return 0, &AccessFault{Addr: addr}
	}
}

// Store writes the low size bits of value to addr.
func (b *Bus) Store(addr uint64, size uint, value uint64) error {
	switch {
	case addr >= DRAMBase:
		return b.memory.Store(addr, size, value)
	case addr >= UARTBase && addr < UARTBase+UARTSize:
		b.uart.Store(addr-UARTBase, byte(value))
		return nil
	case addr >= PLICBase && addr < PLICBase+PLICSize:
		b.plic.Store(addr, value)
		return nil
	default:
		return &AccessFault{Addr: addr, Store: true}
	}
}

// CheckUARTInterrupt polls the UART for a pending interrupt and, if
// one is present, notifies the PLIC on its wired IRQ line.
func (b *Bus) CheckUARTInterrupt() {
	if b.uart.IsInterrupting() {
		b.plic.Notify(UARTIRQ)
	}
}
