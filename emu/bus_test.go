package emu_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv64sim/emu"
)

var _ = Describe("Bus", func() {
	var (
		bus  *emu.Bus
		uart *emu.UART
		plic *emu.PLIC
	)

	BeforeEach(func() {
		mem := emu.NewMemory(4096, nil)
		uart = emu.NewUART(bytes.NewReader(nil), &bytes.Buffer{})
		plic = emu.NewPLIC()
		bus = emu.NewBus(mem, uart, plic)
	})

	It("routes DRAM-range addresses to memory", func() {
		Expect(bus.Store(emu.DRAMBase, 32, 0xCAFEBABE)).To(Succeed())
		v, err := bus.Load(emu.DRAMBase, 32)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeEquivalentTo(0xCAFEBABE))
	})

	It("routes UART-range addresses to the UART", func() {
		Expect(bus.Store(emu.UARTBase, 8, 'x')).To(Succeed())
	})

	It("routes PLIC-range addresses to the PLIC", func() {
		plic.Notify(emu.UARTIRQ)
		v, err := bus.Load(emu.PLICBase+0x20_0004, 32)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeEquivalentTo(emu.UARTIRQ))
	})

	It("faults on an address in no mapped range", func() {
		_, err := bus.Load(0x1000, 32)
		Expect(err).To(HaveOccurred())
	})
})
