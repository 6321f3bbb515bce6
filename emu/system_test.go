package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv64sim/emu"
)

var _ = Describe("SystemUnit", func() {
	var (
		regs *emu.RegFile
		csr  *emu.CSRFile
		sys  *emu.SystemUnit
	)

	BeforeEach(func() {
		regs = &emu.RegFile{}
		csr = &emu.CSRFile{}
		sys = emu.NewSystemUnit(regs, csr)
	})

	It("always writes through CSRRW", func() {
		csr.Store(3, 0xAA)
		regs.WriteReg(1, 0xBB)
		sys.CSRRW(2, 1, 3)
		Expect(regs.ReadReg(2)).To(BeEquivalentTo(0xAA))
		Expect(csr.Load(3)).To(BeEquivalentTo(0xBB))
	})

	It("suppresses the CSRRC write when the mask operand is zero, even from a non-x0 register", func() {
		csr.Store(3, 1)
		regs.WriteReg(2, 0)
		sys.CSRRC(1, 2, 3)
		Expect(regs.ReadReg(1)).To(BeEquivalentTo(1))
		Expect(csr.Load(3)).To(BeEquivalentTo(1))
	})

	It("applies the CSRRC mask when it is non-zero", func() {
		csr.Store(3, 0b111)
		regs.WriteReg(2, 0b010)
		sys.CSRRC(1, 2, 3)
		Expect(regs.ReadReg(1)).To(BeEquivalentTo(0b111))
		Expect(csr.Load(3)).To(BeEquivalentTo(0b101))
	})

	It("ors in the CSRRS mask when non-zero", func() {
		csr.Store(3, 0b001)
		regs.WriteReg(2, 0b010)
		sys.CSRRS(1, 2, 3)
		Expect(csr.Load(3)).To(BeEquivalentTo(0b011))
	})

	It("suppresses CSRRSI/CSRRCI when zimm is zero", func() {
		csr.Store(3, 0xFF)
		sys.CSRRSI(1, 0, 3)
		sys.CSRRCI(1, 0, 3)
		Expect(csr.Load(3)).To(BeEquivalentTo(0xFF))
	})

	It("always writes through CSRRWI, even with a zero immediate", func() {
		csr.Store(3, 0xFF)
		sys.CSRRWI(1, 0, 3)
		Expect(csr.Load(3)).To(BeEquivalentTo(0))
	})
})
