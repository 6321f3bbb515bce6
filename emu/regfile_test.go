package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv64sim/emu"
)

var _ = Describe("RegFile", func() {
	var regs *emu.RegFile

	BeforeEach(func() {
		regs = &emu.RegFile{}
	})

	It("always reads x0 as zero", func() {
		regs.WriteReg(0, 0xdeadbeef)
		Expect(regs.ReadReg(0)).To(BeEquivalentTo(0))
	})

	It("round-trips an ordinary register", func() {
		regs.WriteReg(5, 0x1234)
		Expect(regs.ReadReg(5)).To(BeEquivalentTo(0x1234))
	})

	It("discards writes to x0 without disturbing other registers", func() {
		regs.WriteReg(1, 7)
		regs.WriteReg(0, 99)
		Expect(regs.ReadReg(1)).To(BeEquivalentTo(7))
		Expect(regs.ReadReg(0)).To(BeEquivalentTo(0))
	})
})
