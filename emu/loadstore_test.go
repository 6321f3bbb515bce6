package emu_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv64sim/emu"
)

var _ = Describe("LoadStoreUnit", func() {
	var (
		regs *emu.RegFile
		lsu  *emu.LoadStoreUnit
	)

	BeforeEach(func() {
		regs = &emu.RegFile{}
		mem := emu.NewMemory(4096, nil)
		uart := emu.NewUART(bytes.NewReader(nil), &bytes.Buffer{})
		plic := emu.NewPLIC()
		bus := emu.NewBus(mem, uart, plic)
		lsu = emu.NewLoadStoreUnit(regs, bus)
		regs.WriteReg(1, emu.DRAMBase)
	})

	It("round-trips a doubleword through SD/LD", func() {
		regs.WriteReg(2, 0x1122334455667788)
		Expect(lsu.SD(1, 2, 8)).To(Succeed())
		Expect(lsu.LD(3, 1, 8)).To(Succeed())
		Expect(regs.ReadReg(3)).To(BeEquivalentTo(0x1122334455667788))
	})

	It("sign-extends LB", func() {
		regs.WriteReg(2, 0xFF)
		Expect(lsu.SB(1, 2, 0)).To(Succeed())
		Expect(lsu.LB(3, 1, 0)).To(Succeed())
		Expect(int64(regs.ReadReg(3))).To(BeEquivalentTo(-1))
	})

	It("zero-extends LBU", func() {
		regs.WriteReg(2, 0xFF)
		Expect(lsu.SB(1, 2, 0)).To(Succeed())
		Expect(lsu.LBU(3, 1, 0)).To(Succeed())
		Expect(regs.ReadReg(3)).To(BeEquivalentTo(0xFF))
	})

	It("sign-extends LW", func() {
		regs.WriteReg(2, 0x80000000)
		Expect(lsu.SW(1, 2, 0)).To(Succeed())
		Expect(lsu.LW(3, 1, 0)).To(Succeed())
		Expect(int64(regs.ReadReg(3))).To(BeEquivalentTo(int64(-0x80000000)))
	})

	It("zero-extends LWU", func() {
		regs.WriteReg(2, 0x80000000)
		Expect(lsu.SW(1, 2, 0)).To(Succeed())
		Expect(lsu.LWU(3, 1, 0)).To(Succeed())
		Expect(regs.ReadReg(3)).To(BeEquivalentTo(0x80000000))
	})

	It("propagates an AccessFault from an out-of-range store", func() {
		regs.WriteReg(1, 0x1000)
		Expect(lsu.SW(1, 0, 0)).To(HaveOccurred())
	})
})
