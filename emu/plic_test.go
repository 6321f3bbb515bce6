package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv64sim/emu"
)

var _ = Describe("PLIC", func() {
	var plic *emu.PLIC

	BeforeEach(func() {
		plic = emu.NewPLIC()
	})

	It("reports no claimable interrupt when idle", func() {
		Expect(plic.HasClaimable()).To(BeFalse())
	})

	It("claims the notified source and marks it unclaimable again", func() {
		plic.Notify(emu.UARTIRQ)
		Expect(plic.HasClaimable()).To(BeTrue())

		claimed := plic.Load(emu.PLICBase + 0x20_0004)
		Expect(claimed).To(BeEquivalentTo(emu.UARTIRQ))
		Expect(plic.HasClaimable()).To(BeFalse())
	})

	It("clears pending on complete", func() {
		plic.Notify(emu.UARTIRQ)
		plic.Load(emu.PLICBase + 0x20_0004)
		plic.Store(emu.PLICBase+0x20_0004, emu.UARTIRQ)

		plic.Notify(emu.UARTIRQ)
		Expect(plic.HasClaimable()).To(BeTrue())
	})
})
