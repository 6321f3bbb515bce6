package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv64sim/emu"
)

var _ = Describe("CSRFile", func() {
	var csr *emu.CSRFile

	BeforeEach(func() {
		csr = &emu.CSRFile{}
	})

	It("round-trips a plain machine-level register", func() {
		csr.Store(emu.CSRMtvec, 0x8000_1000)
		Expect(csr.Load(emu.CSRMtvec)).To(BeEquivalentTo(0x8000_1000))
	})

	It("masks SIE writes against MIDELEG", func() {
		csr.Store(emu.CSRMideleg, 1<<emu.IntSEICode)
		csr.Store(emu.CSRSie, 1<<emu.IntSEICode|1<<emu.IntMEICode)

		Expect(csr.Load(emu.CSRSie)).To(BeEquivalentTo(1 << emu.IntSEICode))
		Expect(csr.Load(emu.CSRMie) & (1 << emu.IntMEICode)).To(BeEquivalentTo(0))
	})

	It("masks SIP the same way as SIE, using MIP not MIE", func() {
		csr.Store(emu.CSRMideleg, 1<<emu.IntSSICode)
		csr.Store(emu.CSRMip, 1<<emu.IntSSICode)

		Expect(csr.Load(emu.CSRSip)).To(BeEquivalentTo(1 << emu.IntSSICode))
	})

	It("exposes only the supervisor-visible bits of MSTATUS through SSTATUS", func() {
		csr.Store(emu.CSRMstatus, ^uint64(0))
		sstatus := csr.Load(emu.CSRSstatus)
		Expect(sstatus & (1 << 3)).To(BeEquivalentTo(0)) // MIE is not SSTATUS-visible
	})
})
