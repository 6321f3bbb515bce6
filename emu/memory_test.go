package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv64sim/emu"
)

var _ = Describe("Memory", func() {
	var mem *emu.Memory

	BeforeEach(func() {
		mem = emu.NewMemory(4096, []byte{0x93, 0x0e, 0x50, 0x00})
	})

	It("copies the image into the prefix of DRAM", func() {
		v, err := mem.Load(emu.DRAMBase, 32)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeEquivalentTo(0x00500e93))
	})

	It("round-trips every access width, little-endian", func() {
		Expect(mem.Store(emu.DRAMBase+8, 64, 0x1122334455667788)).To(Succeed())
		v, err := mem.Load(emu.DRAMBase+8, 64)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeEquivalentTo(0x1122334455667788))

		Expect(mem.Store(emu.DRAMBase+8, 8, 0xAB)).To(Succeed())
		v8, err := mem.Load(emu.DRAMBase+8, 8)
		Expect(err).NotTo(HaveOccurred())
		Expect(v8).To(BeEquivalentTo(0xAB))
	})

	It("faults on an address below DRAMBase", func() {
		_, err := mem.Load(0, 32)
		Expect(err).To(HaveOccurred())
	})

	It("faults on an access past the end of DRAM", func() {
		_, err := mem.Load(emu.DRAMBase+4096-2, 32)
		Expect(err).To(HaveOccurred())
	})

	It("permits a misaligned access", func() {
		Expect(mem.Store(emu.DRAMBase+1, 32, 0xCAFEBABE)).To(Succeed())
		v, err := mem.Load(emu.DRAMBase+1, 32)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeEquivalentTo(0xCAFEBABE))
	})
})
