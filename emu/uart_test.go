package emu_test

import (
	"bytes"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv64sim/emu"
)

var _ = Describe("UART", func() {
	It("echoes a transmitted byte to stdout", func() {
		var out bytes.Buffer
		uart := emu.NewUART(bytes.NewReader(nil), &out)
		uart.Store(0, 'h')
		Expect(out.String()).To(Equal("h"))
	})

	It("makes an input byte available through RHR and raises the interrupt flag", func() {
		in := bytes.NewReader([]byte{'A'})
		var out bytes.Buffer
		uart := emu.NewUART(in, &out)

		Eventually(func() bool {
			return uart.IsInterrupting()
		}, time.Second, time.Millisecond).Should(BeTrue())

		Expect(uart.Load(0)).To(BeEquivalentTo('A'))
	})

	It("clears the interrupt flag once observed", func() {
		in := bytes.NewReader([]byte{'B'})
		var out bytes.Buffer
		uart := emu.NewUART(in, &out)

		Eventually(func() bool {
			return uart.IsInterrupting()
		}, time.Second, time.Millisecond).Should(BeTrue())

		Expect(uart.IsInterrupting()).To(BeFalse())
	})
})
