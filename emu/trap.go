package emu

// Mode is the hart's current privilege level.
type Mode uint8

const (
	ModeUser       Mode = 0
	ModeSupervisor Mode = 1
	ModeMachine    Mode = 3
)

// Exception codes, used directly as the low bits of {m,s}cause for
// synchronous traps.
const (
	ExcInstructionAddressMisaligned = 0
	ExcInstructionAccessFault       = 1
	ExcIllegalInstruction           = 2
	ExcBreakpoint                   = 3
	ExcLoadAddressMisaligned        = 4
	ExcLoadAccessFault              = 5
	ExcStoreAMOAddressMisaligned    = 6
	ExcStoreAMOAccessFault          = 7
	ExcEnvironmentCallFromUMode     = 8
	ExcEnvironmentCallFromSMode     = 9
	ExcEnvironmentCallFromMMode     = 11
	ExcInstructionPageFault         = 12
	ExcLoadPageFault                = 13
	ExcStoreAMOPageFault            = 15
)

// Interrupt codes. interruptBit marks a cause value as asynchronous
// when combined with one of these codes.
const (
	IntSSICode = 1
	IntMSICode = 3
	IntSTICode = 5
	IntMTICode = 7
	IntSEICode = 9
	IntMEICode = 11

	interruptBit = 1 << 63
)

// mstatus/sstatus bit positions.
const (
	statusSIE  = 1 << 1
	statusMIE  = 1 << 3
	statusSPIE = 1 << 5
	statusMPIE = 1 << 7
	statusSPP  = 1 << 8
	statusMPPShift = 11
	statusMPPMask  = 0b11 << statusMPPShift
)

// mip/mie bit positions.
const (
	maskSSIP = 1 << 1
	maskMSIP = 1 << 3
	maskSTIP = 1 << 5
	maskMTIP = 1 << 7
	maskSEIP = 1 << 9
	maskMEIP = 1 << 11
)

// Exception is a synchronous trap raised by instruction execution.
type Exception struct {
	Code  uint64
	Value uint64
}

func (e *Exception) Error() string { return "exception" }

// fatal reports whether an exception should halt the hart rather than
// be delivered to a trap handler. Only access faults are fatal here:
// every other exception (illegal instruction, ecall, breakpoint,
// misaligned access) is architecturally routed to a handler.
func (e *Exception) fatal() bool {
	switch e.Code {
	case ExcInstructionAccessFault, ExcLoadAccessFault, ExcStoreAMOAccessFault:
		return true
	default:
		return false
	}
}

// TrapPipeline owns the CSR file and privilege mode and implements
// exception/interrupt delivery and return (MRET/SRET).
type TrapPipeline struct {
	csr  *CSRFile
	mode Mode
}

// NewTrapPipeline constructs a trap pipeline starting in machine mode.
func NewTrapPipeline(csr *CSRFile) *TrapPipeline {
	return &TrapPipeline{csr: csr, mode: ModeMachine}
}

// Mode returns the hart's current privilege level.
func (t *TrapPipeline) Mode() Mode { return t.mode }

// TakeException delivers a synchronous exception, returning the new PC.
// Vectored MTVEC/STVEC mode never applies to exceptions: the handler
// always starts at the base address, even when the low two bits of the
// vector register select vectored mode (that selection only affects
// interrupt delivery, per the fixed semantics below).
func (t *TrapPipeline) TakeException(pc uint64, exc *Exception) uint64 {
	delegate := t.mode != ModeMachine && t.csr.Load(CSRMedeleg)&(1<<exc.Code) != 0

	if delegate {
		t.csr.Store(CSRSepc, pc)
		t.csr.Store(CSRScause, exc.Code)
		t.csr.Store(CSRStval, exc.Value)

		sstatus := t.csr.Load(CSRSstatus)
		sie := sstatus & statusSIE
		sstatus &^= statusSPIE
		sstatus |= sie << 4 // SIE(bit1) -> SPIE(bit5)
		sstatus &^= statusSIE
		sstatus &^= statusSPP
		if t.mode == ModeSupervisor {
			sstatus |= statusSPP
		}
		t.csr.Store(CSRSstatus, sstatus)

		t.mode = ModeSupervisor
		return t.csr.Load(CSRStvec) &^ 0b11
	}

	t.csr.Store(CSRMepc, pc)
	t.csr.Store(CSRMcause, exc.Code)
	t.csr.Store(CSRMtval, exc.Value)

	mstatus := t.csr.Load(CSRMstatus)
	mie := mstatus & statusMIE
	mstatus &^= statusMPIE
	mstatus |= mie << 4 // MIE(bit3) -> MPIE(bit7)
	mstatus &^= statusMIE
	mstatus &^= statusMPPMask
	mstatus |= uint64(t.mode) << statusMPPShift
	t.csr.Store(CSRMstatus, mstatus)

	t.mode = ModeMachine
	return t.csr.Load(CSRMtvec) &^ 0b11
}

// TakeInterrupt delivers an asynchronous interrupt, returning the new
// PC. Vectored mode DOES apply here: when the low two bits of the
// vector CSR are 1 (vectored), the handler starts at base + 4*cause.
func (t *TrapPipeline) TakeInterrupt(pc uint64, cause uint64) uint64 {
	code := cause &^ interruptBit
	delegate := t.mode != ModeMachine && t.csr.Load(CSRMideleg)&(1<<code) != 0

	if delegate {
		t.csr.Store(CSRSepc, pc)
		t.csr.Store(CSRScause, cause)
		t.csr.Store(CSRStval, 0)

		sstatus := t.csr.Load(CSRSstatus)
		sie := sstatus & statusSIE
		sstatus &^= statusSPIE
		sstatus |= sie << 4
		sstatus &^= statusSIE
		sstatus &^= statusSPP
		if t.mode == ModeSupervisor {
			sstatus |= statusSPP
		}
		t.csr.Store(CSRSstatus, sstatus)

		t.mode = ModeSupervisor
		return t.vector(t.csr.Load(CSRStvec), code)
	}

	t.csr.Store(CSRMepc, pc)
	t.csr.Store(CSRMcause, cause)
	t.csr.Store(CSRMtval, 0)

	mstatus := t.csr.Load(CSRMstatus)
	mie := mstatus & statusMIE
	mstatus &^= statusMPIE
	mstatus |= mie << 4
	mstatus &^= statusMIE
	mstatus &^= statusMPPMask
	mstatus |= uint64(t.mode) << statusMPPShift
	t.csr.Store(CSRMstatus, mstatus)

	t.mode = ModeMachine
	return t.vector(t.csr.Load(CSRMtvec), code)
}

func (t *TrapPipeline) vector(tvec uint64, code uint64) uint64 {
	base := tvec &^ 0b11
	if tvec&0b11 == 1 {
		return base + 4*code
	}
	return base
}

// MRET returns from a machine-mode trap handler, restoring MIE from
// MPIE and the privilege mode from MPP. The caller is responsible for
// checking that the hart is actually in machine mode before calling
// this; MRET executed outside M-mode raises IllegalInstruction instead
// and never reaches here.
func (t *TrapPipeline) MRET() uint64 {
	mstatus := t.csr.Load(CSRMstatus)

	mpie := (mstatus & statusMPIE) != 0
	mpp := Mode((mstatus & statusMPPMask) >> statusMPPShift)

	if mpie {
		mstatus |= statusMIE
	} else {
		mstatus &^= statusMIE
	}
	mstatus |= statusMPIE
	mstatus &^= statusMPPMask
	mstatus |= uint64(ModeUser) << statusMPPShift

	t.csr.Store(CSRMstatus, mstatus)
	t.mode = mpp
	return t.csr.Load(CSRMepc)
}

// SRET returns from a supervisor-mode trap handler, restoring SIE from
// SPIE and the privilege mode from SPP. This reads SPP as bit 8 of
// SSTATUS directly, not the buggy `(1<<pos)>>pos` expression found in
// one revision of this logic. The caller is responsible for checking
// that the hart is in supervisor mode or higher before calling this;
// SRET executed in user mode raises IllegalInstruction instead and
// never reaches here.
func (t *TrapPipeline) SRET() uint64 {
	sstatus := t.csr.Load(CSRSstatus)

	spie := (sstatus & statusSPIE) != 0
	spp := Mode((sstatus & statusSPP) >> 8)

	if spie {
		sstatus |= statusSIE
	} else {
		sstatus &^= statusSIE
	}
	sstatus |= statusSPIE
	sstatus &^= statusSPP

	t.csr.Store(CSRSstatus, sstatus)
	t.mode = spp
	return t.csr.Load(CSRSepc)
}

// CheckInterrupt evaluates pending, enabled interrupts in priority
// order (MEI > MSI > MTI > SEI > SSI > STI) and, if one is both
// pending and unmasked for the current mode, clears its MIP bit and
// returns its cause. Returns (0, false) if nothing is deliverable.
func (t *TrapPipeline) CheckInterrupt() (uint64, bool) {
	mip := t.csr.Load(CSRMip)
	mie := t.csr.Load(CSRMie)
	mstatus := t.csr.Load(CSRMstatus)

	pending := mip & mie

	globalM := t.mode != ModeMachine || mstatus&statusMIE != 0
	globalS := t.mode == ModeUser || (t.mode == ModeSupervisor && mstatus&statusSIE != 0)

	check := func(mask uint64, code uint64, sMode bool) (uint64, bool) {
		if pending&mask == 0 {
			return 0, false
		}
		if sMode {
			mideleg := t.csr.Load(CSRMideleg)
			delegated := mideleg&mask != 0
			if delegated {
				if !globalS {
					return 0, false
				}
			} else if !globalM {
				return 0, false
			}
		} else if !globalM {
			return 0, false
		}
		t.csr.Store(CSRMip, t.csr.Load(CSRMip)&^mask)
		return interruptBit | code, true
	}

	if c, ok := check(maskMEIP, IntMEICode, false); ok {
		return c, true
	}
	if c, ok := check(maskMSIP, IntMSICode, false); ok {
		return c, true
	}
	if c, ok := check(maskMTIP, IntMTICode, false); ok {
		return c, true
	}
	if c, ok := check(maskSEIP, IntSEICode, true); ok {
		return c, true
	}
	if c, ok := check(maskSSIP, IntSSICode, true); ok {
		return c, true
	}
	if c, ok := check(maskSTIP, IntSTICode, true); ok {
		return c, true
	}
	return 0, false
}

// SetExternalInterruptPending sets MIP.SEIP, the bit the PLIC raises
// when it has a claimable external interrupt.
func (t *TrapPipeline) SetExternalInterruptPending() {
	t.csr.Store(CSRMip, t.csr.Load(CSRMip)|maskSEIP)
}
