package emu

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/rv64sim/insts"
)

// StepResult reports what happened in one fetch/decode/execute cycle.
// Execution never unwinds as a host-level panic: every trap and fault
// is reported through this value instead.
type StepResult struct {
	// Trapped is true when the step delivered a synchronous exception
	// or asynchronous interrupt to a handler, or returned from one via
	// MRET/SRET; execution continues.
	Trapped bool

	// Fatal is true when the step hit an unrecoverable condition (an
	// access fault against unmapped memory) that halts the hart.
	Fatal bool

	// Err is set whenever Fatal is true, describing what happened.
	Err error
}

// Hart is one RV64I hardware thread: register file, bus, CSR file, and
// trap pipeline, wired together into a fetch/decode/execute loop.
type Hart struct {
	regFile *RegFile
	memory  *Memory
	uart    *UART
	plic    *PLIC
	bus     *Bus
	csr     *CSRFile
	trap    *TrapPipeline
	decoder *insts.Decoder

	alu       *ALU
	branch    *BranchUnit
	loadStore *LoadStoreUnit
	system    *SystemUnit

	pc uint64

	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader

	dramSize uint64

	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// HartOption is a functional option for configuring a Hart.
type HartOption func(*Hart)

// WithStdout sets the writer the UART's transmitter drains to.
func WithStdout(w io.Writer) HartOption {
	return func(h *Hart) { h.stdout = w }
}

// WithStderr sets the writer fatal diagnostics are reported to.
func WithStderr(w io.Writer) HartOption {
	return func(h *Hart) { h.stderr = w }
}

// WithStdin sets the reader the UART's input pump drains from.
func WithStdin(r io.Reader) HartOption {
	return func(h *Hart) { h.stdin = r }
}

// WithDRAMSize overrides the default 128 MiB DRAM region size.
func WithDRAMSize(size uint64) HartOption {
	return func(h *Hart) { h.dramSize = size }
}

// WithMaxInstructions sets the maximum number of instructions to
// execute before Step reports a fatal stop. A value of 0 means no
// limit; this exists for tests and fuzzing, not for normal runs.
func WithMaxInstructions(max uint64) HartOption {
	return func(h *Hart) { h.maxInstructions = max }
}

// NewHart constructs a hart with image loaded at the base of DRAM, PC
// set to DRAMBase, and x2 (the stack pointer) set to the top of DRAM,
// per the hart's reset state.
func NewHart(image []byte, opts ...HartOption) *Hart {
	h := &Hart{
		decoder:  insts.NewDecoder(),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		stdin:    os.Stdin,
		dramSize: DefaultDRAMSize,
		pc:       DRAMBase,
	}

	for _, opt := range opts {
		opt(h)
	}

	h.regFile = &RegFile{}
	h.memory = NewMemory(h.dramSize, image)
	h.uart = NewUART(h.stdin, h.stdout)
	h.plic = NewPLIC()
	h.bus = NewBus(h.memory, h.uart, h.plic)
	h.csr = &CSRFile{}
	h.trap = NewTrapPipeline(h.csr)

	h.regFile.WriteReg(2, DRAMBase+h.dramSize)

	h.alu = NewALU(h.regFile)
	h.branch = NewBranchUnit(h.regFile)
	h.loadStore = NewLoadStoreUnit(h.regFile, h.bus)
	h.system = NewSystemUnit(h.regFile, h.csr)

	return h
}

// RegFile returns the hart's integer register file.
func (h *Hart) RegFile() *RegFile { return h.regFile }

// PC returns the hart's current program counter.
func (h *Hart) PC() uint64 { return h.pc }

// Mode returns the hart's current privilege level.
func (h *Hart) Mode() Mode { return h.trap.Mode() }

// CSR returns the hart's CSR bank.
func (h *Hart) CSR() *CSRFile { return h.csr }

// InstructionCount returns the number of instructions retired so far.
func (h *Hart) InstructionCount() uint64 { return h.instructionCount }

// Step executes one fetch/decode/execute cycle, then checks for and
// delivers a pending interrupt.
func (h *Hart) Step() StepResult {
	if h.maxInstructions > 0 && h.instructionCount >= h.maxInstructions {
		return StepResult{Fatal: true, Err: fmt.Errorf("max instructions reached")}
	}

	word, err := h.bus.Load(h.pc, 32)
	if err != nil {
		return h.fault(ExcInstructionAccessFault, h.pc)
	}

	inst := h.decoder.Decode(uint32(word))
	result := h.execute(inst)
	h.instructionCount++

	if result.Fatal {
		return result
	}

	h.bus.CheckUARTInterrupt()
	if h.plic.HasClaimable() {
		h.trap.SetExternalInterruptPending()
	}
	if cause, ok := h.trap.CheckInterrupt(); ok {
		h.pc = h.trap.TakeInterrupt(h.pc, cause)
		result.Trapped = true
	}

	return result
}

// Run steps the hart until a fatal condition halts it, reporting the
// diagnostic to stderr.
func (h *Hart) Run() StepResult {
	for {
		result := h.Step()
		if result.Fatal {
			fmt.Fprintf(h.stderr, "hart halted: %v\n", result.Err)
			return result
		}
	}
}

// fault converts an unmapped or misconfigured bus access into a fatal
// step result: access faults halt the hart rather than trapping to a
// handler, matching the reference behavior this core is built from.
func (h *Hart) fault(code uint64, value uint64) StepResult {
	return StepResult{
		Fatal: true,
		Err:   fmt.Errorf("access fault (cause %d) at pc=0x%x value=0x%x", code, h.pc, value),
	}
}

// raise delivers a synchronous exception through the trap pipeline and
// reports the step as trapped. Access faults are not delivered: they
// are reported as fatal instead.
func (h *Hart) raise(exc *Exception) StepResult {
	if exc.fatal() {
		return h.fault(exc.Code, exc.Value)
	}
	h.pc = h.trap.TakeException(h.pc, exc)
	return StepResult{Trapped: true}
}

// execute dispatches a decoded instruction to its execution unit and
// advances PC. Branch-family formats (B, J, and JALR) compute their own
// next PC, as do MRET/SRET and any instruction that raises an
// exception; every other instruction falls through to PC+4.
func (h *Hart) execute(inst *insts.Instruction) StepResult {
	pc := h.pc

	switch inst.Op {
	case insts.OpUnknown:
		return h.raise(&Exception{Code: ExcIllegalInstruction, Value: uint64(inst.Raw)})

	case insts.OpADDI:
		h.alu.ADDI(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpSLTI:
		h.alu.SLTI(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpSLTIU:
		h.alu.SLTIU(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpXORI:
		h.alu.XORI(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpORI:
		h.alu.ORI(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpANDI:
		h.alu.ANDI(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpSLLI:
		h.alu.SLLI(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpSRLI:
		h.alu.SRLI(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpSRAI:
		h.alu.SRAI(inst.Rd, inst.Rs1, inst.Imm)

	case insts.OpADDIW:
		h.alu.ADDIW(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpSLLIW:
		h.alu.SLLIW(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpSRLIW:
		h.alu.SRLIW(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpSRAIW:
		h.alu.SRAIW(inst.Rd, inst.Rs1, inst.Imm)

	case insts.OpADD:
		h.alu.ADD(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSUB:
		h.alu.SUB(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSLL:
		h.alu.SLL(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSLT:
		h.alu.SLT(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSLTU:
		h.alu.SLTU(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpXOR:
		h.alu.XOR(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSRL:
		h.alu.SRL(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSRA:
		h.alu.SRA(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpOR:
		h.alu.OR(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpAND:
		h.alu.AND(inst.Rd, inst.Rs1, inst.Rs2)

	case insts.OpADDW:
		h.alu.ADDW(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSUBW:
		h.alu.SUBW(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSLLW:
		h.alu.SLLW(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSRLW:
		h.alu.SRLW(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSRAW:
		h.alu.SRAW(inst.Rd, inst.Rs1, inst.Rs2)

	case insts.OpLUI:
		h.alu.LUI(inst.Rd, inst.Imm)
	case insts.OpAUIPC:
		h.alu.AUIPC(inst.Rd, pc, inst.Imm)

	case insts.OpJAL:
		h.pc = h.branch.JAL(inst.Rd, pc, inst.Imm)
		return StepResult{}
	case insts.OpJALR:
		h.pc = h.branch.JALR(inst.Rd, inst.Rs1, pc, inst.Imm)
		return StepResult{}

	case insts.OpBEQ, insts.OpBNE, insts.OpBLT, insts.OpBGE, insts.OpBLTU, insts.OpBGEU:
		if h.branch.Taken(branchOpFor(inst.Op), inst.Rs1, inst.Rs2) {
			h.pc = uint64(int64(pc) + inst.Imm)
		} else {
			h.pc = pc + 4
		}
		return StepResult{}

	case insts.OpLB:
		if err := h.loadStore.LB(inst.Rd, inst.Rs1, inst.Imm); err != nil {
			return h.raise(&Exception{Code: ExcLoadAccessFault, Value: uint64(int64(h.regFile.ReadReg(inst.Rs1)) + inst.Imm)})
		}
	case insts.OpLH:
		if err := h.loadStore.LH(inst.Rd, inst.Rs1, inst.Imm); err != nil {
			return h.raise(&Exception{Code: ExcLoadAccessFault, Value: uint64(int64(h.regFile.ReadReg(inst.Rs1)) + inst.Imm)})
		}
	case insts.OpLW:
		if err := h.loadStore.LW(inst.Rd, inst.Rs1, inst.Imm); err != nil {
			return h.raise(&Exception{Code: ExcLoadAccessFault, Value: uint64(int64(h.regFile.ReadReg(inst.Rs1)) + inst.Imm)})
		}
	case insts.OpLD:
		if err := h.loadStore.LD(inst.Rd, inst.Rs1, inst.Imm); err != nil {
			return h.raise(&Exception{Code: ExcLoadAccessFault, Value: uint64(int64(h.regFile.ReadReg(inst.Rs1)) + inst.Imm)})
		}
	case insts.OpLBU:
		if err := h.loadStore.LBU(inst.Rd, inst.Rs1, inst.Imm); err != nil {
			return h.raise(&Exception{Code: ExcLoadAccessFault, Value: uint64(int64(h.regFile.ReadReg(inst.Rs1)) + inst.Imm)})
		}
	case insts.OpLHU:
		if err := h.loadStore.LHU(inst.Rd, inst.Rs1, inst.Imm); err != nil {
			return h.raise(&Exception{Code: ExcLoadAccessFault, Value: uint64(int64(h.regFile.ReadReg(inst.Rs1)) + inst.Imm)})
		}
	case insts.OpLWU:
		if err := h.loadStore.LWU(inst.Rd, inst.Rs1, inst.Imm); err != nil {
			return h.raise(&Exception{Code: ExcLoadAccessFault, Value: uint64(int64(h.regFile.ReadReg(inst.Rs1)) + inst.Imm)})
		}

	case insts.OpSB:
		if err := h.loadStore.SB(inst.Rs1, inst.Rs2, inst.Imm); err != nil {
			return h.raise(&Exception{Code: ExcStoreAMOAccessFault, Value: uint64(int64(h.regFile.ReadReg(inst.Rs1)) + inst.Imm)})
		}
	case insts.OpSH:
		if err := h.loadStore.SH(inst.Rs1, inst.Rs2, inst.Imm); err != nil {
			return h.raise(&Exception{Code: ExcStoreAMOAccessFault, Value: uint64(int64(h.regFile.ReadReg(inst.Rs1)) + inst.Imm)})
		}
	case insts.OpSW:
		if err := h.loadStore.SW(inst.Rs1, inst.Rs2, inst.Imm); err != nil {
			return h.raise(&Exception{Code: ExcStoreAMOAccessFault, Value: uint64(int64(h.regFile.ReadReg(inst.Rs1)) + inst.Imm)})
		}
	case insts.OpSD:
		if err := h.loadStore.SD(inst.Rs1, inst.Rs2, inst.Imm); err != nil {
			return h.raise(&Exception{Code: ExcStoreAMOAccessFault, Value: uint64(int64(h.regFile.ReadReg(inst.Rs1)) + inst.Imm)})
		}

	case insts.OpFENCE:
		// No-op: this hart has no pipeline or cache to order.

	case insts.OpECALL:
		return h.raise(&Exception{Code: h.ecallCause()})
	case insts.OpEBREAK:
		return h.raise(&Exception{Code: ExcBreakpoint})
	case insts.OpMRET:
		if h.trap.Mode() != ModeMachine {
			return h.raise(&Exception{Code: ExcIllegalInstruction, Value: uint64(inst.Raw)})
		}
		h.pc = h.trap.MRET()
		return StepResult{Trapped: true}
	case insts.OpSRET:
		if h.trap.Mode() < ModeSupervisor {
			return h.raise(&Exception{Code: ExcIllegalInstruction, Value: uint64(inst.Raw)})
		}
		h.pc = h.trap.SRET()
		return StepResult{Trapped: true}

	case insts.OpCSRRW:
		h.system.CSRRW(inst.Rd, inst.Rs1, inst.CSR)
	case insts.OpCSRRS:
		h.system.CSRRS(inst.Rd, inst.Rs1, inst.CSR)
	case insts.OpCSRRC:
		h.system.CSRRC(inst.Rd, inst.Rs1, inst.CSR)
	case insts.OpCSRRWI:
		h.system.CSRRWI(inst.Rd, uint64(inst.Rs1), inst.CSR)
	case insts.OpCSRRSI:
		h.system.CSRRSI(inst.Rd, uint64(inst.Rs1), inst.CSR)
	case insts.OpCSRRCI:
		h.system.CSRRCI(inst.Rd, uint64(inst.Rs1), inst.CSR)
	}

	h.pc = pc + 4
	return StepResult{}
}

// ecallCause picks the ECALL exception code for the hart's current
// privilege mode.
func (h *Hart) ecallCause() uint64 {
	switch h.trap.Mode() {
	case ModeUser:
		return ExcEnvironmentCallFromUMode
	case ModeSupervisor:
		return ExcEnvironmentCallFromSMode
	default:
		return ExcEnvironmentCallFromMMode
	}
}

func branchOpFor(op insts.Op) BranchOp {
	switch op {
	case insts.OpBEQ:
		return BranchEQ
	case insts.OpBNE:
		return BranchNE
	case insts.OpBLT:
		return BranchLT
	case insts.OpBGE:
		return BranchGE
	case insts.OpBLTU:
		return BranchLTU
	default:
		return BranchGEU
	}
}
