// Package insts provides RV64I instruction definitions and decoding.
//
// This package implements decoding of 32-bit RISC-V machine code into
// structured instruction representations. It covers the six base
// instruction formats (R, I, S, B, U, J) plus the Zicsr extension and
// the privileged trap-return instructions (MRET, SRET) that share the
// SYSTEM opcode.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x00A28F93) // addi x31, x5, 10
//	fmt.Printf("Op: %v, Rd: %d, Rs1: %d, Imm: %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Imm)
package insts

// Op represents a decoded RV64I mnemonic.
type Op uint8

// RV64I, Zicsr, and privileged opcodes.
const (
	OpUnknown Op = iota

	// OP-IMM (0x13)
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI

	// OP-IMM-32 (0x1B)
	OpADDIW
	OpSLLIW
	OpSRLIW
	OpSRAIW

	// OP (0x33)
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND

	// OP-32 (0x3B)
	OpADDW
	OpSUBW
	OpSLLW
	OpSRLW
	OpSRAW

	OpLUI
	OpAUIPC
	OpJAL
	OpJALR

	// BRANCH (0x63)
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU

	// LOAD (0x03)
	OpLB
	OpLH
	OpLW
	OpLD
	OpLBU
	OpLHU
	OpLWU

	// STORE (0x23)
	OpSB
	OpSH
	OpSW
	OpSD

	OpFENCE

	// SYSTEM (0x73)
	OpECALL
	OpEBREAK
	OpMRET
	OpSRET
	OpCSRRW
	OpCSRRS
	OpCSRRC
	OpCSRRWI
	OpCSRRSI
	OpCSRRCI
)

// Format represents one of the six base RV64I encoding formats.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
)

// Instruction represents a decoded RV64I instruction.
type Instruction struct {
	Raw    uint32 // the untouched 32-bit instruction word
	Op     Op
	Format Format

	Rd     uint8
	Rs1    uint8
	Rs2    uint8
	Funct3 uint8
	Funct7 uint8

	// Imm holds the sign-extended immediate for every format that carries
	// one. For LUI/AUIPC it is already shifted left by 12 (§4.2). It has
	// no meaning for SYSTEM instructions outside Zicsr.
	Imm int64

	// CSR holds the 12-bit CSR address for Zicsr instructions (bits
	// 31:20 of the I-type encoding, read as unsigned).
	CSR uint16
}
