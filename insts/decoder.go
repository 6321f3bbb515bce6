// Package insts provides RV64I instruction definitions and decoding.
package insts

// Base opcode values (bits [6:0] of the instruction word).
const (
	opcodeOpImm   = 0x13
	opcodeOpImm32 = 0x1B
	opcodeOp      = 0x33
	opcodeOp32    = 0x3B
	opcodeLUI     = 0x37
	opcodeAUIPC   = 0x17
	opcodeJAL     = 0x6F
	opcodeJALR    = 0x67
	opcodeBranch  = 0x63
	opcodeLoad    = 0x03
	opcodeStore   = 0x23
	opcodeFence   = 0x0F
	opcodeSystem  = 0x73
)

// Decoder decodes RV64I machine code into Instruction records. It holds
// no state: Decode is a pure function of its input word.
type Decoder struct{}

// NewDecoder creates a new RV64I instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit RISC-V instruction word.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{Raw: word, Op: OpUnknown}

	opcode := word & 0x7f
	inst.Rd = uint8((word >> 7) & 0x1f)
	inst.Funct3 = uint8((word >> 12) & 0x7)
	inst.Rs1 = uint8((word >> 15) & 0x1f)
	inst.Rs2 = uint8((word >> 20) & 0x1f)
	inst.Funct7 = uint8((word >> 25) & 0x7f)

	switch opcode {
	case opcodeOpImm:
		inst.Format = FormatI
		inst.Imm = signExtend(word>>20, 12)
		d.decodeOpImm(inst, word)
	case opcodeOpImm32:
		inst.Format = FormatI
		inst.Imm = signExtend(word>>20, 12)
		d.decodeOpImm32(inst, word)
	case opcodeOp:
		inst.Format = FormatR
		d.decodeOp(inst)
	case opcodeOp32:
		inst.Format = FormatR
		d.decodeOp32(inst)
	case opcodeLUI:
		inst.Format = FormatU
		inst.Op = OpLUI
		inst.Imm = int64(int32(word & 0xfffff000))
	case opcodeAUIPC:
		inst.Format = FormatU
		inst.Op = OpAUIPC
		inst.Imm = int64(int32(word & 0xfffff000))
	case opcodeJAL:
		inst.Format = FormatJ
		inst.Op = OpJAL
		inst.Imm = decodeJImm(word)
	case opcodeJALR:
		inst.Format = FormatI
		inst.Op = OpJALR
		inst.Imm = signExtend(word>>20, 12)
	case opcodeBranch:
		inst.Format = FormatB
		inst.Imm = decodeBImm(word)
		d.decodeBranch(inst)
	case opcodeLoad:
		inst.Format = FormatI
		inst.Imm = signExtend(word>>20, 12)
		d.decodeLoad(inst)
	case opcodeStore:
		inst.Format = FormatS
		inst.Imm = decodeSImm(word)
		d.decodeStore(inst)
	case opcodeFence:
		inst.Format = FormatI
		inst.Op = OpFENCE
	case opcodeSystem:
		inst.Format = FormatI
		inst.CSR = uint16((word >> 20) & 0xfff)
		d.decodeSystem(inst, word)
	}

	return inst
}

// decodeOpImm fills in the OP-IMM mnemonic. SLLI/SRLI/SRAI repurpose the
// low six bits of the immediate field as a shift amount (RV64 shamt is
// six bits wide) and are distinguished by the top six bits (funct6).
func (d *Decoder) decodeOpImm(inst *Instruction, word uint32) {
	switch inst.Funct3 {
	case 0x0:
		inst.Op = OpADDI
	case 0x2:
		inst.Op = OpSLTI
	case 0x3:
		inst.Op = OpSLTIU
	case 0x4:
		inst.Op = OpXORI
	case 0x6:
		inst.Op = OpORI
	case 0x7:
		inst.Op = OpANDI
	case 0x1:
		inst.Op = OpSLLI
		inst.Imm = int64((word >> 20) & 0x3f)
	case 0x5:
		inst.Imm = int64((word >> 20) & 0x3f)
		if (word>>26)&0x3f == 0x10 {
			inst.Op = OpSRAI
		} else {
			inst.Op = OpSRLI
		}
	}
}

// decodeOpImm32 fills in the OP-IMM-32 mnemonic. These operate on the
// low 32 bits of rs1 and use a five-bit shamt (bits [24:20]).
func (d *Decoder) decodeOpImm32(inst *Instruction, word uint32) {
	switch inst.Funct3 {
	case 0x0:
		inst.Op = OpADDIW
	case 0x1:
		inst.Op = OpSLLIW
		inst.Imm = int64((word >> 20) & 0x1f)
	case 0x5:
		inst.Imm = int64((word >> 20) & 0x1f)
		if inst.Funct7 == 0x20 {
			inst.Op = OpSRAIW
		} else {
			inst.Op = OpSRLIW
		}
	}
}

func (d *Decoder) decodeOp(inst *Instruction) {
	switch inst.Funct3 {
	case 0x0:
		if inst.Funct7 == 0x20 {
			inst.Op = OpSUB
		} else {
			inst.Op = OpADD
		}
	case 0x1:
		inst.Op = OpSLL
	case 0x2:
		inst.Op = OpSLT
	case 0x3:
		inst.Op = OpSLTU
	case 0x4:
		inst.Op = OpXOR
	case 0x5:
		if inst.Funct7 == 0x20 {
			inst.Op = OpSRA
		} else {
			inst.Op = OpSRL
		}
	case 0x6:
		inst.Op = OpOR
	case 0x7:
		inst.Op = OpAND
	}
}

func (d *Decoder) decodeOp32(inst *Instruction) {
	switch inst.Funct3 {
	case 0x0:
		if inst.Funct7 == 0x20 {
			inst.Op = OpSUBW
		} else {
			inst.Op = OpADDW
		}
	case 0x1:
		inst.Op = OpSLLW
	case 0x5:
		if inst.Funct7 == 0x20 {
			inst.Op = OpSRAW
		} else {
			inst.Op = OpSRLW
		}
	}
}

func (d *Decoder) decodeBranch(inst *Instruction) {
	switch inst.Funct3 {
	case 0x0:
		inst.Op = OpBEQ
	case 0x1:
		inst.Op = OpBNE
	case 0x4:
		inst.Op = OpBLT
	case 0x5:
		inst.Op = OpBGE
	case 0x6:
		inst.Op = OpBLTU
	case 0x7:
		inst.Op = OpBGEU
	}
}

func (d *Decoder) decodeLoad(inst *Instruction) {
	switch inst.Funct3 {
	case 0x0:
		inst.Op = OpLB
	case 0x1:
		inst.Op = OpLH
	case 0x2:
		inst.Op = OpLW
	case 0x3:
		inst.Op = OpLD
	case 0x4:
		inst.Op = OpLBU
	case 0x5:
		inst.Op = OpLHU
	case 0x6:
		inst.Op = OpLWU
	}
}

func (d *Decoder) decodeStore(inst *Instruction) {
	switch inst.Funct3 {
	case 0x0:
		inst.Op = OpSB
	case 0x1:
		inst.Op = OpSH
	case 0x2:
		inst.Op = OpSW
	case 0x3:
		inst.Op = OpSD
	}
}

// decodeSystem handles ECALL/EBREAK/MRET/SRET (funct3 == 0) and the six
// Zicsr instructions (funct3 != 0, CSR address already extracted).
func (d *Decoder) decodeSystem(inst *Instruction, word uint32) {
	switch inst.Funct3 {
	case 0x0:
		switch word >> 20 {
		case 0x000:
			inst.Op = OpECALL
		case 0x001:
			inst.Op = OpEBREAK
		case 0x102:
			inst.Op = OpSRET
		case 0x302:
			inst.Op = OpMRET
		}
	case 0x1:
		inst.Op = OpCSRRW
	case 0x2:
		inst.Op = OpCSRRS
	case 0x3:
		inst.Op = OpCSRRC
	case 0x5:
		inst.Op = OpCSRRWI
	case 0x6:
		inst.Op = OpCSRRSI
	case 0x7:
		inst.Op = OpCSRRCI
	}
}

// signExtend sign-extends the low `bits` bits of value to a 64-bit
// signed integer.
func signExtend(value uint32, bits uint) int64 {
	shift := 32 - bits
	return int64(int32(value<<shift)) >> shift
}

// decodeSImm reassembles the S-type immediate: {imm[11:5], imm[4:0]}.
func decodeSImm(word uint32) int64 {
	imm115 := (word >> 25) & 0x7f
	imm40 := (word >> 7) & 0x1f
	imm := (imm115 << 5) | imm40
	return signExtend(imm, 12)
}

// decodeBImm reassembles the B-type immediate: {imm[12], imm[11],
// imm[10:5], imm[4:1]} << 1.
func decodeBImm(word uint32) int64 {
	imm12 := (word >> 31) & 0x1
	imm11 := (word >> 7) & 0x1
	imm105 := (word >> 25) & 0x3f
	imm41 := (word >> 8) & 0xf
	imm := (imm12 << 12) | (imm11 << 11) | (imm105 << 5) | (imm41 << 1)
	return signExtend(imm, 13)
}

// decodeJImm reassembles the J-type immediate: {imm[20], imm[19:12],
// imm[11], imm[10:1]} << 1.
func decodeJImm(word uint32) int64 {
	imm20 := (word >> 31) & 0x1
	imm1912 := (word >> 12) & 0xff
	imm11 := (word >> 20) & 0x1
	imm101 := (word >> 21) & 0x3ff
	imm := (imm20 << 20) | (imm1912 << 12) | (imm11 << 11) | (imm101 << 1)
	return signExtend(imm, 21)
}
