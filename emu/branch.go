package emu

// BranchUnit implements JAL, JALR, and the BRANCH family. Unlike the
// other execution units it doesn't own PC directly — PC belongs to the
// hart — so JAL and JALR take the current PC and return the next one,
// and Taken only evaluates a BRANCH condition.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given
// register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// JAL: Xd = pc + 4, next PC = pc + imm.
func (b *BranchUnit) JAL(rd uint8, pc uint64, imm int64) uint64 {
	b.regFile.WriteReg(rd, pc+4)
	return uint64(int64(pc) + imm)
}

// JALR: Xd = pc + 4, next PC = (Xs1 + imm) & ^1.
func (b *BranchUnit) JALR(rd, rs1 uint8, pc uint64, imm int64) uint64 {
	target := uint64(int64(b.regFile.ReadReg(rs1))+imm) &^ 1
	b.regFile.WriteReg(rd, pc+4)
	return target
}

// Taken evaluates a branch condition against rs1/rs2 for the given op.
func (b *BranchUnit) Taken(op BranchOp, rs1, rs2 uint8) bool {
	v1 := b.regFile.ReadReg(rs1)
	v2 := b.regFile.ReadReg(rs2)

	switch op {
	case BranchEQ:
		return v1 == v2
	case BranchNE:
		return v1 != v2
	case BranchLT:
		return int64(v1) < int64(v2)
	case BranchGE:
		return int64(v1) >= int64(v2)
	case BranchLTU:
		return v1 < v2
	case BranchGEU:
		return v1 >= v2
	default:
		return false
	}
}

// BranchOp identifies a BRANCH-family condition.
type BranchOp uint8

const (
	BranchEQ BranchOp = iota
	BranchNE
	BranchLT
	BranchGE
	BranchLTU
	BranchGEU
)
