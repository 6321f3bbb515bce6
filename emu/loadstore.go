package emu

// LoadStoreUnit implements the RV64I LOAD and STORE instructions,
// routing every access through the bus so DRAM, the UART, and the PLIC
// are all reachable. Misaligned accesses are permitted, matching the
// reference semantics this hart is built from.
type LoadStoreUnit struct {
	regFile *RegFile
	bus     *Bus
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and bus.
func NewLoadStoreUnit(regFile *RegFile, bus *Bus) *LoadStoreUnit {
	return &LoadStoreUnit{regFile: regFile, bus: bus}
}

// LB: Xd = sext8(mem[Xs1 + offset])
func (lsu *LoadStoreUnit) LB(rd, rs1 uint8, offset int64) error {
	addr := uint64(int64(lsu.regFile.ReadReg(rs1)) + offset)
	value, err := lsu.bus.Load(addr, 8)
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rd, uint64(int64(int8(value))))
	return nil
}

// LH: Xd = sext16(mem[Xs1 + offset])
func (lsu *LoadStoreUnit) LH(rd, rs1 uint8, offset int64) error {
	addr := uint64(int64(lsu.regFile.ReadReg(rs1)) + offset)
	value, err := lsu.bus.Load(addr, 16)
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rd, uint64(int64(int16(value))))
	return nil
}

// LW: Xd = sext32(mem[Xs1 + offset])
func (lsu *LoadStoreUnit) LW(rd, rs1 uint8, offset int64) error {
	addr := uint64(int64(lsu.regFile.ReadReg(rs1)) + offset)
	value, err := lsu.bus.Load(addr, 32)
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rd, uint64(int64(int32(value))))
	return nil
}

// LD: Xd = mem[Xs1 + offset]
func (lsu *LoadStoreUnit) LD(rd, rs1 uint8, offset int64) error {
	addr := uint64(int64(lsu.regFile.ReadReg(rs1)) + offset)
	value, err := lsu.bus.Load(addr, 64)
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rd, value)
	return nil
}

// LBU: Xd = zext8(mem[Xs1 + offset])
func (lsu *LoadStoreUnit) LBU(rd, rs1 uint8, offset int64) error {
	addr := uint64(int64(lsu.regFile.ReadReg(rs1)) + offset)
	value, err := lsu.bus.Load(addr, 8)
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rd, value)
	return nil
}

// LHU: Xd = zext16(mem[Xs1 + offset])
func (lsu *LoadStoreUnit) LHU(rd, rs1 uint8, offset int64) error {
	addr := uint64(int64(lsu.regFile.ReadReg(rs1)) + offset)
	value, err := lsu.bus.Load(addr, 16)
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rd, value)
	return nil
}

// LWU: Xd = zext32(mem[Xs1 + offset])
func (lsu *LoadStoreUnit) LWU(rd, rs1 uint8, offset int64) error {
	addr := uint64(int64(lsu.regFile.ReadReg(rs1)) + offset)
	value, err := lsu.bus.Load(addr, 32)
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rd, value)
	return nil
}

// SB: mem[Xs1 + offset] = Xs2[7:0]
func (lsu *LoadStoreUnit) SB(rs1, rs2 uint8, offset int64) error {
	addr := uint64(int64(lsu.regFile.ReadReg(rs1)) + offset)
	return lsu.bus.Store(addr, 8, lsu.regFile.ReadReg(rs2))
}

// SH: mem[Xs1 + offset] = Xs2[15:0]
func (lsu *LoadStoreUnit) SH(rs1, rs2 uint8, offset int64) error {
	addr := uint64(int64(lsu.regFile.ReadReg(rs1)) + offset)
	return lsu.bus.Store(addr, 16, lsu.regFile.ReadReg(rs2))
}

// SW: mem[Xs1 + offset] = Xs2[31:0]
func (lsu *LoadStoreUnit) SW(rs1, rs2 uint8, offset int64) error {
	addr := uint64(int64(lsu.regFile.ReadReg(rs1)) + offset)
	return lsu.bus.Store(addr, 32, lsu.regFile.ReadReg(rs2))
}

// SD: mem[Xs1 + offset] = Xs2
func (lsu *LoadStoreUnit) SD(rs1, rs2 uint8, offset int64) error {
	addr := uint64(int64(lsu.regFile.ReadReg(rs1)) + offset)
	return lsu.bus.Store(addr, 64, lsu.regFile.ReadReg(rs2))
}
