package emu

// SystemUnit implements the Zicsr instructions. Each atomically reads
// the addressed CSR into rd, then conditionally writes it back: RW
// always writes; RS/RC (and their immediate forms) suppress the write
// when the operand mask itself is all zero — reading x0 always yields
// that, but so does any other register holding zero.
type SystemUnit struct {
	regFile *RegFile
	csr     *CSRFile
}

// NewSystemUnit creates a new SystemUnit connected to the given
// register file and CSR bank.
func NewSystemUnit(regFile *RegFile, csr *CSRFile) *SystemUnit {
	return &SystemUnit{regFile: regFile, csr: csr}
}

// CSRRW: Xd = CSR; CSR = Xs1.
func (s *SystemUnit) CSRRW(rd, rs1 uint8, addr uint16) {
	old := s.csr.Load(addr)
	s.csr.Store(addr, s.regFile.ReadReg(rs1))
	s.regFile.WriteReg(rd, old)
}

// CSRRS: Xd = CSR; CSR |= Xs1 (write suppressed when Xs1 == 0).
func (s *SystemUnit) CSRRS(rd, rs1 uint8, addr uint16) {
	old := s.csr.Load(addr)
	s.regFile.WriteReg(rd, old)
	if mask := s.regFile.ReadReg(rs1); mask != 0 {
		s.csr.Store(addr, old|mask)
	}
}

// CSRRC: Xd = CSR; CSR &^= Xs1 (write suppressed when Xs1 == 0).
func (s *SystemUnit) CSRRC(rd, rs1 uint8, addr uint16) {
	old := s.csr.Load(addr)
	s.regFile.WriteReg(rd, old)
	if mask := s.regFile.ReadReg(rs1); mask != 0 {
		s.csr.Store(addr, old&^mask)
	}
}

// CSRRWI: Xd = CSR; CSR = zimm.
func (s *SystemUnit) CSRRWI(rd uint8, zimm uint64, addr uint16) {
	old := s.csr.Load(addr)
	s.csr.Store(addr, zimm)
	s.regFile.WriteReg(rd, old)
}

// CSRRSI: Xd = CSR; CSR |= zimm (write suppressed when zimm == 0).
func (s *SystemUnit) CSRRSI(rd uint8, zimm uint64, addr uint16) {
	old := s.csr.Load(addr)
	s.regFile.WriteReg(rd, old)
	if zimm != 0 {
		s.csr.Store(addr, old|zimm)
	}
}

// CSRRCI: Xd = CSR; CSR &^= zimm (write suppressed when zimm == 0).
func (s *SystemUnit) CSRRCI(rd uint8, zimm uint64, addr uint16) {
	old := s.csr.Load(addr)
	s.regFile.WriteReg(rd, old)
	if zimm != 0 {
		s.csr.Store(addr, old&^zimm)
	}
}
