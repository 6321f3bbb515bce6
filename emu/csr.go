package emu

// CSR addresses used by this hart. Only the machine- and
// supervisor-level registers needed for Zicsr and the trap pipeline are
// named; the rest of the 4096-entry bank is addressable but unused.
const (
	CSRSstatus = 0x100
	CSRSie     = 0x104
	CSRStvec   = 0x105
	CSRSepc    = 0x141
	CSRScause  = 0x142
	CSRStval   = 0x143
	CSRSip     = 0x144

	CSRMstatus = 0x300
	CSRMedeleg = 0x302
	CSRMideleg = 0x303
	CSRMie     = 0x304
	CSRMtvec   = 0x305
	CSRMepc    = 0x341
	CSRMcause  = 0x342
	CSRMtval   = 0x343
	CSRMip     = 0x344
)

// sstatusMask selects the bits of MSTATUS that are visible through the
// SSTATUS alias.
const sstatusMask uint64 = (1 << 1) | // SIE
	(1 << 5) | // SPIE
	(1 << 6) | // UBE
	(1 << 8) | // SPP
	(0b11 << 13) | // FS
	(0b11 << 15) | // XS
	(1 << 18) | // SUM
	(1 << 19) | // MXR
	(0b11 << 32) | // UXL
	(1 << 63) // SD

// CSRFile is a flat bank of 4096 machine words. SSTATUS, SIE, and SIP
// are aliases of a masked subset of MSTATUS, MIE, and MIP respectively,
// matching the RISC-V privileged architecture's supervisor view of
// machine-level state.
type CSRFile struct {
	regs [4096]uint64
}

// Load reads a CSR by address, resolving the supervisor aliases.
func (c *CSRFile) Load(addr uint16) uint64 {
	switch addr {
	case CSRSstatus:
		return c.regs[CSRMstatus] & sstatusMask
	case CSRSie:
		return c.regs[CSRMie] & c.regs[CSRMideleg]
	case CSRSip:
		return c.regs[CSRMip] & c.regs[CSRMideleg]
	default:
		return c.regs[addr]
	}
}

// Store writes a CSR by address, resolving the supervisor aliases so
// that a supervisor-level write only touches the bits it's entitled to.
func (c *CSRFile) Store(addr uint16, value uint64) {
	switch addr {
	case CSRSstatus:
		c.regs[CSRMstatus] = (c.regs[CSRMstatus] &^ sstatusMask) | (value & sstatusMask)
	case CSRSie:
		mideleg := c.regs[CSRMideleg]
		c.regs[CSRMie] = (c.regs[CSRMie] &^ mideleg) | (value & mideleg)
	case CSRSip:
		mideleg := c.regs[CSRMideleg]
		c.regs[CSRMip] = (c.regs[CSRMip] &^ mideleg) | (value & mideleg)
	default:
		c.regs[addr] = value
	}
}
