// registers.go - Banked register file shared by the ARM9 and ARM7 cores

/*
registers.go implements the per-CPU register file described by the data
model: sixteen general registers with banked alternates for five of the
seven processor modes (FIQ banks R8-R14, SVC/ABT/IRQ/UND bank R13-R14
only; USR and SYS share the same bank) plus the current and saved program
status words.

The banking model is a struct-of-arrays indexed by mode, not an
inheritance hierarchy: SaveBanked/LoadBanked copy between the live
r[0..16] array and the per-mode bank arrays on every mode transition, as
spec.md's design notes (section 9) call for.
*/

package core

// Mode is the five low bits of the status word.
type Mode uint32

const (
	ModeUSR Mode = 0x10
	ModeFIQ Mode = 0x11
	ModeIRQ Mode = 0x12
	ModeSVC Mode = 0x13
	ModeABT Mode = 0x17
	ModeUND Mode = 0x1B
	ModeSYS Mode = 0x1F
)

func (m Mode) valid() bool {
	switch m {
	case ModeUSR, ModeFIQ, ModeIRQ, ModeSVC, ModeABT, ModeUND, ModeSYS:
		return true
	default:
		return false
	}
}

// Status word bit positions.
const (
	flagN = 1 << 31
	flagZ = 1 << 30
	flagC = 1 << 29
	flagV = 1 << 28
	flagQ = 1 << 27
	flagI = 1 << 7
	flagF = 1 << 6
	flagT = 1 << 5
)

// bankedMode indexes the spsr/abt/und/svc/irq bank arrays; USR/SYS have no
// SPSR and are excluded from this enumeration.
type bankedMode int

const (
	bankFIQ bankedMode = iota
	bankSVC
	bankABT
	bankIRQ
	bankUND
	bankCount
)

func bankedModeOf(m Mode) (bankedMode, bool) {
	switch m {
	case ModeFIQ:
		return bankFIQ, true
	case ModeSVC:
		return bankSVC, true
	case ModeABT:
		return bankABT, true
	case ModeIRQ:
		return bankIRQ, true
	case ModeUND:
		return bankUND, true
	default:
		return 0, false
	}
}

// Regs is the banked register file for one CPU.
type Regs struct {
	r    [16]uint32
	usr  [7]uint32 // R8-R14, used by USR and SYS
	fiq  [7]uint32 // R8-R14
	svc  [2]uint32 // R13-R14
	abt  [2]uint32
	irq  [2]uint32
	und  [2]uint32
	cpsr uint32
	spsr [bankCount]uint32
}

// Reset puts the register file into the documented BIOS-boot state: SYS
// mode, all registers zero, PC at the given reset vector.
func (r *Regs) Reset(resetVector uint32) {
	*r = Regs{}
	r.cpsr = uint32(ModeSYS)
	r.r[15] = resetVector
}

// DirectBoot seeds the register file for a direct-boot cartridge launch,
// per spec.md §6 / original_source direct-boot register values.
func (r *Regs) DirectBoot(entry, sp, spIRQ, spSVC uint32) {
	*r = Regs{}
	r.cpsr = uint32(ModeSYS)
	r.r[12] = entry
	r.r[13] = sp
	r.r[15] = entry
	r.irq[0] = spIRQ
	r.svc[0] = spSVC
	r.svc[1] = entry
}

func (r *Regs) PC() uint32      { return r.r[15] }
func (r *Regs) SetPC(v uint32)  { r.r[15] = v }
func (r *Regs) SP() uint32      { return r.r[13] }
func (r *Regs) SetSP(v uint32)  { r.r[13] = v }
func (r *Regs) LR() uint32      { return r.r[14] }
func (r *Regs) SetLR(v uint32)  { r.r[14] = v }
func (r *Regs) Get(n uint32) uint32     { return r.r[n] }
func (r *Regs) Set(n uint32, v uint32)  { r.r[n] = v }

func (r *Regs) CPSR() uint32     { return r.cpsr }
func (r *Regs) SetCPSRRaw(v uint32) { r.cpsr = v }

func (r *Regs) Mode() Mode { return Mode(r.cpsr & 0x1F) }

func (r *Regs) N() bool { return r.cpsr&flagN != 0 }
func (r *Regs) Z() bool { return r.cpsr&flagZ != 0 }
func (r *Regs) C() bool { return r.cpsr&flagC != 0 }
func (r *Regs) V() bool { return r.cpsr&flagV != 0 }
func (r *Regs) Q() bool { return r.cpsr&flagQ != 0 }
func (r *Regs) I() bool { return r.cpsr&flagI != 0 }
func (r *Regs) F() bool { return r.cpsr&flagF != 0 }
func (r *Regs) T() bool { return r.cpsr&flagT != 0 }

func setFlag(cpsr *uint32, bit uint32, set bool) {
	if set {
		*cpsr |= bit
	} else {
		*cpsr &^= bit
	}
}

func (r *Regs) SetN(v bool) { setFlag(&r.cpsr, flagN, v) }
func (r *Regs) SetZ(v bool) { setFlag(&r.cpsr, flagZ, v) }
func (r *Regs) SetC(v bool) { setFlag(&r.cpsr, flagC, v) }
func (r *Regs) SetV(v bool) { setFlag(&r.cpsr, flagV, v) }
func (r *Regs) SetQ(v bool) { setFlag(&r.cpsr, flagQ, v) }
func (r *Regs) SetI(v bool) { setFlag(&r.cpsr, flagI, v) }
func (r *Regs) SetF(v bool) { setFlag(&r.cpsr, flagF, v) }
func (r *Regs) SetT(v bool) { setFlag(&r.cpsr, flagT, v) }

// FlagsNibble returns the top 4 bits of the status word (N,Z,C,V), used to
// index the 256-entry condition lookup table.
func (r *Regs) FlagsNibble() uint32 { return r.cpsr >> 28 }

// SaveBanked copies r[8..15) (or r[13..15) for non-FIQ banks) into the
// outgoing mode's bank. Must be called before changing the mode bits.
func (r *Regs) SaveBanked() {
	switch r.Mode() {
	case ModeUSR, ModeSYS:
		copy(r.usr[:], r.r[8:15])
	case ModeFIQ:
		copy(r.fiq[:], r.r[8:15])
	case ModeSVC:
		copy(r.svc[:], r.r[13:15])
	case ModeABT:
		copy(r.abt[:], r.r[13:15])
	case ModeIRQ:
		copy(r.irq[:], r.r[13:15])
	case ModeUND:
		copy(r.und[:], r.r[13:15])
	}
}

// LoadBanked installs the named mode's bank into r[8..15) / r[13..15).
// The mode bits of cpsr must already reflect the target mode.
func (r *Regs) LoadBanked(m Mode) {
	switch m {
	case ModeUSR, ModeSYS:
		copy(r.r[8:15], r.usr[:])
	case ModeFIQ:
		copy(r.r[8:15], r.fiq[:])
	case ModeSVC:
		copy(r.r[13:15], r.svc[:])
	case ModeABT:
		copy(r.r[13:15], r.abt[:])
	case ModeIRQ:
		copy(r.r[13:15], r.irq[:])
	case ModeUND:
		copy(r.r[13:15], r.und[:])
	}
}

// ChangeMode switches mode, banking registers, and stashes the outgoing
// CPSR into the incoming mode's SPSR (used on exception entry).
func (r *Regs) ChangeMode(m Mode) {
	r.SaveBanked()
	old := r.cpsr
	r.cpsr = r.cpsr&^0x1F | uint32(m)
	r.LoadBanked(m)
	if bi, ok := bankedModeOf(m); ok {
		r.spsr[bi] = old
	}
}

// SetMode switches mode and banks registers without touching any SPSR
// (used by MSR writes to CPSR's mode field).
func (r *Regs) SetMode(m Mode) {
	r.SaveBanked()
	r.cpsr = r.cpsr&^0x1F | uint32(m)
	r.LoadBanked(m)
}

// SPSR returns the saved status word of the current mode. In USR/SYS mode
// (which has no SPSR) it returns CPSR, matching the documented
// "ignored" behaviour for those two modes.
func (r *Regs) SPSR() uint32 {
	if bi, ok := bankedModeOf(r.Mode()); ok {
		return r.spsr[bi]
	}
	return r.cpsr
}

// SetSPSR writes the saved status word of the current mode; a write while
// in USR/SYS mode is silently ignored per spec.md §4.1.
func (r *Regs) SetSPSR(v uint32) {
	if bi, ok := bankedModeOf(r.Mode()); ok {
		r.spsr[bi] = v
	}
}

// RestoreCPSR copies SPSR back into CPSR and re-banks registers for
// whatever mode that SPSR encodes (used by the "S" variant of BX/data
// processing with PC as destination, i.e. return-from-exception).
func (r *Regs) RestoreCPSR() {
	saved := r.SPSR()
	r.SaveBanked()
	r.cpsr = saved
	r.LoadBanked(r.Mode())
}
