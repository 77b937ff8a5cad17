// cp15.go - System control coprocessor, advanced CPU only

/*
cp15.go implements the subset of the system control coprocessor the
advanced CPU exposes: the control register (with the vector-base-high
bit relocating the exception base between 0x00000000 and 0xFFFF0000),
ITCM/DTCM base+size configuration (size encoded as 0x200<<shift with
3<=shift<=23, per spec.md §4.2), the eight PU/AP protection-region word
pairs (stored verbatim, never interpreted — the protection unit itself
is a documented non-goal), and the cache-command register, whose (7,0,4)
write is "wait for interrupt": it halts the advanced CPU until an
interrupt becomes pending, ignoring IME exactly as the weaker CPU's
halt does.

Grounded on original_source/core/src/hw/mem/cp15.rs.
*/

package core

const (
	cp15ControlMask      uint32 = 0x000FF085
	cp15ControlAlwaysSet uint32 = 0x00000078
	cp15VectorBaseHigh   uint32 = 1 << 13
)

// CP15 is the advanced CPU's system control coprocessor.
type CP15 struct {
	control uint32

	itcmEnabled bool
	itcmBase    uint32
	itcmShift   uint32 // size = 0x200 << shift

	dtcmEnabled bool
	dtcmBase    uint32
	dtcmShift   uint32

	// Eight PU/AP protection-region configurations, stored but never
	// interpreted: the protection unit is a documented non-goal.
	// Index is cm; field is cp (0 = data, 1 = instruction).
	regions [8]struct{ data, instr uint32 }

	halted bool
}

// NewCP15 returns the coprocessor in its documented post-reset state.
func NewCP15() *CP15 {
	return &CP15{control: cp15ControlAlwaysSet}
}

// VectorBase returns the current exception vector base, selected by the
// control register's vector-base-high bit.
func (c *CP15) VectorBase() uint32 {
	if c.control&cp15VectorBaseHigh != 0 {
		return 0xFFFF_0000
	}
	return 0x0000_0000
}

// Halted reports whether a (7,0,4) cache command has parked the CPU
// waiting for an interrupt.
func (c *CP15) Halted() bool { return c.halted }

// Wake clears the halted flag; called once InterruptController.Requested
// reports true while CP15.halted is set (ignoring IME, same as the weaker
// CPU's own halt).
func (c *CP15) Wake() { c.halted = false }

// sizeFromShift implements the documented
// size = 0x200 << shift encoding for TCM regions.
func sizeFromShift(shift uint32) uint32 { return 0x200 << shift }

// MRC reads a coprocessor register identified by (cn, cm, cp). Only the
// registers spec.md §4.2 documents are implemented; anything else reads
// as zero (matching the original's permissive register file) rather than
// faulting, since CP15 misuse on the advanced CPU is not a fatal
// condition the spec calls out.
func (c *CP15) MRC(cn, cm, cp uint32) uint32 {
	switch {
	case cn == 1 && cm == 0 && cp == 0:
		return c.control
	case cn == 9 && cm == 1 && cp == 0:
		return c.dtcmBase | c.dtcmShift<<1
	case cn == 9 && cm == 1 && cp == 1:
		return c.itcmBase | c.itcmShift<<1
	default:
		return 0
	}
}

// MCR writes a coprocessor register, applying the control-register
// mask/always-set bits and the TCM base/shift encoding, and servicing the
// (7,0,4) wait-for-interrupt cache command. mm is the MemoryMap belonging
// to the same CPU, so a TCM configuration change can trigger the
// documented page-table rebuild.
func (c *CP15) MCR(mm *MemoryMap, cn, cm, cp, value uint32) {
	switch {
	case cn == 1 && cm == 0 && cp == 0:
		c.control = (value & cp15ControlMask) | cp15ControlAlwaysSet
		c.itcmEnabled = c.control&(1<<18) != 0
		c.dtcmEnabled = c.control&(1<<16) != 0
		mm.SetTCM(c.itcmEnabled, sizeFromShift(c.itcmShift), c.dtcmEnabled, c.dtcmBase, sizeFromShift(c.dtcmShift))
	case cn == 9 && cm == 1 && cp == 0:
		c.dtcmBase = value &^ 0xFFF
		c.dtcmShift = (value >> 1) & 0x1F
		if c.dtcmShift < 3 {
			c.dtcmShift = 3
		} else if c.dtcmShift > 23 {
			c.dtcmShift = 23
		}
		mm.SetTCM(c.itcmEnabled, sizeFromShift(c.itcmShift), c.dtcmEnabled, c.dtcmBase, sizeFromShift(c.dtcmShift))
	case cn == 9 && cm == 1 && cp == 1:
		c.itcmShift = (value >> 1) & 0x1F
		if c.itcmShift < 3 {
			c.itcmShift = 3
		} else if c.itcmShift > 23 {
			c.itcmShift = 23
		}
		mm.SetTCM(c.itcmEnabled, sizeFromShift(c.itcmShift), c.dtcmEnabled, c.dtcmBase, sizeFromShift(c.dtcmShift))
	case cn == 7 && cm == 0 && cp == 4:
		c.halted = true
	case cn >= 6 && cn <= 6:
		idx := cm
		if idx < 8 {
			switch cp {
			case 0:
				c.regions[idx].data = value
			case 1:
				c.regions[idx].instr = value
			}
		}
	default:
		// Cache-maintenance and other documented-as-no-op commands:
		// the core has no data cache to flush.
	}
}
