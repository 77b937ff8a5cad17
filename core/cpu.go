// cpu.go - Fetch/decode/execute loop shared by both CPU variants

/*
cpu.go implements the interpreter described in spec.md §4.1: a two-entry
instruction prefetch buffer is kept current at all times; Step executes
the instruction at the head of the buffer, refetches its tail, and
returns the number of cycles the step consumed. A write to PC from
anywhere (branch, data-processing with PC as destination, a load into
PC) invalidates the buffer; the next Step call notices the buffer is
stale and refetches both slots before executing, exactly mirroring the
real pipeline's behaviour without literally modelling its three stages.

Both ARM and Thumb dispatch tables are built once at package
initialisation (buildARMTable/buildThumbTable in decoder_arm.go and
decoder_thumb.go), each entry a closure over the static bits its slot in
the table already encodes — the Go rendering of the original's
const-generic handler specialisation (spec.md §4.1, "encodes static
sub-opcode bits as specialised variants").

Grounded on original_source/core/src/hw/cpu/arm.rs and thumb.rs for
control flow shape; the IntuitionEngine teacher's per-chip Step()
contract (cycle-count return, no internal blocking) set the calling
convention.
*/

package core

// armHandler executes one decoded ARM instruction.
type armHandler func(cpu *CPU, instr uint32)

// thumbHandler executes one decoded Thumb instruction.
type thumbHandler func(cpu *CPU, instr uint16)

var armTable [4096]armHandler
var thumbTable [256]thumbHandler

func init() {
	armTable = buildARMTable()
	thumbTable = buildThumbTable()
}

// CPU is one of the two ARM-family interpreters. The advanced flag
// selects IRQ vector base (via cp15, when present), half-word load
// sign-extension availability, BX/BLX and coprocessor support.
type CPU struct {
	Regs
	advanced bool

	mem   *MemoryMap
	ic    *InterruptController
	cp15  *CP15 // nil on the weaker CPU
	sched *Scheduler

	condLUT [256]bool

	prefetch    [2]uint32
	prefetchPC  uint32 // address the buffer's slot 0 corresponds to
	bufferValid bool
	nextAccess  AccessType

	halted bool

	stepCycles uint32
}

// NewCPU wires a CPU to its own memory map and interrupt controller, and
// (on the advanced CPU) its coprocessor.
func NewCPU(advanced bool, mem *MemoryMap, ic *InterruptController, cp15 *CP15, sched *Scheduler) *CPU {
	return &CPU{
		advanced: advanced,
		mem:      mem,
		ic:       ic,
		cp15:     cp15,
		sched:    sched,
		condLUT:  buildConditionLUT(advanced),
	}
}

// Halted reports whether the CPU is parked awaiting an interrupt, either
// via the weaker CPU's HALT register or the advanced CPU's CP15 (7,0,4)
// command.
func (cpu *CPU) Halted() bool {
	if cpu.cp15 != nil && cpu.cp15.Halted() {
		return true
	}
	return cpu.halted
}

// Halt parks the weaker CPU (there is no coprocessor command on that
// side; it halts via a POWCNT/HALTCNT-style I/O write instead).
func (cpu *CPU) Halt() { cpu.halted = true }

// vectorBase returns the exception vector origin: CP15-controlled on the
// advanced CPU, fixed at zero on the weaker CPU.
func (cpu *CPU) vectorBase() uint32 {
	if cpu.cp15 != nil {
		return cpu.cp15.VectorBase()
	}
	return 0
}

// invalidatePrefetch marks the buffer stale; the next Step refetches
// both slots before executing, per spec.md §4.1's "invalidates the
// prefetch buffer; the interpreter refetches two instructions before the
// next execution step."
func (cpu *CPU) invalidatePrefetch() { cpu.bufferValid = false }

func (cpu *CPU) instrWidth() uint32 {
	if cpu.T() {
		return 2
	}
	return 4
}

// fillPrefetch refetches both slots starting at the current PC.
func (cpu *CPU) fillPrefetch() {
	pc := cpu.PC()
	w := cpu.instrWidth()
	if cpu.T() {
		v0, c0 := cpu.mem.Read16(pc)
		v1, c1 := cpu.mem.Read16(pc + w)
		cpu.prefetch[0], cpu.prefetch[1] = uint32(v0), uint32(v1)
		cpu.stepCycles += c0 + c1
	} else {
		v0, c0 := cpu.mem.Read32(pc)
		v1, c1 := cpu.mem.Read32(pc + w)
		cpu.prefetch[0], cpu.prefetch[1] = v0, v1
		cpu.stepCycles += c0 + c1
	}
	cpu.prefetchPC = pc
	cpu.bufferValid = true
}

// advancePrefetch slides slot 1 into slot 0 and fetches a new slot 1,
// called after an instruction executes without altering PC.
func (cpu *CPU) advancePrefetch() {
	w := cpu.instrWidth()
	cpu.prefetch[0] = cpu.prefetch[1]
	cpu.prefetchPC += w
	nextAddr := cpu.prefetchPC + w
	if cpu.T() {
		v, c := cpu.mem.Read16(nextAddr)
		cpu.prefetch[1] = uint32(v)
		cpu.stepCycles += c
	} else {
		v, c := cpu.mem.Read32(nextAddr)
		cpu.prefetch[1] = v
		cpu.stepCycles += c
	}
}

// ReadOperand returns the value register n contributes as an instruction
// operand: PC reads as the address of the currently executing
// instruction plus two instruction widths, per the documented
// "prefetch buffer always holds PC and PC+width" pipeline effect.
func (cpu *CPU) ReadOperand(n uint32) uint32 {
	if n == 15 {
		return cpu.prefetchPC + 2*cpu.instrWidth()
	}
	return cpu.Get(n)
}

// WritePC installs a new PC and invalidates the prefetch buffer, the one
// true entry point for every branch, PC-destination data-processing
// instruction, and PC-targeted load in both decoders.
func (cpu *CPU) WritePC(addr uint32) {
	if cpu.advanced && addr&1 != 0 {
		cpu.SetT(true)
		addr &^= 1
	} else if !cpu.T() {
		addr &^= 3
	} else {
		addr &^= 1
	}
	cpu.SetPC(addr)
	cpu.invalidatePrefetch()
}

// EnterIRQ implements spec.md §4.1's IRQ entry sequence.
func (cpu *CPU) EnterIRQ() {
	w := cpu.instrWidth()
	returnPC := cpu.prefetchPC + w + 4
	spsrValue := cpu.CPSR()
	cpu.ChangeMode(ModeIRQ)
	cpu.SetLR(returnPC)
	cpu.SetSPSR(spsrValue)
	cpu.SetI(true)
	cpu.SetT(false)
	cpu.SetPC(cpu.vectorBase() + 0x18)
	cpu.invalidatePrefetch()
}

// Step executes one instruction and returns the number of cycles it
// consumed, refilling or advancing the prefetch buffer as needed.
// Fatal conditions raise a CPUFault panic via raiseFault; Step never
// returns an error value.
func (cpu *CPU) Step() uint32 {
	cpu.stepCycles = 0

	// A halted CPU wakes on any enabled pending interrupt regardless of
	// IME (spec.md §3's "unconditionally for the nested case"); whether
	// it then also vectors to the handler is a separate question gated
	// on IME and the CPSR I bit, same as when running normally.
	if cpu.Halted() && cpu.ic.Requested(true) {
		cpu.halted = false
		if cpu.cp15 != nil && cpu.cp15.Halted() {
			cpu.cp15.Wake()
		}
	}
	if !cpu.I() && cpu.ic.Requested(false) {
		cpu.EnterIRQ()
	}
	if cpu.Halted() {
		if cpu.stepCycles == 0 {
			cpu.stepCycles = 1
		}
		return cpu.stepCycles
	}

	if !cpu.bufferValid {
		cpu.fillPrefetch()
	}

	instr := cpu.prefetch[0]
	preBufferPC := cpu.prefetchPC

	if cpu.T() {
		cpu.executeThumb(uint16(instr))
	} else {
		cpu.executeARM(instr)
	}

	// If the instruction didn't touch PC (buffer still valid and still
	// anchored at the instruction we just executed), slide the window
	// forward by one slot. Otherwise a branch/PC write already
	// invalidated the buffer and the next Step will refill it.
	if cpu.bufferValid && cpu.prefetchPC == preBufferPC {
		cpu.advancePrefetch()
	}

	if cpu.stepCycles == 0 {
		cpu.stepCycles = 1
	}
	return cpu.stepCycles
}

func (cpu *CPU) executeARM(instr uint32) {
	cond := instr >> 28
	flags := cpu.FlagsNibble()
	if !cpu.condLUT[flags<<4|cond] {
		return
	}
	idx := ((instr>>16)&0xFF0)|((instr>>4)&0xF)
	h := armTable[idx]
	if h == nil {
		raiseFault(cpu.advanced, cpu.prefetchPC, "undefined ARM instruction")
		return
	}
	h(cpu, instr)
}

func (cpu *CPU) executeThumb(instr uint16) {
	h := thumbTable[instr>>8]
	if h == nil {
		raiseFault(cpu.advanced, cpu.prefetchPC, "undefined Thumb instruction")
		return
	}
	h(cpu, instr)
}

// chargeExtra lets a handler add cycles beyond the fetch cost already
// folded into stepCycles (used by multi-word transfers, multiply
// latency, and branch pipeline-refill cost).
func (cpu *CPU) chargeExtra(cycles uint32) { cpu.stepCycles += cycles }

// memRead8/16/32 and memWrite8/16/32 route through the CPU's own memory
// map and fold the wait-state charge into the current step; handlers use
// these instead of calling cpu.mem directly so cycle accounting stays
// centralised.
func (cpu *CPU) memRead8(addr uint32) uint8 {
	v, c := cpu.mem.Read8(addr)
	cpu.stepCycles += c
	return v
}
func (cpu *CPU) memRead16(addr uint32) uint16 {
	v, c := cpu.mem.Read16(addr)
	cpu.stepCycles += c
	return v
}
func (cpu *CPU) memRead32(addr uint32) uint32 {
	v, c := cpu.mem.Read32(addr)
	cpu.stepCycles += c
	return v
}
func (cpu *CPU) memWrite8(addr uint32, v uint8) {
	cpu.stepCycles += cpu.mem.Write8(addr, v)
}
func (cpu *CPU) memWrite16(addr uint32, v uint16) {
	cpu.stepCycles += cpu.mem.Write16(addr, v)
}
func (cpu *CPU) memWrite32(addr uint32, v uint32) {
	cpu.stepCycles += cpu.mem.Write32(addr, v)
}
