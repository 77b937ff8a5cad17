// decoder_arm.go - ARM-mode dispatch table and instruction handlers

/*
decoder_arm.go builds the 4096-entry ARM dispatch table described in
spec.md §4.1: each slot is keyed by bits [27:20] ++ [7:4] of the
instruction word, which is exactly the portion of the word available at
table-construction time (the remaining bits — Rn/Rd/Rm/Rs, register
lists, immediates — are read from the live instruction inside the
returned closure). buildARMTable therefore performs the classification
work once, up front, rather than on every Step call: each table entry
already knows its instruction class and any class-specific static flags
(S-bit, immediate-vs-register operand 2, byte-vs-word, up-vs-down,
pre-vs-post, writeback), and only decodes the dynamic operand fields at
execution time.

Condition-code testing happens before dispatch (CPU.executeARM), so every
handler here assumes its condition already passed.

Grounded on original_source/core/src/hw/cpu/arm.rs's instruction classes;
handler bodies follow the ALU/shifter contracts in alu.go directly.
*/

package core

func buildARMTable() [4096]armHandler {
	var t [4096]armHandler
	for key := 0; key < 4096; key++ {
		t[key] = classifyARM(uint32(key))
	}
	return t
}

func classifyARM(key uint32) armHandler {
	hi := (key >> 4) & 0xFF // bits [27:20]
	lo := key & 0xF         // bits [7:4]

	b27 := hi>>7&1 == 1
	b26 := hi>>6&1 == 1
	b25 := hi>>5&1 == 1
	b24 := hi>>4&1 == 1
	b23 := hi>>3&1 == 1
	b22 := hi>>2&1 == 1
	b21 := hi>>1&1 == 1
	b20 := hi&1 == 1

	switch {
	case !b27 && !b26:
		if !b25 && lo == 0x9 {
			if !b24 {
				return armMultiply(b21, b20)
			}
			if b23 {
				return armMultiplyLong(b22, b21, b20)
			}
		}
		if !b25 && b24 && !b23 && lo == 0x9 {
			return armSwap(b22)
		}
		if !b25 && lo&0x9 == 0x9 && lo != 0x9 {
			return armHalfwordTransfer(hi, lo)
		}
		if !b25 && hi&0xFB == 0x12 && lo == 0x1 {
			return armBranchExchange(false)
		}
		if !b25 && hi&0xFB == 0x12 && lo == 0x3 {
			return armBranchExchange(true)
		}
		if hi&0xF9 == 0x10 && !b20 {
			if !b21 {
				return armMRS(b22)
			}
			return armMSR(b22, b25, lo)
		}
		return armDataProcessing(hi, b25)
	case !b27 && b26:
		if b25 && lo&0x1 == 1 {
			return armUndefined()
		}
		return armSingleDataTransfer(hi, b25)
	case b27 && !b26:
		if !b25 {
			return armBlockDataTransfer(hi)
		}
		return armBranch(b24)
	default: // b27 && b26
		if !b25 {
			return armCoprocessorDataTransfer()
		}
		if !b24 {
			if lo&0x1 == 1 {
				return armCoprocessorRegisterTransfer(hi)
			}
			return armCoprocessorDataOp()
		}
		return armSoftwareInterrupt()
	}
}

// --- operand helpers -------------------------------------------------

// operand2Immediate decodes the rotated-immediate operand 2 used when
// bit 25 (I) is set.
func operand2Immediate(cpu *CPU, instr uint32, changeStatus bool) uint32 {
	imm := instr & 0xFF
	rotate := (instr >> 8) & 0xF * 2
	if rotate == 0 {
		return imm
	}
	result := rotr32(imm, rotate)
	if changeStatus {
		cpu.SetC(result&0x80000000 != 0)
	}
	return result
}

// operand2Register decodes the shifted-register operand 2 used when bit
// 25 is clear, handling both the immediate-shift-amount and the
// register-specified-shift-amount forms.
func operand2Register(cpu *CPU, instr uint32, changeStatus bool) uint32 {
	rm := instr & 0xF
	shiftKind := ShiftType((instr >> 5) & 0x3)
	byRegister := instr&0x10 != 0
	var rmVal uint32
	var shiftAmount uint32
	immediateForm := !byRegister
	if byRegister {
		rs := (instr >> 8) & 0xF
		shiftAmount = cpu.Get(rs) & 0xFF
		// A register whose value supplies the shift amount causes Rm==PC
		// to read as current instruction address + 12, one word further
		// than the usual +8, per the documented pipeline effect.
		if rm == 15 {
			rmVal = cpu.prefetchPC + 3*cpu.instrWidth()
		} else {
			rmVal = cpu.Get(rm)
		}
	} else {
		shiftAmount = (instr >> 7) & 0x1F
		rmVal = cpu.ReadOperand(rm)
	}
	return cpu.Shift(shiftKind, rmVal, shiftAmount, immediateForm, changeStatus)
}

// --- data processing ---------------------------------------------------

func armDataProcessing(hi uint32, immediate bool) armHandler {
	opcode := (hi >> 1) & 0xF
	s := hi&1 != 0
	return func(cpu *CPU, instr uint32) {
		rn := (instr >> 16) & 0xF
		rd := (instr >> 12) & 0xF

		var op2 uint32
		if immediate {
			op2 = operand2Immediate(cpu, instr, s)
		} else {
			op2 = operand2Register(cpu, instr, s)
		}
		op1 := cpu.ReadOperand(rn)

		var result uint32
		writesResult := true
		switch opcode {
		case 0x0: // AND
			result = op1 & op2
		case 0x1: // EOR
			result = op1 ^ op2
		case 0x2: // SUB
			result = cpu.Sub(op1, op2, s)
		case 0x3: // RSB
			result = cpu.Sub(op2, op1, s)
		case 0x4: // ADD
			result = cpu.Add(op1, op2, s)
		case 0x5: // ADC
			result = cpu.Adc(op1, op2, s)
		case 0x6: // SBC
			result = cpu.Sbc(op1, op2, s)
		case 0x7: // RSC
			result = cpu.Sbc(op2, op1, s)
		case 0x8: // TST
			result = op1 & op2
			writesResult = false
		case 0x9: // TEQ
			result = op1 ^ op2
			writesResult = false
		case 0xA: // CMP
			result = cpu.Sub(op1, op2, true)
			writesResult = false
		case 0xB: // CMN
			result = cpu.Add(op1, op2, true)
			writesResult = false
		case 0xC: // ORR
			result = op1 | op2
		case 0xD: // MOV
			result = op2
		case 0xE: // BIC
			result = op1 &^ op2
		case 0xF: // MVN
			result = ^op2
		}
		if !writesResult {
			if s {
				cpu.SetN(result&0x80000000 != 0)
				cpu.SetZ(result == 0)
			}
			return
		}
		if s {
			if rd == 15 {
				cpu.RestoreCPSR()
			} else {
				cpu.SetN(result&0x80000000 != 0)
				cpu.SetZ(result == 0)
			}
		}
		if rd == 15 {
			cpu.WritePC(result)
		} else {
			cpu.Set(rd, result)
		}
	}
}

// --- multiply ------------------------------------------------------------

func armMultiply(accumulate, s bool) armHandler {
	return func(cpu *CPU, instr uint32) {
		rd := (instr >> 16) & 0xF
		rn := (instr >> 12) & 0xF
		rs := (instr >> 8) & 0xF
		rm := instr & 0xF
		result := cpu.Get(rm) * cpu.Get(rs)
		if accumulate {
			result += cpu.Get(rn)
		}
		cpu.Set(rd, result)
		if s {
			cpu.SetN(result&0x80000000 != 0)
			cpu.SetZ(result == 0)
		}
		cpu.chargeExtra(mulCycles(cpu.Get(rs)))
	}
}

func armMultiplyLong(signed, accumulate, s bool) armHandler {
	return func(cpu *CPU, instr uint32) {
		rdHi := (instr >> 16) & 0xF
		rdLo := (instr >> 12) & 0xF
		rs := (instr >> 8) & 0xF
		rm := instr & 0xF
		var result uint64
		if signed {
			result = uint64(int64(int32(cpu.Get(rm))) * int64(int32(cpu.Get(rs))))
		} else {
			result = uint64(cpu.Get(rm)) * uint64(cpu.Get(rs))
		}
		if accumulate {
			result += uint64(cpu.Get(rdHi))<<32 | uint64(cpu.Get(rdLo))
		}
		cpu.Set(rdLo, uint32(result))
		cpu.Set(rdHi, uint32(result>>32))
		if s {
			cpu.SetN(result&0x8000000000000000 != 0)
			cpu.SetZ(result == 0)
		}
		cpu.chargeExtra(mulCycles(cpu.Get(rs)) + 1)
	}
}

// mulCycles approximates the documented early-termination multiply
// timing: fewer significant bytes in the multiplier cost fewer cycles.
func mulCycles(multiplier uint32) uint32 {
	switch {
	case multiplier&0xFFFFFF00 == 0 || multiplier&0xFFFFFF00 == 0xFFFFFF00:
		return 1
	case multiplier&0xFFFF0000 == 0 || multiplier&0xFFFF0000 == 0xFFFF0000:
		return 2
	case multiplier&0xFF000000 == 0 || multiplier&0xFF000000 == 0xFF000000:
		return 3
	default:
		return 4
	}
}

// --- single data swap ------------------------------------------------

func armSwap(byteSwap bool) armHandler {
	return func(cpu *CPU, instr uint32) {
		rn := (instr >> 16) & 0xF
		rd := (instr >> 12) & 0xF
		rm := instr & 0xF
		addr := cpu.Get(rn)
		if byteSwap {
			old := cpu.memRead8(addr)
			cpu.memWrite8(addr, uint8(cpu.Get(rm)))
			cpu.Set(rd, uint32(old))
		} else {
			old := cpu.memRead32(addr)
			cpu.memWrite32(addr, cpu.Get(rm))
			cpu.Set(rd, rotr32(old, 8*(addr&3)))
		}
		cpu.chargeExtra(1)
	}
}

// --- halfword / signed transfers -------------------------------------

func armHalfwordTransfer(hi, lo uint32) armHandler {
	load := hi&1 != 0
	immOffset := hi&(1<<2) != 0 // bit22
	up := hi&(1<<3) != 0        // bit23
	pre := hi&(1<<4) != 0       // bit24
	writeback := hi&(1<<1) != 0 // bit21 (ignored when pre==false, forced true)
	sh := lo & 0x6
	signed := sh&0x4 != 0
	halfword := sh&0x2 != 0
	return func(cpu *CPU, instr uint32) {
		rn := (instr >> 16) & 0xF
		rd := (instr >> 12) & 0xF
		var offset uint32
		if immOffset {
			offset = (instr>>4)&0xF0 | instr&0xF
		} else {
			offset = cpu.Get(instr & 0xF)
		}
		base := cpu.Get(rn)
		addr := base
		if pre {
			if up {
				addr = base + offset
			} else {
				addr = base - offset
			}
		}
		if load {
			var value uint32
			switch {
			case signed && halfword:
				v := cpu.memRead16(addr)
				value = uint32(int32(int16(v)))
			case signed && !halfword:
				v := cpu.memRead8(addr)
				value = uint32(int32(int8(v)))
			default:
				value = uint32(cpu.memRead16(addr))
			}
			if rd == 15 {
				cpu.WritePC(value)
			} else {
				cpu.Set(rd, value)
			}
			cpu.chargeExtra(1)
		} else {
			cpu.memWrite16(addr, uint16(cpu.Get(rd)))
		}
		if !pre {
			if up {
				addr = base + offset
			} else {
				addr = base - offset
			}
			cpu.Set(rn, addr)
		} else if writeback {
			cpu.Set(rn, addr)
		}
	}
}

// --- PSR transfer / branch-exchange -----------------------------------

func armMRS(toSPSR bool) armHandler {
	return func(cpu *CPU, instr uint32) {
		rd := (instr >> 12) & 0xF
		if toSPSR {
			cpu.Set(rd, cpu.SPSR())
		} else {
			cpu.Set(rd, cpu.CPSR())
		}
	}
}

func armMSR(toSPSR, immediate bool, lo uint32) armHandler {
	return func(cpu *CPU, instr uint32) {
		flagsOnly := instr&(1<<16) == 0
		var operand uint32
		if immediate {
			operand = operand2Immediate(cpu, instr, false)
		} else {
			operand = cpu.Get(instr & 0xF)
		}
		var mask uint32 = 0xFF000000
		if !flagsOnly {
			mask = 0xF00000FF
		}
		if toSPSR {
			cur := cpu.SPSR()
			cpu.SetSPSR(cur&^mask | operand&mask)
			return
		}
		if flagsOnly {
			cpu.SetCPSRRaw(cpu.CPSR()&^mask | operand&mask)
			return
		}
		newMode := Mode(operand & 0x1F)
		if newMode.valid() {
			cpu.SetMode(newMode)
		}
		cur := cpu.CPSR()
		cpu.SetCPSRRaw(cur&^mask | operand&mask)
	}
}

func armBranchExchange(link bool) armHandler {
	return func(cpu *CPU, instr uint32) {
		rm := instr & 0xF
		target := cpu.Get(rm)
		if link {
			cpu.SetLR(cpu.prefetchPC + cpu.instrWidth())
		}
		cpu.WritePC(target)
	}
}

// --- single data transfer ---------------------------------------------

func armSingleDataTransfer(hi uint32, registerOffset bool) armHandler {
	load := hi&1 != 0
	writeback := hi&(1<<1) != 0
	byteTransfer := hi&(1<<2) != 0
	up := hi&(1<<3) != 0
	pre := hi&(1<<4) != 0
	return func(cpu *CPU, instr uint32) {
		rn := (instr >> 16) & 0xF
		rd := (instr >> 12) & 0xF

		var offset uint32
		if registerOffset {
			offset = operand2Register(cpu, instr, false)
		} else {
			offset = instr & 0xFFF
		}

		base := cpu.Get(rn)
		addr := base
		if pre {
			if up {
				addr = base + offset
			} else {
				addr = base - offset
			}
		}
		if load {
			if byteTransfer {
				cpu.Set(rd, uint32(cpu.memRead8(addr)))
			} else {
				v := cpu.memRead32(addr)
				cpu.Set(rd, rotr32(v, 8*(addr&3)))
			}
			if rd == 15 {
				cpu.WritePC(cpu.Get(15))
			}
			cpu.chargeExtra(1)
		} else {
			storeVal := cpu.ReadOperand(rd)
			if byteTransfer {
				cpu.memWrite8(addr, uint8(storeVal))
			} else {
				cpu.memWrite32(addr, storeVal)
			}
		}
		if !pre {
			if up {
				addr = base + offset
			} else {
				addr = base - offset
			}
			if rn != 15 {
				cpu.Set(rn, addr)
			}
		} else if writeback && rn != 15 {
			cpu.Set(rn, addr)
		}
	}
}

// --- block data transfer -----------------------------------------------

func armBlockDataTransfer(hi uint32) armHandler {
	load := hi&1 != 0
	writeback := hi&(1<<1) != 0
	sBit := hi&(1<<2) != 0
	up := hi&(1<<3) != 0
	pre := hi&(1<<4) != 0
	return func(cpu *CPU, instr uint32) {
		rn := (instr >> 16) & 0xF
		list := instr & 0xFFFF
		base := cpu.Get(rn)

		count := 0
		for i := 0; i < 16; i++ {
			if list&(1<<uint(i)) != 0 {
				count++
			}
		}
		transferSize := uint32(count) * 4
		if count == 0 {
			transferSize = 0x40 // empty-list edge case: still transfers R15, offsets by 0x40
		}

		var start uint32
		if up {
			start = base
			if pre {
				start += 4
			}
		} else {
			start = base - transferSize
			if !pre {
				start += 4
			}
		}

		usrBank := sBit && (!load || list&(1<<15) == 0)
		addr := start
		if count == 0 {
			if load {
				v := cpu.memRead32(addr)
				cpu.WritePC(v)
			} else {
				cpu.memWrite32(addr, cpu.prefetchPC+cpu.instrWidth()*2)
			}
		} else {
			for i := 0; i < 16; i++ {
				if list&(1<<uint(i)) == 0 {
					continue
				}
				if load {
					v := cpu.memRead32(addr)
					if i == 15 {
						if sBit {
							cpu.RestoreCPSR()
						}
						cpu.WritePC(v)
					} else if usrBank {
						cpu.setUserModeRegister(uint32(i), v)
					} else {
						cpu.Set(uint32(i), v)
					}
				} else {
					var v uint32
					if usrBank {
						v = cpu.userModeRegister(uint32(i))
					} else if uint32(i) == rn {
						v = base
					} else {
						v = cpu.ReadOperand(uint32(i))
					}
					cpu.memWrite32(addr, v)
				}
				addr += 4
			}
		}

		if writeback {
			if up {
				cpu.Set(rn, base+transferSize)
			} else {
				cpu.Set(rn, base-transferSize)
			}
		}
		cpu.chargeExtra(1)
	}
}

// userModeRegister/setUserModeRegister give block-transfer S-bit access
// to the USR bank from a privileged mode without switching CPSR, per the
// documented "LDM/STM with S set and R15 absent from the list operate on
// the user-mode register bank" behaviour.
func (cpu *CPU) userModeRegister(n uint32) uint32 {
	if n < 8 || cpu.Mode() == ModeUSR || cpu.Mode() == ModeSYS {
		return cpu.Get(n)
	}
	m := cpu.Mode()
	cpu.SetMode(ModeUSR)
	v := cpu.Get(n)
	cpu.SetMode(m)
	return v
}

func (cpu *CPU) setUserModeRegister(n uint32, v uint32) {
	if n < 8 || cpu.Mode() == ModeUSR || cpu.Mode() == ModeSYS {
		cpu.Set(n, v)
		return
	}
	m := cpu.Mode()
	cpu.SetMode(ModeUSR)
	cpu.Set(n, v)
	cpu.SetMode(m)
}

// --- branch --------------------------------------------------------------

func armBranch(link bool) armHandler {
	return func(cpu *CPU, instr uint32) {
		offset := instr & 0xFFFFFF
		signExtended := int32(offset<<8) >> 8
		target := uint32(int32(cpu.prefetchPC+2*cpu.instrWidth()) + signExtended*4)
		if link {
			cpu.SetLR(cpu.prefetchPC + cpu.instrWidth())
		}
		cpu.WritePC(target)
	}
}

// --- coprocessor / software interrupt / undefined ----------------------

func armCoprocessorRegisterTransfer(hi uint32) armHandler {
	toCoprocessor := hi&1 == 0 // bit20 clear == MCR (ARM-to-coprocessor)
	return func(cpu *CPU, instr uint32) {
		cpNum := (instr >> 8) & 0xF
		if cpNum != 15 || cpu.cp15 == nil {
			raiseFault(cpu.advanced, cpu.prefetchPC, "coprocessor access unsupported on this CPU")
			return
		}
		cn := (instr >> 16) & 0xF
		cm := instr & 0xF
		cp := (instr >> 5) & 0x7
		rd := (instr >> 12) & 0xF
		if toCoprocessor {
			cpu.cp15.MCR(cpu.mem, cn, cm, cp, cpu.Get(rd))
		} else {
			v := cpu.cp15.MRC(cn, cm, cp)
			if rd == 15 {
				if v&0x80000000 != 0 {
					cpu.SetN(true)
				}
			} else {
				cpu.Set(rd, v)
			}
		}
	}
}

func armCoprocessorDataOp() armHandler {
	return func(cpu *CPU, instr uint32) {
		warnf("CDP coprocessor data operation ignored (no coprocessor performs data ops)")
	}
}

func armCoprocessorDataTransfer() armHandler {
	return func(cpu *CPU, instr uint32) {
		warnf("coprocessor data transfer (LDC/STC) ignored: out of scope")
	}
}

func armSoftwareInterrupt() armHandler {
	return func(cpu *CPU, instr uint32) {
		raiseFault(cpu.advanced, cpu.prefetchPC, "software interrupt (SWI) is fatal: no BIOS call table is emulated")
	}
}

func armUndefined() armHandler {
	return func(cpu *CPU, instr uint32) {
		raiseFault(cpu.advanced, cpu.prefetchPC, "undefined instruction encoding")
	}
}
