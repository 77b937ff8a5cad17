// console.go - Top-level driver: construction, direct boot, and the frame loop

/*
console.go wires every peripheral built elsewhere in this package into
one Console and implements the two things nothing else owns: how a ROM
gets from "just inserted" to "both CPUs executing game code" (direct
boot, spec.md §6), and how wall-clock progress is actually made one
frame at a time (the budget-clipped CPU interleave, spec.md §4.8).

The interleave never lets either CPU run more than a small clipped
budget of cycles ahead of the scheduler's next due event, so a DMA or
timer scheduled mid-burst is never missed by more than that budget's
worth of drift; the advanced CPU runs at twice the weaker CPU's rate,
matching the real clock ratio. Console also implements IOHandler, the
seam MemoryMap calls back through for every address in the 0x04000000
window: it does nothing but demultiplex byte addresses to the owning
peripheral's own byte-addressable register methods.

Grounded on original_source/core/src/nds.rs (the run_frame loop) and
hw/cartridge/mod.rs (direct-boot register seeding).
*/

package core

// maxCyclesPerBudget bounds how far either CPU may run ahead of the
// scheduler's next due event in one interleave step, per spec.md §4.8.
const maxCyclesPerBudget = 30

// cyclesPerScanline/hblankOffset are weaker-CPU-domain cycle counts (the
// scheduler's shared unit) for one scanline's draw-then-blank period and
// the point within it hblank starts, matching the documented 2130
// cycles/line, 1536 of them the visible draw period.
const (
	cyclesPerScanline = 2130
	hblankOffset      = 1536
)

// Console is one running NDS session: both CPUs, the peripherals they
// share, and the peripherals each owns privately.
type Console struct {
	sched *Scheduler

	cpu9 *CPU
	cpu7 *CPU
	mem9 *MemoryMap
	mem7 *MemoryMap
	ic9  *InterruptController
	ic7  *InterruptController
	cp15 *CP15

	vram *VRAM

	engineA *Engine2D
	engineB *Engine2D
	gx      *GeometryEngine

	timers9 *TimerBlock
	timers7 *TimerBlock
	dma9    *DMAController
	dma7    *DMAController

	ipc    *IPC
	keypad *Keypad
	spi    *SPI
	rtc    *RTC

	cart *Cartridge
	spu  *SPU
	ram  []byte

	vramcnt [vramBankCount]byte
	wramcnt byte
	powcnt1 uint16

	ipcSendAccum [2]uint32
	gxAccum      uint32

	Audio *AudioRing

	vcount        int
	frameRendered bool
}

// NewConsole validates the supplied images, constructs every peripheral,
// and leaves the console ready for Boot. Both CPUs' memory maps are
// built before anything reads them so cross-CPU-visible backing stores
// (main RAM, shared WRAM, VRAM, palette) are shared slices, not copies.
func NewConsole(bios9, bios7, firmware, rom, saveImage []byte) (*Console, error) {
	if len(bios9) != 16*1024 {
		return nil, &ConfigError{Reason: "ARM9 BIOS must be exactly 16KiB"}
	}
	if len(bios7) != 16*1024 {
		return nil, &ConfigError{Reason: "ARM7 BIOS must be exactly 16KiB"}
	}
	if len(firmware) != 128*1024 && len(firmware) != 256*1024 {
		return nil, &ConfigError{Reason: "firmware image must be 128KiB or 256KiB"}
	}
	cart, err := NewCartridge(rom, saveImage)
	if err != nil {
		return nil, err
	}

	c := &Console{sched: NewScheduler()}

	c.ic9 = &InterruptController{}
	c.ic7 = &InterruptController{}
	c.cp15 = NewCP15()
	c.vram = NewVRAM()

	c.ram = make([]byte, 4*1024*1024)
	sharedWRAM := make([]byte, 32*1024)
	arm7WRAM := make([]byte, 64*1024)

	c.mem9 = NewMemoryMap(true, c, c.ram, sharedWRAM, arm7WRAM, bios9, bios7, c.vram)
	c.mem7 = NewMemoryMap(false, c, c.ram, sharedWRAM, arm7WRAM, bios9, bios7, c.vram)

	c.cpu9 = NewCPU(true, c.mem9, c.ic9, c.cp15, c.sched)
	c.cpu7 = NewCPU(false, c.mem7, c.ic7, nil, c.sched)

	c.engineA = NewEngine2D(true, c.vram, c.mem9.paletteBGA[:], c.mem9.paletteOBJA[:], c.mem9.oamA[:])
	c.engineB = NewEngine2D(false, c.vram, c.mem9.paletteBGB[:], c.mem9.paletteOBJB[:], c.mem9.oamB[:])
	c.gx = NewGeometryEngine(c.sched, c.ic9)

	c.timers9 = NewTimerBlock(true, c.sched, c.ic9)
	c.timers7 = NewTimerBlock(false, c.sched, c.ic7)
	c.dma9 = NewDMAController(true, c.mem9, c.ic9, c.sched)
	c.dma7 = NewDMAController(false, c.mem7, c.ic7, c.sched)

	c.ipc = NewIPC(c.ic7, c.ic9)
	c.keypad = NewKeypad()
	c.rtc = NewRTC(26, 7, 30, 4, 12, 0, 0)
	c.spi = NewSPI(firmware, c.rtc)

	c.cart = cart
	c.cart.attach(c.sched, c.ic7, c.dma9, c.dma7)
	c.Audio = NewAudioRing()
	c.spu = NewSPU(c.sched, c.Audio)

	c.startScanlineLoop()

	return c, nil
}

// startScanlineLoop schedules the two self-rescheduling event chains
// that drive display timing: one firing at each line's hblank point, one
// firing at each line's end (which also advances vcount and triggers the
// vblank-start notifications at line 192), per spec.md §4.5's documented
// hblank/vblank/next-scanline tags.
func (c *Console) startScanlineLoop() {
	var recurHBlank func()
	recurHBlank = func() {
		c.sched.Schedule(EventHBlankStart, EventPayload{}, cyclesPerScanline, func(EventPayload) {
			c.onHBlankStart()
			recurHBlank()
		})
	}
	var recurNextLine func()
	recurNextLine = func() {
		c.sched.Schedule(EventNextScanline, EventPayload{}, cyclesPerScanline, func(EventPayload) {
			c.onNextScanline()
			recurNextLine()
		})
	}
	c.sched.Schedule(EventHBlankStart, EventPayload{}, hblankOffset, func(EventPayload) {
		c.onHBlankStart()
		recurHBlank()
	})
	recurNextLine()
}

// Boot performs the documented direct-boot sequence: copy each CPU's
// program image from the ROM to its RAM load address, then seed both
// register files to start executing there, bypassing the firmware's own
// bootstrap (spec.md §6).
func (c *Console) Boot() {
	h := c.cart.Header

	dst9 := c.ramSlice(h.ARM9RamAddr, h.ARM9Size)
	c.cart.LoadARM9(dst9)
	dst7 := c.ramSlice(h.ARM7RamAddr, h.ARM7Size)
	c.cart.LoadARM7(dst7)

	const stackUsr = 0x0380_FF00
	const stackIRQ = 0x0380_FFA0
	const stackSVC = 0x0380_FFC0
	c.cpu9.DirectBoot(h.ARM9EntryAddr, stackUsr, stackIRQ, stackSVC)
	c.cpu7.DirectBoot(h.ARM7EntryAddr, stackUsr, stackIRQ, stackSVC)
}

// ramSlice returns the main-RAM window a RAM address/size pair names,
// clamped to the backing store's bounds.
func (c *Console) ramSlice(addr, size uint32) []byte {
	off := addr & uint32(len(c.ram)-1)
	end := off + size
	if int(end) > len(c.ram) {
		end = uint32(len(c.ram))
	}
	if off >= end {
		return nil
	}
	return c.ram[off:end]
}

// RunFrame advances emulation until one full frame (vblank start through
// the next vblank start) has been rendered, recovering a CPUFault as a
// returned error per the documented fatal-runtime-error taxonomy
// (spec.md §7). It never returns a nil *CPUFault disguised as a non-nil
// error: a genuine non-fault panic is allowed to propagate.
func (c *Console) RunFrame() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if fault, ok := r.(*CPUFault); ok {
				err = fault
				return
			}
			panic(r)
		}
	}()

	c.frameRendered = false
	for !c.frameRendered {
		c.step()
	}
	return nil
}

// step implements one iteration of the spec.md §4.8 interleave: clip a
// budget to the next due event, advance the advanced CPU by 2x that
// budget and the weaker CPU by 1x, then let the scheduler catch up to
// the new current cycle.
func (c *Console) step() {
	budget := uint64(maxCyclesPerBudget)
	if next, ok := c.sched.NextEventCycle(); ok {
		if next <= c.sched.Cycle {
			c.sched.RunUntil(c.sched.Cycle)
			return
		}
		if due := next - c.sched.Cycle; due < budget {
			budget = due
		}
	}
	if budget == 0 {
		budget = 1
	}

	c.runCPUCycles(c.cpu9, 2*budget)
	c.runCPUCycles(c.cpu7, budget)

	c.sched.RunUntil(c.sched.Cycle + budget)
}

// runCPUCycles steps a CPU until it has consumed at least the given
// number of cycles, honouring the documented "DMA stalls the bus" shortcut:
// the driver never has to single-step through an active DMA burst since
// dma.go's run executes a transfer as one scheduler-driven unit, so a
// CPU with a pending DMA simply has nothing scheduled to interleave with
// until the burst's completion event fires.
func (c *Console) runCPUCycles(cpu *CPU, cycles uint64) {
	var spent uint64
	for spent < cycles {
		spent += uint64(cpu.Step())
	}
}

// onVBlankStart is called once per frame, at the start of line 192: it
// latches both engines' affine reference points, notifies both DMA
// controllers of the vblank start condition, raises the vblank IRQ on
// whichever CPU has it enabled, and marks the frame complete for RunFrame.
func (c *Console) onVBlankStart() {
	c.engineA.LatchAffine()
	c.engineB.LatchAffine()
	c.dma9.Notify(DMAVBlank)
	c.dma7.Notify(DMAVBlank)
	c.ic9.Raise(IRQVBlank)
	c.ic7.Raise(IRQVBlank)
	c.frameRendered = true
}

// onHBlankStart renders the just-finished visible line (if any), notifies
// both DMA controllers, and raises the hblank IRQ.
func (c *Console) onHBlankStart() {
	if c.vcount < screenHeight {
		c.engineA.RenderScanline(c.vcount)
		c.engineB.RenderScanline(c.vcount)
	}
	c.dma9.Notify(DMAHBlank)
	c.dma7.Notify(DMAHBlank)
	c.ic9.Raise(IRQHBlank)
	c.ic7.Raise(IRQHBlank)
}

// onNextScanline advances vcount, wrapping at the documented 263-line
// total, and calls onVBlankStart when vcount reaches line 192; hblank
// notifications come from the separate hblank event chain.
func (c *Console) onNextScanline() {
	c.vcount++
	if c.vcount >= 263 {
		c.vcount = 0
	}
	if c.vcount == screenHeight {
		c.onVBlankStart()
	}
}

// SetKey/PressScreen/ReleaseScreen forward per-frame input to the
// peripherals that own it, per spec.md §6's documented per-frame inputs.
func (c *Console) SetKey(k Key, held bool) {
	c.keypad.SetKey(k, held)
	c.checkKeypadIRQ()
}

// checkKeypadIRQ re-evaluates KEYCNT's AND/OR condition and raises the
// keypad interrupt on both CPUs' own controllers if satisfied, mirroring
// the documented shared-register/per-CPU-IE split every other
// cross-domain IRQ in this core (vblank, hblank, IPC) already follows.
func (c *Console) checkKeypadIRQ() {
	if c.keypad.InterruptRequested() {
		c.ic9.Raise(IRQKeypad)
		c.ic7.Raise(IRQKeypad)
	}
}
func (c *Console) PressScreen(x, y int)    { c.spi.touchscreen.PressScreen(x, y) }
func (c *Console) ReleaseScreen()          { c.spi.touchscreen.ReleaseScreen() }

// FramebufferA/FramebufferB return the two engines' completed frames;
// the caller selects which is "top"/"bottom" per the display-swap bit in
// POWCNT1, per spec.md §6's documented per-frame outputs.
func (c *Console) FramebufferA() *[screenWidth * screenHeight]uint16 { return &c.engineA.Framebuffer }
func (c *Console) FramebufferB() *[screenWidth * screenHeight]uint16 { return &c.engineB.Framebuffer }
func (c *Console) DisplaySwapped() bool                              { return c.powcnt1&(1<<15) != 0 }

// ReadIO8/WriteIO8 implement IOHandler: every 0x04000000-window access
// that misses the page-table fast path arrives here, one byte at a time.
// The advanced flag selects which CPU's own private view of the shared
// peripherals (IE/IF/IME, timers, DMA, its half of IPC) is addressed.
// Both 2D engines' register blocks sit at their documented offsets
// (engine A at 0x000, engine B at 0x1000) and are reachable only from
// the advanced CPU; this core's 3D/sound address swap puts the sound
// channel registers at 0x400-0x4FF on the advanced side (where the
// real chip has no second-engine registers of its own) and the
// geometry FIFO, cartridge command interface, and general SPI bus on
// the weaker CPU, following the original's ARM7-owns-SPI/cartridge
// assignment.
func (c *Console) ReadIO8(advanced bool, addr uint32) byte {
	ic, timers, dma := c.peripheralsFor(advanced)
	reg24 := addr & 0x00FF_FFFF

	if reg24>>16 == 0x10 { // IPCFIFORECV / GAMECARD DATA mirror, 0x04100000+
		if off := addr & 0x1F; off >= 0x10 && off < 0x14 {
			return readByteOf(c.cart.ReadData(), int(off-0x10))
		}
		return readByteOf(c.ipc.Recv(advanced), int(addr&3))
	}

	reg := reg24 & 0xFFF
	switch {
	case reg == 0x006:
		return byte(c.vcount)
	case reg == 0x007:
		return byte(c.vcount >> 8)
	case reg >= 0x0B0 && reg < 0x0E0:
		return c.dmaReadByte(dma, reg-0x0B0)
	case reg >= 0x100 && reg < 0x110:
		return timers.ReadByte(int(reg-0x100)/4, int(reg-0x100)%4)
	case reg == 0x130:
		return c.keypad.ReadKeyInput(0)
	case reg == 0x131:
		return c.keypad.ReadKeyInput(1)
	case reg == 0x132:
		return c.keypad.ReadKeyCnt(0)
	case reg == 0x133:
		return c.keypad.ReadKeyCnt(1)
	case reg == 0x136:
		return c.keypad.ReadExtKeyIn(0)
	case reg == 0x180, reg == 0x181:
		return c.ipc.ReadSync(advanced, int(reg-0x180))
	case reg == 0x184, reg == 0x185:
		return c.ipc.ReadFIFOCNT(advanced, int(reg-0x184))
	case reg == 0x200, reg == 0x201:
		return ic.ReadIE(int(reg - 0x200))
	case reg == 0x202, reg == 0x203:
		return ic.ReadIF(int(reg - 0x202))
	case reg >= 0x208 && reg < 0x20C:
		return ic.ReadIME(int(reg - 0x208))
	case !advanced && reg >= 0x1A0 && reg < 0x1A2:
		return c.spi.ReadCNT(int(reg - 0x1A0))
	case !advanced && reg == 0x1A2:
		return c.spi.ReadData()
	case !advanced && reg >= 0x1A4 && reg < 0x1A8:
		return c.cart.ReadROMCTRL(int(reg - 0x1A4))
	case !advanced && reg >= 0x1A8 && reg < 0x1B0:
		return c.cart.ReadCommand(int(reg - 0x1A8))
	case !advanced && reg >= 0x1B0 && reg < 0x1B2:
		return c.cart.ReadSPICNT(int(reg - 0x1B0))
	case !advanced && reg == 0x1B2:
		return c.cart.ReadSPIData()
	case advanced && reg == 0x204:
		return c.wramcnt
	case advanced && reg >= 0x240 && reg < 0x249:
		return c.vramcnt[reg-0x240]
	case advanced && (reg == 0x304 || reg == 0x305):
		return byte(c.powcnt1 >> uint(8*(reg-0x304)))
	case !advanced && reg >= 0x400 && reg < 0x404:
		return c.gx.ReadStatus(int(reg - 0x400))
	case advanced && reg24 >= 0x400 && reg24 < 0x500:
		return c.spu.ReadByte(reg24 - 0x400)
	case advanced && reg24 < 0x1000:
		return c.readEngine(c.engineA, reg)
	case advanced && reg24 >= 0x1000 && reg24 < 0x2000:
		return c.readEngine(c.engineB, reg24-0x1000)
	default:
		return 0
	}
}

func (c *Console) WriteIO8(advanced bool, addr uint32, v byte) {
	ic, timers, dma := c.peripheralsFor(advanced)
	reg24 := addr & 0x00FF_FFFF

	if reg24>>16 == 0x10 {
		return // IPCFIFORECV mirror is read-only
	}

	reg := reg24 & 0xFFF
	switch {
	case reg >= 0x0B0 && reg < 0x0E0:
		c.dmaWriteByte(dma, reg-0x0B0, v)
	case reg >= 0x100 && reg < 0x110:
		timers.WriteByte(int(reg-0x100)/4, int(reg-0x100)%4, v)
	case reg == 0x132:
		c.keypad.WriteKeyCnt(0, v)
		c.checkKeypadIRQ()
	case reg == 0x133:
		c.keypad.WriteKeyCnt(1, v)
		c.checkKeypadIRQ()
	case reg == 0x180, reg == 0x181:
		c.ipc.WriteSync(advanced, int(reg-0x180), v)
	case reg == 0x184, reg == 0x185:
		c.ipc.WriteFIFOCNT(advanced, int(reg-0x184), v)
	case reg >= 0x188 && reg < 0x18C:
		c.ipcSendByte(advanced, reg-0x188, v)
	case reg == 0x200, reg == 0x201:
		ic.WriteIE(int(reg-0x200), v)
	case reg == 0x202, reg == 0x203:
		ic.WriteIF(int(reg-0x202), v)
	case reg >= 0x208 && reg < 0x20C:
		ic.WriteIME(int(reg-0x208), v)
	case !advanced && reg >= 0x1A0 && reg < 0x1A2:
		c.spi.WriteCNT(int(reg-0x1A0), v)
	case !advanced && reg == 0x1A2:
		c.spi.WriteData(v)
	case !advanced && reg >= 0x1A4 && reg < 0x1A8:
		c.cart.WriteROMCTRL(int(reg-0x1A4), v)
	case !advanced && reg >= 0x1A8 && reg < 0x1B0:
		c.cart.WriteCommand(int(reg-0x1A8), v)
	case !advanced && reg >= 0x1B0 && reg < 0x1B2:
		c.cart.WriteSPICNT(int(reg-0x1B0), v)
	case !advanced && reg == 0x1B2:
		c.cart.WriteSPIData(v)
	case advanced && reg == 0x204:
		c.wramcnt = v
		c.mem9.rebuildWRAMView(v)
		c.mem7.rebuildWRAMView(v)
	case advanced && reg >= 0x240 && reg < 0x249:
		c.vramcnt[reg-0x240] = v
		c.vram.WriteVRAMCNT(int(reg-0x240), v)
	case advanced && (reg == 0x304 || reg == 0x305):
		shift := uint(8 * (reg - 0x304))
		c.powcnt1 = c.powcnt1&^(0xFF<<shift) | uint16(v)<<shift
	case !advanced && reg >= 0x400 && reg < 0x404:
		c.gxCommandByte(reg-0x400, v)
	case advanced && reg24 >= 0x400 && reg24 < 0x500:
		c.spu.WriteByte(reg24-0x400, v)
	case advanced && reg24 < 0x1000:
		c.writeEngine(c.engineA, reg, v)
	case advanced && reg24 >= 0x1000 && reg24 < 0x2000:
		c.writeEngine(c.engineB, reg24-0x1000, v)
	}
}

// peripheralsFor returns the per-CPU interrupt controller, timer block,
// and DMA controller for the given CPU flag.
func (c *Console) peripheralsFor(advanced bool) (*InterruptController, *TimerBlock, *DMAController) {
	if advanced {
		return c.ic9, c.timers9, c.dma9
	}
	return c.ic7, c.timers7, c.dma7
}

func (c *Console) dmaReadByte(dma *DMAController, reg uint32) byte {
	return dma.ReadByte(int(reg/12), int(reg%12))
}
func (c *Console) dmaWriteByte(dma *DMAController, reg uint32, v byte) {
	dma.WriteByte(int(reg/12), int(reg%12), v)
}

// bgScrollRead/bgScrollWrite implement BGxHOFS/VOFS, write-only on real
// hardware; a read simply returns zero like the rest of this core's
// write-only registers.
func (c *Console) bgScrollRead(e *Engine2D, reg uint32) byte { return 0 }
func (c *Console) bgScrollWrite(e *Engine2D, reg uint32, v byte) {
	bg := int(reg / 4)
	idx := reg % 4
	if idx < 2 {
		e.WriteBGHOFS(bg, int(idx), v)
	} else {
		e.WriteBGVOFS(bg, int(idx-2), v)
	}
}

// bgAffineWrite dispatches the 0x020-0x03F affine parameter/reference
// block: BG2's set (aff index 0) at 0x020-0x02F, BG3's (aff index 1) at
// 0x030-0x03F.
func (c *Console) bgAffineWrite(e *Engine2D, reg uint32, v byte) {
	aff := int(reg / 0x10)
	off := reg % 0x10
	switch {
	case off < 2:
		e.WriteBGPA(aff, int(off), v)
	case off < 4:
		e.WriteBGPB(aff, int(off-2), v)
	case off < 6:
		e.WriteBGPC(aff, int(off-4), v)
	case off < 8:
		e.WriteBGPD(aff, int(off-6), v)
	case off < 12:
		e.WriteBGX(aff, int(off-8), v)
	default:
		e.WriteBGY(aff, int(off-12), v)
	}
}

// winRectWrite dispatches WIN0H/WIN1H/WIN0V/WIN1V, two bytes each.
func (c *Console) winRectWrite(e *Engine2D, reg uint32, v byte) {
	switch reg / 2 {
	case 0:
		e.WriteWinH(0, int(reg%2), v)
	case 1:
		e.WriteWinH(1, int(reg%2), v)
	case 2:
		e.WriteWinV(0, int(reg%2), v)
	default:
		e.WriteWinV(1, int(reg%2), v)
	}
}

// ipcSendByte accumulates the four bytes of one IPCFIFOSEND write and
// forwards the assembled word once the top byte lands.
func (c *Console) ipcSendByte(advanced bool, byteIdx uint32, v byte) {
	side := 0
	if advanced {
		side = 1
	}
	shift := uint(8 * byteIdx)
	c.ipcSendAccum[side] = c.ipcSendAccum[side]&^(0xFF<<shift) | uint32(v)<<shift
	if byteIdx == 3 {
		c.ipc.Send(advanced, c.ipcSendAccum[side])
	}
}

// gxCommandByte accumulates one GXFIFO word and pushes it once complete;
// this core treats every geometry command uniformly since no rasteriser
// distinguishes between them (geometry_fifo.go).
func (c *Console) gxCommandByte(byteIdx uint32, v byte) {
	shift := uint(8 * byteIdx)
	c.gxAccum = c.gxAccum&^(0xFF<<shift) | uint32(v)<<shift
	if byteIdx == 3 {
		c.gx.Push(c.gxAccum)
	}
}

// readEngine/writeEngine dispatch one 2D engine's register block, used
// for both engine A (reg24 0x000-0xFFF) and engine B (reg24 0x1000-0x1FFF,
// pre-offset by the caller to the same 0x000-0xFFF range).
func (c *Console) readEngine(e *Engine2D, reg uint32) byte {
	switch {
	case reg < 0x002:
		return e.ReadDISPCNT(int(reg))
	case reg >= 0x008 && reg < 0x010:
		return e.ReadBGCNT(int(reg-0x008)/2, int(reg-0x008)%2)
	case reg >= 0x048 && reg < 0x04A:
		return e.ReadWinIn(int(reg - 0x048))
	case reg >= 0x04A && reg < 0x04C:
		return e.ReadWinOut(int(reg - 0x04A))
	case reg >= 0x050 && reg < 0x052:
		return e.ReadBldCnt(int(reg - 0x050))
	default:
		return 0
	}
}

func (c *Console) writeEngine(e *Engine2D, reg uint32, v byte) {
	switch {
	case reg < 0x004:
		e.WriteDISPCNT(int(reg), v)
	case reg >= 0x008 && reg < 0x010:
		e.WriteBGCNT(int(reg-0x008)/2, int(reg-0x008)%2, v)
	case reg >= 0x010 && reg < 0x020:
		c.bgScrollWrite(e, reg-0x010, v)
	case reg >= 0x020 && reg < 0x040:
		c.bgAffineWrite(e, reg-0x020, v)
	case reg >= 0x040 && reg < 0x048:
		c.winRectWrite(e, reg-0x040, v)
	case reg >= 0x048 && reg < 0x04A:
		e.WriteWinIn(int(reg-0x048), v)
	case reg >= 0x04A && reg < 0x04C:
		e.WriteWinOut(int(reg-0x04A), v)
	case reg >= 0x04C && reg < 0x04E:
		e.WriteMosaic(int(reg-0x04C), v)
	case reg >= 0x050 && reg < 0x052:
		e.WriteBldCnt(int(reg-0x050), v)
	case reg >= 0x052 && reg < 0x054:
		e.WriteBldAlpha(int(reg-0x052), v)
	case reg == 0x054:
		e.WriteBldY(v)
	case reg >= 0x06C && reg < 0x06E:
		e.WriteMasterBright(int(reg-0x06C), v)
	}
}
