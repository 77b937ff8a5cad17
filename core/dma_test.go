package core

import "testing"

func newTestMemoryMap() *MemoryMap {
	vram := NewVRAM()
	mainRAM := make([]byte, 4*1024*1024)
	sharedWRAM := make([]byte, 32*1024)
	arm7WRAM := make([]byte, 64*1024)
	bios9 := make([]byte, 16*1024)
	bios7 := make([]byte, 16*1024)
	return NewMemoryMap(true, stubIOHandler{}, mainRAM, sharedWRAM, arm7WRAM, bios9, bios7, vram)
}

func TestDMARepeatOnVBlankReloadsLatch(t *testing.T) {
	mem := newTestMemoryMap()
	ic := &InterruptController{}
	sched := NewScheduler()
	dc := NewDMAController(true, mem, ic, sched)

	mem.Write16(0x0200_1000, 0xAAAA)
	mem.Write16(0x0200_1002, 0xBBBB)

	ch := &dc.Channels[0]
	ch.sad = 0x0200_1000
	ch.dad = 0x0200_2000
	ch.count = 2
	ch.dstControl = AddrIncrement
	ch.srcControl = AddrFixed
	ch.repeat = true
	ch.startTiming = DMAVBlank
	ch.enabled = true
	ch.latch()

	dc.Notify(DMAVBlank)

	if got, _ := mem.Read16(0x0200_2000); got != 0xAAAA {
		t.Fatalf("word 0 = 0x%04X, want 0xAAAA", got)
	}
	if got, _ := mem.Read16(0x0200_2002); got != 0xAAAA {
		t.Fatalf("word 1 = 0x%04X, want 0xAAAA (fixed source)", got)
	}
	if !ch.enabled {
		t.Fatalf("repeating channel was disabled after its burst")
	}
	if ch.countLatch != 2 {
		t.Fatalf("countLatch = %d, want reload to 2", ch.countLatch)
	}
}

func TestDMAOneShotClearsEnableAndRaisesIRQ(t *testing.T) {
	mem := newTestMemoryMap()
	ic := &InterruptController{}
	sched := NewScheduler()
	dc := NewDMAController(true, mem, ic, sched)

	ch := &dc.Channels[1]
	ch.sad = 0x0200_3000
	ch.dad = 0x0200_4000
	ch.count = 1
	ch.irqEnable = true
	ch.startTiming = DMAImmediate
	ch.enabled = true
	ch.latch()

	dc.run(1)

	if ch.enabled {
		t.Fatalf("one-shot channel still enabled after its burst")
	}
	if ic.Request&uint32(IRQDMA1) == 0 {
		t.Fatalf("DMA1 completion interrupt not raised")
	}
}

func TestDMADecrementAddressing(t *testing.T) {
	mem := newTestMemoryMap()
	ic := &InterruptController{}
	sched := NewScheduler()
	dc := NewDMAController(true, mem, ic, sched)

	mem.Write16(0x0200_5000, 0x1111)
	mem.Write16(0x0200_5002, 0x2222)

	ch := &dc.Channels[2]
	ch.sad = 0x0200_5002
	ch.dad = 0x0200_6000
	ch.count = 2
	ch.srcControl = AddrDecrement
	ch.dstControl = AddrIncrement
	ch.startTiming = DMAImmediate
	ch.enabled = true
	ch.latch()

	dc.run(2)

	if got, _ := mem.Read16(0x0200_6000); got != 0x2222 {
		t.Fatalf("first word = 0x%04X, want 0x2222 (read from high address first)", got)
	}
	if got, _ := mem.Read16(0x0200_6002); got != 0x1111 {
		t.Fatalf("second word = 0x%04X, want 0x1111", got)
	}
}
