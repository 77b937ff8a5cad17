package core

import "testing"

// newTestCartridge builds a cartridge over a ROM whose bytes are the
// little-endian sequence 0,1,2,3,... so word-by-word reads are easy to
// assert against, and attaches it to a fresh scheduler/interrupt/DMA set.
func newTestCartridge(t *testing.T) (*Cartridge, *Scheduler, *InterruptController, *DMAController, *DMAController) {
	t.Helper()
	rom := buildTestROM(0x0200_0800, 0x0210_0000)
	for i := 0; i < len(rom); i++ {
		rom[i] = byte(i)
	}
	c, err := NewCartridge(rom, nil)
	if err != nil {
		t.Fatalf("NewCartridge: %v", err)
	}
	sched := NewScheduler()
	ic := &InterruptController{}
	mem := newTestMemoryMap()
	dma9 := NewDMAController(true, mem, ic, sched)
	dma7 := NewDMAController(false, mem, ic, sched)
	c.attach(sched, ic, dma9, dma7)
	return c, sched, ic, dma9, dma7
}

func TestCartridgeDumpCommandTransfersWordsAndNotifiesDMA(t *testing.T) {
	c, sched, _, _, dma7 := newTestCartridge(t)

	ch := &dma7.Channels[0]
	ch.sad = 0
	ch.dad = 0x0200_0000
	ch.count = 1
	ch.srcControl = AddrFixed
	ch.dstControl = AddrIncrement
	ch.startTiming = DMACartridgeSlot
	ch.enabled = true
	ch.latch()

	// command 0x00, data block size field 1 -> 0x200 bytes
	c.command[0] = 0x00
	c.WriteROMCTRL(3, 0x81) // dataBlockSize=1, start-block strobe

	if !c.romctrl.blockBusy {
		t.Fatalf("blockBusy not set after starting a command")
	}

	cycle, ok := sched.NextEventCycle()
	if !ok {
		t.Fatalf("expected a pending word-transferred event")
	}
	sched.RunUntil(cycle)

	if !c.romctrl.dataWordReady {
		t.Fatalf("dataWordReady not set after transferWord fired")
	}
	if dma7.Channels[0].enabled {
		t.Fatalf("cartridge-slot DMA channel did not run its one-shot burst")
	}

	word := c.ReadData()
	if word != 0x03020100 {
		t.Fatalf("ReadData = 0x%08X, want 0x03020100", word)
	}
	if c.romctrl.dataWordReady {
		t.Fatalf("ReadData did not clear dataWordReady")
	}
}

func TestCartridgeFinishBlockRaisesIRQWhenEnabled(t *testing.T) {
	c, sched, ic, _, _ := newTestCartridge(t)
	c.spicnt.transferReadyIRQ = true

	c.command[0] = 0x00
	c.WriteROMCTRL(3, 0x80) // dataBlockSize=0 -> 0 bytes, only the block-finished event is scheduled

	cycle, ok := sched.NextEventCycle()
	if !ok {
		t.Fatalf("expected a pending block-finished event")
	}
	sched.RunUntil(cycle)

	if c.romctrl.blockBusy {
		t.Fatalf("blockBusy still set after finishBlock")
	}
	if ic.Request&uint32(IRQCartTransferComplete) == 0 {
		t.Fatalf("IRQCartTransferComplete not raised")
	}
}

func TestCartridgeRepeatChipIDCommand(t *testing.T) {
	c, sched, _, _, _ := newTestCartridge(t)

	c.command[0] = 0xB8
	c.WriteROMCTRL(3, 0x81) // dataBlockSize=1 -> 0x200 bytes -> 128 words

	cycle, _ := sched.NextEventCycle()
	sched.RunUntil(cycle)
	if got := c.ReadData(); got != chipID {
		t.Fatalf("ReadData = 0x%08X, want chip ID 0x%08X", got, chipID)
	}
}
