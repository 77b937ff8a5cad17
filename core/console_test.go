package core

import (
	"encoding/binary"
	"testing"
)

const testNOP = 0xE1A00000  // MOV R0, R0
const testBranchSelf = 0xEAFFFFFE // B . (relative offset -2 words)

func putLE32(b []byte, off uint32, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// buildTestROM lays out a minimal direct-bootable ROM: a header plus,
// for each CPU, 0x40 bytes of NOPs followed by a branch-to-self, per the
// construction spec.md §8's direct-boot scenario describes.
func buildTestROM(arm9Entry, arm7Entry uint32) []byte {
	const arm9Offset = 0x4000
	const codeLen = 0x44 // 0x40 NOPs + one 4-byte branch
	const arm7Offset = arm9Offset + codeLen

	rom := make([]byte, arm7Offset+codeLen)
	putLE32(rom, 0x020, arm9Offset)
	putLE32(rom, 0x024, arm9Entry)
	putLE32(rom, 0x028, arm9Entry)
	putLE32(rom, 0x02C, codeLen)
	putLE32(rom, 0x030, arm7Offset)
	putLE32(rom, 0x034, arm7Entry)
	putLE32(rom, 0x038, arm7Entry)
	putLE32(rom, 0x03C, codeLen)

	writeCode := func(off uint32) {
		for i := uint32(0); i < 0x40; i += 4 {
			putLE32(rom, off+i, testNOP)
		}
		putLE32(rom, off+0x40, testBranchSelf)
	}
	writeCode(arm9Offset)
	writeCode(arm7Offset)
	return rom
}

// newTestConsole returns a fully constructed, unbooted Console backed by
// zeroed BIOS/firmware images and a minimal direct-bootable ROM.
func newTestConsole(t *testing.T) *Console {
	t.Helper()
	bios9 := make([]byte, 16*1024)
	bios7 := make([]byte, 16*1024)
	firmware := make([]byte, 128*1024)
	rom := buildTestROM(0x0200_0800, 0x0210_0000)

	c, err := NewConsole(bios9, bios7, firmware, rom, nil)
	if err != nil {
		t.Fatalf("NewConsole: %v", err)
	}
	return c
}

// Concrete scenario 2: direct-boot with a ROM declaring advanced-CPU
// entry at 0x0200_0800 and length 0x40 of NOPs, then B .: after one
// frame the CPU's PC equals 0x0200_0840 and no fatal error is raised.
func TestDirectBootPCLanding(t *testing.T) {
	c := newTestConsole(t)
	c.Boot()

	if err := c.RunFrame(); err != nil {
		t.Fatalf("RunFrame: %v", err)
	}

	if pc := c.cpu9.PC(); pc != 0x0200_0840 {
		t.Fatalf("ARM9 PC = 0x%08X, want 0x0200_0840", pc)
	}
}

func TestNewConsoleRejectsBadImageSizes(t *testing.T) {
	rom := buildTestROM(0x0200_0800, 0x0210_0000)
	firmware := make([]byte, 128*1024)

	if _, err := NewConsole(make([]byte, 100), make([]byte, 16*1024), firmware, rom, nil); err == nil {
		t.Fatalf("expected ConfigError for undersized ARM9 BIOS")
	}
	if _, err := NewConsole(make([]byte, 16*1024), make([]byte, 16*1024), make([]byte, 1000), rom, nil); err == nil {
		t.Fatalf("expected ConfigError for bad firmware size")
	}
}

// Concrete scenario 4: write a word count of 4 to DMA0 CNT_L, then set
// the 32-bit and enable bits in CNT_H's high byte, to start an immediate
// word copy of 4 words from 0x0200_1000 to 0x0200_2000;
// destination matches source and the channel's enable bit is cleared
// once the immediate-start write lands (run() executes the whole burst
// synchronously as part of that write, per dma.go's WriteByte).
func TestDMAImmediateCopyThroughConsoleIO(t *testing.T) {
	c := newTestConsole(t)

	for i := uint32(0); i < 4; i++ {
		c.mem9.Write32(0x0200_1000+i*4, 0x1000_0000+i)
	}

	writeWord32 := func(off uint32, v uint32) {
		for i := uint32(0); i < 4; i++ {
			c.WriteIO8(true, 0x0400_00B0+off+i, byte(v>>(8*i)))
		}
	}
	writeWord32(0x00, 0x0200_1000) // DMA0 SAD
	writeWord32(0x04, 0x0200_2000) // DMA0 DAD
	c.WriteIO8(true, 0x0400_00B8, 0x04) // CNT_L low byte: word count = 4
	c.WriteIO8(true, 0x0400_00B9, 0x00) // CNT_L high byte
	c.WriteIO8(true, 0x0400_00BA, 0x00) // CNT_H low byte
	c.WriteIO8(true, 0x0400_00BB, 0x84) // bit 2 (32-bit), bit 7 (enable)

	for i := uint32(0); i < 4; i++ {
		got, _ := c.mem9.Read32(0x0200_2000 + i*4)
		if want := 0x1000_0000 + i; got != want {
			t.Fatalf("word %d = 0x%08X, want 0x%08X", i, got, want)
		}
	}

	if c.ReadIO8(true, 0x0400_00BB)&0x80 != 0 {
		t.Fatalf("DMA0 enable bit still set after immediate-start completion")
	}
}
