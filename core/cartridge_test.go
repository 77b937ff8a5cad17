package core

import (
	"encoding/binary"
	"testing"
)

func TestParseHeaderAndLoadSegments(t *testing.T) {
	rom := buildTestROM(0x0200_0800, 0x0210_0000)

	c, err := NewCartridge(rom, nil)
	if err != nil {
		t.Fatalf("NewCartridge: %v", err)
	}
	if c.Header.ARM9EntryAddr != 0x0200_0800 {
		t.Fatalf("ARM9EntryAddr = 0x%08X, want 0x0200_0800", c.Header.ARM9EntryAddr)
	}
	if c.Header.ARM7EntryAddr != 0x0210_0000 {
		t.Fatalf("ARM7EntryAddr = 0x%08X, want 0x0210_0000", c.Header.ARM7EntryAddr)
	}

	dst := make([]byte, c.Header.ARM9Size)
	c.LoadARM9(dst)
	if len(dst) < 4 || binary.LittleEndian.Uint32(dst[0:4]) != testNOP {
		t.Fatalf("loaded ARM9 segment does not start with the expected NOP encoding")
	}
}

func TestNewCartridgeRejectsUndersizedROM(t *testing.T) {
	if _, err := NewCartridge(make([]byte, 100), nil); err == nil {
		t.Fatalf("expected ConfigError for undersized ROM")
	}
}

func TestCopyRomSegmentClampsToROMLength(t *testing.T) {
	dst := make([]byte, 16)
	rom := []byte{0, 0, 0, 0, 0xAA, 0xBB, 0xCC, 0xDD}
	copyRomSegment(dst, rom, 4, 16) // offset+size overruns the ROM
	if dst[0] != 0xAA || dst[3] != 0xDD {
		t.Fatalf("dst[0:4] = %v, want the 4 available source bytes", dst[0:4])
	}
	if dst[4] != 0 {
		t.Fatalf("dst[4] = 0x%02X, want untouched zero past the clamped copy", dst[4])
	}
}
