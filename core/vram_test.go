package core

import "testing"

// Concrete scenario 3: configure VRAM bank A as LCDC, write 0xAB55 at
// 0x0680_0000, reassign bank A to BG-A at offset 0, read the BG view at
// offset 0: returns 0xAB55.
func TestVRAMBankReassignLCDCToBG(t *testing.T) {
	v := NewVRAM()

	v.WriteVRAMCNT(0, 0x80) // bank A: enabled, mode 0 (LCDC), offset 0
	v.WriteConsumer(true, 0x0680_0000, 0xAB55, 2)

	v.WriteVRAMCNT(0, 0x81) // bank A: enabled, mode 1 (engine A BG), offset 0
	if got := v.ReadConsumer(true, 0x0600_0000, 2); got != 0xAB55 {
		t.Fatalf("BG-A view at offset 0 = 0x%04X, want 0xAB55", got)
	}
}

func TestVRAMOverlappingBanksORonRead(t *testing.T) {
	v := NewVRAM()
	v.WriteVRAMCNT(0, 0x81) // bank A -> engine A BG, offset 0
	v.WriteVRAMCNT(1, 0x81) // bank B -> engine A BG, offset 0 (overlap)

	v.WriteConsumer(true, 0x0600_0000, 0x00F0, 2)
	// Writing broadcasts to both overlapping banks, so a plain readback
	// would just see the same value; isolate bank B directly to prove
	// the OR behaviour distinguishes it from a single-bank mapping.
	v.banks[0][0], v.banks[0][1] = 0x0F, 0x00
	v.banks[1][0], v.banks[1][1] = 0xF0, 0x00

	if got := v.ReadConsumer(true, 0x0600_0000, 2); got != 0xFF {
		t.Fatalf("overlapping read = 0x%04X, want 0x00FF", got)
	}
}

func TestVRAMUnmappedConsumerReadsZero(t *testing.T) {
	v := NewVRAM()
	if got := v.ReadConsumer(true, 0x0624_0000, 2); got != 0 {
		t.Fatalf("unmapped engine B BG view = 0x%04X, want 0", got)
	}
}
