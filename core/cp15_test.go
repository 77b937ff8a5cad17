package core

import "testing"

func TestCP15VectorBaseSelection(t *testing.T) {
	mem := newTestMemoryMap()
	c := NewCP15()

	if got := c.VectorBase(); got != 0 {
		t.Fatalf("VectorBase() = 0x%08X, want 0 before vector-base-high is set", got)
	}

	c.MCR(mem, 1, 0, 0, cp15VectorBaseHigh)
	if got := c.VectorBase(); got != 0xFFFF_0000 {
		t.Fatalf("VectorBase() = 0x%08X, want 0xFFFF0000 after setting the high bit", got)
	}
}

func TestCP15WaitForInterruptHaltAndWake(t *testing.T) {
	mem := newTestMemoryMap()
	c := NewCP15()

	c.MCR(mem, 7, 0, 4, 0)
	if !c.Halted() {
		t.Fatalf("(7,0,4) cache command did not halt the CPU")
	}
	c.Wake()
	if c.Halted() {
		t.Fatalf("Wake() did not clear the halted flag")
	}
}

func TestCP15DTCMShiftClampedToDocumentedRange(t *testing.T) {
	mem := newTestMemoryMap()
	c := NewCP15()

	c.MCR(mem, 9, 1, 0, 0) // shift field 0, below the documented minimum of 3
	if c.dtcmShift != 3 {
		t.Fatalf("dtcmShift = %d, want clamped to 3", c.dtcmShift)
	}
}
