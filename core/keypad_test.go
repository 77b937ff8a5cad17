package core

import "testing"

// Concrete scenario 5: with keypad AND-mode and mask {A,B}, depressing A
// alone yields no interrupt; depressing A and B simultaneously raises
// KEYPAD in the next instruction boundary.
func TestKeypadANDModeInterrupt(t *testing.T) {
	kp := NewKeypad()

	// KEYCNT: IRQ enable (bit 14) + AND mode (bit 15) + select A,B (bits 0,1).
	kp.WriteKeyCnt(0, 0x03)
	kp.WriteKeyCnt(1, 0xC0)

	kp.SetKey(KeyA, true)
	if kp.InterruptRequested() {
		t.Fatalf("AND-mode interrupt requested with only one of two selected keys held")
	}

	kp.SetKey(KeyB, true)
	if !kp.InterruptRequested() {
		t.Fatalf("AND-mode interrupt not requested with both selected keys held")
	}
}

func TestKeypadORModeInterrupt(t *testing.T) {
	kp := NewKeypad()
	kp.WriteKeyCnt(0, 0x01) // select A
	kp.WriteKeyCnt(1, 0x40) // IRQ enable, OR mode (bit 15 clear)

	if kp.InterruptRequested() {
		t.Fatalf("OR-mode interrupt requested with no keys held")
	}
	kp.SetKey(KeyA, true)
	if !kp.InterruptRequested() {
		t.Fatalf("OR-mode interrupt not requested once selected key held")
	}
}

func TestConsoleRaisesKeypadIRQOnEdge(t *testing.T) {
	c := newTestConsole(t)
	c.keypad.WriteKeyCnt(0, 0x03)
	c.keypad.WriteKeyCnt(1, 0xC0)
	c.SetKey(KeyA, true)
	c.SetKey(KeyB, true)

	if c.ic9.Request&uint32(IRQKeypad) == 0 {
		t.Fatalf("advanced CPU's interrupt controller did not see the keypad IRQ")
	}
	if c.ic7.Request&uint32(IRQKeypad) == 0 {
		t.Fatalf("weaker CPU's interrupt controller did not see the keypad IRQ")
	}
}
