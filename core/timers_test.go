package core

import "testing"

// Concrete scenario 6: timer 0 at prescaler 1 with reload 0xFFFE chained
// into timer 1 in count-up mode; within six cycles timer 1's counter has
// incremented by exactly one.
func TestTimerCountUpChaining(t *testing.T) {
	sched := NewScheduler()
	ic := &InterruptController{}
	tb := NewTimerBlock(true, sched, ic)

	tb.WriteByte(0, 0, 0xFE) // reload low byte
	tb.WriteByte(0, 1, 0xFF) // reload high byte
	tb.WriteByte(0, 2, 0x80) // start, prescaler 1

	tb.WriteByte(1, 2, 0x84) // start, count-up

	sched.RunUntil(6)

	if got := tb.Timers[1].counter; got != 1 {
		t.Fatalf("timer 1 counter = %d, want 1", got)
	}
}

func TestTimerOverflowRaisesInterrupt(t *testing.T) {
	sched := NewScheduler()
	ic := &InterruptController{}
	tb := NewTimerBlock(true, sched, ic)

	tb.WriteByte(0, 0, 0xFF)
	tb.WriteByte(0, 1, 0xFF)
	tb.WriteByte(0, 2, 0xC0) // start, IRQ enable, prescaler 1

	sched.RunUntil(2)

	if ic.Request&uint32(IRQTimer0Overflow) == 0 {
		t.Fatalf("timer 0 overflow did not raise its interrupt")
	}
}
