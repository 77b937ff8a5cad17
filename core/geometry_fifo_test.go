package core

import "testing"

func TestGeometryFIFODrainRaisesIRQWhenEmpty(t *testing.T) {
	sched := NewScheduler()
	ic := &InterruptController{}
	g := NewGeometryEngine(sched, ic)

	g.Push(0x10000000)
	g.Push(0x20000000)

	if b := g.ReadStatus(2); b != 2 {
		t.Fatalf("fill level = %d, want 2", b)
	}

	sched.RunUntil(uint64(geometryCommandCycles) * 2)

	if b := g.ReadStatus(2); b != 0 {
		t.Fatalf("fill level after drain = %d, want 0", b)
	}
	if ic.Request&uint32(IRQGeometryCommandFIFO) == 0 {
		t.Fatalf("GXFIFO empty interrupt not raised after full drain")
	}
}

func TestGeometryFIFOOverflowDropsCommand(t *testing.T) {
	sched := NewScheduler()
	ic := &InterruptController{}
	g := NewGeometryEngine(sched, ic)

	for i := 0; i < geometryFIFODepth+1; i++ {
		g.Push(uint32(i))
	}
	if got := len(g.fifo); got != geometryFIFODepth {
		t.Fatalf("fifo length = %d, want capped at %d", got, geometryFIFODepth)
	}
}
