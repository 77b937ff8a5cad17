// geometry_fifo.go - 3D geometry command FIFO, producer/consumer contract only

/*
geometry_fifo.go models the boundary this core actually needs from the
3D engine: a command word pushed to GXFIFO (0x04000400) lands in a
256-entry software FIFO (there is no separate hardware "PE" FIFO
stage); each queued command is retired by its own "3D geometry command
completion" tag, scheduled a fixed number of busy cycles ahead, and the
retirement that drains the FIFO to empty raises the documented GXFIFO
interrupt. No matrix
stack, vertex list, or rasteriser exists — this is the contract the CPU
and scheduler observe, not a 3D engine.

Grounded on original_source/core/src/hw/gpu/engine3d/mod.rs, which is
itself minimal (no rendering beyond a solid-colour stub line).
*/

package core

const (
	geometryFIFODepth     = 256
	geometryCommandCycles = 8 // fixed busy-cycle cost charged per accepted command
)

// GeometryEngine is the FIFO/IRQ-only 3D command boundary.
type GeometryEngine struct {
	fifo  []uint32
	busy  uint32
	sched *Scheduler
	ic    *InterruptController
}

// NewGeometryEngine wires the FIFO to the scheduler and interrupt
// controller it reports completion through.
func NewGeometryEngine(sched *Scheduler, ic *InterruptController) *GeometryEngine {
	return &GeometryEngine{sched: sched, ic: ic}
}

// Push accepts one GXFIFO command word, logging and dropping it if the
// software FIFO is already full (a recoverable peripheral anomaly, not
// a CPU fault).
func (g *GeometryEngine) Push(word uint32) {
	if len(g.fifo) >= geometryFIFODepth {
		warnf("geometry FIFO overflow, dropping command 0x%08X", word)
		return
	}
	g.fifo = append(g.fifo, word)
	g.scheduleDrain()
}

func (g *GeometryEngine) scheduleDrain() {
	if g.busy != 0 || len(g.fifo) == 0 {
		return
	}
	g.busy = geometryCommandCycles
	g.sched.Schedule(EventGeometryCommandDone, EventPayload{}, uint64(g.busy), func(EventPayload) {
		g.drainOne()
	})
}

func (g *GeometryEngine) drainOne() {
	if len(g.fifo) > 0 {
		g.fifo = g.fifo[1:]
	}
	g.busy = 0
	if len(g.fifo) == 0 {
		g.ic.Raise(IRQGeometryCommandFIFO)
	}
	g.scheduleDrain()
}

// ReadStatus reports the FIFO's fill level and busy flag in the
// documented GXSTAT layout (entry count in bits 16-24, busy in bit 27).
func (g *GeometryEngine) ReadStatus(byteIdx int) byte {
	switch byteIdx {
	case 2:
		return byte(len(g.fifo))
	case 3:
		var v byte
		v |= byte(len(g.fifo) >> 8 & 0x1)
		if g.busy != 0 {
			v |= 0x08
		}
		return v
	default:
		return 0
	}
}
