// ipc.go - Inter-processor communication: sync register + dual FIFOs

/*
ipc.go implements the two documented IPC facilities shared by both CPUs:
IPCSYNC (a 4-bit value each side can read from the other, plus an
optional "raise IPCSync IRQ on the peer" trigger bit) and two 16-deep,
32-bit FIFOs (one per direction), each with its own enable bit, clear
command, and error-on-underflow/overflow latch. Interrupts are computed
at the point of state change exactly as the original does: a send-FIFO
empty IRQ fires on the 0-1 edge of its enable bit while the FIFO is
already empty, or when a read by the peer empties the FIFO, and a
receive-FIFO-not-empty IRQ only on the edge while
the opposite FIFO is non-empty — re-reading a steady-state FIFOCNT value
never re-fires.

Grounded on original_source/core/src/hw/ipc.rs.
*/

package core

const ipcFIFODepth = 16

type ipcFIFOControl struct {
	enable            bool
	sendEmptyIRQ      bool
	recvNotEmptyIRQ   bool
	err               bool
}

// ipcSide holds one CPU's half of the IPC block: its outgoing FIFO, its
// control register, the last-read fallback value, and the 4-bit sync
// input/output pair.
type ipcSide struct {
	cnt        ipcFIFOControl
	fifo       []uint32
	lastValue  uint32
	syncOutput uint8
	syncInput  uint8
	syncIRQEnable bool
}

// IPC couples the two CPUs' halves and the cross-wiring between them.
type IPC struct {
	arm7, arm9 ipcSide
	ic7, ic9   *InterruptController
}

// NewIPC wires both sides to their respective interrupt controllers.
func NewIPC(ic7, ic9 *InterruptController) *IPC {
	return &IPC{ic7: ic7, ic9: ic9}
}

func (ipc *IPC) side(advanced bool) *ipcSide {
	if advanced {
		return &ipc.arm9
	}
	return &ipc.arm7
}
func (ipc *IPC) peer(advanced bool) *ipcSide {
	if advanced {
		return &ipc.arm7
	}
	return &ipc.arm9
}
func (ipc *IPC) icFor(advanced bool) *InterruptController {
	if advanced {
		return ipc.ic9
	}
	return ipc.ic7
}

// ReadSync returns one byte of IPCSYNC as seen from the given CPU: low
// byte carries this side's input nibble (the peer's output); high byte
// carries this side's output nibble and the IRQ-enable bit (0x40).
func (ipc *IPC) ReadSync(advanced bool, byteIdx int) byte {
	s := ipc.side(advanced)
	switch byteIdx {
	case 0:
		return s.syncInput & 0xF
	case 1:
		v := s.syncOutput & 0xF
		if s.syncIRQEnable {
			v |= 0x40
		}
		return v
	default:
		return 0
	}
}

// WriteSync updates this side's output nibble (mirrored into the peer's
// input nibble) and IRQ-enable bit; setting bit 7 of the high byte
// (register bit 15) raises IPCSync on the peer if its IRQ is enabled.
func (ipc *IPC) WriteSync(advanced bool, byteIdx int, value byte) {
	s := ipc.side(advanced)
	p := ipc.peer(advanced)
	switch byteIdx {
	case 0:
		// input nibble is read-only from this side
	case 1:
		s.syncOutput = value & 0xF
		p.syncInput = s.syncOutput
		s.syncIRQEnable = value&0x40 != 0
		if value&0x80 != 0 {
			if p.syncIRQEnable {
				ipc.icFor(!advanced).Raise(IRQIPCSync)
			}
		}
	}
}

// ReadFIFOCNT returns FIFOCNT as seen from the given CPU.
func (ipc *IPC) ReadFIFOCNT(advanced bool, byteIdx int) byte {
	s := ipc.side(advanced)
	p := ipc.peer(advanced)
	switch byteIdx {
	case 0:
		var v byte
		if len(s.fifo) == 0 {
			v |= 0x01
		}
		if len(s.fifo) == ipcFIFODepth {
			v |= 0x02
		}
		if s.cnt.sendEmptyIRQ {
			v |= 0x04
		}
		return v
	case 1:
		var v byte
		if len(p.fifo) == 0 {
			v |= 0x01
		}
		if len(p.fifo) == ipcFIFODepth {
			v |= 0x02
		}
		if s.cnt.recvNotEmptyIRQ {
			v |= 0x04
		}
		if s.cnt.err {
			v |= 0x40
		}
		if s.cnt.enable {
			v |= 0x80
		}
		return v
	default:
		return 0
	}
}

// WriteFIFOCNT updates control bits, handles the FIFO-clear command, and
// raises the edge-triggered send-empty / recv-not-empty interrupts.
func (ipc *IPC) WriteFIFOCNT(advanced bool, byteIdx int, value byte) {
	s := ipc.side(advanced)
	p := ipc.peer(advanced)
	ic := ipc.icFor(advanced)
	switch byteIdx {
	case 0:
		prevSendEmptyIRQ := s.cnt.sendEmptyIRQ
		s.cnt.sendEmptyIRQ = value&0x04 != 0
		if value&0x08 != 0 {
			s.fifo = s.fifo[:0]
			s.cnt.err = false
		}
		if !prevSendEmptyIRQ && s.cnt.sendEmptyIRQ && len(s.fifo) == 0 {
			ic.Raise(IRQIPCSendFIFOEmpty)
		}
	case 1:
		prevRecvIRQ := s.cnt.recvNotEmptyIRQ
		s.cnt.recvNotEmptyIRQ = value&0x04 != 0
		if value&0x40 != 0 {
			s.cnt.err = false
		}
		s.cnt.enable = value&0x80 != 0
		if !prevRecvIRQ && s.cnt.recvNotEmptyIRQ && len(p.fifo) != 0 {
			ic.Raise(IRQIPCRecvFIFONotEmpty)
		}
	}
}

// Send pushes a value onto the caller's outgoing FIFO, setting the
// overflow-error latch instead of raising a fault if it is already full
// (a recoverable peripheral anomaly, not a CPU fault).
func (ipc *IPC) Send(advanced bool, value uint32) {
	s := ipc.side(advanced)
	if !s.cnt.enable {
		return
	}
	if len(s.fifo) >= ipcFIFODepth {
		s.cnt.err = true
		warnf("IPC FIFO overflow")
		return
	}
	s.fifo = append(s.fifo, value)
}

// Recv pops from the caller's receive FIFO (the peer's outgoing FIFO),
// returning the last successfully read value again on underflow, and
// raises the peer's send-empty IRQ if the FIFO just became empty.
func (ipc *IPC) Recv(advanced bool) uint32 {
	s := ipc.side(advanced)
	p := ipc.peer(advanced)
	if !s.cnt.enable {
		return s.lastValue
	}
	if len(p.fifo) == 0 {
		s.cnt.err = true
		return s.lastValue
	}
	v := p.fifo[0]
	p.fifo = p.fifo[1:]
	s.lastValue = v
	if p.cnt.enable && p.cnt.sendEmptyIRQ && len(p.fifo) == 0 {
		ipc.icFor(!advanced).Raise(IRQIPCSendFIFOEmpty)
	}
	return v
}
