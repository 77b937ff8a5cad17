// errors.go - Fatal/recoverable error taxonomy

/*
errors.go implements the error taxonomy from spec.md §7. Fatal
configuration errors (missing BIOS, malformed ROM header) are plain
Go errors returned from constructors. Fatal runtime errors (undefined
instruction, unmapped coprocessor access on the weaker CPU, a violated
invariant) are raised as a CPUFault panic and recovered at the top of
Console.RunFrame, never surfacing as a return value from an ordinary
instruction step. Recoverable peripheral anomalies just set a status bit
and log a warning; they never panic.
*/

package core

import (
	"fmt"
	"log"
)

// ConfigError is returned by NewConsole/NewCartridge for a fatal
// configuration problem discovered before emulation starts.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "nds core: " + e.Reason }

// CPUFault is the panic value raised for a fatal runtime condition:
// an undefined instruction, a coprocessor access the weaker CPU cannot
// service, or a violated core invariant. Console.RunFrame recovers
// exactly this type and turns it into a returned error; any other panic
// propagates since it is not a documented core failure mode.
type CPUFault struct {
	Advanced bool
	PC       uint32
	Reason   string
}

func (f *CPUFault) Error() string {
	cpuName := "ARM7"
	if f.Advanced {
		cpuName = "ARM9"
	}
	return fmt.Sprintf("%s fault at PC=0x%08X: %s", cpuName, f.PC, f.Reason)
}

func raiseFault(advanced bool, pc uint32, reason string) {
	panic(&CPUFault{Advanced: advanced, PC: pc, Reason: reason})
}

// warnf logs a recoverable peripheral anomaly: unmapped I/O read, write
// to a read-only register, a FIFO overrun, a DMA source crossing a
// region boundary. These never interrupt emulation.
func warnf(format string, args ...interface{}) {
	log.Printf("[WARN] "+format, args...)
}
