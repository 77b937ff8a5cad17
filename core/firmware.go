// firmware.go - SPI flash holding the firmware image

/*
firmware.go implements the small subset of a serial-flash command set that
the documented SPI firmware device needs: 0x03 (sequential read at a
24-bit address), 0x0B (fast read, one dummy byte before data starts),
0x9F (JEDEC ID, three fixed bytes), and 0x05 (status register, always
reads back "write disabled, ready"). Writes to the flash's data contents
are out of scope in this core, so 0x02/0x0A-style program commands are
accepted as no-ops rather than faulted.

Grounded on original_source/core/src/hw/spi/firmware.rs.
*/

package core

type firmwareState int

const (
	firmwareReadInstr firmwareState = iota
	firmwareReadAddr
	firmwareContinuousRead
	firmwareFastReadAddr
	firmwareFastReadStream
	firmwareJEDEC
	firmwareStatus
)

// Firmware is the SPI-attached flash chip backing the console's
// firmware image (user settings, Wi-Fi config, and boot banner data on
// real hardware; in this core it is whatever image the frontend loads).
type Firmware struct {
	mem       []byte
	state     firmwareState
	addr      uint32
	addrBytes int
	readValue uint8
	jedecIdx  int
}

// NewFirmware wraps a raw firmware image; a nil or short image still
// works, since reads simply return zero past the image's length.
func NewFirmware(image []byte) *Firmware {
	return &Firmware{mem: image, state: firmwareReadInstr}
}

func (f *Firmware) byteAt(addr uint32) uint8 {
	if int(addr) < len(f.mem) {
		return f.mem[addr]
	}
	return 0
}

// Read returns the byte produced by the most recent Write shift.
func (f *Firmware) Read() uint8 { return f.readValue }

// Deselect resets the command state machine, matching chip-select
// going inactive between SPI transactions.
func (f *Firmware) Deselect() { f.state = firmwareReadInstr; f.addrBytes = 0 }

// Write shifts one byte through the flash's command state machine.
func (f *Firmware) Write(value uint8) {
	switch f.state {
	case firmwareReadInstr:
		f.addr = 0
		f.addrBytes = 0
		f.jedecIdx = 0
		switch value {
		case 0x03:
			f.state = firmwareReadAddr
		case 0x0B:
			f.state = firmwareFastReadAddr
		case 0x9F:
			f.state = firmwareJEDEC
		case 0x05:
			f.state = firmwareStatus
		default:
			// program/erase commands are accepted as no-ops
		}
	case firmwareReadAddr:
		f.addr = f.addr<<8 | uint32(value)
		f.addrBytes++
		if f.addrBytes == 3 {
			f.readValue = f.byteAt(f.addr)
			f.state = firmwareContinuousRead
		}
	case firmwareContinuousRead:
		f.addr++
		f.readValue = f.byteAt(f.addr)
	case firmwareFastReadAddr:
		f.addr = f.addr<<8 | uint32(value)
		f.addrBytes++
		if f.addrBytes == 3 {
			f.state = firmwareFastReadStream
		}
	case firmwareFastReadStream: // dummy byte consumed, now streaming
		f.readValue = f.byteAt(f.addr)
		f.addr++
	case firmwareJEDEC:
		jedec := [3]uint8{0xC2, 0x22, 0x14}
		if f.jedecIdx < len(jedec) {
			f.readValue = jedec[f.jedecIdx]
			f.jedecIdx++
		}
	case firmwareStatus:
		f.readValue = 0
	}
}
