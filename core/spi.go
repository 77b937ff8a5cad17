// spi.go - SPI bus: SPICNT/SPIDATA and the four device-select slots

/*
spi.go implements the single shared SPI bus register pair. SPICNT's
2-bit device field picks which of four devices SPIDATA talks to; only
one device is ever selected at a time, and clearing the enable bit
resets the selected device's internal byte-position state machine
(changing the device field while the bus stays enabled resets nothing),
matching the documented
"disabling requires the device to be reset" requirement that real
firmware driver code depends on.

Device 0 (powerman) is a stub: the real chip accepts power-management
writes this core never needs to act on, and always reads back zero.
Device 3 is wired to the RTC described in rtc.go rather than left
reserved, since this core folds the real DS's separate bit-banged RTC
bus into the SPI register pair for a single, simpler peripheral surface.

Grounded on original_source/core/src/hw/spi/mod.rs.
*/

package core

type spiDevice int

const (
	spiPowerman spiDevice = iota
	spiFirmware
	spiTouchscreen
	spiRTC
)

// SPICNT holds the bus's control bits.
type spiCNT struct {
	baudrate   uint8
	busy       bool
	device     spiDevice
	transfer16 bool
	hold       bool
	irq        bool
	enable     bool
}

func (c *spiCNT) read(byteIdx int) uint8 {
	switch byteIdx {
	case 0:
		v := c.baudrate & 0x3
		if c.busy {
			v |= 0x80
		}
		return v
	case 1:
		var v uint8
		v |= uint8(c.device) & 0x3
		if c.transfer16 {
			v |= 0x04
		}
		if c.hold {
			v |= 0x08
		}
		if c.irq {
			v |= 0x40
		}
		if c.enable {
			v |= 0x80
		}
		return v
	default:
		return 0
	}
}

func (c *spiCNT) write(byteIdx int, value uint8) {
	switch byteIdx {
	case 0:
		c.baudrate = value & 0x3
	case 1:
		c.device = spiDevice(value & 0x3)
		c.transfer16 = value&0x04 != 0
		c.hold = value&0x08 != 0
		c.irq = value&0x40 != 0
		c.enable = value&0x80 != 0
	}
}

// SPI is the console-wide serial peripheral bus.
type SPI struct {
	cnt         spiCNT
	firmware    *Firmware
	touchscreen *Touchscreen
	rtc         *RTC

	rtcParam     rtcParamState
	rtcReadValue uint8
}

// NewSPI wires the three concrete devices (powerman has no state to
// hold) to the bus.
func NewSPI(firmwareImage []byte, rtc *RTC) *SPI {
	return &SPI{
		firmware:    NewFirmware(firmwareImage),
		touchscreen: NewTouchscreen(),
		rtc:         rtc,
	}
}

// ReadCNT mirrors the original's "register reads as zero while the bus
// is disabled" behavior.
func (s *SPI) ReadCNT(byteIdx int) uint8 {
	if !s.cnt.enable {
		return 0
	}
	return s.cnt.read(byteIdx)
}

func (s *SPI) WriteCNT(byteIdx int, value uint8) {
	prevEnable := s.cnt.enable
	prevDevice := s.cnt.device
	s.cnt.write(byteIdx, value)
	if prevEnable && !s.cnt.enable {
		switch prevDevice {
		case spiFirmware:
			s.firmware.Deselect()
		case spiTouchscreen:
			s.touchscreen.Deselect()
		case spiRTC:
			s.rtcParam = rtcParamState{}
		}
	}
}

// ReadData returns the byte most recently produced by the selected
// device.
func (s *SPI) ReadData() uint8 {
	switch s.cnt.device {
	case spiFirmware:
		return s.firmware.Read()
	case spiTouchscreen:
		return s.touchscreen.Read()
	case spiRTC:
		return s.readRTC()
	default:
		return 0
	}
}

// WriteData shifts one byte into the selected device, provided the bus
// is enabled.
func (s *SPI) WriteData(value uint8) {
	if !s.cnt.enable {
		return
	}
	switch s.cnt.device {
	case spiFirmware:
		s.firmware.Write(value)
	case spiTouchscreen:
		s.touchscreen.Write(value)
	case spiRTC:
		s.writeRTC(value)
	}
}

// rtcParam tracks which RTC register the current command addresses and
// how many bytes of it have been transferred; this core exposes the RTC
// as a byte-oriented command+parameter protocol over SPIDATA rather than
// the real chip's bit-banged three-wire interface, since SPIDATA is
// already a byte register (see rtc.go).
type rtcParamKind int

const (
	rtcParamStatusReg1 rtcParamKind = iota
	rtcParamStatusReg2
	rtcParamDateTime
	rtcParamTime
	rtcParamAlarm1
	rtcParamAlarm2
	rtcParamClockAdjust
)

type rtcParamState struct {
	kind       rtcParamKind
	byteIdx    int
	totalBytes int
	writing    bool
}

func rtcParamFor(kind rtcParamKind) rtcParamState {
	total := 1
	switch kind {
	case rtcParamDateTime:
		total = 7
	case rtcParamTime:
		total = 3
	case rtcParamAlarm1, rtcParamAlarm2:
		total = 3
	}
	return rtcParamState{kind: kind, totalBytes: total}
}

// writeRTC shifts one byte of the command+parameter protocol: the first
// byte after chip-select is the command byte (parameter select in bits
// 3-1, read/write direction in bit 0); every following byte is a
// parameter byte, consumed directly for writes or ignored (any value
// accepted) as the clock pulse for reads.
func (s *SPI) writeRTC(value uint8) {
	if s.rtcParam.totalBytes == 0 {
		kind := rtcParamKind(value >> 1 & 0x7)
		s.rtcParam = rtcParamFor(kind)
		s.rtcParam.writing = value&0x1 == 0
		if !s.rtcParam.writing {
			s.rtcReadValue = s.readRTCByte()
		}
		return
	}
	if s.rtcParam.writing {
		s.writeRTCByte(value)
	}
	s.rtcParam.byteIdx++
	if s.rtcParam.byteIdx >= s.rtcParam.totalBytes {
		s.rtcParam = rtcParamState{}
		return
	}
	if !s.rtcParam.writing {
		s.rtcReadValue = s.readRTCByte()
	}
}

func (s *SPI) readRTCByte() uint8 {
	p := s.rtcParam
	switch p.kind {
	case rtcParamStatusReg1:
		return s.rtc.ReadStatusReg1()
	case rtcParamStatusReg2:
		return s.rtc.ReadStatusReg2()
	case rtcParamDateTime:
		return s.rtc.ReadDateTime(p.byteIdx)
	case rtcParamTime:
		return s.rtc.ReadTime(p.byteIdx)
	case rtcParamAlarm1:
		return s.rtc.ReadAlarm1(p.byteIdx)
	case rtcParamAlarm2:
		return s.rtc.ReadAlarm2(p.byteIdx)
	default:
		return s.rtc.ReadClockAdjust()
	}
}

func (s *SPI) writeRTCByte(value uint8) {
	p := s.rtcParam
	switch p.kind {
	case rtcParamStatusReg1:
		s.rtc.WriteStatusReg1(value)
	case rtcParamStatusReg2:
		s.rtc.WriteStatusReg2(value)
	case rtcParamDateTime:
		s.rtc.WriteDateTime(p.byteIdx, value)
	case rtcParamTime:
		s.rtc.WriteTime(p.byteIdx, value)
	case rtcParamAlarm1:
		s.rtc.WriteAlarm1(p.byteIdx, value)
	case rtcParamAlarm2:
		s.rtc.WriteAlarm2(p.byteIdx, value)
	default:
		s.rtc.WriteClockAdjust(value)
	}
}

// readRTC returns the byte most recently produced by writeRTC's read
// path.
func (s *SPI) readRTC() uint8 { return s.rtcReadValue }
