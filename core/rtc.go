// rtc.go - Real-time clock, SPI device-select slot 3

/*
rtc.go implements the documented RTC register set: two status
registers, seven BCD date/time bytes seeded at construction (the console
passes a fixed date, not the host wall clock) and advanced only by Tick,
which nothing in this core calls, and the INT1 alarm registers, which are stored
verbatim but never matched against the clock (a documented non-goal
carried from the original's own partial alarm support).

The wire protocol itself (single-bit serial clock/data/chip-select,
command byte, then N parameter bytes) is handled by spi.go, which is the
SPI bus's device-select-3 consumer; this file owns only the register
semantics once a command has been decoded.

Grounded on original_source/core/src/hw/rtc.rs.
*/

package core

// RTCDateTime is the seven-byte BCD date/time register block.
type RTCDateTime struct {
	Year, Month, Day, Weekday, Hour, Minute, Second uint8 // BCD-encoded
}

// RTC is the real-time clock peripheral.
type RTC struct {
	statusReg1 uint8 // power-off, 12/24-hour select, interrupt-mode bits
	statusReg2 uint8

	dateTime RTCDateTime

	alarm1 [3]uint8
	alarm2 [3]uint8
	clockAdjust uint8
}

func toBCD(v int) uint8 {
	return uint8((v/10)<<4 | v%10)
}

// NewRTC seeds the clock from the supplied date/time fields. NewConsole
// passes a fixed date; nothing reads the host clock.
func NewRTC(year, month, day, weekday, hour, minute, second int) *RTC {
	return &RTC{
		dateTime: RTCDateTime{
			Year:    toBCD(year % 100),
			Month:   toBCD(month),
			Day:     toBCD(day),
			Weekday: toBCD(weekday),
			Hour:    toBCD(hour),
			Minute:  toBCD(minute),
			Second:  toBCD(second),
		},
	}
}

// Tick advances the seconds register by one (and cascades through the
// rest of the date/time block). Nothing in this core calls it, so the
// clock keeps its seeded value.
func (r *RTC) Tick() {
	sec := bcdToInt(r.dateTime.Second) + 1
	if sec < 60 {
		r.dateTime.Second = toBCD(sec)
		return
	}
	r.dateTime.Second = 0
	min := bcdToInt(r.dateTime.Minute) + 1
	if min < 60 {
		r.dateTime.Minute = toBCD(min)
		return
	}
	r.dateTime.Minute = 0
	hour := bcdToInt(r.dateTime.Hour) + 1
	twentyFour := r.statusReg1&0x02 != 0
	limit := 12
	if twentyFour {
		limit = 24
	}
	if hour < limit {
		r.dateTime.Hour = toBCD(hour)
		return
	}
	r.dateTime.Hour = 0
	day := bcdToInt(r.dateTime.Day) + 1
	r.dateTime.Day = toBCD(day)
	weekday := (bcdToInt(r.dateTime.Weekday) + 1) % 7
	r.dateTime.Weekday = toBCD(weekday)
}

func bcdToInt(v uint8) int { return int(v>>4)*10 + int(v&0xF) }

// ReadStatusReg1/2 and WriteStatusReg1/2 implement the documented power
// and hour-format control bits.
func (r *RTC) ReadStatusReg1() uint8  { return r.statusReg1 }
func (r *RTC) WriteStatusReg1(v uint8) { r.statusReg1 = v & 0xFE }
func (r *RTC) ReadStatusReg2() uint8  { return r.statusReg2 }
func (r *RTC) WriteStatusReg2(v uint8) { r.statusReg2 = v }

// ReadDateTime/ReadTime expose the seven BCD bytes as two documented
// read commands: the full date+time block, or time-only (hour/min/sec).
func (r *RTC) ReadDateTime(byteIdx int) uint8 {
	switch byteIdx {
	case 0:
		return r.dateTime.Year
	case 1:
		return r.dateTime.Month
	case 2:
		return r.dateTime.Day
	case 3:
		return r.dateTime.Weekday
	case 4:
		return r.dateTime.Hour
	case 5:
		return r.dateTime.Minute
	default:
		return r.dateTime.Second
	}
}

func (r *RTC) ReadTime(byteIdx int) uint8 {
	return r.ReadDateTime(4 + byteIdx)
}

// WriteTime writes the hour/minute/second subset of the date/time block.
func (r *RTC) WriteTime(byteIdx int, value uint8) {
	r.WriteDateTime(4+byteIdx, value)
}

// WriteDateTime ignores attempts to set the clock, matching the
// original's "Ignoring Setting Year/Month/.../Second" behavior: the
// clock stays host-driven rather than game-settable.
func (r *RTC) WriteDateTime(byteIdx int, value uint8) {
	warnf("RTC: ignoring write to date/time byte %d", byteIdx)
}

func (r *RTC) ReadAlarm1(byteIdx int) uint8   { return r.alarm1[byteIdx] }
func (r *RTC) WriteAlarm1(byteIdx int, v uint8) { r.alarm1[byteIdx] = v }
func (r *RTC) ReadAlarm2(byteIdx int) uint8   { return r.alarm2[byteIdx] }
func (r *RTC) WriteAlarm2(byteIdx int, v uint8) { r.alarm2[byteIdx] = v }

func (r *RTC) ReadClockAdjust() uint8    { return r.clockAdjust }
func (r *RTC) WriteClockAdjust(v uint8) { r.clockAdjust = v }
