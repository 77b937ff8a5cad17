// touchscreen.go - TSC2046-style resistive touch-panel ADC

/*
touchscreen.go implements the documented SPI touchscreen device: a
control byte selects a 12-bit ADC channel (Y position, X position, or
one of the other documented channels this core stubs at a fixed value),
then two further clock pulses shift the selected 12-bit value out: the
first byte carries its upper seven bits, the second its lower five bits
shifted into the byte's top. Pen-up is modelled the same way the original does:
X reads zero and Y reads all-ones, the convention every firmware driver
checks to detect "not touching".

Grounded on original_source/core/src/hw/spi/tsc.rs.
*/

package core

// Touchscreen is the SPI-attached touch-panel controller.
type Touchscreen struct {
	x, y uint16

	pos        int
	value      uint16
	returnByte uint8
}

// NewTouchscreen returns a controller in the pen-up state.
func NewTouchscreen() *Touchscreen {
	return &Touchscreen{y: 0xFFF}
}

// Read returns the byte most recently shifted out.
func (t *Touchscreen) Read() uint8 { return t.returnByte }

// Write shifts one control/clock byte into the ADC, returning (via
// Read) the next part of the previously selected channel: value>>5 on
// the first clock byte, value<<3 on the second.
func (t *Touchscreen) Write(value uint8) {
	switch t.pos {
	case 0:
		t.returnByte = uint8(t.value >> 5)
	case 1:
		t.returnByte = uint8(t.value << 3)
	default:
		t.returnByte = 0
	}

	if value&0x80 != 0 {
		channel := value >> 4 & 0x7
		t.pos = 0
		switch channel {
		case 1:
			t.value = t.y
		case 5:
			t.value = t.x
		case 6:
			t.value = 0 // microphone input, unimplemented
		default:
			t.value = 0xFFF
		}
	} else {
		t.pos++
	}
}

// Deselect resets the ADC's byte-position state between transactions.
func (t *Touchscreen) Deselect() { t.pos = 0 }

// PressScreen reports a touch at the given panel coordinates.
func (t *Touchscreen) PressScreen(x, y int) {
	t.x = uint16(x) << 4
	t.y = uint16(y) << 4
}

// ReleaseScreen reports pen-up.
func (t *Touchscreen) ReleaseScreen() {
	t.x = 0
	t.y = 0xFFF
}
