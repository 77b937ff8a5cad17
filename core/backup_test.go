package core

import "testing"

func TestClassifyBackupSizeTable(t *testing.T) {
	cases := []struct {
		size int
		want BackupKind
	}{
		{0, BackupNone},
		{512, BackupEEPROMSmall},
		{8 * 1024, BackupEEPROMSmall},
		{64 * 1024, BackupEEPROMNormal},
		{256 * 1024, BackupFlash},
		{1024 * 1024, BackupFlash},
	}
	for _, c := range cases {
		if got := classifyBackup(c.size); got != c.want {
			t.Fatalf("classifyBackup(%d) = %v, want %v", c.size, got, c.want)
		}
	}
}

func TestEEPROMSmallWriteThenRead(t *testing.T) {
	e := newEEPROM(make([]byte, 512), true)

	e.Write(false, 0x06) // WREN

	e.Write(true, 0x02)  // WRLO
	e.Write(true, 0x05)  // address byte
	e.Write(false, 0xAB) // data byte, ends transaction

	e.Write(true, 0x03) // RDLO
	e.Write(true, 0x05) // address byte
	e.Write(false, 0x00)

	if got := e.Read(); got != 0xAB {
		t.Fatalf("EEPROM readback = 0x%02X, want 0xAB", got)
	}
}

func TestEEPROMWriteIgnoredWithoutWriteEnable(t *testing.T) {
	e := newEEPROM(make([]byte, 512), true)

	e.Write(true, 0x02)
	e.Write(true, 0x05)
	e.Write(false, 0xAB)

	e.Write(true, 0x03)
	e.Write(true, 0x05)
	e.Write(false, 0x00)

	if got := e.Read(); got != 0 {
		t.Fatalf("EEPROM readback = 0x%02X, want 0 (write without WREN must be ignored)", got)
	}
}

func TestFlashPageWriteThenRead(t *testing.T) {
	f := newFlash(nil)

	f.Write(false, 0x06) // WREN
	f.Write(true, 0x0A)  // page program instruction
	f.Write(true, 0x00)  // address byte 1
	f.Write(true, 0x00)  // address byte 2
	f.Write(true, 0x10)  // address byte 3 -> addr = 0x10
	f.Write(false, 0x7F) // data byte, ends transaction

	if got := f.mem[0x10]; got != 0x7F {
		t.Fatalf("flash[0x10] = 0x%02X, want 0x7F", got)
	}

	f.Write(true, 0x03) // read instruction
	f.Write(true, 0x00)
	f.Write(true, 0x00)
	f.Write(true, 0x10)
	f.Write(false, 0x00)

	if got := f.Read(); got != 0x7F {
		t.Fatalf("flash readback = 0x%02X, want 0x7F", got)
	}
}
