package emu

import "testing"

// TestIO_DefaultState tests that no button reads as set
func TestIO_DefaultState(t *testing.T) {
	p := NewPorts(DefaultDIP().Byte())

	for addr := uint16(in1Base); addr < in1Base+8; addr++ {
		if got := p.In(addr, 0, false); got != 0x7F {
			t.Errorf("IN1 0x%04X: expected 0x7F, got 0x%02X", addr, got)
		}
	}
	for addr := uint16(in0Base + 3); addr < in0Base+8; addr++ {
		if got := p.In(addr, 0, false); got != 0x7F {
			t.Errorf("IN0 0x%04X: expected 0x7F, got 0x%02X", addr, got)
		}
	}
}

// TestIO_BitSelect tests that every control appears on exactly one address
func TestIO_BitSelect(t *testing.T) {
	testCases := []struct {
		name   string
		button Button
		addr   uint16
	}{
		{"hyperspace", ButtonHyperspace, 0x2003},
		{"fire", ButtonFire, 0x2004},
		{"diag step", ButtonDiagStep, 0x2005},
		{"slam", ButtonSlam, 0x2006},
		{"self test", ButtonSelfTest, 0x2007},
		{"coin left", ButtonCoinLeft, 0x2400},
		{"coin center", ButtonCoinCenter, 0x2401},
		{"coin right", ButtonCoinRight, 0x2402},
		{"start 1", ButtonStart1, 0x2403},
		{"start 2", ButtonStart2, 0x2404},
		{"thrust", ButtonThrust, 0x2405},
		{"rotate right", ButtonRight, 0x2406},
		{"rotate left", ButtonLeft, 0x2407},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPorts(0)
			p.Set(InputState{Buttons: tc.button})

			for _, base := range []uint16{in0Base + 3, in1Base} {
				for addr := base; addr < base&0xFF00+8; addr++ {
					expected := uint8(0x7F)
					if addr == tc.addr {
						expected = 0x80
					}
					if got := p.In(addr, 0, false); got != expected {
						t.Errorf("0x%04X: expected 0x%02X, got 0x%02X", addr, expected, got)
					}
				}
			}
		})
	}
}

// TestIO_ClockAndBusy tests the 3 kHz clock and DVG status bits of IN0
func TestIO_ClockAndBusy(t *testing.T) {
	p := NewPorts(0)

	testCases := []struct {
		cycles uint64
		busy   bool
		clock  uint8
		status uint8
	}{
		{0x000, false, 0x7F, 0x7F},
		{0x100, false, 0x80, 0x7F},
		{0x1FF, true, 0x80, 0x80},
		{0x200, true, 0x7F, 0x80},
	}

	for i, tc := range testCases {
		if got := p.In(0x2001, tc.cycles, tc.busy); got != tc.clock {
			t.Errorf("Test %d: clock expected 0x%02X, got 0x%02X", i, tc.clock, got)
		}
		if got := p.In(0x2002, tc.cycles, tc.busy); got != tc.status {
			t.Errorf("Test %d: busy expected 0x%02X, got 0x%02X", i, tc.status, got)
		}
	}
}

// TestIO_DSW1 tests the two-bit switch pair reads
func TestIO_DSW1(t *testing.T) {
	// Switch pairs from the top: coinage=2, right coin=1, center/ships=3, language=0
	p := NewPorts(0x9C)

	testCases := []struct {
		addr     uint16
		expected uint8
	}{
		{0x2800, 0xFE}, // bits 6-7
		{0x2801, 0xFD}, // bits 4-5
		{0x2802, 0xFF}, // bits 2-3
		{0x2803, 0xFC}, // bits 0-1
	}

	for _, tc := range testCases {
		if got := p.In(tc.addr, 0, false); got != tc.expected {
			t.Errorf("DSW1 0x%04X: expected 0x%02X, got 0x%02X", tc.addr, tc.expected, got)
		}
	}
}

// TestIO_Unmapped tests addresses outside the port windows
func TestIO_Unmapped(t *testing.T) {
	p := NewPorts(0)
	for _, addr := range []uint16{0x2008, 0x2408, 0x2804, 0x2C00} {
		if got := p.In(addr, 0, false); got != 0xFF {
			t.Errorf("0x%04X: expected 0xFF, got 0x%02X", addr, got)
		}
	}
}

// TestIO_Snapshot tests that a snapshot round trips through the atomic
func TestIO_Snapshot(t *testing.T) {
	p := NewPorts(0x84)
	in := InputState{Buttons: ButtonFire | ButtonLeft | ButtonDiagStep, DIP: 0x5A}
	p.Set(in)
	if got := p.Snapshot(); got != in {
		t.Errorf("Snapshot: expected %+v, got %+v", in, got)
	}
}

// TestIO_ButtonNames tests the script names of the controls
func TestIO_ButtonNames(t *testing.T) {
	testCases := []struct {
		name     string
		expected Button
	}{
		{"coin_left", ButtonCoinLeft},
		{"start1", ButtonStart1},
		{"hyperspace", ButtonHyperspace},
		{"diag_step", ButtonDiagStep},
	}
	for _, tc := range testCases {
		b, ok := ParseButton(tc.name)
		if !ok || b != tc.expected {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.expected, b)
		}
	}
	if _, ok := ParseButton("turbo"); ok {
		t.Error("turbo should not be a button")
	}

	if got := (ButtonFire | ButtonLeft).String(); got != "fire left" {
		t.Errorf("String: expected %q, got %q", "fire left", got)
	}
}
