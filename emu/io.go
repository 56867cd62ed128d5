package emu

import "sync/atomic"

// Button is a bit set of cabinet controls.
type Button uint16

const (
	ButtonCoinLeft Button = 1 << iota
	ButtonCoinCenter
	ButtonCoinRight
	ButtonStart1
	ButtonStart2
	ButtonThrust
	ButtonFire
	ButtonHyperspace
	ButtonLeft
	ButtonRight
	ButtonSelfTest
	ButtonSlam
	ButtonDiagStep
)

// Has reports whether all bits of b2 are set.
func (b Button) Has(b2 Button) bool {
	return b&b2 == b2
}

var buttonNames = [...]string{
	"coin_left", "coin_center", "coin_right", "start1", "start2",
	"thrust", "fire", "hyperspace", "left", "right",
	"self_test", "slam", "diag_step",
}

// ParseButton returns the button called name, as used in input scripts.
func ParseButton(name string) (Button, bool) {
	for i, n := range buttonNames {
		if n == name {
			return 1 << i, true
		}
	}
	return 0, false
}

// String lists the names of the buttons in b separated by spaces.
func (b Button) String() string {
	var s string
	for i, n := range buttonNames {
		if b&(1<<i) == 0 {
			continue
		}
		if s != "" {
			s += " "
		}
		s += n
	}
	return s
}

// InputState is the snapshot handed over by the display context once per tick.
type InputState struct {
	Buttons Button
	DIP     uint8
}

func (s InputState) pack() uint32 {
	return uint32(s.Buttons) | uint32(s.DIP)<<16
}

func unpackInput(v uint32) InputState {
	return InputState{Buttons: Button(v), DIP: uint8(v >> 16)}
}

// Port windows.
const (
	in0Base  = 0x2000
	in1Base  = 0x2400
	dsw1Base = 0x2800
)

// Ports implements the IN0, IN1 and DSW1 windows. Each IN read selects one
// bit of a status byte with the low address bits and answers 0x80 when
// that bit is set and 0x7F when it is clear.
type Ports struct {
	input atomic.Uint32
}

// NewPorts creates the input ports with no buttons pressed.
func NewPorts(dip uint8) *Ports {
	p := &Ports{}
	p.Set(InputState{DIP: dip})
	return p
}

// Set stores a new snapshot. Safe to call from any goroutine.
func (p *Ports) Set(s InputState) {
	p.input.Store(s.pack())
}

// Snapshot returns the current input snapshot.
func (p *Ports) Snapshot() InputState {
	return unpackInput(p.input.Load())
}

// IN0 status byte:
//
//	bit 1: 3 kHz clock
//	bit 2: DVG busy
//	bit 3: hyperspace
//	bit 4: fire
//	bit 5: diagnostic step
//	bit 6: slam
//	bit 7: self test
func (p *Ports) in0(cycles uint64, busy bool) uint8 {
	b := p.Snapshot().Buttons
	var v uint8
	if cycles&0x100 != 0 {
		v |= 0x02
	}
	if busy {
		v |= 0x04
	}
	if b.Has(ButtonHyperspace) {
		v |= 0x08
	}
	if b.Has(ButtonFire) {
		v |= 0x10
	}
	if b.Has(ButtonDiagStep) {
		v |= 0x20
	}
	if b.Has(ButtonSlam) {
		v |= 0x40
	}
	if b.Has(ButtonSelfTest) {
		v |= 0x80
	}
	return v
}

// IN1 status byte: coins, starts and ship controls.
func (p *Ports) in1() uint8 {
	b := p.Snapshot().Buttons
	var v uint8
	for i, btn := range [8]Button{
		ButtonCoinLeft, ButtonCoinCenter, ButtonCoinRight, ButtonStart1,
		ButtonStart2, ButtonThrust, ButtonRight, ButtonLeft,
	} {
		if b.Has(btn) {
			v |= 1 << i
		}
	}
	return v
}

func selectBit(status uint8, addr uint16) uint8 {
	if status&(1<<(addr&7)) != 0 {
		return 0x80
	}
	return 0x7F
}

// In reads the port windows. cycles feeds the 3 kHz clock bit and busy the
// DVG status bit. Addresses outside the windows return 0xFF.
func (p *Ports) In(addr uint16, cycles uint64, busy bool) uint8 {
	switch {
	case addr >= in0Base && addr < in0Base+8:
		return selectBit(p.in0(cycles, busy), addr)
	case addr >= in1Base && addr < in1Base+8:
		return selectBit(p.in1(), addr)
	case addr >= dsw1Base && addr < dsw1Base+4:
		// 74LS153: offset 0 reads switches 7-8, offset 3 reads switches 1-2
		dip := p.Snapshot().DIP
		return 0xFC | (dip>>(2*(3-(addr&3))))&0x03
	}
	return 0xFF
}
