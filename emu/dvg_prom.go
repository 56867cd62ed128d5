package emu

import (
	"errors"
	"fmt"
)

const promSize = 256

// ErrBadPROM is returned for a state PROM image of the wrong size.
var ErrBadPROM = errors.New("invalid DVG state PROM")

// promSequences lists, per opcode row, the states the sequencer walks
// through for one instruction. The last state returns to the first.
//
//	8 push  9 load  A draw  B halt/latch  C Y low  D opcode/Y high  E X low  F X high
var promSequences = [8][]uint8{
	0: {0xD, 0xC, 0xF, 0xE, 0xA}, // VCTR (opcodes 0-8)
	1: {0xD, 0xC, 0xF, 0xE, 0xA}, // VCTR (opcode 9)
	2: {0xD, 0xC, 0xF, 0xE, 0xB}, // LABS
	3: {0xD, 0xC, 0xB},           // HALT
	4: {0xD, 0xC, 0x8, 0x9},      // JSRL
	5: {0xD, 0xC, 0x9},           // RTSL
	6: {0xD, 0xC, 0x9},           // JMPL
	7: {0xD, 0xC, 0xA},           // SVEC
}

// defaultPROM is the state table rebuilt from the handler sequence of each
// opcode. Only the running half (address bit 7 set) is populated; the
// halted half idles in state 0.
var defaultPROM = generatePROM()

func generatePROM() [promSize]uint8 {
	var p [promSize]uint8
	for row, seq := range promSequences {
		base := 0x80 | row<<4
		p[base] = seq[0]
		for i, s := range seq {
			p[base|int(s)] = seq[(i+1)%len(seq)]
		}
	}
	return p
}

// LoadPROM replaces the generated table with a dumped 034602-01 image.
func (d *DVG) LoadPROM(data []byte) error {
	if len(data) != promSize {
		return fmt.Errorf("%w: %d bytes, expected %d", ErrBadPROM, len(data), promSize)
	}
	copy(d.prom[:], data)
	return nil
}

// PROM returns a copy of the active state table.
func (d *DVG) PROM() [promSize]uint8 {
	return d.prom
}
