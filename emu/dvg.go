package emu

// Vector program words are fetched through the CPU address space: word
// address pc lives at byte $4000 + 2*pc, so words $000-$3FF are vector RAM
// and $800-$BFF are vector ROM.
const vectorBase = 0x4000

// VectorMemory is the read side of the bus as seen by the DVG.
type VectorMemory interface {
	Read(addr uint16) uint8
}

// RunStats describes one DVG run.
type RunStats struct {
	Start      uint16 // Word address the run started at
	Steps      int    // PROM steps (or opcodes for the decode variant)
	Cycles     int
	Points     int
	Halted     bool // Reached a HALT
	CeilingHit bool // Stopped by the step or cycle ceiling
}

// DVG is the PROM-driven Digital Vector Generator.
//
// Every step looks up the next state in the PROM, and when bit 3 of the new
// state is set it fetches one program byte and runs the handler selected by
// the low three state bits. Handler numbers are part of the hardware
// contract and match the original board:
//
//	0 push return address   4 latch Y low byte
//	1 pop / load PC         5 latch opcode and Y high bits
//	2 draw                  6 latch X low byte and scale
//	3 halt or latch beam    7 latch X high bits and intensity
type DVG struct {
	mem  VectorMemory
	prom [promSize]uint8

	maxSteps  int
	maxCycles int

	pc        uint16
	sp        uint8
	stack     [4]uint16
	latch     uint8 // State latch; bit 4 mirrors halt
	op        uint8
	data      uint8
	dvx, dvy  uint16
	scale     uint8
	intensity uint8
	beam      beam
	halt      bool
	running   bool

	fb *FrameBuffer
}

var dvgHandlers = [8]func(*DVG) int{
	(*DVG).push,
	(*DVG).load,
	(*DVG).draw,
	(*DVG).haltStrobe,
	(*DVG).latch0,
	(*DVG).latch1,
	(*DVG).latch2,
	(*DVG).latch3,
}

// NewDVG creates a DVG reading its program from mem, using the generated
// state PROM.
func NewDVG(mem VectorMemory, maxSteps, maxCycles int) *DVG {
	d := &DVG{
		mem:       mem,
		prom:      defaultPROM,
		maxSteps:  maxSteps,
		maxCycles: maxCycles,
		halt:      true,
	}
	d.beam.center()
	return d
}

// Busy reports whether a run is in progress and not halted. This is the
// value of the IN0 status bit polled by the CPU.
func (d *DVG) Busy() bool {
	return d.running && !d.halt
}

// PC returns the current program counter (word address).
func (d *DVG) PC() uint16 {
	return d.pc
}

func (d *DVG) reset(start uint16) {
	d.pc = start & 0x0FFF
	d.sp = 0
	d.stack = [4]uint16{}
	d.latch = 0
	d.op = 0
	d.data = 0
	d.dvx, d.dvy = 0, 0
	d.scale, d.intensity = 0, 0
	d.beam.center()
	d.halt = false
}

func boolBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func (d *DVG) promAddr() uint8 {
	addr := ((d.latch>>4)^1)&1<<7 | d.latch&0x0F
	if d.op&0x08 != 0 {
		addr |= (d.op & 0x07) << 4
	}
	return addr
}

// Run resets the DVG to start (a word address), clears fb, and executes
// until HALT or a ceiling. It returns control only when the run is over,
// so Busy is never true between calls.
func (d *DVG) Run(start uint16, fb *FrameBuffer) RunStats {
	d.reset(start)
	fb.Reset()
	d.fb = fb
	d.running = true

	stats := RunStats{Start: start & 0x0FFF}
	for !d.halt {
		if stats.Steps >= d.maxSteps || stats.Cycles >= d.maxCycles {
			stats.CeilingHit = true
			break
		}
		d.latch = d.latch&0x10 | d.prom[d.promAddr()]&0x0F
		cost := 1
		if d.latch&0x08 != 0 {
			d.data = d.mem.Read(vectorBase + d.pc<<1 + uint16(d.latch&1))
			cost += dvgHandlers[d.latch&7](d)
		}
		d.latch = boolBit(d.halt)<<4 | d.latch&0x0F
		stats.Steps++
		stats.Cycles += cost
	}

	d.running = false
	d.fb = nil
	stats.Halted = d.halt
	stats.Points = fb.Len()
	return stats
}

// ----------------------------------------------------------------------------
// Handlers
// ----------------------------------------------------------------------------

func (d *DVG) push() int {
	if d.op&1 == 0 {
		d.sp = (d.sp + 1) & 0x0F
		d.stack[d.sp&3] = d.pc
	}
	return 0
}

func (d *DVG) load() int {
	if d.op&1 != 0 {
		d.pc = d.stack[d.sp&3]
		d.sp = (d.sp - 1) & 0x0F
	} else {
		// JSRL/JMPL: dvy already holds a word address
		d.pc = d.dvy & 0x0FFF
	}
	return 0
}

func (d *DVG) draw() int {
	var scale uint8
	if d.op == 0x0F {
		scale = svecScale(d.scale, d.dvx, d.dvy)
		d.dvx &= 0xF00
		d.dvy &= 0xF00
	} else {
		scale = (d.scale + d.op) & 0x0F
	}

	if d.fb.Len() == 0 {
		d.fb.Append(d.beam.point(0))
	}
	dx, dy := vectorDelta(scale, d.dvx, d.dvy)
	d.beam.moveTo(int(d.beam.x)+dx, int(d.beam.y)+dy)
	d.fb.Append(d.beam.point(d.intensity))
	return vectorMultiplier(scale) >> 6
}

// haltStrobe halts on HALT (opcode bit 0 set). For LABS it latches the
// absolute position and leaves a blank point there.
func (d *DVG) haltStrobe() int {
	d.halt = d.op&1 != 0
	if !d.halt {
		d.beam.moveTo(int(d.dvx&0xFFF), int(d.dvy&0xFFF))
		d.fb.Append(d.beam.point(0))
	}
	return 0
}

func (d *DVG) latch0() int {
	d.dvy &= 0xF00
	if d.op == 0x0F {
		d.latch3()
	} else {
		d.dvy |= uint16(d.data)
	}
	d.pc = (d.pc + 1) & 0x0FFF
	return 0
}

func (d *DVG) latch1() int {
	d.dvy = d.dvy&0xFF | uint16(d.data&0x0F)<<8
	d.op = d.data >> 4
	if d.op == 0x0F {
		d.dvx &= 0xF00
		d.dvy &= 0xF00
	}
	return 0
}

func (d *DVG) latch2() int {
	d.dvx &= 0xF00
	if d.op != 0x0F {
		d.dvx |= uint16(d.data)
	}
	// LABS loads the global scale from the intensity nibble
	if d.op&0x0A == 0x0A {
		d.scale = d.intensity
	}
	d.pc = (d.pc + 1) & 0x0FFF
	return 0
}

func (d *DVG) latch3() int {
	d.dvx = d.dvx&0xFF | uint16(d.data&0x0F)<<8
	d.intensity = d.data >> 4
	return 0
}
