package emu

// Decoder interprets a vector program one word at a time instead of
// stepping the state PROM. It shares the beam arithmetic of DVG and is kept
// as a cross-check: with one point per segment both produce identical
// frames for well formed programs.
type Decoder struct {
	mem           VectorMemory
	maxOps        int
	segmentPoints int

	pc    uint16
	sp    uint8
	depth int
	stack [4]uint16
	scale uint8
	beam  beam
}

// NewDecoder creates a decoder. segmentPoints caps the interpolated points
// emitted per drawn segment.
func NewDecoder(mem VectorMemory, maxOps, segmentPoints int) *Decoder {
	if segmentPoints < 1 {
		segmentPoints = 1
	}
	return &Decoder{mem: mem, maxOps: maxOps, segmentPoints: segmentPoints}
}

func (d *Decoder) fetch() uint16 {
	addr := vectorBase + d.pc<<1
	w := uint16(d.mem.Read(addr)) | uint16(d.mem.Read(addr+1))<<8
	d.pc = (d.pc + 1) & 0x0FFF
	return w
}

// Run executes from start until HALT, a return with an empty stack, or the
// opcode ceiling.
func (d *Decoder) Run(start uint16, fb *FrameBuffer) RunStats {
	d.pc = start & 0x0FFF
	d.sp, d.depth = 0, 0
	d.stack = [4]uint16{}
	d.scale = 0
	d.beam.center()
	fb.Reset()

	stats := RunStats{Start: d.pc}
	for !stats.Halted {
		if stats.Steps >= d.maxOps {
			stats.CeilingHit = true
			break
		}
		stats.Steps++

		w := d.fetch()
		op := uint8(w >> 12)
		switch {
		case op <= 0x9: // VCTR
			w1 := d.fetch()
			stats.Cycles += d.segment(fb, (d.scale+op)&0x0F, w1&0xFFF, w&0xFFF, uint8(w1>>12))
		case op == 0xA: // LABS
			w1 := d.fetch()
			d.scale = uint8(w1 >> 12)
			d.beam.moveTo(int(w1&0xFFF), int(w&0xFFF))
			fb.Append(d.beam.point(0))
		case op == 0xB: // HALT
			stats.Halted = true
		case op == 0xC: // JSRL
			d.sp = (d.sp + 1) & 0x0F
			d.stack[d.sp&3] = d.pc
			if d.depth < len(d.stack) {
				d.depth++
			}
			d.pc = w & 0x0FFF
		case op == 0xD: // RTSL
			if d.depth == 0 {
				stats.Halted = true
				break
			}
			d.depth--
			d.pc = d.stack[d.sp&3]
			d.sp = (d.sp - 1) & 0x0F
		case op == 0xE: // JMPL
			d.pc = w & 0x0FFF
		default: // SVEC
			dvx := (w & 0x000F) << 8
			dvy := w & 0x0F00
			stats.Cycles += d.segment(fb, svecScale(d.scale, dvx, dvy), dvx, dvy, uint8(w>>4)&0x0F)
		}
		stats.Cycles++
	}

	stats.Points = fb.Len()
	return stats
}

// segment draws from the beam position by the scaled delta, emitting
// points along the way. The last point is the exact endpoint.
func (d *Decoder) segment(fb *FrameBuffer, scale uint8, dvx, dvy uint16, z uint8) int {
	if fb.Len() == 0 {
		fb.Append(d.beam.point(0))
	}
	dx, dy := vectorDelta(scale, dvx, dvy)
	x0, y0 := int(d.beam.x), int(d.beam.y)
	n := segmentSteps(dx, dy, d.segmentPoints)
	for i := 1; i <= n; i++ {
		d.beam.moveTo(x0+dx*i/n, y0+dy*i/n)
		fb.Append(d.beam.point(z))
	}
	return n
}

// segmentSteps returns one point per 32 beam units, at least one and at
// most limit.
func segmentSteps(dx, dy, limit int) int {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	m := dx
	if dy > m {
		m = dy
	}
	n := m/32 + 1
	if n > limit {
		n = limit
	}
	return n
}
