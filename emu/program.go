package emu

// VectorProgram assembles DVG instructions into words.
//
//	VCTR  oooo yyyy yyyy yyyy / zzzz xxxx xxxx xxxx   (o = scale 0-9)
//	LABS  1010 yyyy yyyy yyyy / ssss xxxx xxxx xxxx
//	HALT  1011 ---- ---- ----
//	JSRL  1100 aaaa aaaa aaaa
//	RTSL  1101 ---- ---- ----
//	JMPL  1110 aaaa aaaa aaaa
//	SVEC  1111 Syyy zzzz Sxxx                         (S = scale bits)
//
// Deltas are two's complement: 11 bits for VCTR, 3 bits (in units of 256)
// for SVEC.
type VectorProgram struct {
	words []uint16
}

// NewVectorProgram returns an empty program.
func NewVectorProgram() *VectorProgram {
	return &VectorProgram{}
}

func (p *VectorProgram) emit(w ...uint16) *VectorProgram {
	p.words = append(p.words, w...)
	return p
}

// VCTR draws a long vector. scale is the opcode (0-9) added to the global
// scale; 9 with a global scale of 0 draws deltas 1:1.
func (p *VectorProgram) VCTR(scale uint8, dx, dy int, z uint8) *VectorProgram {
	return p.emit(
		uint16(scale&0x0F)<<12|uint16(dy)&0x7FF,
		uint16(z&0x0F)<<12|uint16(dx)&0x7FF,
	)
}

// LABS moves the beam to (x, y) and sets the global scale.
func (p *VectorProgram) LABS(x, y int, scale uint8) *VectorProgram {
	return p.emit(
		0xA000|uint16(y)&0x0FFF,
		uint16(scale&0x0F)<<12|uint16(x)&0x0FFF,
	)
}

func (p *VectorProgram) HALT() *VectorProgram { return p.emit(0xB000) }
func (p *VectorProgram) RTSL() *VectorProgram { return p.emit(0xD000) }

// JSRL calls the subroutine at word address addr.
func (p *VectorProgram) JSRL(addr uint16) *VectorProgram {
	return p.emit(0xC000 | addr&0x0FFF)
}

// JMPL jumps to word address addr.
func (p *VectorProgram) JMPL(addr uint16) *VectorProgram {
	return p.emit(0xE000 | addr&0x0FFF)
}

// SVEC draws a short vector. dx and dy are in -4..3, scale in 0..3 adds
// 2..5 to the global scale.
func (p *VectorProgram) SVEC(scale uint8, dx, dy int, z uint8) *VectorProgram {
	w := uint16(0xF000)
	w |= uint16(scale&1) << 11
	w |= uint16(dy&0x07) << 8
	w |= uint16(z&0x0F) << 4
	w |= uint16(scale&2) << 2
	w |= uint16(dx & 0x07)
	return p.emit(w)
}

// Here returns the word offset of the next instruction.
func (p *VectorProgram) Here() uint16 {
	return uint16(len(p.words))
}

// Words returns the assembled words.
func (p *VectorProgram) Words() []uint16 {
	return p.words
}

// Bytes returns the program in memory order (little-endian words).
func (p *VectorProgram) Bytes() []byte {
	b := make([]byte, 0, len(p.words)*2)
	for _, w := range p.words {
		b = append(b, byte(w), byte(w>>8))
	}
	return b
}

// ByteWriter is the write side of the bus.
type ByteWriter interface {
	Write(addr uint16, val uint8)
}

// LoadInto stores the program at word address wordAddr through the bus.
func (p *VectorProgram) LoadInto(w ByteWriter, wordAddr uint16) {
	addr := vectorBase + wordAddr<<1
	for i, b := range p.Bytes() {
		w.Write(addr+uint16(i), b)
	}
}

// ----------------------------------------------------------------------------
// Test pattern
// ----------------------------------------------------------------------------

// TestPattern draws a border, a cross hair and a star built from a
// subroutine call, for checking a display without the game ROMs. base is
// the word address the program will be loaded at.
func TestPattern(base uint16) *VectorProgram {
	p := NewVectorProgram()
	p.LABS(0, 0, 0).
		VCTR(9, 1023, 0, 12).
		VCTR(9, 0, 1023, 12).
		VCTR(9, -1023, 0, 12).
		VCTR(9, 0, -1023, 12)
	p.LABS(512, 312, 0).VCTR(9, 0, 400, 8)
	p.LABS(312, 512, 0).VCTR(9, 400, 0, 8)

	p.LABS(512, 512, 0)
	call := p.Here()
	p.JSRL(0) // patched below
	p.HALT()

	star := base + p.Here()
	p.words[call] = 0xC000 | star&0x0FFF
	for _, d := range [][2]int{{3, 3}, {-3, -3}, {-3, 3}, {3, -3}, {0, 3}, {0, -3}} {
		p.SVEC(3, d[0], d[1], 15).SVEC(3, -d[0], -d[1], 0)
	}
	p.RTSL()
	return p
}
