package emu

// Beam coordinates are 10 bits wide on the monitor; frame buffer entries
// are rescaled to the 12-bit range of the DAC.
const (
	beamMax    = 1023
	beamCenter = 512
	outputMax  = 4095
)

// beam is the position of the electron beam, clamped to 0..1023.
type beam struct {
	x, y int16
}

func (b *beam) center() {
	b.x, b.y = beamCenter, beamCenter
}

func (b *beam) moveTo(x, y int) {
	b.x = clampBeam(x)
	b.y = clampBeam(y)
}

// point converts the beam position and a 4-bit intensity to an entry.
func (b beam) point(z uint8) Point {
	return Point{X: outputCoord(b.x), Y: outputCoord(b.y), Z: outputIntensity(z)}
}

func clampBeam(v int) int16 {
	if v < 0 {
		return 0
	}
	if v > beamMax {
		return beamMax
	}
	return int16(v)
}

func outputCoord(v int16) uint16 {
	return uint16(int(v) * outputMax / beamMax)
}

// outputIntensity maps 0..15 to 0..255.
func outputIntensity(z uint8) uint8 {
	return (z & 0x0F) * 17
}

// signExtend11 interprets the low 11 bits of a delta register as a two's
// complement value (bit 10 is the sign).
func signExtend11(v uint16) int {
	v &= 0x7FF
	if v&0x400 != 0 {
		return int(v) - 0x800
	}
	return int(v)
}

// vectorMultiplier is the rate multiplier for an effective scale. Scale 9
// draws deltas 1:1; scale 10 and up wrap to zero like the 11-bit counter.
func vectorMultiplier(scale uint8) int {
	return (2 << (scale & 0x0F)) & 0x7FF
}

func scaleDelta(d, mult int) int {
	return d * mult >> 10
}

// svecScale folds the two scale bits of a short vector, held in bit 11 of
// the delta registers, into the global scale.
func svecScale(scale uint8, dvx, dvy uint16) uint8 {
	add := uint8((dvy&0x800)>>11) | uint8(((dvx&0x800)^0x800)>>10) | uint8((dvx&0x800)>>9)
	return (scale + add) & 0x0F
}

// vectorDelta returns the beam displacement of a draw.
func vectorDelta(scale uint8, dvx, dvy uint16) (int, int) {
	mult := vectorMultiplier(scale)
	return scaleDelta(signExtend11(dvx), mult), scaleDelta(signExtend11(dvy), mult)
}
