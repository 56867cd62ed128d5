package emu

import (
	"math/rand"
	"testing"
)

func runDecoder(p *VectorProgram, maxOps, segmentPoints int) (*FrameBuffer, RunStats) {
	b := createTestBus(DefaultConfig())
	p.LoadInto(b, 0)
	fb := NewFrameBuffer(2048)
	return fb, NewDecoder(b, maxOps, segmentPoints).Run(0, fb)
}

// randomProgram builds a straight-line program of LABS, VCTR and SVEC
// instructions ending in HALT.
func randomProgram(r *rand.Rand, n int) *VectorProgram {
	p := NewVectorProgram()
	for i := 0; i < n; i++ {
		switch r.Intn(4) {
		case 0:
			p.LABS(r.Intn(1024), r.Intn(1024), uint8(r.Intn(10)))
		case 1:
			p.SVEC(uint8(r.Intn(4)), r.Intn(8)-4, r.Intn(8)-4, uint8(r.Intn(16)))
		default:
			p.VCTR(uint8(r.Intn(10)), r.Intn(2047)-1023, r.Intn(2047)-1023, uint8(r.Intn(16)))
		}
	}
	return p.HALT()
}

// TestDecoder_LabsVctrHalt tests the LABS, VCTR, HALT frame with one point per
// segment
func TestDecoder_LabsVctrHalt(t *testing.T) {
	p := NewVectorProgram().LABS(200, 100, 0).VCTR(9, 50, -50, 15).HALT()
	fb, stats := runDecoder(p, 10000, 1)

	expectPoints(t, fb, []Point{
		{X: 800, Y: 400, Z: 0},
		{X: 1000, Y: 200, Z: 255},
	})
	if !stats.Halted {
		t.Error("Expected halt")
	}
}

// TestDecoder_MatchesPROM tests that both variants produce the same frame
func TestDecoder_MatchesPROM(t *testing.T) {
	programs := map[string]*VectorProgram{
		"test pattern": TestPattern(0),
		"subroutines": NewVectorProgram().LABS(10, 10, 0).
			JSRL(5).JSRL(5).HALT().
			SVEC(1, 2, 3, 9).VCTR(8, 100, -30, 4).RTSL(),
	}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		programs["random "+string(rune('A'+i%26))+string(rune('a'+i/26))] = randomProgram(r, 40)
	}

	for name, p := range programs {
		t.Run(name, func(t *testing.T) {
			prom, promStats := runDVG(p, 2048, 1000, 10000)
			dec, _ := runDecoder(p, 10000, 1)

			if !promStats.Halted {
				t.Fatalf("PROM run did not halt: %+v", promStats)
			}
			if i := prom.Diverges(dec); i >= 0 {
				t.Errorf("Variants diverge at entry %d (%d vs %d entries)", i, prom.Len(), dec.Len())
			}
		})
	}
}

// TestDecoder_Interpolation tests the extra points of long segments
func TestDecoder_Interpolation(t *testing.T) {
	p := NewVectorProgram().LABS(0, 0, 0).VCTR(9, 320, 0, 15).HALT()
	fb, _ := runDecoder(p, 10000, 20)

	// 320 units at one point per 32, plus the LABS point
	if fb.Len() != 12 {
		t.Fatalf("Points: expected 12, got %d", fb.Len())
	}
	last := fb.At(fb.Len() - 1)
	if expected := (Point{X: 1280, Y: 0, Z: 255}); last != expected {
		t.Errorf("Endpoint: expected %+v, got %+v", expected, last)
	}
	for i := 2; i < fb.Len(); i++ {
		if fb.At(i).X <= fb.At(i-1).X {
			t.Errorf("Point %d does not advance: %d after %d", i, fb.At(i).X, fb.At(i-1).X)
		}
	}
}

// TestDecoder_SegmentSteps tests the interpolation count
func TestDecoder_SegmentSteps(t *testing.T) {
	testCases := []struct {
		dx, dy, limit int
		expected      int
	}{
		{0, 0, 20, 1},
		{31, 0, 20, 1},
		{32, 0, 20, 2},
		{0, -320, 20, 11},
		{1023, 1023, 20, 20},
		{1023, 0, 1, 1},
	}

	for _, tc := range testCases {
		if got := segmentSteps(tc.dx, tc.dy, tc.limit); got != tc.expected {
			t.Errorf("segmentSteps(%d, %d, %d): expected %d, got %d", tc.dx, tc.dy, tc.limit, tc.expected, got)
		}
	}
}

// TestDecoder_ReturnAtTopHalts tests that RTSL with nothing pushed halts
func TestDecoder_ReturnAtTopHalts(t *testing.T) {
	p := NewVectorProgram().LABS(10, 10, 0).RTSL().VCTR(9, 100, 0, 15).HALT()
	fb, stats := runDecoder(p, 10000, 1)

	if !stats.Halted {
		t.Error("Expected halt")
	}
	if fb.Len() != 1 {
		t.Errorf("Points: expected 1, got %d", fb.Len())
	}
}

// TestDecoder_OpCeiling tests the opcode budget on an endless loop
func TestDecoder_OpCeiling(t *testing.T) {
	p := NewVectorProgram().JMPL(0)
	_, stats := runDecoder(p, 500, 1)

	if !stats.CeilingHit || stats.Halted {
		t.Errorf("Expected ceiling stop, got %+v", stats)
	}
	if stats.Steps != 500 {
		t.Errorf("Ops: expected 500, got %d", stats.Steps)
	}
}
