package emu

import (
	"testing"
	"time"
)

// TestRenderer_Order tests that position precedes intensity for every entry
func TestRenderer_Order(t *testing.T) {
	fb := NewFrameBuffer(8)
	fb.Append(Point{X: 10, Y: 20, Z: 0})
	fb.Append(Point{X: 30, Y: 40, Z: 255})

	d := &recordingDriver{}
	n := NewRenderer(d, 0).Render(fb)

	if n != 2 {
		t.Errorf("Rendered: expected 2, got %d", n)
	}
	expected := []string{"pos", "z", "pos", "z"}
	if len(d.calls) != len(expected) {
		t.Fatalf("Calls: expected %v, got %v", expected, d.calls)
	}
	for i := range expected {
		if d.calls[i] != expected[i] {
			t.Errorf("Call %d: expected %s, got %s", i, expected[i], d.calls[i])
		}
	}
	if d.points[1] != (Point{X: 30, Y: 40}) || d.z[1] != 255 {
		t.Errorf("Second entry: got %+v z=%d", d.points[1], d.z[1])
	}
}

// TestRenderer_FrameDriver tests the frame brackets
func TestRenderer_FrameDriver(t *testing.T) {
	fb := NewFrameBuffer(8)
	fb.Append(Point{X: 1, Y: 1, Z: 17})

	d := &framedDriver{}
	NewRenderer(d, 0).Render(fb)

	expected := []string{"begin", "pos", "z", "end"}
	if len(d.calls) != len(expected) {
		t.Fatalf("Calls: expected %v, got %v", expected, d.calls)
	}
	for i := range expected {
		if d.calls[i] != expected[i] {
			t.Errorf("Call %d: expected %s, got %s", i, expected[i], d.calls[i])
		}
	}
}

// TestRenderer_Dwell tests that the wait runs between entries only
func TestRenderer_Dwell(t *testing.T) {
	fb := NewFrameBuffer(8)
	for i := 0; i < 4; i++ {
		fb.Append(Point{X: uint16(i)})
	}

	r := NewRenderer(&recordingDriver{}, 2*time.Microsecond)
	var waits []time.Duration
	r.wait = func(d time.Duration) { waits = append(waits, d) }
	r.Render(fb)

	if len(waits) != 3 {
		t.Fatalf("Waits: expected 3, got %d", len(waits))
	}
	for i, w := range waits {
		if w != 2*time.Microsecond {
			t.Errorf("Wait %d: expected 2µs, got %v", i, w)
		}
	}
}

// TestRenderer_Empty tests that an empty frame sends nothing
func TestRenderer_Empty(t *testing.T) {
	d := &recordingDriver{}
	if n := NewRenderer(d, time.Microsecond).Render(NewFrameBuffer(8)); n != 0 {
		t.Errorf("Rendered: expected 0, got %d", n)
	}
	if len(d.calls) != 0 {
		t.Errorf("Calls: expected none, got %v", d.calls)
	}
}
