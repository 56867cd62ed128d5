package emu

import (
	"sync"
	"testing"
)

// TestFrameBuffer_Bounded tests that appends past capacity are dropped
func TestFrameBuffer_Bounded(t *testing.T) {
	fb := NewFrameBuffer(3)

	for i := 0; i < 5; i++ {
		ok := fb.Append(Point{X: uint16(i)})
		if expected := i < 3; ok != expected {
			t.Errorf("Append %d: expected %v, got %v", i, expected, ok)
		}
	}
	if fb.Len() != 3 || !fb.Full() {
		t.Errorf("Expected a full buffer of 3, got %d", fb.Len())
	}
	if got := fb.At(2).X; got != 2 {
		t.Errorf("Last kept entry: expected X=2, got %d", got)
	}

	fb.Reset()
	if fb.Len() != 0 || fb.Cap() != 3 {
		t.Errorf("After reset: expected len 0 cap 3, got %d %d", fb.Len(), fb.Cap())
	}
}

// TestFrameBuffer_Diverges tests the first-difference search
func TestFrameBuffer_Diverges(t *testing.T) {
	build := func(xs ...uint16) *FrameBuffer {
		fb := NewFrameBuffer(8)
		for _, x := range xs {
			fb.Append(Point{X: x})
		}
		return fb
	}

	testCases := []struct {
		name     string
		a, b     *FrameBuffer
		expected int
	}{
		{"equal", build(1, 2, 3), build(1, 2, 3), -1},
		{"empty", build(), build(), -1},
		{"differs", build(1, 2, 3), build(1, 9, 3), 1},
		{"shorter", build(1, 2), build(1, 2, 3), 2},
		{"longer", build(1, 2, 3), build(1), 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Diverges(tc.b); got != tc.expected {
				t.Errorf("expected %d, got %d", tc.expected, got)
			}
		})
	}
}

// TestFrameExchange_Latest tests freshness and newest-wins
func TestFrameExchange_Latest(t *testing.T) {
	x := NewFrameExchange(4)

	if _, fresh := x.Latest(); fresh {
		t.Error("Nothing published yet, frame should not be fresh")
	}

	for i := uint16(1); i <= 3; i++ {
		fb := x.Back()
		fb.Reset()
		fb.Append(Point{X: i})
		x.Publish()
	}

	fb, fresh := x.Latest()
	if !fresh {
		t.Fatal("Expected a fresh frame")
	}
	if got := fb.At(0).X; got != 3 {
		t.Errorf("Latest frame: expected X=3, got %d", got)
	}
	if _, fresh := x.Latest(); fresh {
		t.Error("Second read without a publish should not be fresh")
	}
	if got := x.Published(); got != 3 {
		t.Errorf("Published: expected 3, got %d", got)
	}
}

// TestFrameExchange_Ownership tests that the writer never gets the buffer
// the reader holds
func TestFrameExchange_Ownership(t *testing.T) {
	x := NewFrameExchange(4)

	x.Back().Append(Point{X: 1})
	x.Publish()
	held, _ := x.Latest()

	for i := 0; i < 10; i++ {
		if x.Back() == held {
			t.Fatalf("Iteration %d: writer got the reader's buffer", i)
		}
		x.Back().Reset()
		x.Back().Append(Point{X: 100})
		x.Publish()
	}
	if got := held.At(0).X; got != 1 {
		t.Errorf("Held frame changed: expected X=1, got %d", got)
	}
}

// TestFrameExchange_Concurrent tests that every frame the reader sees is
// complete while the writer keeps publishing
func TestFrameExchange_Concurrent(t *testing.T) {
	const frames = 2000
	x := NewFrameExchange(16)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= frames; i++ {
			fb := x.Back()
			fb.Reset()
			for j := 0; j < 16; j++ {
				fb.Append(Point{X: uint16(i)})
			}
			x.Publish()
		}
	}()

	var last uint16
	for x.Published() < frames || last < frames {
		fb, fresh := x.Latest()
		if !fresh {
			continue
		}
		v := fb.At(0).X
		for j := 0; j < fb.Len(); j++ {
			if fb.At(j).X != v {
				t.Fatalf("Torn frame %d at entry %d", v, j)
			}
		}
		if fb.Len() != 16 {
			t.Fatalf("Frame %d has %d entries", v, fb.Len())
		}
		if v < last {
			t.Fatalf("Frame went backwards: %d after %d", v, last)
		}
		last = v
	}
	wg.Wait()
}
