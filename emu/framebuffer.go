package emu

import "sync/atomic"

// Point is one frame buffer entry: a beam position in 0..4095 and an
// 8-bit intensity. Z == 0 is a blank move.
type Point struct {
	X, Y uint16
	Z    uint8
}

// FrameBuffer is the bounded, ordered output of one DVG run.
// Appends past capacity are dropped.
type FrameBuffer struct {
	points []Point
}

// NewFrameBuffer creates a buffer holding at most max points.
func NewFrameBuffer(max int) *FrameBuffer {
	return &FrameBuffer{points: make([]Point, 0, max)}
}

// Append adds p and reports whether it fit.
func (f *FrameBuffer) Append(p Point) bool {
	if len(f.points) == cap(f.points) {
		return false
	}
	f.points = append(f.points, p)
	return true
}

func (f *FrameBuffer) Reset()     { f.points = f.points[:0] }
func (f *FrameBuffer) Len() int   { return len(f.points) }
func (f *FrameBuffer) Cap() int   { return cap(f.points) }
func (f *FrameBuffer) Full() bool { return len(f.points) == cap(f.points) }

// At returns entry i.
func (f *FrameBuffer) At(i int) Point {
	return f.points[i]
}

// Points returns the entries in insertion order. The slice aliases the
// buffer and is only valid until the next Reset.
func (f *FrameBuffer) Points() []Point {
	return f.points
}

// Diverges returns the index of the first entry that differs from o, or -1
// when both buffers hold the same entries.
func (f *FrameBuffer) Diverges(o *FrameBuffer) int {
	n := len(f.points)
	if len(o.points) < n {
		n = len(o.points)
	}
	for i := 0; i < n; i++ {
		if f.points[i] != o.points[i] {
			return i
		}
	}
	if len(f.points) != len(o.points) {
		return n
	}
	return -1
}

// ----------------------------------------------------------------------------
// Frame exchange
// ----------------------------------------------------------------------------

const frameFresh = 1 << 2

// FrameExchange hands finished frames from the emulation context (single
// writer) to the display context (single reader) through three buffers.
// The writer owns back, the reader owns front, and the middle slot is
// swapped atomically, so neither side ever waits for the other.
type FrameExchange struct {
	bufs      [3]*FrameBuffer
	back      uint32
	front     uint32
	middle    atomic.Uint32 // buffer index | frameFresh
	published atomic.Uint64
}

// NewFrameExchange creates an exchange of three buffers of max points.
func NewFrameExchange(max int) *FrameExchange {
	x := &FrameExchange{back: 0, front: 2}
	for i := range x.bufs {
		x.bufs[i] = NewFrameBuffer(max)
	}
	x.middle.Store(1)
	return x
}

// Back returns the buffer the writer fills next.
func (x *FrameExchange) Back() *FrameBuffer {
	return x.bufs[x.back]
}

// Publish makes the back buffer the newest frame and takes a free buffer
// as the new back buffer.
func (x *FrameExchange) Publish() {
	prev := x.middle.Swap(x.back | frameFresh)
	x.back = prev &^ frameFresh
	x.published.Add(1)
}

// Latest returns the newest published frame, and whether it is new since
// the previous call. The buffer stays valid until the next call.
func (x *FrameExchange) Latest() (*FrameBuffer, bool) {
	if x.middle.Load()&frameFresh == 0 {
		return x.bufs[x.front], false
	}
	prev := x.middle.Swap(x.front)
	x.front = prev &^ frameFresh
	return x.bufs[x.front], true
}

// Published returns the number of frames published so far.
func (x *FrameExchange) Published() uint64 {
	return x.published.Load()
}
