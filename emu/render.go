package emu

import "time"

// DisplayDriver is the beam output stage. Both calls complete the hardware
// transaction before returning.
type DisplayDriver interface {
	SetPosition(x, y uint16) // 0..4095
	SetIntensity(z uint8)    // 0..255
}

// FrameDriver is implemented by drivers that want to know where a frame
// starts and ends.
type FrameDriver interface {
	DisplayDriver
	BeginFrame()
	EndFrame()
}

// Renderer drains a frame buffer into a DisplayDriver.
type Renderer struct {
	driver DisplayDriver
	dwell  time.Duration
	wait   func(time.Duration)
}

// NewRenderer creates a renderer waiting dwell between samples. A zero
// dwell sends samples back to back.
func NewRenderer(driver DisplayDriver, dwell time.Duration) *Renderer {
	return &Renderer{driver: driver, dwell: dwell, wait: spinWait}
}

// Dwell returns the wait between samples.
func (r *Renderer) Dwell() time.Duration {
	return r.dwell
}

// spinWait busy-waits; sleeping has millisecond granularity on most hosts
// and the dwell is a few microseconds.
func spinWait(d time.Duration) {
	for start := time.Now(); time.Since(start) < d; {
	}
}

// Render sends every entry of fb in order and returns how many were sent.
func (r *Renderer) Render(fb *FrameBuffer) int {
	fd, framed := r.driver.(FrameDriver)
	if framed {
		fd.BeginFrame()
	}
	points := fb.Points()
	for i, p := range points {
		r.driver.SetPosition(p.X, p.Y)
		r.driver.SetIntensity(p.Z)
		if r.dwell > 0 && i < len(points)-1 {
			r.wait(r.dwell)
		}
	}
	if framed {
		fd.EndFrame()
	}
	return len(points)
}
