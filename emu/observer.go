package emu

import "sync/atomic"

// Observer receives telemetry from the emulation context. Calls happen on
// the emulation goroutine and must not block.
type Observer interface {
	GoStrobe(pc uint16)
	RunComplete(stats RunStats)
	ThrottleReset(addr uint16, value uint8)
	OutputWrite(addr uint16, value uint8)
	NMI()
	// Divergence reports the first entry where the decode variant
	// disagrees with the PROM run started at pc.
	Divergence(pc uint16, index int)
}

// NopObserver ignores everything.
type NopObserver struct{}

func (NopObserver) GoStrobe(uint16)             {}
func (NopObserver) RunComplete(RunStats)        {}
func (NopObserver) ThrottleReset(uint16, uint8) {}
func (NopObserver) OutputWrite(uint16, uint8)   {}
func (NopObserver) NMI()                        {}
func (NopObserver) Divergence(uint16, int)      {}

// MultiObserver fans every event out to each observer in order.
type MultiObserver []Observer

func (m MultiObserver) GoStrobe(pc uint16) {
	for _, o := range m {
		o.GoStrobe(pc)
	}
}

func (m MultiObserver) RunComplete(stats RunStats) {
	for _, o := range m {
		o.RunComplete(stats)
	}
}

func (m MultiObserver) ThrottleReset(addr uint16, value uint8) {
	for _, o := range m {
		o.ThrottleReset(addr, value)
	}
}

func (m MultiObserver) OutputWrite(addr uint16, value uint8) {
	for _, o := range m {
		o.OutputWrite(addr, value)
	}
}

func (m MultiObserver) NMI() {
	for _, o := range m {
		o.NMI()
	}
}

func (m MultiObserver) Divergence(pc uint16, index int) {
	for _, o := range m {
		o.Divergence(pc, index)
	}
}

// Counters is an Observer that keeps running totals which other goroutines
// may read at any time.
type Counters struct {
	goStrobes      atomic.Uint64
	runs           atomic.Uint64
	ceilingHits    atomic.Uint64
	points         atomic.Uint64
	throttleResets atomic.Uint64
	outputWrites   atomic.Uint64
	nmis           atomic.Uint64
	divergences    atomic.Uint64

	lastStart  atomic.Uint32
	lastSteps  atomic.Uint32
	lastPoints atomic.Uint32
	outLatch   atomic.Uint32
}

// CounterSnapshot is a consistent-enough copy of Counters for display.
type CounterSnapshot struct {
	GoStrobes      uint64
	Runs           uint64
	CeilingHits    uint64
	Points         uint64
	ThrottleResets uint64
	OutputWrites   uint64
	NMIs           uint64
	Divergences    uint64

	LastStart  uint16
	LastSteps  int
	LastPoints int
	OutLatch   uint8
}

func (c *Counters) GoStrobe(uint16) {
	c.goStrobes.Add(1)
}

func (c *Counters) RunComplete(stats RunStats) {
	c.runs.Add(1)
	if stats.CeilingHit {
		c.ceilingHits.Add(1)
	}
	c.points.Add(uint64(stats.Points))
	c.lastStart.Store(uint32(stats.Start))
	c.lastSteps.Store(uint32(stats.Steps))
	c.lastPoints.Store(uint32(stats.Points))
}

func (c *Counters) ThrottleReset(uint16, uint8) {
	c.throttleResets.Add(1)
}

func (c *Counters) OutputWrite(addr uint16, value uint8) {
	c.outputWrites.Add(1)
	if addr == regOutputLatch {
		c.outLatch.Store(uint32(value))
	}
}

func (c *Counters) NMI() {
	c.nmis.Add(1)
}

func (c *Counters) Divergence(uint16, int) {
	c.divergences.Add(1)
}

// Snapshot copies the counters.
func (c *Counters) Snapshot() CounterSnapshot {
	return CounterSnapshot{
		GoStrobes:      c.goStrobes.Load(),
		Runs:           c.runs.Load(),
		CeilingHits:    c.ceilingHits.Load(),
		Points:         c.points.Load(),
		ThrottleResets: c.throttleResets.Load(),
		OutputWrites:   c.outputWrites.Load(),
		NMIs:           c.nmis.Load(),
		Divergences:    c.divergences.Load(),
		LastStart:      uint16(c.lastStart.Load()),
		LastSteps:      int(c.lastSteps.Load()),
		LastPoints:     int(c.lastPoints.Load()),
		OutLatch:       uint8(c.outLatch.Load()),
	}
}
