package cli

import (
	"github.com/Andretti1967/asteroidino/emu"
	"github.com/Andretti1967/asteroidino/logger"
)

// LogObserver writes emulator events to the central log. GO strobes and
// NMIs are only logged when Verbose is set.
type LogObserver struct {
	Verbose bool

	latch    uint8
	latchSet bool
}

func (o *LogObserver) GoStrobe(pc uint16) {
	if o.Verbose {
		logger.Logf("dvg", "GO at 0x%03X", pc)
	}
}

func (o *LogObserver) RunComplete(stats emu.RunStats) {
	switch {
	case stats.CeilingHit:
		logger.Logf("dvg", "run at 0x%03X stopped by ceiling after %d steps, %d points", stats.Start, stats.Steps, stats.Points)
	case o.Verbose:
		logger.Logf("dvg", "run at 0x%03X: %d steps, %d cycles, %d points", stats.Start, stats.Steps, stats.Cycles, stats.Points)
	}
}

func (o *LogObserver) ThrottleReset(addr uint16, value uint8) {
	logger.Logf("throttle", "write of %d to 0x%04X stored as 0", value, addr)
}

// OutputWrite logs changes of the output latch only.
func (o *LogObserver) OutputWrite(addr uint16, value uint8) {
	if addr != 0x3200 || (o.latchSet && value == o.latch) {
		return
	}
	o.latch, o.latchSet = value, true
	logger.Logf("output", "latch 0x%02X", value)
}

func (o *LogObserver) NMI() {}

func (o *LogObserver) Divergence(pc uint16, index int) {
	logger.Logf("crosscheck", "run at 0x%03X diverges at entry %d", pc, index)
}
