package emu

import "time"

// Timing holds the clock constants of the Asteroids board.
type Timing struct {
	CPUClockHz int // 6502 clock (12.096 MHz master / 8)
	FPS        int // Display refresh rate
	NMIHz      int // 3 kHz clock divided by 12
}

// AsteroidsTiming is the timing of the original board.
var AsteroidsTiming = Timing{
	CPUClockHz: 1512000,
	FPS:        60,
	NMIHz:      250,
}

// CyclesPerFrame returns the CPU cycle budget of one display frame.
func (t Timing) CyclesPerFrame() int {
	return t.CPUClockHz / t.FPS
}

// CyclesPerNMI returns the number of CPU cycles between two NMIs.
func (t Timing) CyclesPerNMI() int {
	return t.CPUClockHz / t.NMIHz
}

// Frame-throttle counter written by the game's NMI handler.
const (
	DefaultThrottleAddr  = 0x005B
	DefaultThrottleLimit = 4
)

// Config holds the tunables of one emulator instance.
type Config struct {
	Timing Timing

	MaxPoints     int           // Frame buffer capacity per GO strobe
	Dwell         time.Duration // Renderer wait between samples
	MaxSteps      int           // PROM steps per DVG run
	MaxCycles     int           // Handler cycles per DVG run
	MaxOps        int           // Opcodes per run of the decode variant
	SegmentPoints int           // Interpolated points per segment (decode variant)

	// Writes of ThrottleLimit or more to ThrottleAddr store zero.
	// A limit of zero disables the workaround.
	ThrottleAddr  uint16
	ThrottleLimit uint8

	DIP        DIPSettings
	CrossCheck bool // Run the decode variant after every GO and compare

	// Decoder publishes the frames of the decode variant, with up to
	// SegmentPoints samples per segment, instead of the PROM sequencer's.
	// CrossCheck is ignored in this mode.
	Decoder bool
}

// DefaultConfig returns the configuration of the Asteroids board as the
// game ROMs expect it.
func DefaultConfig() Config {
	return Config{
		Timing:        AsteroidsTiming,
		MaxPoints:     2048,
		Dwell:         2 * time.Microsecond,
		MaxSteps:      1000,
		MaxCycles:     10000,
		MaxOps:        10000,
		SegmentPoints: 20,
		ThrottleAddr:  DefaultThrottleAddr,
		ThrottleLimit: DefaultThrottleLimit,
		DIP:           DefaultDIP(),
	}
}

// withDefaults fills zero values so a partially built Config stays usable.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Timing.CPUClockHz == 0 {
		c.Timing = d.Timing
	}
	if c.MaxPoints <= 0 {
		c.MaxPoints = d.MaxPoints
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = d.MaxSteps
	}
	if c.MaxCycles <= 0 {
		c.MaxCycles = d.MaxCycles
	}
	if c.MaxOps <= 0 {
		c.MaxOps = d.MaxOps
	}
	if c.SegmentPoints <= 0 {
		c.SegmentPoints = d.SegmentPoints
	}
	return c
}
