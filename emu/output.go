package emu

// Write-only registers.
const (
	regGo          = 0x3000
	regOutputLatch = 0x3200
	regWatchdog    = 0x3400
	regExplosion   = 0x3600
	regThump       = 0x3A00
	regSoundLatch  = 0x3C00 // $3C00-$3C07
	regNoiseReset  = 0x3E00
)

// Sound latch outputs ($3C00-$3C07, data bit 7).
const (
	SoundSaucer = iota
	SoundSaucerFire
	SoundSaucerSize
	SoundThrust
	SoundShipFire
	SoundLife
)

// OutputState is the decoded content of the output and sound registers.
// Nothing here produces audio; it exists so frontends and tests can see
// what the game asked for.
type OutputState struct {
	Latch        uint8 // Raw $3200 value
	Start1LED    bool
	Start2LED    bool
	RAMSwap      bool
	CoinCounters [3]bool

	ExplosionPitch  uint8 // $3600 bits 6-7
	ExplosionVolume uint8 // $3600 bits 2-5
	ThumpEnabled    bool  // $3A00 bit 4
	ThumpFreq       uint8 // $3A00 bits 0-3
	Sound           [8]bool
	NoiseResets     uint32
	WatchdogKicks   uint32
}

// write decodes a register write. It reports false for addresses that are
// not output registers.
func (o *OutputState) write(addr uint16, val uint8) bool {
	switch {
	case addr == regOutputLatch:
		o.Latch = val
		// Lamps are active low
		o.Start2LED = val&0x01 == 0
		o.Start1LED = val&0x02 == 0
		o.RAMSwap = val&0x04 != 0
		o.CoinCounters[0] = val&0x08 != 0
		o.CoinCounters[1] = val&0x10 != 0
		o.CoinCounters[2] = val&0x20 != 0
	case addr == regWatchdog:
		o.WatchdogKicks++
	case addr == regExplosion:
		o.ExplosionPitch = val >> 6
		o.ExplosionVolume = (val >> 2) & 0x0F
	case addr == regThump:
		o.ThumpEnabled = val&0x10 != 0
		o.ThumpFreq = val & 0x0F
	case addr >= regSoundLatch && addr < regSoundLatch+8:
		o.Sound[addr&7] = val&0x80 != 0
	case addr == regNoiseReset:
		o.NoiseResets++
	default:
		return false
	}
	return true
}

// pack returns the latch bytes in save state order.
func (o *OutputState) pack() [4]uint8 {
	var sound uint8
	for i, on := range o.Sound {
		if on {
			sound |= 1 << i
		}
	}
	var thump uint8
	if o.ThumpEnabled {
		thump = 0x10
	}
	return [4]uint8{
		o.Latch,
		o.ExplosionPitch<<6 | o.ExplosionVolume<<2,
		thump | o.ThumpFreq,
		sound,
	}
}

func (o *OutputState) unpack(b [4]uint8) {
	kicks, resets := o.WatchdogKicks, o.NoiseResets
	*o = OutputState{}
	o.write(regOutputLatch, b[0])
	o.write(regExplosion, b[1])
	o.write(regThump, b[2])
	for i := range o.Sound {
		o.Sound[i] = b[3]&(1<<i) != 0
	}
	o.WatchdogKicks, o.NoiseResets = kicks, resets
}
