package emu

import "github.com/beevik/go6502/cpu"

// Compile-time interface checks.
var _ cpu.Memory = (*Bus)(nil)
var _ VectorMemory = (*Bus)(nil)

// Bus is the address decoder of the board. The CPU reaches every part of
// the machine through it, and the DVG fetches its program through it.
type Bus struct {
	mem    *Memory
	ports  *Ports
	out    *OutputState
	dvg    *DVG
	check  *Decoder     // Cross-check decoder, nil when disabled
	decode *Decoder     // Replaces the PROM sequencer when set
	scrap  *FrameBuffer // Cross-check output
	frames *FrameExchange
	obs    Observer

	clock func() uint64 // CPU cycle counter for the 3 kHz bit

	throttleAddr  uint16
	throttleLimit uint8

	lastRun RunStats
}

// NewBus wires the memory, ports and outputs together and creates the DVG.
func NewBus(mem *Memory, ports *Ports, cfg Config, obs Observer) *Bus {
	cfg = cfg.withDefaults()
	if obs == nil {
		obs = NopObserver{}
	}
	b := &Bus{
		mem:           mem,
		ports:         ports,
		out:           &OutputState{},
		frames:        NewFrameExchange(cfg.MaxPoints),
		obs:           obs,
		clock:         func() uint64 { return 0 },
		throttleAddr:  cfg.ThrottleAddr,
		throttleLimit: cfg.ThrottleLimit,
	}
	b.dvg = NewDVG(b, cfg.MaxSteps, cfg.MaxCycles)
	switch {
	case cfg.Decoder:
		b.decode = NewDecoder(b, cfg.MaxOps, cfg.SegmentPoints)
	case cfg.CrossCheck:
		b.check = NewDecoder(b, cfg.MaxOps, 1)
		b.scrap = NewFrameBuffer(cfg.MaxPoints)
	}
	return b
}

// Read implements the CPU read callback.
func (b *Bus) Read(addr uint16) uint8 {
	if addr >= in0Base && addr < regGo {
		return b.ports.In(addr, b.clock(), b.dvg.Busy())
	}
	return b.mem.Get(addr)
}

// Write implements the CPU write callback.
func (b *Bus) Write(addr uint16, val uint8) {
	switch {
	case addr == b.throttleAddr && b.throttleLimit > 0 && val >= b.throttleLimit:
		// Nothing on this board clears the game's frame counter, so it
		// would count past the limit and the main loop would stall.
		b.obs.ThrottleReset(addr, val)
		b.mem.Set(addr, 0)
	case addr == regGo:
		b.goStrobe(val)
	case addr >= regOutputLatch && addr <= regNoiseReset:
		if b.out.write(addr, val) {
			if addr == regOutputLatch {
				b.mem.SetRAMSwap(b.out.RAMSwap)
			}
			b.obs.OutputWrite(addr, val)
		}
	default:
		b.mem.Set(addr, val)
	}
}

// goStrobe runs the DVG to completion from the page selected by val and
// publishes the frame.
func (b *Bus) goStrobe(val uint8) {
	pc := uint16(val&0x0F) << 8
	b.obs.GoStrobe(pc)

	fb := b.frames.Back()
	if b.decode != nil {
		b.lastRun = b.decode.Run(pc, fb)
		b.frames.Publish()
		b.obs.RunComplete(b.lastRun)
		return
	}
	b.lastRun = b.dvg.Run(pc, fb)
	if b.check != nil && b.lastRun.Halted {
		b.check.Run(pc, b.scrap)
		if i := fb.Diverges(b.scrap); i >= 0 {
			b.obs.Divergence(pc, i)
		}
	}
	b.frames.Publish()
	b.obs.RunComplete(b.lastRun)
}

// go6502 memory interface

func (b *Bus) LoadByte(addr uint16) byte     { return b.Read(addr) }
func (b *Bus) StoreByte(addr uint16, v byte) { b.Write(addr, v) }

func (b *Bus) LoadAddress(addr uint16) uint16 {
	return uint16(b.Read(addr)) | uint16(b.Read(addr+1))<<8
}

func (b *Bus) StoreAddress(addr uint16, v uint16) {
	b.Write(addr, byte(v))
	b.Write(addr+1, byte(v>>8))
}

func (b *Bus) LoadBytes(addr uint16, p []byte) {
	for i := range p {
		p[i] = b.Read(addr + uint16(i))
	}
}

func (b *Bus) StoreBytes(addr uint16, p []byte) {
	for i, v := range p {
		b.Write(addr+uint16(i), v)
	}
}

// DVG returns the vector generator.
func (b *Bus) DVG() *DVG { return b.dvg }

// Frames returns the frame exchange fed by GO strobes.
func (b *Bus) Frames() *FrameExchange { return b.frames }

// Outputs returns the decoded output registers.
func (b *Bus) Outputs() OutputState { return *b.out }

// LastRun returns the statistics of the most recent DVG run.
func (b *Bus) LastRun() RunStats { return b.lastRun }
