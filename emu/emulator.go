package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// Save state format constants
const (
	stateVersion    = 1
	stateMagic      = "AsteroidsDVG"
	stateHeaderSize = 22 // magic(12) + version(2) + romCRC(4) + dataCRC(4)
)

// ErrBadState is returned when a save state cannot be restored.
var ErrBadState = errors.New("invalid save state")

// Emulator owns every piece of machine state. Nothing is shared between
// instances.
type Emulator struct {
	cfg   Config
	mem   *Memory
	ports *Ports
	bus   *Bus
	cpu   *CPU6502
	obs   Observer

	nmiCycles int // Cycles since the last NMI
	frame     uint64
}

// FrameStats describes one call to RunFrame.
type FrameStats struct {
	Frame        uint64
	Cycles       int
	Instructions int
	NMIs         int
}

// NewEmulator builds a machine from a ROM set. obs may be nil.
func NewEmulator(roms ROMSet, cfg Config, obs Observer) (*Emulator, error) {
	if err := roms.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if obs == nil {
		obs = NopObserver{}
	}

	mem := NewMemory(roms)
	ports := NewPorts(cfg.DIP.Byte())
	bus := NewBus(mem, ports, cfg, obs)
	if roms.PROM != nil {
		if err := bus.dvg.LoadPROM(roms.PROM); err != nil {
			return nil, err
		}
	}

	e := &Emulator{
		cfg:   cfg,
		mem:   mem,
		ports: ports,
		bus:   bus,
		cpu:   NewCPU6502(bus),
		obs:   obs,
	}
	bus.clock = e.cpu.Cycles
	e.Reset()
	return e, nil
}

// Reset clears RAM and restarts the CPU from the reset vector.
func (e *Emulator) Reset() {
	e.mem.ClearRAM()
	// Locations the game reads before it first writes them
	e.mem.ram[0x1FF] = 0
	e.mem.ram[0x1D0] = 0
	e.cpu.Reset()
	e.nmiCycles = 0
}

// SetInput hands over the control snapshot. Safe to call from the display
// goroutine while RunFrame runs.
func (e *Emulator) SetInput(s InputState) {
	e.ports.Set(s)
}

// SetButtons keeps the configured DIP switches and replaces the buttons.
func (e *Emulator) SetButtons(b Button) {
	e.ports.Set(InputState{Buttons: b, DIP: e.cfg.DIP.Byte()})
}

// RunFrame executes one display frame worth of CPU cycles, delivering the
// 250 Hz NMI unless the self-test switch is on. GO strobes inside the frame
// run the DVG synchronously.
func (e *Emulator) RunFrame() FrameStats {
	budget := e.cfg.Timing.CyclesPerFrame()
	nmiPeriod := e.cfg.Timing.CyclesPerNMI()

	stats := FrameStats{Frame: e.frame}
	for stats.Cycles < budget {
		n := e.cpu.Step()
		stats.Cycles += n
		stats.Instructions++

		e.nmiCycles += n
		if e.nmiCycles >= nmiPeriod {
			e.nmiCycles -= nmiPeriod
			if !e.ports.Snapshot().Buttons.Has(ButtonSelfTest) {
				stats.Cycles += e.cpu.TriggerNMI()
				stats.NMIs++
				e.obs.NMI()
			}
		}
	}
	e.frame++
	return stats
}

// Frames returns the exchange the display context reads frames from.
func (e *Emulator) Frames() *FrameExchange {
	return e.bus.Frames()
}

// Bus returns the address decoder.
func (e *Emulator) Bus() *Bus {
	return e.bus
}

// CPU returns the processor.
func (e *Emulator) CPU() *CPU6502 {
	return e.cpu
}

// Config returns the active configuration.
func (e *Emulator) Config() Config {
	return e.cfg
}

// FrameCount returns the number of frames run.
func (e *Emulator) FrameCount() uint64 {
	return e.frame
}

// DVGState is a copy of the vector generator registers.
type DVGState struct {
	PC        uint16
	SP        uint8
	Stack     [4]uint16
	Latch     uint8
	Op        uint8
	DVX, DVY  uint16
	Scale     uint8
	Intensity uint8
	X, Y      int16
	Halt      bool
	LastRun   RunStats
}

// DVGState returns the vector generator registers after the last run.
func (e *Emulator) DVGState() DVGState {
	d := e.bus.dvg
	return DVGState{
		PC:        d.pc,
		SP:        d.sp,
		Stack:     d.stack,
		Latch:     d.latch,
		Op:        d.op,
		DVX:       d.dvx,
		DVY:       d.dvy,
		Scale:     d.scale,
		Intensity: d.intensity,
		X:         d.beam.x,
		Y:         d.beam.y,
		Halt:      d.halt,
		LastRun:   e.bus.lastRun,
	}
}

// =============================================================================
// Save State Serialization
// =============================================================================

const dvgStateSize = 2 + 1 + 8 + 1 + 1 + 1 + 2 + 2 + 1 + 1 + 2 + 2 + 1

// SerializeSize returns the total size in bytes needed for a save state.
func SerializeSize() int {
	return stateHeaderSize +
		cpuStateSize +
		ramSize +
		vectorRAMSize +
		4 + // output and sound latches
		dvgStateSize +
		4 + // nmiCycles
		8 // frame
}

// Serialize creates a save state and returns it as a byte slice.
func (e *Emulator) Serialize() ([]byte, error) {
	data := make([]byte, SerializeSize())

	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)
	binary.LittleEndian.PutUint32(data[14:18], e.mem.GetROMCRC32())

	offset := stateHeaderSize
	e.cpu.Serialize(data[offset:])
	offset += cpuStateSize

	offset += copy(data[offset:], e.mem.ram[:])
	offset += copy(data[offset:], e.mem.vectorRAM[:])

	latches := e.bus.out.pack()
	offset += copy(data[offset:], latches[:])

	offset = e.serializeDVG(data, offset)

	binary.LittleEndian.PutUint32(data[offset:], uint32(e.nmiCycles))
	offset += 4
	binary.LittleEndian.PutUint64(data[offset:], e.frame)

	binary.LittleEndian.PutUint32(data[18:22], crc32.ChecksumIEEE(data[stateHeaderSize:]))
	return data, nil
}

// Deserialize restores emulator state from a save state byte slice.
func (e *Emulator) Deserialize(data []byte) error {
	if err := e.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize
	e.cpu.Deserialize(data[offset:])
	offset += cpuStateSize

	offset += copy(e.mem.ram[:], data[offset:offset+ramSize])
	offset += copy(e.mem.vectorRAM[:], data[offset:offset+vectorRAMSize])

	var latches [4]uint8
	offset += copy(latches[:], data[offset:offset+4])
	e.bus.out.unpack(latches)
	e.mem.SetRAMSwap(e.bus.out.RAMSwap)

	offset = e.deserializeDVG(data, offset)

	e.nmiCycles = int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	e.frame = binary.LittleEndian.Uint64(data[offset:])
	return nil
}

// VerifyState checks if a save state is valid without loading it.
func (e *Emulator) VerifyState(data []byte) error {
	if len(data) < SerializeSize() {
		return fmt.Errorf("%w: too short", ErrBadState)
	}
	if string(data[0:12]) != stateMagic {
		return fmt.Errorf("%w: bad magic", ErrBadState)
	}
	if version := binary.LittleEndian.Uint16(data[12:14]); version > stateVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrBadState, version)
	}
	if binary.LittleEndian.Uint32(data[14:18]) != e.mem.GetROMCRC32() {
		return fmt.Errorf("%w: made with a different ROM set", ErrBadState)
	}
	if binary.LittleEndian.Uint32(data[18:22]) != crc32.ChecksumIEEE(data[stateHeaderSize:]) {
		return fmt.Errorf("%w: data is corrupted", ErrBadState)
	}
	return nil
}

func (e *Emulator) serializeDVG(data []byte, offset int) int {
	d := e.bus.dvg
	binary.LittleEndian.PutUint16(data[offset:], d.pc)
	offset += 2
	data[offset] = d.sp
	offset++
	for _, s := range d.stack {
		binary.LittleEndian.PutUint16(data[offset:], s)
		offset += 2
	}
	data[offset] = d.latch
	data[offset+1] = d.op
	data[offset+2] = d.data
	offset += 3
	binary.LittleEndian.PutUint16(data[offset:], d.dvx)
	binary.LittleEndian.PutUint16(data[offset+2:], d.dvy)
	offset += 4
	data[offset] = d.scale
	data[offset+1] = d.intensity
	offset += 2
	binary.LittleEndian.PutUint16(data[offset:], uint16(d.beam.x))
	binary.LittleEndian.PutUint16(data[offset+2:], uint16(d.beam.y))
	offset += 4
	data[offset] = boolBit(d.halt)
	return offset + 1
}

func (e *Emulator) deserializeDVG(data []byte, offset int) int {
	d := e.bus.dvg
	d.pc = binary.LittleEndian.Uint16(data[offset:])
	offset += 2
	d.sp = data[offset]
	offset++
	for i := range d.stack {
		d.stack[i] = binary.LittleEndian.Uint16(data[offset:])
		offset += 2
	}
	d.latch = data[offset]
	d.op = data[offset+1]
	d.data = data[offset+2]
	offset += 3
	d.dvx = binary.LittleEndian.Uint16(data[offset:])
	d.dvy = binary.LittleEndian.Uint16(data[offset+2:])
	offset += 4
	d.scale = data[offset]
	d.intensity = data[offset+1]
	offset += 2
	d.beam.x = int16(binary.LittleEndian.Uint16(data[offset:]))
	d.beam.y = int16(binary.LittleEndian.Uint16(data[offset+2:]))
	offset += 4
	d.halt = data[offset] != 0
	d.running = false
	return offset + 1
}
