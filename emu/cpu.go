package emu

import (
	"encoding/binary"

	"github.com/beevik/go6502/cpu"
)

const (
	nmiVector   = 0xFFFA
	resetVector = 0xFFFC

	cpuStateSize = 15 // A, X, Y, SP, PS, PC(2), Cycles(8)
)

// CPU6502 wraps the beevik/go6502 NMOS core. The library has no NMI input,
// so the interrupt sequence is performed here against the same bus.
type CPU6502 struct {
	cpu *cpu.CPU
	mem cpu.Memory
}

// NewCPU6502 creates a 6502 executing from mem.
func NewCPU6502(mem cpu.Memory) *CPU6502 {
	return &CPU6502{
		cpu: cpu.NewCPU(cpu.NMOS, mem),
		mem: mem,
	}
}

// Reset clears the registers and loads PC from the reset vector.
func (c *CPU6502) Reset() {
	r := &c.cpu.Reg
	r.A, r.X, r.Y = 0, 0, 0
	r.SP = 0xFD
	r.RestorePS(0x24) // I set
	c.cpu.SetPC(c.mem.LoadAddress(resetVector))
}

// Step executes one instruction and returns the cycles it took.
func (c *CPU6502) Step() int {
	before := c.cpu.Cycles
	c.cpu.Step()
	n := int(c.cpu.Cycles - before)
	if n <= 0 {
		// Opcodes the core does not implement still take time
		n = 2
		c.cpu.Cycles += 2
	}
	return n
}

func (c *CPU6502) push(v byte) {
	c.mem.StoreByte(0x0100|uint16(c.cpu.Reg.SP), v)
	c.cpu.Reg.SP--
}

// TriggerNMI pushes PC and status and jumps through the NMI vector.
// Returns the 7 cycles of the interrupt sequence.
func (c *CPU6502) TriggerNMI() int {
	pc := c.cpu.Reg.PC
	c.push(byte(pc >> 8))
	c.push(byte(pc))
	c.push(c.cpu.Reg.SavePS(false))
	c.cpu.Reg.InterruptDisable = true
	c.cpu.SetPC(c.mem.LoadAddress(nmiVector))
	c.cpu.Cycles += 7
	return 7
}

// Cycles returns the total number of cycles executed.
func (c *CPU6502) Cycles() uint64 {
	return c.cpu.Cycles
}

// GetPC returns the program counter.
func (c *CPU6502) GetPC() uint16 {
	return c.cpu.Reg.PC
}

// GetSP returns the stack pointer.
func (c *CPU6502) GetSP() uint8 {
	return c.cpu.Reg.SP
}

// Serialize writes the register file into data (cpuStateSize bytes).
func (c *CPU6502) Serialize(data []byte) {
	r := &c.cpu.Reg
	data[0] = r.A
	data[1] = r.X
	data[2] = r.Y
	data[3] = r.SP
	data[4] = r.SavePS(false)
	binary.LittleEndian.PutUint16(data[5:], r.PC)
	binary.LittleEndian.PutUint64(data[7:], c.cpu.Cycles)
}

// Deserialize restores the register file written by Serialize.
func (c *CPU6502) Deserialize(data []byte) {
	r := &c.cpu.Reg
	r.A = data[0]
	r.X = data[1]
	r.Y = data[2]
	r.SP = data[3]
	r.RestorePS(data[4])
	c.cpu.SetPC(binary.LittleEndian.Uint16(data[5:]))
	c.cpu.Cycles = binary.LittleEndian.Uint64(data[7:])
}
