package emu

import "hash/crc32"

const (
	ramSize       = 0x1000
	vectorRAMSize = 0x0800
	vectorROMSize = 0x0800
	romBankSize   = 0x0800
	romBanks      = 3

	vectorRAMBase = 0x4000
	vectorROMBase = 0x5000
	romBase       = 0x6800
	romMirror     = romBankSize * romBanks // 0x1800
	romPinnedBase = 0xF800
)

// Memory holds the RAM and ROM regions of the Asteroids board.
//
// Memory map:
//
//	$0000-$0FFF: working RAM (4KB)
//	$4000-$47FF: vector RAM (2KB)
//	$5000-$57FF: vector ROM (2KB)
//	$6800-$F7FF: program ROM, three 2KB banks repeated every $1800
//	$F800-$FFFF: last program ROM bank (reset and interrupt vectors)
//
// Everything else is owned by the ports and registers in the Bus or is
// unmapped.
type Memory struct {
	ram       [ramSize]uint8
	vectorRAM [vectorRAMSize]uint8
	vectorROM [vectorROMSize]uint8
	rom       [romBanks][romBankSize]uint8
	ramSwap   bool // Output latch bit 2: player 2 RAM pages
	romCRC    uint32
}

// NewMemory creates memory populated from a validated ROM set.
func NewMemory(roms ROMSet) *Memory {
	m := &Memory{}
	for i := range m.rom {
		copy(m.rom[i][:], roms.Program[i])
	}
	copy(m.vectorROM[:], roms.Vector)
	m.romCRC = roms.CRC32()
	return m
}

// ramIndex applies the two-player page swap of $0200-$02FF and $0300-$03FF.
func (m *Memory) ramIndex(addr uint16) uint16 {
	a := addr & (ramSize - 1)
	if m.ramSwap && a >= 0x0200 && a < 0x0400 {
		a ^= 0x0100
	}
	return a
}

// romByte resolves a program ROM address, including the mirror.
func (m *Memory) romByte(addr uint16) uint8 {
	if addr >= romPinnedBase {
		return m.rom[romBanks-1][addr-romPinnedBase]
	}
	off := (addr - romBase) % romMirror
	return m.rom[off/romBankSize][off%romBankSize]
}

// Get reads a byte from the memory regions. Unmapped addresses return 0xFF.
func (m *Memory) Get(addr uint16) uint8 {
	switch {
	case addr < ramSize:
		return m.ram[m.ramIndex(addr)]
	case addr >= vectorRAMBase && addr < vectorRAMBase+vectorRAMSize:
		return m.vectorRAM[addr-vectorRAMBase]
	case addr >= vectorROMBase && addr < vectorROMBase+vectorROMSize:
		return m.vectorROM[addr-vectorROMBase]
	case addr >= romBase:
		return m.romByte(addr)
	}
	return 0xFF
}

// Set writes a byte to RAM or vector RAM. ROM and unmapped writes are ignored.
func (m *Memory) Set(addr uint16, val uint8) {
	switch {
	case addr < ramSize:
		m.ram[m.ramIndex(addr)] = val
	case addr >= vectorRAMBase && addr < vectorRAMBase+vectorRAMSize:
		m.vectorRAM[addr-vectorRAMBase] = val
	}
}

// SetRAMSwap selects the player 2 RAM pages.
func (m *Memory) SetRAMSwap(on bool) {
	m.ramSwap = on
}

// ClearRAM zeroes working and vector RAM.
func (m *Memory) ClearRAM() {
	m.ram = [ramSize]uint8{}
	m.vectorRAM = [vectorRAMSize]uint8{}
	m.ramSwap = false
}

// GetRAM returns the working RAM for inspection.
func (m *Memory) GetRAM() *[ramSize]uint8 {
	return &m.ram
}

// GetVectorRAM returns the vector RAM for inspection.
func (m *Memory) GetVectorRAM() *[vectorRAMSize]uint8 {
	return &m.vectorRAM
}

// GetROMCRC32 returns the checksum of the loaded program and vector ROMs.
// Save states carry it so they are only restored on the same ROM set.
func (m *Memory) GetROMCRC32() uint32 {
	return m.romCRC
}

// romSetCRC combines the images in load order.
func romSetCRC(images ...[]byte) uint32 {
	var crc uint32
	for _, img := range images {
		crc = crc32.Update(crc, crc32.IEEETable, img)
	}
	return crc
}
