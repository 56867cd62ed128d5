package emu

// Entry points of the synthetic program in bank 2.
const (
	testPatternReset = 0x7800
	testPatternNMI   = 0x7815
	testPatternWord  = 0x0800 // Vector ROM, GO value 8
)

// testPatternCode strobes GO on the vector ROM pattern every fourth NMI.
var testPatternCode = []byte{
	0xA9, 0x08,       // LDA #$08
	0x8D, 0x00, 0x30, // STA $3000    GO
	0x8D, 0x00, 0x34, // STA $3400    watchdog
	0xA5, 0x00,       // LDA $00
	0xC9, 0x04,       // CMP #$04
	0x90, 0xFA,       // BCC -6
	0xA9, 0x00,       // LDA #$00
	0x85, 0x00,       // STA $00
	0x4C, 0x00, 0x78, // JMP $7800
	// NMI
	0xE6, 0x00,       // INC $00
	0x40,             // RTI
}

// TestPatternROMSet builds a ROM set that runs without the game images:
// the CPU strobes TestPattern from vector ROM on every fourth NMI.
func TestPatternROMSet() ROMSet {
	var set ROMSet
	for i := range set.Program {
		set.Program[i] = make([]byte, romBankSize)
	}
	bank := set.Program[2]
	copy(bank, testPatternCode)
	putVector := func(off int, addr uint16) {
		bank[off] = byte(addr)
		bank[off+1] = byte(addr >> 8)
	}
	putVector(0x7FA, testPatternNMI)
	putVector(0x7FC, testPatternReset)
	putVector(0x7FE, testPatternNMI)

	set.Vector = make([]byte, vectorROMSize)
	copy(set.Vector, TestPattern(testPatternWord).Bytes())
	return set
}
