package emu

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadROMSet is returned when a ROM image has the wrong size.
var ErrBadROMSet = errors.New("invalid ROM set")

// ErrMissingROM is returned when a required ROM file is absent.
var ErrMissingROM = errors.New("missing ROM file")

// ROMRole identifies where a ROM file is mapped.
type ROMRole int

const (
	RoleProgram ROMRole = iota
	RoleVector
	RolePROM
)

// ROMFile describes one file of the Asteroids (rev 4) ROM set.
type ROMFile struct {
	Name     string
	Size     int
	Role     ROMRole
	Bank     int  // Program ROM bank (0 = $6800, 1 = $7000, 2 = $7800)
	Optional bool // The DVG PROM falls back to the generated table
}

// ROMFiles lists the files of the ROM set using the MAME names.
var ROMFiles = []ROMFile{
	{Name: "035145-04e.ef2", Size: romBankSize, Role: RoleProgram, Bank: 0},
	{Name: "035144-04e.h2", Size: romBankSize, Role: RoleProgram, Bank: 1},
	{Name: "035143-02.j2", Size: romBankSize, Role: RoleProgram, Bank: 2},
	{Name: "035127-02.np3", Size: vectorROMSize, Role: RoleVector},
	{Name: "034602-01.c8", Size: promSize, Role: RolePROM, Optional: true},
}

// ROMSet holds the images needed to build an emulator.
type ROMSet struct {
	Program [romBanks][]byte
	Vector  []byte
	PROM    []byte // Optional DVG state PROM
}

// IsROMFile reports whether name (any directory stripped) belongs to the set.
func IsROMFile(name string) bool {
	_, ok := lookupROMFile(name)
	return ok
}

func lookupROMFile(name string) (ROMFile, bool) {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	for _, f := range ROMFiles {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return ROMFile{}, false
}

// NewROMSet assembles a ROM set from file contents keyed by file name.
// Names are matched case-insensitively; unknown names are ignored.
func NewROMSet(files map[string][]byte) (ROMSet, error) {
	var set ROMSet
	found := make(map[string]bool)
	for name, data := range files {
		f, ok := lookupROMFile(name)
		if !ok {
			continue
		}
		found[f.Name] = true
		switch f.Role {
		case RoleProgram:
			set.Program[f.Bank] = data
		case RoleVector:
			set.Vector = data
		case RolePROM:
			set.PROM = data
		}
	}
	for _, f := range ROMFiles {
		if !f.Optional && !found[f.Name] {
			return ROMSet{}, fmt.Errorf("%w: %s", ErrMissingROM, f.Name)
		}
	}
	if err := set.Validate(); err != nil {
		return ROMSet{}, err
	}
	return set, nil
}

// Validate checks the size of every image.
func (s ROMSet) Validate() error {
	for i, p := range s.Program {
		if len(p) != romBankSize {
			return fmt.Errorf("%w: program bank %d is %d bytes, expected %d", ErrBadROMSet, i, len(p), romBankSize)
		}
	}
	if len(s.Vector) != vectorROMSize {
		return fmt.Errorf("%w: vector ROM is %d bytes, expected %d", ErrBadROMSet, len(s.Vector), vectorROMSize)
	}
	if s.PROM != nil && len(s.PROM) != promSize {
		return fmt.Errorf("%w: %d bytes", ErrBadPROM, len(s.PROM))
	}
	return nil
}

// CRC32 returns the checksum of the program and vector images.
func (s ROMSet) CRC32() uint32 {
	return romSetCRC(s.Program[0], s.Program[1], s.Program[2], s.Vector)
}
