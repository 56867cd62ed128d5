package storage

import (
	"errors"
	"fmt"
	"os"
)

// ErrEmptySlot is returned by Load for a slot that was never written.
var ErrEmptySlot = errors.New("save slot is empty")

// Slots tracks the selected save slot of one ROM set.
type Slots struct {
	dir     string
	romCRC  uint32
	current int
}

// NewSlots returns the slots of the ROM set with the given CRC, starting
// at slot. An out of range slot selects slot 0.
func NewSlots(dir string, romCRC uint32, slot int) *Slots {
	if slot < 0 || slot >= NumSlots {
		slot = 0
	}
	return &Slots{dir: dir, romCRC: romCRC, current: slot}
}

// Current returns the selected slot.
func (s *Slots) Current() int {
	return s.current
}

// Next selects the next slot, wrapping after the last.
func (s *Slots) Next() int {
	s.current = (s.current + 1) % NumSlots
	return s.current
}

// Previous selects the previous slot, wrapping before the first.
func (s *Slots) Previous() int {
	s.current--
	if s.current < 0 {
		s.current = NumSlots - 1
	}
	return s.current
}

// Path returns the file of the selected slot.
func (s *Slots) Path() string {
	path, _ := StatePath(s.dir, s.romCRC, s.current)
	return path
}

// Exists reports whether slot holds a state.
func (s *Slots) Exists(slot int) bool {
	path, err := StatePath(s.dir, s.romCRC, slot)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Save writes data to the selected slot.
func (s *Slots) Save(data []byte) error {
	if err := AtomicWrite(s.Path(), data); err != nil {
		return fmt.Errorf("failed to write slot %d: %w", s.current, err)
	}
	return nil
}

// Load reads the state in the selected slot.
func (s *Slots) Load() ([]byte, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("slot %d: %w", s.current, ErrEmptySlot)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %d: %w", s.current, err)
	}
	return data, nil
}
