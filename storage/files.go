// Package storage keeps the user settings and save state slots under the
// user's configuration directory.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const appDir = "asteroidino"

// Slots per ROM set
const NumSlots = 10

// ConfigDir returns the directory settings and states live in, creating
// it if needed.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, appDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// StatePath returns the file of a save state slot. States are kept per
// ROM set so that VerifyState never sees a foreign image.
func StatePath(dir string, romCRC uint32, slot int) (string, error) {
	if slot < 0 || slot >= NumSlots {
		return "", fmt.Errorf("invalid save slot %d (0-%d)", slot, NumSlots-1)
	}
	return filepath.Join(dir, "states", fmt.Sprintf("%08x", romCRC), fmt.Sprintf("slot%d.state", slot)), nil
}

// AtomicWrite writes data to a temporary file and renames it over path.
func AtomicWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// AtomicWriteJSON writes v as indented JSON.
func AtomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return AtomicWrite(path, data)
}

// ReadJSON decodes the JSON file at path into v.
func ReadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
