package storage

import (
	"errors"
	"os"
	"path/filepath"
)

const settingsFile = "settings.json"

// Settings is the content of settings.json. Command line flags override
// every field.
type Settings struct {
	Version int             `json:"version"`
	Machine MachineSettings `json:"machine"`
	Video   VideoSettings   `json:"video"`
	Window  WindowSettings  `json:"window"`
}

// MachineSettings holds the DIP switches and DVG tunables.
type MachineSettings struct {
	Lives      int    `json:"lives"`    // 3 or 4
	Coinage    string `json:"coinage"`  // "free", "1c2", "1c1", "2c1"
	Language   string `json:"language"` // "english", "german", "french", "spanish"
	Points     int    `json:"points"`
	DwellUS    int    `json:"dwellUs"`
	CrossCheck bool   `json:"crossCheck"`
}

// VideoSettings contains display settings
type VideoSettings struct {
	Persistence float64 `json:"persistence"`
	Overlay     bool    `json:"overlay"`
}

// WindowSettings contains the window size
type WindowSettings struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultSettings returns the factory settings.
func DefaultSettings() *Settings {
	return &Settings{
		Version: 1,
		Machine: MachineSettings{
			Lives:    3,
			Coinage:  "1c1",
			Language: "english",
			Points:   2048,
			DwellUS:  2,
		},
		Video: VideoSettings{
			Persistence: 0.4,
			Overlay:     true,
		},
		Window: WindowSettings{
			Width:  768,
			Height: 768,
		},
	}
}

// LoadSettings reads settings.json from dir. A missing file yields the
// defaults, a corrupted one an error.
func LoadSettings(dir string) (*Settings, error) {
	path := filepath.Join(dir, settingsFile)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultSettings(), nil
	}

	s := &Settings{}
	if err := ReadJSON(path, s); err != nil {
		return nil, err
	}
	return migrateSettings(s), nil
}

// SaveSettings writes settings.json to dir atomically.
func SaveSettings(dir string, s *Settings) error {
	return AtomicWriteJSON(filepath.Join(dir, settingsFile), s)
}

// migrateSettings fills fields missing from older files.
func migrateSettings(s *Settings) *Settings {
	d := DefaultSettings()
	if s.Version == 0 {
		s.Version = 1
	}
	if s.Machine.Lives == 0 {
		s.Machine.Lives = d.Machine.Lives
	}
	if s.Machine.Coinage == "" {
		s.Machine.Coinage = d.Machine.Coinage
	}
	if s.Machine.Language == "" {
		s.Machine.Language = d.Machine.Language
	}
	if s.Machine.Points == 0 {
		s.Machine.Points = d.Machine.Points
	}
	if s.Window.Width == 0 {
		s.Window.Width = d.Window.Width
	}
	if s.Window.Height == 0 {
		s.Window.Height = d.Window.Height
	}
	return s
}
