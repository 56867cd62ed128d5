package ebiten

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Andretti1967/asteroidino/emu"
	"github.com/Andretti1967/asteroidino/storage"
)

// testMachine records the calls the menu makes.
type testMachine struct {
	paused  bool
	state   []byte
	loaded  []byte
	saveErr error
}

func (m *testMachine) Config() emu.Config { return emu.DefaultConfig() }
func (m *testMachine) Frames() *emu.FrameExchange { return nil }
func (m *testMachine) SetButtons(emu.Button) {}
func (m *testMachine) SetPaused(paused bool) { m.paused = paused }
func (m *testMachine) SaveState() ([]byte, error) { return m.state, m.saveErr }
func (m *testMachine) LoadState(data []byte) error {
	m.loaded = data
	return nil
}

type testHost struct {
	persistence float64
	overlay     bool
}

func (h *testHost) Persistence() float64 { return h.persistence }
func (h *testHost) SetPersistence(p float64) { h.persistence = p }
func (h *testHost) Overlay() bool { return h.overlay }
func (h *testHost) SetOverlay(on bool) { h.overlay = on }

func createTestMenu(t *testing.T) (*Menu, *testMachine, *testHost, string) {
	t.Helper()
	dir := t.TempDir()
	m := &testMachine{state: []byte{0xA5, 0x5A}}
	h := &testHost{persistence: 0.4, overlay: true}
	menu := newMenu(m, h, MenuOptions{
		Slots:     storage.NewSlots(dir, 0x12345678, 0),
		Settings:  storage.DefaultSettings(),
		ConfigDir: dir,
	})
	return menu, m, h, dir
}

func TestMenu_PausesWhileOpen(t *testing.T) {
	menu, m, _, _ := createTestMenu(t)

	menu.open()
	if !menu.Visible() || !m.paused {
		t.Fatalf("open: expected visible and paused, got visible=%v paused=%v", menu.Visible(), m.paused)
	}
	menu.resume()
	if menu.Visible() || m.paused {
		t.Errorf("resume: expected hidden and running, got visible=%v paused=%v", menu.Visible(), m.paused)
	}
	if menu.QuitRequested() {
		t.Error("QuitRequested: expected false after resume")
	}

	menu.open()
	menu.requestQuit()
	if !menu.QuitRequested() || m.paused {
		t.Errorf("requestQuit: expected quit and running, got quit=%v paused=%v", menu.QuitRequested(), m.paused)
	}
}

func TestMenu_SaveLoadSlot(t *testing.T) {
	menu, m, _, _ := createTestMenu(t)
	menu.open()

	menu.nextSlot()
	menu.nextSlot()
	if menu.opts.Slots.Current() != 2 {
		t.Fatalf("slot: expected 2, got %d", menu.opts.Slots.Current())
	}

	menu.loadState()
	if menu.status != "Slot 2 is empty" {
		t.Errorf("status: expected %q, got %q", "Slot 2 is empty", menu.status)
	}
	if m.loaded != nil {
		t.Error("LoadState called for an empty slot")
	}

	menu.saveState()
	if menu.status != "State saved to slot 2" {
		t.Errorf("status: expected %q, got %q", "State saved to slot 2", menu.status)
	}
	if !menu.opts.Slots.Exists(2) {
		t.Fatal("Exists: expected slot 2 to hold a state")
	}

	menu.loadState()
	if !bytes.Equal(m.loaded, m.state) {
		t.Errorf("LoadState: expected %v, got %v", m.state, m.loaded)
	}

	menu.previousSlot()
	menu.previousSlot()
	menu.previousSlot()
	if menu.opts.Slots.Current() != storage.NumSlots-1 {
		t.Errorf("slot: expected %d, got %d", storage.NumSlots-1, menu.opts.Slots.Current())
	}
}

func TestMenu_SaveFailure(t *testing.T) {
	menu, m, _, _ := createTestMenu(t)
	m.saveErr = errors.New("bus busy")

	menu.saveState()
	if !strings.HasPrefix(menu.status, "Save failed") {
		t.Errorf("status: expected a save failure, got %q", menu.status)
	}
	if menu.opts.Slots.Exists(0) {
		t.Error("Exists: expected no state after a failed save")
	}
}

func TestMenu_CyclePersistence(t *testing.T) {
	testCases := []struct {
		name     string
		current  float64
		expected float64
	}{
		{"from zero", 0, 0.2},
		{"from default", 0.4, 0.6},
		{"between steps", 0.5, 0.6},
		{"wraps", 0.8, 0},
		{"above last step", 0.95, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			menu, _, h, _ := createTestMenu(t)
			h.persistence = tc.current
			menu.cyclePersistence()
			if h.persistence != tc.expected {
				t.Errorf("persistence: expected %.2f, got %.2f", tc.expected, h.persistence)
			}
		})
	}
}

func TestMenu_SaveSettings(t *testing.T) {
	menu, _, h, dir := createTestMenu(t)

	menu.toggleOverlay()
	if h.overlay {
		t.Fatal("overlay: expected off after toggle")
	}
	h.persistence = 0.8
	menu.saveSettings()
	if menu.status != "Settings saved" {
		t.Fatalf("status: expected %q, got %q", "Settings saved", menu.status)
	}

	s, err := storage.LoadSettings(dir)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.Video.Overlay || s.Video.Persistence != 0.8 {
		t.Errorf("video settings: expected overlay off and 0.8, got %v and %.2f", s.Video.Overlay, s.Video.Persistence)
	}
}

func TestMenu_NoSlots(t *testing.T) {
	m := &testMachine{}
	menu := newMenu(m, &testHost{}, MenuOptions{})

	menu.nextSlot()
	menu.saveState()
	if menu.status != "No save slots" {
		t.Errorf("status: expected %q, got %q", "No save slots", menu.status)
	}
	menu.saveSettings()
	if menu.status != "No settings file" {
		t.Errorf("status: expected %q, got %q", "No settings file", menu.status)
	}
}
