package script

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Andretti1967/asteroidino/emu"
)

func TestScript_Autoplay(t *testing.T) {
	s, err := Load("autoplay", Autoplay(120, 240))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer s.Close()

	testCases := []struct {
		frame    uint64
		expected emu.Button
	}{
		{0, 0},
		{119, 0},
		{120, emu.ButtonCoinLeft},
		{125, emu.ButtonCoinLeft},
		{126, 0},
		{240, emu.ButtonStart1},
		{245, emu.ButtonStart1},
		{246, 0},
	}
	for _, tc := range testCases {
		b, err := s.Frame(tc.frame)
		if err != nil {
			t.Fatalf("Frame %d failed: %v", tc.frame, err)
		}
		if b != tc.expected {
			t.Errorf("Frame %d: expected %d, got %d", tc.frame, tc.expected, b)
		}
	}
}

func TestScript_Combined(t *testing.T) {
	s, err := Load("fire", `
function frame(n)
  if n % 2 == 0 then
    return {fire = true, thrust = true, left = false}
  end
end`)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer s.Close()

	b, err := s.Frame(2)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if expected := emu.ButtonFire | emu.ButtonThrust; b != expected {
		t.Errorf("Even frame: expected %d, got %d", expected, b)
	}

	b, err = s.Frame(3)
	if err != nil || b != 0 {
		t.Errorf("Odd frame: expected 0, got %d (%v)", b, err)
	}
}

func TestScript_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{"syntax", "function frame(n"},
		{"no frame", "x = 1"},
		{"frame not a function", "frame = 5"},
	}
	for _, tc := range testCases {
		if s, err := Load(tc.name, tc.src); err == nil {
			s.Close()
			t.Errorf("%s: expected load error", tc.name)
		}
	}

	if _, err := Load("empty", ""); !errors.Is(err, ErrNoFrameFunc) {
		t.Errorf("empty: expected ErrNoFrameFunc, got %v", err)
	}
}

func TestScript_FrameErrors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{"runtime error", "function frame(n) error('boom') end"},
		{"unknown button", "function frame(n) return {turbo = true} end"},
		{"wrong type", "function frame(n) return 7 end"},
	}
	for _, tc := range testCases {
		s, err := Load(tc.name, tc.src)
		if err != nil {
			t.Fatalf("%s: Load failed: %v", tc.name, err)
		}
		if _, err := s.Frame(1); err == nil {
			t.Errorf("%s: expected frame error", tc.name)
		}
		s.Close()
	}
}

func TestScript_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.lua")
	if err := os.WriteFile(path, []byte(Autoplay(1, 2)), 0644); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}
	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	defer s.Close()

	if b, _ := s.Frame(1); b != emu.ButtonCoinLeft {
		t.Errorf("Frame 1: expected %d, got %d", emu.ButtonCoinLeft, b)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("Expected error for missing script")
	}
}
