package cli

import (
	"testing"

	"github.com/Andretti1967/asteroidino/emu"
)

// createTestRunner returns an unpaced runner around the test pattern machine
func createTestRunner(t *testing.T, obs emu.Observer) *Runner {
	t.Helper()
	e, err := emu.NewEmulator(emu.TestPatternROMSet(), emu.DefaultConfig(), obs)
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}
	r := NewRunner(e)
	r.SetInterval(0)
	return r
}
