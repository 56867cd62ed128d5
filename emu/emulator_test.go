package emu

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"testing"
)

// createTestEmulator creates an emulator running the built-in test pattern
// program.
func createTestEmulator(t *testing.T, obs Observer) *Emulator {
	t.Helper()
	e, err := NewEmulator(TestPatternROMSet(), DefaultConfig(), obs)
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}
	return e
}

// TestNewEmulator_BadROMSet tests that short images are rejected
func TestNewEmulator_BadROMSet(t *testing.T) {
	set := TestPatternROMSet()
	set.Vector = set.Vector[:100]

	if _, err := NewEmulator(set, DefaultConfig(), nil); !errors.Is(err, ErrBadROMSet) {
		t.Errorf("Expected ErrBadROMSet, got %v", err)
	}

	set = TestPatternROMSet()
	set.PROM = make([]byte, 10)
	if _, err := NewEmulator(set, DefaultConfig(), nil); !errors.Is(err, ErrBadPROM) {
		t.Errorf("Expected ErrBadPROM, got %v", err)
	}
}

// TestEmulator_ResetVector tests that the CPU starts at the reset vector
func TestEmulator_ResetVector(t *testing.T) {
	e := createTestEmulator(t, nil)

	if got := e.CPU().GetPC(); got != testPatternReset {
		t.Errorf("PC after reset: expected 0x%04X, got 0x%04X", testPatternReset, got)
	}
	if got := e.CPU().GetSP(); got != 0xFD {
		t.Errorf("SP after reset: expected 0xFD, got 0x%02X", got)
	}
}

// TestEmulator_TestPatternFrame tests that the first frame shows the pattern
func TestEmulator_TestPatternFrame(t *testing.T) {
	e := createTestEmulator(t, nil)
	e.RunFrame()

	if e.Frames().Published() == 0 {
		t.Fatal("No frame published after one RunFrame")
	}
	fb, fresh := e.Frames().Latest()
	if !fresh {
		t.Fatal("Expected a fresh frame")
	}

	expected := NewFrameBuffer(2048)
	NewDVG(e.Bus(), 1000, 10000).Run(testPatternWord, expected)
	if expected.Len() != 22 {
		t.Fatalf("Reference run: expected 22 points, got %d", expected.Len())
	}
	if i := fb.Diverges(expected); i >= 0 {
		t.Errorf("Frame diverges from the reference run at entry %d", i)
	}
	if got := fb.At(0); got != (Point{X: 0, Y: 0, Z: 0}) {
		t.Errorf("First entry: expected the border corner, got %+v", got)
	}

	st := e.DVGState()
	if !st.Halt || st.LastRun.Points != 22 || st.LastRun.Start != testPatternWord {
		t.Errorf("DVG state: got %+v", st)
	}
}

// TestEmulator_NMIRate tests the 250 Hz interrupt and the self-test gate
func TestEmulator_NMIRate(t *testing.T) {
	e := createTestEmulator(t, nil)

	stats := e.RunFrame()
	if stats.NMIs != 4 {
		t.Errorf("NMIs in first frame: expected 4, got %d", stats.NMIs)
	}
	if stats.Cycles < e.Config().Timing.CyclesPerFrame() {
		t.Errorf("Cycles: expected at least %d, got %d", e.Config().Timing.CyclesPerFrame(), stats.Cycles)
	}

	total := 0
	for i := 0; i < 99; i++ {
		total += e.RunFrame().NMIs
	}
	// 100 frames at 60 Hz is 1/0.6 s of 250 Hz interrupts
	if total < 410 || total > 420 {
		t.Errorf("NMIs in 99 frames: expected about 413, got %d", total)
	}

	e.SetButtons(ButtonSelfTest)
	if got := e.RunFrame().NMIs; got != 0 {
		t.Errorf("NMIs with self test on: expected 0, got %d", got)
	}
}

// TestEmulator_GoStrobeRate tests that the program redraws on every fourth
// NMI and the frames agree with the decode variant
func TestEmulator_GoStrobeRate(t *testing.T) {
	counters := &Counters{}
	cfg := DefaultConfig()
	cfg.CrossCheck = true
	e, err := NewEmulator(TestPatternROMSet(), cfg, counters)
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}

	for i := 0; i < 60; i++ {
		e.RunFrame()
	}

	snap := counters.Snapshot()
	if snap.GoStrobes < 60 || snap.GoStrobes > 65 {
		t.Errorf("GO strobes in 60 frames: expected about 63, got %d", snap.GoStrobes)
	}
	if snap.Runs != snap.GoStrobes {
		t.Errorf("Runs: expected %d, got %d", snap.GoStrobes, snap.Runs)
	}
	if snap.Divergences != 0 {
		t.Errorf("Divergences: expected 0, got %d", snap.Divergences)
	}
	if snap.CeilingHits != 0 {
		t.Errorf("Ceiling hits: expected 0, got %d", snap.CeilingHits)
	}
	if snap.LastPoints != 22 || snap.LastStart != testPatternWord {
		t.Errorf("Last run: expected 22 points from 0x800, got %d from 0x%03X", snap.LastPoints, snap.LastStart)
	}
	if e.Bus().Outputs().WatchdogKicks != uint32(snap.GoStrobes) {
		t.Errorf("Watchdog kicks: expected %d, got %d", snap.GoStrobes, e.Bus().Outputs().WatchdogKicks)
	}
}

// TestEmulator_Reset tests that reset clears RAM and restarts the program
func TestEmulator_Reset(t *testing.T) {
	e := createTestEmulator(t, nil)
	e.RunFrame()
	e.Bus().Write(0x0123, 0x55)

	e.Reset()

	if got := e.Bus().Read(0x0123); got != 0 {
		t.Errorf("RAM after reset: expected 0, got 0x%02X", got)
	}
	if got := e.CPU().GetPC(); got != testPatternReset {
		t.Errorf("PC after reset: expected 0x%04X, got 0x%04X", testPatternReset, got)
	}
}

// TestSerialize_RoundTrip tests that a restored state replays identically
func TestSerialize_RoundTrip(t *testing.T) {
	e := createTestEmulator(t, nil)
	for i := 0; i < 3; i++ {
		e.RunFrame()
	}

	state, err := e.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if len(state) != SerializeSize() {
		t.Errorf("State size: expected %d, got %d", SerializeSize(), len(state))
	}

	for i := 0; i < 5; i++ {
		e.RunFrame()
	}
	after, _ := e.Serialize()

	other := createTestEmulator(t, nil)
	if err := other.Deserialize(state); err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if other.FrameCount() != 3 {
		t.Errorf("Frame count: expected 3, got %d", other.FrameCount())
	}
	for i := 0; i < 5; i++ {
		other.RunFrame()
	}
	again, _ := other.Serialize()

	if !bytes.Equal(after, again) {
		t.Error("Replayed state differs from the original run")
	}
}

// TestSerialize_StateIntegrity tests that serialized state has correct format
func TestSerialize_StateIntegrity(t *testing.T) {
	e := createTestEmulator(t, nil)

	state, err := e.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	if string(state[0:12]) != stateMagic {
		t.Errorf("Magic bytes: expected %q, got %q", stateMagic, string(state[0:12]))
	}
	if version := binary.LittleEndian.Uint16(state[12:14]); version != stateVersion {
		t.Errorf("Version: expected %d, got %d", stateVersion, version)
	}
	if romCRC := binary.LittleEndian.Uint32(state[14:18]); romCRC != e.mem.GetROMCRC32() {
		t.Errorf("ROM CRC32: expected 0x%08X, got 0x%08X", e.mem.GetROMCRC32(), romCRC)
	}
	dataCRC := binary.LittleEndian.Uint32(state[18:22])
	if calculated := crc32.ChecksumIEEE(state[stateHeaderSize:]); dataCRC != calculated {
		t.Errorf("Data CRC32: expected 0x%08X, got 0x%08X", calculated, dataCRC)
	}
}

// TestVerifyState_Errors tests every rejection path
func TestVerifyState_Errors(t *testing.T) {
	e := createTestEmulator(t, nil)
	good, err := e.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	otherROM := TestPatternROMSet()
	otherROM.Program[0][0] = 0x42
	other, err := NewEmulator(otherROM, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}

	testCases := []struct {
		name   string
		target *Emulator
		mutate func([]byte) []byte
	}{
		{"too short", e, func(b []byte) []byte { return b[:stateHeaderSize-1] }},
		{"bad magic", e, func(b []byte) []byte { b[0] = 'X'; return b }},
		{"future version", e, func(b []byte) []byte {
			binary.LittleEndian.PutUint16(b[12:14], 9999)
			return b
		}},
		{"corrupt data", e, func(b []byte) []byte { b[stateHeaderSize+5] ^= 0xFF; return b }},
		{"wrong ROM", other, func(b []byte) []byte { return b }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			state := tc.mutate(append([]byte(nil), good...))
			if err := tc.target.VerifyState(state); !errors.Is(err, ErrBadState) {
				t.Errorf("expected ErrBadState, got %v", err)
			}
			if err := tc.target.Deserialize(state); err == nil {
				t.Error("Deserialize should fail")
			}
		})
	}

	if err := e.VerifyState(good); err != nil {
		t.Errorf("Valid state rejected: %v", err)
	}
}

// TestCounters_Snapshot tests the observer totals
func TestCounters_Snapshot(t *testing.T) {
	c := &Counters{}
	var obs Observer = MultiObserver{c, NopObserver{}}

	obs.GoStrobe(0x800)
	obs.RunComplete(RunStats{Start: 0x800, Steps: 96, Points: 22, Halted: true})
	obs.RunComplete(RunStats{Start: 0x000, Steps: 1000, Points: 5, CeilingHit: true})
	obs.OutputWrite(regOutputLatch, 0x04)
	obs.OutputWrite(regThump, 0x10)
	obs.ThrottleReset(0x5B, 4)
	obs.NMI()
	obs.Divergence(0, 3)

	snap := c.Snapshot()
	expected := CounterSnapshot{
		GoStrobes:      1,
		Runs:           2,
		CeilingHits:    1,
		Points:         27,
		ThrottleResets: 1,
		OutputWrites:   2,
		NMIs:           1,
		Divergences:    1,
		LastStart:      0,
		LastSteps:      1000,
		LastPoints:     5,
		OutLatch:       0x04,
	}
	if snap != expected {
		t.Errorf("Snapshot: expected %+v, got %+v", expected, snap)
	}
}
