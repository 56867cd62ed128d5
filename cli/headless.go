package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/Andretti1967/asteroidino/emu"
	"github.com/Andretti1967/asteroidino/script"
	"golang.org/x/term"
)

// Terminals report key presses but not releases, so a key holds its
// button for this many frames.
const holdFrames = 6

var keyButtons = map[byte]emu.Button{
	'5': emu.ButtonCoinLeft,
	'6': emu.ButtonCoinRight,
	'1': emu.ButtonStart1,
	'2': emu.ButtonStart2,
	'a': emu.ButtonLeft,
	'j': emu.ButtonLeft,
	'd': emu.ButtonRight,
	'l': emu.ButtonRight,
	'w': emu.ButtonThrust,
	'i': emu.ButtonThrust,
	' ': emu.ButtonFire,
	's': emu.ButtonHyperspace,
	'k': emu.ButtonHyperspace,
}

const (
	keyQuit     = 'q'
	keyCtrlC    = 0x03
	keySelfTest = 't'
)

// keyHold turns single key presses into buttons held for a few frames.
type keyHold struct {
	mu       sync.Mutex
	left     [16]int // Frames left per button bit
	selfTest bool
}

func (h *keyHold) press(b emu.Button) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.left {
		if b&(1<<i) != 0 {
			h.left[i] = holdFrames
		}
	}
}

func (h *keyHold) toggleSelfTest() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.selfTest = !h.selfTest
}

// tick returns the held buttons and ages every hold by one frame.
func (h *keyHold) tick() emu.Button {
	h.mu.Lock()
	defer h.mu.Unlock()
	var b emu.Button
	for i := range h.left {
		if h.left[i] > 0 {
			b |= 1 << i
			h.left[i]--
		}
	}
	if h.selfTest {
		b |= emu.ButtonSelfTest
	}
	return b
}

// HeadlessOptions configures a headless run.
type HeadlessOptions struct {
	Sink      emu.DisplayDriver // Receives every published frame, may be nil
	Script    *script.Script
	MaxFrames uint64 // Stop after this many frames, 0 runs until quit
	Output    io.Writer
}

// Headless runs the emulator without a window. Keys are read from the
// terminal and frames are rendered into Sink.
type Headless struct {
	runner   *Runner
	opts     HeadlessOptions
	keys     keyHold
	renderer *emu.Renderer
	reader   *keyReader
	err      error
}

// NewHeadless creates a headless frontend around r.
func NewHeadless(r *Runner, opts HeadlessOptions) *Headless {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	h := &Headless{runner: r, opts: opts}
	if opts.Sink != nil {
		h.renderer = emu.NewRenderer(opts.Sink, r.Config().Dwell)
	}
	return h
}

// Run executes frames until ctx is done, q is pressed, a script fails or
// MaxFrames is reached. in is put into raw mode when it is a terminal.
func (h *Headless) Run(ctx context.Context, in *os.File) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if in != nil {
		if term.IsTerminal(int(in.Fd())) {
			old, err := term.MakeRaw(int(in.Fd()))
			if err != nil {
				return fmt.Errorf("failed to set raw mode: %w", err)
			}
			defer term.Restore(int(in.Fd()), old)
			fmt.Fprint(h.opts.Output, "keys: 5 coin, 1/2 start, a/d turn, w thrust, space fire, s hyperspace, t self test, q quit\r\n")
		}
		h.reader = startKeyReader(in, h.key, cancel)
		defer h.reader.stop()
	}

	h.runner.OnFrame(func(stats emu.FrameStats) {
		h.frame(stats, cancel)
	})
	err := h.runner.Run(ctx)
	if h.err != nil {
		return h.err
	}
	if err == context.Canceled {
		return nil
	}
	return err
}

// frame runs on the emulation goroutine after every frame.
func (h *Headless) frame(stats emu.FrameStats, stop func()) {
	buttons := h.keys.tick()
	if h.opts.Script != nil {
		b, err := h.opts.Script.Frame(stats.Frame)
		if err != nil {
			h.err = err
			stop()
			return
		}
		buttons |= b
	}
	h.runner.SetButtons(buttons)

	if h.renderer != nil {
		if fb, fresh := h.runner.Frames().Latest(); fresh {
			h.renderer.Render(fb)
		}
	}
	if h.opts.MaxFrames > 0 && stats.Frame+1 >= h.opts.MaxFrames {
		stop()
	}
}

// key handles one key byte and reports false when the run should stop.
func (h *Headless) key(c byte) bool {
	switch c {
	case keyQuit, keyCtrlC:
		return false
	case keySelfTest:
		h.keys.toggleSelfTest()
	default:
		if b, ok := keyButtons[c]; ok {
			h.keys.press(b)
		}
	}
	return true
}
