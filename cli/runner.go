// Package cli provides the emulation-context runner and the terminal
// frontends: a headless runner that reads keys from the terminal and a
// gocui monitor.
package cli

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Andretti1967/asteroidino/emu"
)

// Runner owns an emulator and runs its frames on a single goroutine.
// Other goroutines only talk to the emulator through SetButtons, the
// frame exchange, or Do.
type Runner struct {
	emulator *emu.Emulator
	interval time.Duration
	onFrame  func(emu.FrameStats)

	requests chan func(*emu.Emulator)
	frames   atomic.Uint64
	cycles   atomic.Uint64
	paused   atomic.Bool

	mu   sync.Mutex
	exit chan struct{} // Closed when the current Run returns
	last emu.FrameStats
}

// NewRunner creates a runner pacing frames at the configured refresh rate.
func NewRunner(e *emu.Emulator) *Runner {
	fps := e.Config().Timing.FPS
	if fps <= 0 {
		fps = 60
	}
	return &Runner{
		emulator: e,
		interval: time.Second / time.Duration(fps),
		requests: make(chan func(*emu.Emulator)),
	}
}

// SetInterval changes the frame period. Zero runs frames back to back.
// Must be called before Run.
func (r *Runner) SetInterval(d time.Duration) {
	r.interval = d
}

// OnFrame registers fn to be called on the emulation goroutine after every
// frame. Must be called before Run.
func (r *Runner) OnFrame(fn func(emu.FrameStats)) {
	r.onFrame = fn
}

// SetButtons forwards the control snapshot.
func (r *Runner) SetButtons(b emu.Button) {
	r.emulator.SetButtons(b)
}

// Config returns the emulator's configuration.
func (r *Runner) Config() emu.Config {
	return r.emulator.Config()
}

// SetPaused holds or releases the frame loop. Do requests are still
// served while paused.
func (r *Runner) SetPaused(paused bool) {
	r.paused.Store(paused)
}

// Paused reports whether the frame loop is held.
func (r *Runner) Paused() bool {
	return r.paused.Load()
}

// SaveState serializes the machine between two frames.
func (r *Runner) SaveState() ([]byte, error) {
	var data []byte
	var err error
	if derr := r.Do(context.Background(), func(e *emu.Emulator) { data, err = e.Serialize() }); derr != nil {
		return nil, derr
	}
	return data, err
}

// LoadState restores a state written by SaveState.
func (r *Runner) LoadState(data []byte) error {
	var err error
	if derr := r.Do(context.Background(), func(e *emu.Emulator) { err = e.Deserialize(data) }); derr != nil {
		return derr
	}
	return err
}

// Frames returns the exchange frames are published to.
func (r *Runner) Frames() *emu.FrameExchange {
	return r.emulator.Frames()
}

// Run executes frames until ctx is done. It returns ctx.Err().
func (r *Runner) Run(ctx context.Context) error {
	return r.run(ctx, r.begin())
}

// Start runs the runner on a new goroutine. The returned channel receives
// the result of Run.
func (r *Runner) Start(ctx context.Context) <-chan error {
	exit := r.begin()
	done := make(chan error, 1)
	go func() {
		done <- r.run(ctx, exit)
	}()
	return done
}

func (r *Runner) begin() chan struct{} {
	exit := make(chan struct{})
	r.mu.Lock()
	r.exit = exit
	r.mu.Unlock()
	return exit
}

func (r *Runner) run(ctx context.Context, exit chan struct{}) error {
	defer close(exit)

	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case fn := <-r.requests:
				fn(r.emulator)
				continue
			case <-tick:
			}
		} else {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case fn := <-r.requests:
				fn(r.emulator)
				continue
			default:
			}
		}
		if r.paused.Load() {
			if tick == nil {
				time.Sleep(time.Millisecond)
			}
			continue
		}
		r.step()
	}
}

func (r *Runner) step() {
	stats := r.emulator.RunFrame()
	r.frames.Add(1)
	r.cycles.Add(uint64(stats.Cycles))
	r.mu.Lock()
	r.last = stats
	r.mu.Unlock()
	if r.onFrame != nil {
		r.onFrame(stats)
	}
}

// Do runs fn on the emulation goroutine between two frames and waits for
// it. When the runner is not running fn is called directly.
func (r *Runner) Do(ctx context.Context, fn func(*emu.Emulator)) error {
	r.mu.Lock()
	exit := r.exit
	r.mu.Unlock()
	if exit == nil {
		fn(r.emulator)
		return nil
	}

	done := make(chan struct{})
	select {
	case r.requests <- func(e *emu.Emulator) { fn(e); close(done) }:
	case <-exit:
		fn(r.emulator)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}

// Frame returns the number of frames run so far.
func (r *Runner) Frame() uint64 {
	return r.frames.Load()
}

// Cycles returns the number of CPU cycles run so far.
func (r *Runner) Cycles() uint64 {
	return r.cycles.Load()
}

// Last returns the statistics of the most recent frame.
func (r *Runner) Last() emu.FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}
