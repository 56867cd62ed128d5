package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Andretti1967/asteroidino/emu"
	"github.com/Andretti1967/asteroidino/logger"
	"github.com/jroimartin/gocui"
)

const monitorRefresh = 100 * time.Millisecond

// Monitor is a terminal UI showing the counters, the DVG registers, the
// output latches and the tail of the central log while the runner runs.
type Monitor struct {
	runner   *Runner
	counters *emu.Counters
	keys     keyHold
}

// NewMonitor creates a monitor. counters must be registered as an
// observer of the runner's emulator.
func NewMonitor(r *Runner, counters *emu.Counters) *Monitor {
	return &Monitor{runner: r, counters: counters}
}

// Run starts the runner and the UI and returns when either stops.
func (m *Monitor) Run(ctx context.Context) error {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}
	defer g.Close()

	g.SetManagerFunc(monitorLayout)
	if err := m.bindKeys(g); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m.runner.OnFrame(func(emu.FrameStats) {
		m.runner.SetButtons(m.keys.tick())
	})
	done := m.runner.Start(ctx)
	go m.refresh(ctx, g)
	go func() {
		<-done
		g.Update(func(*gocui.Gui) error { return gocui.ErrQuit })
	}()

	if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	cancel()
	if err := <-done; err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func (m *Monitor) bindKeys(g *gocui.Gui) error {
	quit := func(*gocui.Gui, *gocui.View) error { return gocui.ErrQuit }
	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		return err
	}
	if err := g.SetKeybinding("", rune(keyQuit), gocui.ModNone, quit); err != nil {
		return err
	}
	if err := g.SetKeybinding("", rune(keySelfTest), gocui.ModNone, func(*gocui.Gui, *gocui.View) error {
		m.keys.toggleSelfTest()
		return nil
	}); err != nil {
		return err
	}
	for c, b := range keyButtons {
		b := b
		if err := g.SetKeybinding("", rune(c), gocui.ModNone, func(*gocui.Gui, *gocui.View) error {
			m.keys.press(b)
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// refresh redraws the views until ctx is done. The emulator state is
// copied on the emulation goroutine.
func (m *Monitor) refresh(ctx context.Context, g *gocui.Gui) {
	ticker := time.NewTicker(monitorRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var dvg emu.DVGState
		var out emu.OutputState
		var dip emu.DIPSettings
		if err := m.runner.Do(ctx, func(e *emu.Emulator) {
			dvg = e.DVGState()
			out = e.Bus().Outputs()
			dip = e.Config().DIP
		}); err != nil {
			return
		}
		counters := m.counters.Snapshot()
		frame, cycles := m.runner.Frame(), m.runner.Cycles()

		g.Update(func(g *gocui.Gui) error {
			for name, fill := range map[string]func(io.Writer){
				"counters": func(w io.Writer) { writeCounters(w, frame, cycles, counters) },
				"dvg":      func(w io.Writer) { writeDVG(w, dvg) },
				"outputs":  func(w io.Writer) { writeOutputs(w, out, dip) },
				"log":      func(w io.Writer) { logger.Tail(w, 200) },
			} {
				v, err := g.View(name)
				if err != nil {
					return err
				}
				v.Clear()
				fill(v)
			}
			return nil
		})
	}
}

// monitorLayout: counters and DVG side by side on top, outputs below,
// log at the bottom.
func monitorLayout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	half := maxX / 2
	views := []struct {
		name, title    string
		x0, y0, x1, y1 int
		autoscroll     bool
	}{
		{"counters", "Counters", 0, 0, half - 1, 12, false},
		{"dvg", "DVG", half, 0, maxX - 1, 12, false},
		{"outputs", "Outputs", 0, 13, maxX - 1, 18, false},
		{"log", "Log", 0, 19, maxX - 1, maxY - 1, true},
	}
	for _, d := range views {
		if v, err := g.SetView(d.name, d.x0, d.y0, d.x1, d.y1); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
			v.Title = d.title
			v.Autoscroll = d.autoscroll
		}
	}
	return nil
}

func writeCounters(w io.Writer, frame, cycles uint64, c emu.CounterSnapshot) {
	fmt.Fprintf(w, "frames      %d\n", frame)
	fmt.Fprintf(w, "cycles      %d\n", cycles)
	fmt.Fprintf(w, "nmi         %d\n", c.NMIs)
	fmt.Fprintf(w, "go          %d\n", c.GoStrobes)
	fmt.Fprintf(w, "runs        %d (ceiling %d)\n", c.Runs, c.CeilingHits)
	fmt.Fprintf(w, "points      %d\n", c.Points)
	fmt.Fprintf(w, "last run    0x%03X: %d steps, %d points\n", c.LastStart, c.LastSteps, c.LastPoints)
	fmt.Fprintf(w, "throttle    %d\n", c.ThrottleResets)
	fmt.Fprintf(w, "divergences %d\n", c.Divergences)
}

func writeDVG(w io.Writer, s emu.DVGState) {
	fmt.Fprintf(w, "pc    0x%03X  halt %v\n", s.PC, s.Halt)
	fmt.Fprintf(w, "sp    %d  stack %03X %03X %03X %03X\n", s.SP, s.Stack[0], s.Stack[1], s.Stack[2], s.Stack[3])
	fmt.Fprintf(w, "latch 0x%02X  op %X\n", s.Latch, s.Op)
	fmt.Fprintf(w, "dvx   0x%03X  dvy 0x%03X\n", s.DVX, s.DVY)
	fmt.Fprintf(w, "scale %d  z %d\n", s.Scale, s.Intensity)
	fmt.Fprintf(w, "beam  %d,%d\n", s.X, s.Y)
}

func writeOutputs(w io.Writer, o emu.OutputState, dip emu.DIPSettings) {
	lamp := func(on bool) string {
		if on {
			return "on"
		}
		return "off"
	}
	var sounds []string
	for i, name := range []string{"saucer", "saucer-fire", "saucer-size", "thrust", "ship-fire", "life"} {
		if o.Sound[i] {
			sounds = append(sounds, name)
		}
	}
	fmt.Fprintf(w, "latch 0x%02X  start1 %s  start2 %s  ram swap %v\n", o.Latch, lamp(o.Start1LED), lamp(o.Start2LED), o.RAMSwap)
	fmt.Fprintf(w, "thump %v/%d  explosion %d/%d  sounds [%s]\n", o.ThumpEnabled, o.ThumpFreq, o.ExplosionPitch, o.ExplosionVolume, strings.Join(sounds, " "))
	fmt.Fprintf(w, "watchdog %d  noise resets %d\n", o.WatchdogKicks, o.NoiseResets)
	fmt.Fprintf(w, "dip %s\n", dip)
}
