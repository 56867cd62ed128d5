package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/Andretti1967/asteroidino/bridge/ebiten"
	"github.com/Andretti1967/asteroidino/cli"
	"github.com/Andretti1967/asteroidino/emu"
	"github.com/Andretti1967/asteroidino/logger"
	"github.com/Andretti1967/asteroidino/romloader"
	"github.com/Andretti1967/asteroidino/script"
	"github.com/Andretti1967/asteroidino/statsview"
	"github.com/Andretti1967/asteroidino/storage"
	"github.com/Andretti1967/asteroidino/vectorlog"
	"github.com/bradleyjkemp/memviz"

	eb "github.com/hajimehoshi/ebiten/v2"
)

// Autoplay presses, in display ticks
const (
	autoplayCoin  = 2 * 60
	autoplayStart = 4 * 60
)

func main() {
	// Settings provide the flag defaults
	configDir, err := storage.ConfigDir()
	if err != nil {
		log.Fatalf("Failed to find config directory: %v", err)
	}
	settings, err := storage.LoadSettings(configDir)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	m := settings.Machine

	romPath := flag.String("roms", "", "path to the ROM set (directory, zip, 7z, rar or tar.gz)")
	pattern := flag.Bool("pattern", false, "run the built-in test pattern instead of a ROM set")
	headless := flag.Bool("headless", false, "run without a window, keys from the terminal")
	monitor := flag.Bool("monitor", false, "run with the terminal monitor")
	frames := flag.Uint64("frames", 0, "headless: stop after this many frames (0 = until q)")
	scriptPath := flag.String("script", "", "Lua input script")
	autoplay := flag.Bool("autoplay", false, "insert a coin and press start automatically")
	logPath := flag.String("log", "", "write the log to this file instead of stdout")
	verbose := flag.Bool("verbose", false, "log every GO strobe and DVG run")
	vlogPath := flag.String("vectorlog", "", "record every beam sample to this file")
	vlogMode := flag.String("vectorlog-mode", "csv", "vector log format: csv, text or binary")
	crossCheck := flag.Bool("crosscheck", m.CrossCheck, "compare every DVG run with the decoding DVG")
	points := flag.Int("points", m.Points, "frame buffer capacity per DVG run")
	decoder := flag.Bool("decoder", false, "render with the decoding DVG instead of the PROM sequencer")
	segmentPoints := flag.Int("segment-points", emu.DefaultConfig().SegmentPoints, "decoder: samples per segment")
	dwell := flag.Duration("dwell", time.Duration(m.DwellUS)*time.Microsecond, "wait between samples sent to the display")
	persistence := flag.Float64("persistence", settings.Video.Persistence, "phosphor persistence, 0 to 0.95")
	overlay := flag.Bool("overlay", settings.Video.Overlay, "show the status overlay (Tab toggles)")
	lives := flag.Int("lives", m.Lives, "ships per game: 3 or 4")
	coinage := flag.String("coinage", m.Coinage, "coinage: free, 1c2, 1c1 or 2c1")
	language := flag.String("language", m.Language, "language: english, german, french or spanish")
	stats := flag.Bool("statsview", false, "serve runtime statistics over HTTP (statsview builds)")
	statsAddr := flag.String("statsview-addr", statsview.DefaultAddress, "statsview listen address")
	savePath := flag.String("save", "", "write a save state to this file on exit")
	loadPath := flag.String("load", "", "restore a save state before starting")
	slot := flag.Int("slot", -1, "save slot (0-9) used by -save-slot, -load-slot and the pause menu")
	saveSlot := flag.Bool("save-slot", false, "write a save state to -slot on exit")
	loadSlot := flag.Bool("load-slot", false, "restore the save state in -slot")
	saveSettings := flag.Bool("save-settings", false, "store the machine and video flags as new defaults")
	dumpPath := flag.String("dump-state", "", "write a graphviz dump of the DVG state after the first frame")
	flag.Parse()

	// Logging
	switch {
	case *logPath != "":
		f, err := os.Create(*logPath)
		if err != nil {
			log.Fatalf("Failed to create log: %v", err)
		}
		defer f.Close()
		logger.SetEcho(f)
	case *monitor:
		// The monitor shows the log itself
	case *headless:
		logger.SetEcho(os.Stderr)
	default:
		logger.SetEcho(os.Stdout)
	}

	// ROM set
	var roms emu.ROMSet
	if *romPath == "" || *pattern {
		if *romPath == "" && !*pattern {
			fmt.Println("No -roms given, showing the test pattern")
		}
		roms = emu.TestPatternROMSet()
	} else {
		roms, err = romloader.LoadROMSet(*romPath)
		if err != nil {
			log.Fatalf("Failed to load ROM set: %v", err)
		}
		logger.Logf("rom", "loaded %s (crc 0x%08X)", *romPath, roms.CRC32())
	}

	// Configuration
	dip, err := dipFromFlags(*lives, *coinage, *language)
	if err != nil {
		log.Fatal(err)
	}
	cfg := emu.DefaultConfig()
	cfg.MaxPoints = *points
	cfg.Dwell = *dwell
	cfg.CrossCheck = *crossCheck
	cfg.Decoder = *decoder
	cfg.SegmentPoints = *segmentPoints
	cfg.DIP = dip
	logger.Logf("config", "%s", dip)

	if *saveSettings {
		settings.Machine = storage.MachineSettings{
			Lives:      *lives,
			Coinage:    *coinage,
			Language:   *language,
			Points:     *points,
			DwellUS:    int(*dwell / time.Microsecond),
			CrossCheck: *crossCheck,
		}
		settings.Video = storage.VideoSettings{Persistence: *persistence, Overlay: *overlay}
		if err := storage.SaveSettings(configDir, settings); err != nil {
			log.Fatalf("Failed to save settings: %v", err)
		}
		logger.Logf("config", "settings saved to %s", configDir)
	}

	// Save slots resolve to files per ROM set
	if *saveSlot || *loadSlot {
		path, err := storage.StatePath(configDir, roms.CRC32(), *slot)
		if err != nil {
			log.Fatal(err)
		}
		if *saveSlot {
			*savePath = path
		}
		if *loadSlot {
			*loadPath = path
		}
	}

	counters := &emu.Counters{}
	obs := emu.MultiObserver{counters, &cli.LogObserver{Verbose: *verbose}}
	e, err := emu.NewEmulator(roms, cfg, obs)
	if err != nil {
		log.Fatalf("Failed to create emulator: %v", err)
	}

	if *loadPath != "" {
		data, err := os.ReadFile(*loadPath)
		if err != nil {
			log.Fatalf("Failed to read save state: %v", err)
		}
		if err := e.Deserialize(data); err != nil {
			log.Fatalf("Failed to restore save state: %v", err)
		}
		logger.Logf("state", "restored %s", *loadPath)
	}

	if *dumpPath != "" {
		e.RunFrame()
		if err := dumpState(*dumpPath, e); err != nil {
			log.Fatalf("Failed to dump state: %v", err)
		}
	}

	// Input automation
	var s *script.Script
	switch {
	case *scriptPath != "":
		s, err = script.LoadFile(*scriptPath)
	case *autoplay:
		s, err = script.Load("autoplay", script.Autoplay(autoplayCoin, autoplayStart))
	}
	if err != nil {
		log.Fatalf("Failed to load script: %v", err)
	}
	if s != nil {
		defer s.Close()
	}

	// Vector log
	var vlog *vectorlog.Logger
	var vlogFile *os.File
	var mode vectorlog.Mode
	if *vlogPath != "" {
		if mode, err = vectorlog.ParseMode(*vlogMode); err != nil {
			log.Fatal(err)
		}
		if vlogFile, err = os.Create(*vlogPath); err != nil {
			log.Fatalf("Failed to create vector log: %v", err)
		}
		defer vlogFile.Close()
	}
	newVectorLog := func(next emu.DisplayDriver) emu.DisplayDriver {
		vlog = vectorlog.New(vlogFile, mode, next)
		return vlog
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *stats {
		statsview.Launch(ctx, *statsAddr, os.Stdout)
	}

	runner := cli.NewRunner(e)

	switch {
	case *headless:
		opts := cli.HeadlessOptions{Script: s, MaxFrames: *frames}
		if vlogFile != nil {
			opts.Sink = newVectorLog(nil)
		}
		if err := cli.NewHeadless(runner, opts).Run(ctx, os.Stdin); err != nil {
			log.Fatalf("Headless run failed: %v", err)
		}

	case *monitor:
		if vlogFile != nil {
			logger.Log("vectorlog", "not recorded with -monitor")
		}
		if err := cli.NewMonitor(runner, counters).Run(ctx); err != nil {
			log.Fatalf("Monitor failed: %v", err)
		}

	default:
		opts := ebiten.Options{
			Persistence: *persistence,
			Script:      s,
			Overlay:     *overlay,
			Status:      statusLines(runner, counters),
			Menu: ebiten.MenuOptions{
				Slots:     storage.NewSlots(configDir, roms.CRC32(), *slot),
				Settings:  settings,
				ConfigDir: configDir,
			},
		}
		if vlogFile != nil {
			opts.Wrap = newVectorLog
		}
		ctx, cancel := context.WithCancel(ctx)
		done := runner.Start(ctx)

		eb.SetWindowSize(settings.Window.Width, settings.Window.Height)
		eb.SetWindowTitle("Asteroidino")
		eb.SetWindowResizingMode(eb.WindowResizingModeEnabled)
		eb.SetWindowSizeLimits(256, 256, -1, -1)
		eb.SetTPS(cfg.Timing.FPS)
		err := eb.RunGame(ebiten.NewGame(runner, opts))
		cancel()
		<-done
		if err != nil {
			log.Fatal(err)
		}
	}

	if vlog != nil {
		if err := vlog.Close(); err != nil {
			log.Printf("Vector log: %v", err)
		}
		vectorlog.WriteStats(os.Stdout, vlog.Stats())
	}

	if *savePath != "" {
		var data []byte
		var err error
		runner.Do(context.Background(), func(e *emu.Emulator) { data, err = e.Serialize() })
		if err == nil {
			err = storage.AtomicWrite(*savePath, data)
		}
		if err != nil {
			log.Fatalf("Failed to write save state: %v", err)
		}
		fmt.Printf("Saved state to %s\n", *savePath)
	}
}

// statusLines returns the overlay text source.
func statusLines(r *cli.Runner, c *emu.Counters) func() []string {
	return func() []string {
		s := c.Snapshot()
		return []string{
			fmt.Sprintf("frame %d  nmi %d  go %d", r.Frame(), s.NMIs, s.GoStrobes),
			fmt.Sprintf("last run 0x%03X  %d points  %d steps", s.LastStart, s.LastPoints, s.LastSteps),
			fmt.Sprintf("ceiling %d  divergences %d", s.CeilingHits, s.Divergences),
		}
	}
}

// dumpState writes the DVG registers and output latches as a graphviz
// graph.
func dumpState(path string, e *emu.Emulator) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	state := struct {
		DVG     emu.DVGState
		Outputs emu.OutputState
		DIP     emu.DIPSettings
	}{e.DVGState(), e.Bus().Outputs(), e.Config().DIP}
	memviz.Map(f, &state)
	return nil
}
