package main

import (
	"context"
	"flag"
	"log"

	"github.com/Andretti1967/asteroidino/bridge/ebiten"
	"github.com/Andretti1967/asteroidino/cli"
	"github.com/Andretti1967/asteroidino/emu"
	"github.com/Andretti1967/asteroidino/romloader"

	eb "github.com/hajimehoshi/ebiten/v2"
)

// Quick viewer: go run . [-roms <set>]. Without a set it shows the test
// pattern. cmd/asteroidino has the full set of options.
func main() {
	romPath := flag.String("roms", "", "path to the ROM set")
	flag.Parse()

	roms := emu.TestPatternROMSet()
	if *romPath != "" {
		var err error
		roms, err = romloader.LoadROMSet(*romPath)
		if err != nil {
			log.Fatalf("Failed to load ROM set: %v", err)
		}
	}

	e, err := emu.NewEmulator(roms, emu.DefaultConfig(), nil)
	if err != nil {
		log.Fatalf("Failed to create emulator: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	runner := cli.NewRunner(e)
	done := runner.Start(ctx)

	eb.SetWindowSize(768, 768)
	eb.SetWindowTitle("Asteroidino")
	eb.SetWindowResizingMode(eb.WindowResizingModeEnabled)
	eb.SetTPS(e.Config().Timing.FPS)
	err = eb.RunGame(ebiten.NewGame(runner, ebiten.Options{}))
	cancel()
	<-done
	if err != nil {
		log.Fatal(err)
	}
}
