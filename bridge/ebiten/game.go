package ebiten

import (
	"image/color"

	"github.com/Andretti1967/asteroidino/emu"
	"github.com/Andretti1967/asteroidino/script"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// Machine is the part of the emulator the display context talks to. All
// calls are safe while the emulation goroutine runs.
type Machine interface {
	Config() emu.Config
	Frames() *emu.FrameExchange
	SetButtons(b emu.Button)
	SetPaused(paused bool)
	SaveState() ([]byte, error)
	LoadState(data []byte) error
}

// Options configures a Game.
type Options struct {
	Persistence float64
	Script      *script.Script  // Optional input automation
	Status      func() []string // Optional overlay lines
	Overlay     bool            // Show the overlay at start
	Menu        MenuOptions     // Save slots and settings offered by the pause menu

	// Wrap, if set, decorates the screen driver, for example with a
	// vector log.
	Wrap func(emu.DisplayDriver) emu.DisplayDriver
}

// Game implements ebiten.Game.
type Game struct {
	machine  Machine
	screen   *Screen
	renderer *emu.Renderer
	menu     *Menu
	opts     Options

	tick     uint64
	selfTest bool
	overlay  bool

	drawOpts ebiten.DrawImageOptions
}

// NewGame creates the display context for m.
func NewGame(m Machine, opts Options) *Game {
	s := NewScreen(opts.Persistence)
	var driver emu.DisplayDriver = s
	if opts.Wrap != nil {
		driver = opts.Wrap(s)
	}
	g := &Game{
		machine:  m,
		screen:   s,
		renderer: emu.NewRenderer(driver, m.Config().Dwell),
		opts:     opts,
		overlay:  opts.Overlay,
	}
	g.menu = newMenu(m, g, opts.Menu)
	return g
}

// Update implements ebiten.Game. It polls input and draws the newest
// frame into the phosphor image if one was published since the last tick.
func (g *Game) Update() error {
	if g.menu.Visible() {
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			g.menu.resume()
		} else {
			g.menu.Update()
		}
		if g.menu.QuitRequested() {
			return ebiten.Termination
		}
		g.machine.SetButtons(0)
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.machine.SetButtons(0)
		g.menu.Show()
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.overlay = !g.overlay
	}

	var buttons emu.Button
	if ebiten.IsFocused() {
		buttons = g.pollInput()
	}
	if g.opts.Script != nil {
		b, err := g.opts.Script.Frame(g.tick)
		if err != nil {
			return err
		}
		buttons |= b
	}
	g.machine.SetButtons(buttons)
	g.tick++

	if fb, fresh := g.machine.Frames().Latest(); fresh {
		g.renderer.Render(fb)
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	// Calculate scaling to fit window while preserving aspect ratio
	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	scale := float64(screenW) / PhosphorSize
	if s := float64(screenH) / PhosphorSize; s < scale {
		scale = s
	}
	offsetX := (float64(screenW) - PhosphorSize*scale) / 2
	offsetY := (float64(screenH) - PhosphorSize*scale) / 2

	g.drawOpts = ebiten.DrawImageOptions{}
	g.drawOpts.GeoM.Scale(scale, scale)
	g.drawOpts.GeoM.Translate(offsetX, offsetY)
	g.drawOpts.Filter = ebiten.FilterLinear
	screen.DrawImage(g.screen.Image(), &g.drawOpts)

	if g.overlay {
		g.drawOverlay(screen)
	}
	g.menu.Draw(screen)
}

func (g *Game) drawOverlay(screen *ebiten.Image) {
	lines := []string{}
	if g.opts.Status != nil {
		lines = g.opts.Status()
	}
	if g.selfTest {
		lines = append(lines, "SELF TEST")
	}
	for i, l := range lines {
		text.Draw(screen, l, basicfont.Face7x13, 8, 16+i*14, color.RGBA{R: 0x40, G: 0xFF, B: 0x40, A: 0xFF})
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	// Return window size so we control scaling in Draw()
	return outsideWidth, outsideHeight
}

// Persistence returns the phosphor persistence.
func (g *Game) Persistence() float64 {
	return g.screen.Persistence()
}

// SetPersistence changes the phosphor persistence.
func (g *Game) SetPersistence(p float64) {
	g.screen.SetPersistence(p)
}

// Overlay reports whether the status overlay is shown.
func (g *Game) Overlay() bool {
	return g.overlay
}

// SetOverlay shows or hides the status overlay.
func (g *Game) SetOverlay(on bool) {
	g.overlay = on
}

// Ticks returns the number of display ticks so far.
func (g *Game) Ticks() uint64 {
	return g.tick
}

// pollInput reads keyboard and gamepad into a button set.
func (g *Game) pollInput() emu.Button {
	var b emu.Button
	press := func(btn emu.Button, on bool) {
		if on {
			b |= btn
		}
	}

	// Keyboard: arrows to turn and thrust, space fires, shift jumps
	press(emu.ButtonLeft, ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA))
	press(emu.ButtonRight, ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD))
	press(emu.ButtonThrust, ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyW))
	press(emu.ButtonFire, ebiten.IsKeyPressed(ebiten.KeySpace) || ebiten.IsKeyPressed(ebiten.KeyControlLeft))
	press(emu.ButtonHyperspace, ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyArrowDown))
	press(emu.ButtonCoinLeft, ebiten.IsKeyPressed(ebiten.Key5))
	press(emu.ButtonCoinRight, ebiten.IsKeyPressed(ebiten.Key6))
	press(emu.ButtonStart1, ebiten.IsKeyPressed(ebiten.Key1))
	press(emu.ButtonStart2, ebiten.IsKeyPressed(ebiten.Key2))
	press(emu.ButtonSlam, ebiten.IsKeyPressed(ebiten.KeyT))

	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		g.selfTest = !g.selfTest
	}
	press(emu.ButtonSelfTest, g.selfTest)

	// Gamepad support (all connected gamepads)
	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		pad := func(btn emu.Button, sb ebiten.StandardGamepadButton) {
			press(btn, ebiten.IsStandardGamepadButtonPressed(id, sb))
		}
		pad(emu.ButtonLeft, ebiten.StandardGamepadButtonLeftLeft)
		pad(emu.ButtonRight, ebiten.StandardGamepadButtonLeftRight)
		pad(emu.ButtonThrust, ebiten.StandardGamepadButtonLeftTop)
		pad(emu.ButtonHyperspace, ebiten.StandardGamepadButtonLeftBottom)
		pad(emu.ButtonFire, ebiten.StandardGamepadButtonRightBottom)
		pad(emu.ButtonHyperspace, ebiten.StandardGamepadButtonRightRight)
		pad(emu.ButtonThrust, ebiten.StandardGamepadButtonRightTop)
		pad(emu.ButtonCoinLeft, ebiten.StandardGamepadButtonCenterLeft)
		pad(emu.ButtonStart1, ebiten.StandardGamepadButtonCenterRight)

		// Left analog stick (with deadzone)
		const deadzone = 0.5
		axisX := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		axisY := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		press(emu.ButtonLeft, axisX < -deadzone)
		press(emu.ButtonRight, axisX > deadzone)
		press(emu.ButtonThrust, axisY < -deadzone)
	}
	return b
}
