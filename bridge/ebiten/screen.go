// Package ebiten is the display context: it draws published DVG frames
// into a window and feeds keyboard and gamepad state back to the machine.
package ebiten

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// PhosphorSize is the edge length of the offscreen image. Beam
// coordinates (0..4095) are divided by four.
const PhosphorSize = 1024

const beamWidth = 1.5

// Screen is an emu.FrameDriver that strokes beam movements into an
// offscreen image. It must only be used from the ebiten game loop.
type Screen struct {
	img *ebiten.Image

	x, y   float32 // Position of the pending sample
	bx, by float32 // Where the beam is
	fade   color.RGBA

	persistence float64

	Segments int // Lit segments in the last frame
}

// NewScreen creates a screen. persistence is the share of the previous
// frame that stays visible, 0 clears every frame.
func NewScreen(persistence float64) *Screen {
	s := &Screen{img: ebiten.NewImage(PhosphorSize, PhosphorSize)}
	s.SetPersistence(persistence)
	return s
}

// SetPersistence changes the phosphor persistence, clamped to 0..0.95.
func (s *Screen) SetPersistence(persistence float64) {
	if persistence < 0 {
		persistence = 0
	}
	if persistence > 0.95 {
		persistence = 0.95
	}
	s.persistence = persistence
	s.fade = color.RGBA{A: uint8((1 - persistence) * 255)}
}

// Persistence returns the current phosphor persistence.
func (s *Screen) Persistence() float64 {
	return s.persistence
}

// Image returns the phosphor image.
func (s *Screen) Image() *ebiten.Image {
	return s.img
}

func (s *Screen) BeginFrame() {
	if s.fade.A == 255 {
		s.img.Clear()
	} else {
		vector.DrawFilledRect(s.img, 0, 0, PhosphorSize, PhosphorSize, s.fade, false)
	}
	s.Segments = 0
}

func (s *Screen) EndFrame() {}

// SetPosition maps a beam position to image coordinates. The DVG origin
// is bottom left.
func (s *Screen) SetPosition(x, y uint16) {
	s.x = float32(x&0x0FFF) / 4
	s.y = PhosphorSize - 1 - float32(y&0x0FFF)/4
}

// SetIntensity completes a sample: lit samples draw from the beam to the
// pending position, dark ones only move the beam.
func (s *Screen) SetIntensity(z uint8) {
	if z > 0 {
		c := color.RGBA{R: z, G: z, B: z, A: 255}
		if s.x == s.bx && s.y == s.by {
			vector.DrawFilledCircle(s.img, s.x, s.y, beamWidth, c, true)
		} else {
			vector.StrokeLine(s.img, s.bx, s.by, s.x, s.y, beamWidth, c, true)
		}
		s.Segments++
	}
	s.bx, s.by = s.x, s.y
}
