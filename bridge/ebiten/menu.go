package ebiten

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/Andretti1967/asteroidino/storage"
	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// Menu colors
var (
	menuDim     = color.NRGBA{0x00, 0x00, 0x00, 0x80}
	menuPanel   = color.NRGBA{0x10, 0x18, 0x10, 0xf0}
	menuButton  = color.NRGBA{0x20, 0x30, 0x20, 0xff}
	menuHover   = color.NRGBA{0x30, 0x60, 0x30, 0xff}
	menuPressed = color.NRGBA{0x40, 0xa0, 0x40, 0xff}
	menuText    = color.NRGBA{0x40, 0xff, 0x40, 0xff}
	menuMuted   = color.NRGBA{0x80, 0xa0, 0x80, 0xff}
)

// Persistence values the menu cycles through
var persistenceSteps = []float64{0, 0.2, 0.4, 0.6, 0.8}

// MenuOptions configures the pause menu.
type MenuOptions struct {
	Slots     *storage.Slots    // Save state slots of the loaded ROM set
	Settings  *storage.Settings // Video settings are written back to it
	ConfigDir string            // Where settings.json lives
}

// menuHost is the part of the game the menu changes.
type menuHost interface {
	Persistence() float64
	SetPersistence(p float64)
	Overlay() bool
	SetOverlay(on bool)
}

// Menu is the pause menu. While it is visible the machine is paused.
type Menu struct {
	machine Machine
	host    menuHost
	opts    MenuOptions

	visible bool
	quit    bool
	status  string

	ui         *ebitenui.UI
	statusText *widget.Text
	slotText   *widget.Text
	persistBtn *widget.Button
	overlayBtn *widget.Button
}

func newMenu(m Machine, host menuHost, opts MenuOptions) *Menu {
	return &Menu{machine: m, host: host, opts: opts}
}

// Show pauses the machine and displays the menu.
func (m *Menu) Show() {
	if m.ui == nil {
		m.build()
	}
	m.open()
}

func (m *Menu) open() {
	m.machine.SetPaused(true)
	m.visible = true
	m.setStatus("Paused")
}

// Visible reports whether the menu is shown.
func (m *Menu) Visible() bool {
	return m.visible
}

// QuitRequested reports whether Quit was chosen.
func (m *Menu) QuitRequested() bool {
	return m.quit
}

// Update handles menu input.
func (m *Menu) Update() {
	if m.visible && m.ui != nil {
		m.ui.Update()
	}
}

// Draw renders the menu over the screen.
func (m *Menu) Draw(screen *ebiten.Image) {
	if m.visible && m.ui != nil {
		m.ui.Draw(screen)
	}
}

func (m *Menu) resume() {
	m.visible = false
	m.machine.SetPaused(false)
}

func (m *Menu) requestQuit() {
	m.quit = true
	m.resume()
}

func (m *Menu) nextSlot() {
	if m.opts.Slots == nil {
		return
	}
	m.setStatus(fmt.Sprintf("Slot %d", m.opts.Slots.Next()))
}

func (m *Menu) previousSlot() {
	if m.opts.Slots == nil {
		return
	}
	m.setStatus(fmt.Sprintf("Slot %d", m.opts.Slots.Previous()))
}

func (m *Menu) saveState() {
	if m.opts.Slots == nil {
		m.setStatus("No save slots")
		return
	}
	data, err := m.machine.SaveState()
	if err == nil {
		err = m.opts.Slots.Save(data)
	}
	if err != nil {
		m.setStatus(fmt.Sprintf("Save failed: %v", err))
		return
	}
	m.setStatus(fmt.Sprintf("State saved to slot %d", m.opts.Slots.Current()))
}

func (m *Menu) loadState() {
	if m.opts.Slots == nil {
		m.setStatus("No save slots")
		return
	}
	data, err := m.opts.Slots.Load()
	if errors.Is(err, storage.ErrEmptySlot) {
		m.setStatus(fmt.Sprintf("Slot %d is empty", m.opts.Slots.Current()))
		return
	}
	if err == nil {
		err = m.machine.LoadState(data)
	}
	if err != nil {
		m.setStatus(fmt.Sprintf("Load failed: %v", err))
		return
	}
	m.setStatus(fmt.Sprintf("State loaded from slot %d", m.opts.Slots.Current()))
}

// cyclePersistence selects the next persistence step after the current
// value, wrapping to the first.
func (m *Menu) cyclePersistence() {
	cur := m.host.Persistence()
	next := persistenceSteps[0]
	for _, p := range persistenceSteps {
		if p > cur+0.01 {
			next = p
			break
		}
	}
	m.host.SetPersistence(next)
	m.setStatus(fmt.Sprintf("Persistence %.1f", next))
}

func (m *Menu) toggleOverlay() {
	m.host.SetOverlay(!m.host.Overlay())
	if m.host.Overlay() {
		m.setStatus("Overlay on")
	} else {
		m.setStatus("Overlay off")
	}
}

func (m *Menu) saveSettings() {
	if m.opts.Settings == nil || m.opts.ConfigDir == "" {
		m.setStatus("No settings file")
		return
	}
	m.opts.Settings.Video.Persistence = m.host.Persistence()
	m.opts.Settings.Video.Overlay = m.host.Overlay()
	if err := storage.SaveSettings(m.opts.ConfigDir, m.opts.Settings); err != nil {
		m.setStatus(fmt.Sprintf("Settings not saved: %v", err))
		return
	}
	m.setStatus("Settings saved")
}

// setStatus shows msg and refreshes the labels that follow machine state.
func (m *Menu) setStatus(msg string) {
	m.status = msg
	if m.ui == nil {
		return
	}
	m.statusText.Label = msg
	if m.opts.Slots != nil {
		m.slotText.Label = slotLabel(m.opts.Slots)
	}
	m.persistBtn.SetText(fmt.Sprintf("Persistence: %.1f", m.host.Persistence()))
	m.overlayBtn.SetText(onOff("Overlay", m.host.Overlay()))
}

func slotLabel(s *storage.Slots) string {
	if s.Exists(s.Current()) {
		return fmt.Sprintf("Slot %d (saved)", s.Current())
	}
	return fmt.Sprintf("Slot %d (empty)", s.Current())
}

func onOff(name string, on bool) string {
	if on {
		return name + ": on"
	}
	return name + ": off"
}

// build creates the widget tree: a dimmed root with a centered column of
// buttons.
func (m *Menu) build() {
	face := text.Face(text.NewGoXFace(basicfont.Face7x13))

	button := func(label string, onClick func()) *widget.Button {
		return widget.NewButton(
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Stretch: true})),
			widget.ButtonOpts.Image(&widget.ButtonImage{
				Idle:    image.NewNineSliceColor(menuButton),
				Hover:   image.NewNineSliceColor(menuHover),
				Pressed: image.NewNineSliceColor(menuPressed),
			}),
			widget.ButtonOpts.Text(label, &face, &widget.ButtonTextColor{Idle: menuText, Hover: menuText, Pressed: menuText}),
			widget.ButtonOpts.TextPadding(widget.NewInsetsSimple(6)),
			widget.ButtonOpts.ClickedHandler(func(*widget.ButtonClickedEventArgs) { onClick() }),
		)
	}
	label := func(s string, c color.Color) *widget.Text {
		return widget.NewText(
			widget.TextOpts.Text(s, &face, c),
			widget.TextOpts.Position(widget.TextPositionCenter, widget.TextPositionCenter),
			widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Stretch: true})),
		)
	}

	root := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(image.NewNineSliceColor(menuDim)),
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(image.NewNineSliceColor(menuPanel)),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Padding(widget.NewInsetsSimple(12)),
			widget.RowLayoutOpts.Spacing(6),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(220, 0),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionCenter,
				VerticalPosition:   widget.AnchorLayoutPositionCenter,
			}),
		),
	)
	root.AddChild(panel)

	panel.AddChild(label("PAUSED", menuText))
	panel.AddChild(button("Resume", m.resume))

	if m.opts.Slots != nil {
		slotRow := widget.NewContainer(
			widget.ContainerOpts.Layout(widget.NewRowLayout(
				widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
				widget.RowLayoutOpts.Spacing(6),
			)),
			widget.ContainerOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Stretch: true})),
		)
		m.slotText = label(slotLabel(m.opts.Slots), menuText)
		slotRow.AddChild(button("<", m.previousSlot), m.slotText, button(">", m.nextSlot))
		panel.AddChild(slotRow)
		panel.AddChild(button("Save state", m.saveState))
		panel.AddChild(button("Load state", m.loadState))
	}

	m.persistBtn = button(fmt.Sprintf("Persistence: %.1f", m.host.Persistence()), m.cyclePersistence)
	m.overlayBtn = button(onOff("Overlay", m.host.Overlay()), m.toggleOverlay)
	panel.AddChild(m.persistBtn, m.overlayBtn)
	if m.opts.Settings != nil {
		panel.AddChild(button("Save settings", m.saveSettings))
	}
	panel.AddChild(button("Quit", m.requestQuit))

	m.statusText = label(m.status, menuMuted)
	panel.AddChild(m.statusText)

	m.ui = &ebitenui.UI{Container: root}
}
