package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Rate slider bounds in cycles per second.
const (
	MinRate = 0.5
	MaxRate = 60
)

// RunControl is the part of the run pacing the controls panel drives.
type RunControl interface {
	Paused() bool
	SetPaused(bool)
	RequestStep()
	Rate() float64
	SetRate(float64)
}

// ControlsPanel renders the run controls: pause, single step and growth rate.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point is over the panel, so clicks on
// it are not treated as camera input.
func (c *ControlsPanel) Contains(x, y float32) bool {
	if !c.visible {
		return false
	}
	return x >= float32(c.x) && x <= float32(c.x+c.width) &&
		y >= float32(c.y) && y <= float32(c.y+c.height())
}

func (c *ControlsPanel) height() int32 {
	return c.renderer.Theme.Padding*2 + 110
}

// Draw renders the controls panel and applies any interaction to run.
func (c *ControlsPanel) Draw(run RunControl, done bool) {
	if !c.visible {
		return
	}

	r := c.renderer
	padding := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.height())

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	inner := float32(c.width - padding*2)

	rl.DrawText("Run", int32(x), int32(y), 16, rl.White)
	y += 22

	half := (inner - 10) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 26}, toggleText(run.Paused(), "Resume", "Pause")) && !done {
		run.SetPaused(!run.Paused())
	}
	if gui.Button(rl.Rectangle{X: x + half + 10, Y: y, Width: half, Height: 26}, "Step") && !done {
		run.SetPaused(true)
		run.RequestStep()
	}
	if done {
		rl.DrawRectangle(int32(x), int32(y), int32(inner), 26, r.Theme.PanelBg)
		rl.DrawText("Run complete", int32(x)+4, int32(y)+6, r.Theme.FontSize, r.Theme.ValueColor)
	}
	y += 36

	rl.DrawText("Growth rate (cycles/s)", int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 16
	rate := float32(run.Rate())
	newRate := gui.SliderBar(
		rl.Rectangle{X: x + 24, Y: y, Width: inner - 90, Height: 18},
		fmt.Sprintf("%.1f", float32(MinRate)), fmt.Sprintf("%.0f", float32(MaxRate)),
		rate, MinRate, MaxRate,
	)
	rl.DrawText(fmt.Sprintf("%.1f", rate), int32(x+inner-30), int32(y+2), r.Theme.FontSize, r.Theme.ValueColor)
	if newRate != rate {
		run.SetRate(float64(newRate))
	}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
