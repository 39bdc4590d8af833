package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sprout/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Cycle     int
	MaxCycles int
	Shoots    int
	Roots     int
	Leaves    int
	Flowers   int
	Rate      float32
	FPS       int32
	Paused    bool
	Done      bool
	Err       error
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Shoots: %d | Roots: %d | Leaves: %d | Flowers: %d", data.Shoots, data.Roots, data.Leaves, data.Flowers),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Cycle: %d/%d | Rate: %.1f/s | FPS: %d", data.Cycle, data.MaxCycles, data.Rate, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	statusText, statusColor := "Growing", rl.Green
	switch {
	case data.Err != nil:
		statusText, statusColor = "STOPPED: "+data.Err.Error(), rl.Red
	case data.Done:
		statusText, statusColor = "Done", rl.SkyBlue
	case data.Paused:
		statusText, statusColor = "PAUSED", rl.Yellow
	}
	rl.DrawText(statusText, 10, 75, 16, statusColor)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the growth phase timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Cycle Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s | %.0f cycles/s", stats.AvgCycleDuration.Round(time.Microsecond), stats.CyclesPerSecond), x, y, 14, rl.Yellow)
	y += 16

	for _, phase := range telemetry.PhaseOrder() {
		avg := stats.PhaseAvg[phase]
		pct := stats.PhasePct[phase]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", phase, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
