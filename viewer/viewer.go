// Package viewer shows a growing plant in a raylib window. The simulation
// runs on its own goroutine behind a sim.Pacer; the draw loop only reads the
// latest frame from the runner's handoff.
package viewer

import (
	"context"
	"errors"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sprout/camera"
	"github.com/pthm-cable/sprout/renderer"
	"github.com/pthm-cable/sprout/sim"
	"github.com/pthm-cable/sprout/telemetry"
	"github.com/pthm-cable/sprout/ui"
)

// overlayColumns is the field overlay resolution across the domain.
const overlayColumns = 64

const controlsLegend = "[Space] Pause  [N] Step  [F] Field overlay  [Tab] Stats  [P] Perf  [Arrows] Pan  [+/-/Wheel] Zoom  [Home] Reset"

// Viewer owns the window-side state: camera, renderers and panels.
type Viewer struct {
	runner  *sim.Runner
	pacer   *sim.Pacer
	handoff *sim.Handoff

	camera        *camera.Camera
	plantRenderer *renderer.PlantRenderer
	overlay       *renderer.FieldOverlay

	hud        *ui.HUD
	perfPanel  *ui.PerfPanel
	controls   *ui.ControlsPanel
	statsPanel *ui.StatsPanel
	frames     *telemetry.PerfCollector

	frame     sim.Frame
	seq       uint64
	maxCycles int
	runDone   bool
	runErr    error
	showPerf  bool

	screenWidth, screenHeight float32
}

// New creates a viewer for runner. The raylib window must already be open.
func New(runner *sim.Runner, rate float64) *Viewer {
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	d := runner.Domain()

	v := &Viewer{
		runner:        runner,
		pacer:         sim.NewPacer(rate),
		handoff:       runner.Handoff(),
		camera:        camera.New(w, h, 0, float32(-d.SoilDepth), float32(d.Width), float32(d.Height)),
		plantRenderer: renderer.NewPlantRenderer(d),
		overlay:       renderer.NewFieldOverlay(runner.Fields(), overlayColumns),
		hud:           ui.NewHUD(),
		perfPanel:     ui.NewPerfPanel(int32(w)-260, 110),
		controls:      ui.NewControlsPanel(10, 120, 240),
		statsPanel:    ui.NewStatsPanel(int32(w)-250, 240, 240),
		frames:        telemetry.NewPerfCollector(runner.Config().Telemetry.PerfWindow),
		maxCycles:     runner.Config().Run.MaxCycles,
		screenWidth:   w,
		screenHeight:  h,
	}
	v.camera.Reset()
	v.frame, v.seq = v.handoff.Latest()
	return v
}

// Run grows the plant on a background goroutine and draws until the window
// closes or ctx is cancelled. It returns the simulation's error, if any.
func (v *Viewer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- v.runner.RunPaced(ctx, v.pacer)
	}()

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		v.pollRun(errCh)
		v.handleInput()
		v.pollFrame()
		v.Draw()
	}

	cancel()
	if !v.runDone {
		v.runErr = <-errCh
	}
	if errors.Is(v.runErr, context.Canceled) {
		return nil
	}
	return v.runErr
}

// pollRun records the simulation goroutine's exit without blocking.
func (v *Viewer) pollRun(errCh <-chan error) {
	if v.runDone {
		return
	}
	select {
	case err := <-errCh:
		v.runDone = true
		v.runErr = err
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("simulation stopped", "error", err)
		}
	default:
	}
}

// pollFrame picks up the newest frame, if one arrived since the last draw.
func (v *Viewer) pollFrame() {
	select {
	case <-v.handoff.Ready():
		v.frame, v.seq = v.handoff.Latest()
	default:
	}
}

// done reports whether the plant reached its cycle limit.
func (v *Viewer) done() bool {
	return v.frame.Snapshot.Cycle >= v.maxCycles
}
