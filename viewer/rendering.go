package viewer

import (
	"context"
	"errors"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sprout/renderer"
	"github.com/pthm-cable/sprout/ui"
)

// Draw renders one frame.
func (v *Viewer) Draw() {
	v.frames.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	snap := v.frame.Snapshot
	v.plantRenderer.DrawDomain(v.camera)
	v.overlay.Draw(v.camera, snap.Cycle)
	v.plantRenderer.Draw(v.camera, snap)

	census := v.frame.Stats
	v.hud.Draw(ui.HUDData{
		Title:     "Sprout",
		Cycle:     snap.Cycle,
		MaxCycles: v.maxCycles,
		Shoots:    census.ShootNodes,
		Roots:     census.RootNodes,
		Leaves:    len(snap.Leaves),
		Flowers:   len(snap.Flowers),
		Rate:      float32(v.pacer.Rate()),
		FPS:       int32(v.frames.Stats().FPS),
		Paused:    v.pacer.Paused(),
		Done:      v.done(),
		Err:       v.visibleErr(),
	})

	if mode := v.overlay.Mode(); mode != renderer.OverlayNone {
		rl.DrawText(fmt.Sprintf("Overlay: %s", mode), 10, 95, 14, rl.DarkGray)
	}

	v.controls.Draw(v.pacer, v.done() || v.runErr != nil)
	v.statsPanel.Draw(v.frame.Stats)
	if v.showPerf {
		v.perfPanel.Draw(v.frame.Perf)
	}
	v.hud.DrawControls(int32(v.screenWidth), int32(v.screenHeight), controlsLegend)

	rl.EndDrawing()
}

// visibleErr hides cancellation, which is how a closed window ends the run.
func (v *Viewer) visibleErr() error {
	if v.runErr == nil || errors.Is(v.runErr, context.Canceled) {
		return nil
	}
	return v.runErr
}
