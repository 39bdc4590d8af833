package viewer

import rl "github.com/gen2brain/raylib-go/raylib"

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.pacer.SetPaused(!v.pacer.Paused())
	}
	if rl.IsKeyPressed(rl.KeyN) {
		v.pacer.SetPaused(true)
		v.pacer.RequestStep()
	}

	// Growth rate with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		v.pacer.SetRate(v.pacer.Rate() / 2)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		v.pacer.SetRate(v.pacer.Rate() * 2)
	}

	if rl.IsKeyPressed(rl.KeyF) {
		v.overlay.SetMode(v.overlay.Mode().Next())
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		v.statsPanel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		v.showPerf = !v.showPerf
	}
	if rl.IsKeyPressed(rl.KeyC) {
		v.controls.Toggle()
	}

	v.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h

	v.camera.Resize(w, h)
	v.perfPanel.SetPosition(int32(w)-260, 110)
	v.statsPanel.SetPosition(int32(w)-250, 240)
}

// handleCameraInput processes camera pan/zoom controls.
func (v *Viewer) handleCameraInput() {
	const panSpeed = 8.0

	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Pan(0, -panSpeed)
	}

	mouse := rl.GetMousePosition()
	overPanel := v.controls.Contains(mouse.X, mouse.Y)

	// Zoom toward the cursor
	if wheel := rl.GetMouseWheelMove(); wheel != 0 && !overPanel {
		v.camera.ZoomAt(mouse.X, mouse.Y, 1+wheel*0.1)
	}

	// Drag to pan
	if rl.IsMouseButtonDown(rl.MouseLeftButton) && !overPanel {
		delta := rl.GetMouseDelta()
		v.camera.Pan(-delta.X, -delta.Y)
	}

	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}
}
