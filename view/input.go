package view

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/physarum/ui"
)

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.ctl.Paused = !v.ctl.Paused
	}

	// Steps-per-frame control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && v.ctl.StepsPerFrame > 1 {
		v.ctl.StepsPerFrame--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.ctl.StepsPerFrame < ui.MaxStepsPerFrame {
		v.ctl.StepsPerFrame++
	}

	if rl.IsKeyPressed(rl.KeyA) {
		v.ctl.AgentsOnly = !v.ctl.AgentsOnly
	}
	if rl.IsKeyPressed(rl.KeyF) {
		v.ctl.ShowFood = !v.ctl.ShowFood
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		v.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		v.showPerf = !v.showPerf
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.cam.Reset()
	}

	v.handleCameraInput()
	v.handlePaint()
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
	v.cam.Resize(w, h)
}

// handleCameraInput zooms with the wheel around the cursor and pans with
// the right mouse button.
func (v *Viewer) handleCameraInput() {
	mouse := rl.GetMousePosition()

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		factor := float32(1.1)
		if wheel < 0 {
			factor = 1 / factor
		}
		v.cam.ZoomAt(mouse.X, mouse.Y, factor)
	}

	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		delta := rl.GetMouseDelta()
		v.cam.Pan(-delta.X, -delta.Y)
	}
}

// handlePaint paints food under the cursor while the left button is held.
func (v *Viewer) handlePaint() {
	if !rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		return
	}
	mouse := rl.GetMousePosition()
	if v.controls.Contains(mouse.X, mouse.Y) {
		return
	}
	x, y, ok := v.cam.CellAt(mouse.X, mouse.Y)
	if !ok {
		return
	}
	v.sim.PaintFood(x, y, v.ctl.BrushSize, v.ctl.FoodValue)
}
