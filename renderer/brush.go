package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/physarum/camera"
)

// DrawBrush outlines the cells a paint at cell (cx, cy) would cover.
func DrawBrush(cam *camera.Camera, cx, cy, brush int, col rl.Color) {
	if brush < 1 {
		return
	}
	x0, y0 := cam.WorldToScreen(float32(cx-brush+1), float32(cy-brush+1))
	side := float32(2*brush-1) * cam.Zoom
	rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: side, Height: side}, 1, col)
}
