package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/physarum/camera"
	"github.com/pthm-cable/physarum/frame"
	"github.com/pthm-cable/physarum/sim"
)

// AgentRenderer draws every agent as a small square in its species colour.
type AgentRenderer struct {
	colors [3]rl.Color
}

// NewAgentRenderer creates an agent renderer using the palette's species
// colours.
func NewAgentRenderer(palette frame.Palette) *AgentRenderer {
	r := &AgentRenderer{}
	for i, c := range palette.Species {
		r.colors[i] = rl.Color{R: c.R, G: c.G, B: c.B, A: 200}
	}
	return r
}

// Draw renders the agents of snap through the camera, culling those
// outside the view.
func (r *AgentRenderer) Draw(snap *sim.Snapshot, cam *camera.Camera) {
	size := cam.Zoom
	if size < 1 {
		size = 1
	}
	for i := range snap.X {
		x, y := snap.X[i], snap.Y[i]
		if !cam.IsVisible(x, y, 1) {
			continue
		}
		sx, sy := cam.WorldToScreen(x, y)
		col := r.colors[0]
		if int(snap.Species[i]) < len(r.colors) {
			col = r.colors[snap.Species[i]]
		}
		rl.DrawRectangleV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: size, Y: size}, col)
	}
}
