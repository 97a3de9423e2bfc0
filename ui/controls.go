package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Controls holds the values the controls panel edits.
type Controls struct {
	Paused        bool
	StepsPerFrame int
	BrushSize     int
	FoodValue     float32
	TrailGain     float32
	AgentsOnly    bool
	ShowFood      bool
}

// Limits for the panel sliders.
const (
	MaxStepsPerFrame = 20
	MaxBrushSize     = 40
)

// ControlsPanel renders the left-side controls panel.
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

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point is over the panel, so clicks there
// are not treated as paint.
func (c *ControlsPanel) Contains(px, py float32) bool {
	if !c.visible {
		return false
	}
	return rl.CheckCollisionPointRec(rl.Vector2{X: px, Y: py}, c.bounds())
}

func (c *ControlsPanel) bounds() rl.Rectangle {
	return rl.Rectangle{X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: float32(c.height())}
}

func (c *ControlsPanel) height() int32 {
	r := c.renderer
	return r.Theme.Padding*2 + r.Theme.LineHeight + 6*36 + 2*24
}

// Draw renders the panel and applies any edits to ctl.
func (c *ControlsPanel) Draw(ctl *Controls) {
	if !c.visible {
		return
	}

	r := c.renderer
	padding := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.height())

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	w := float32(c.width - padding*2)
	sliderW := w - 50

	rl.DrawText("Controls", int32(x), int32(y), 16, rl.White)
	y += float32(r.Theme.LineHeight) + 6

	label := "Pause"
	if ctl.Paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: w, Height: 24}, label) {
		ctl.Paused = !ctl.Paused
	}
	y += 36

	slider := func(title, value string, v, lo, hi float32) float32 {
		rl.DrawText(title, int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		out := gui.SliderBar(rl.Rectangle{X: x, Y: y + 14, Width: sliderW, Height: 14}, "", "", v, lo, hi)
		rl.DrawText(value, int32(x+sliderW+6), int32(y+14), r.Theme.FontSize, r.Theme.ValueColor)
		y += 36
		return out
	}

	ctl.StepsPerFrame = int(slider("Steps / frame", fmt.Sprintf("%d", ctl.StepsPerFrame),
		float32(ctl.StepsPerFrame), 1, MaxStepsPerFrame) + 0.5)
	ctl.BrushSize = int(slider("Brush size", fmt.Sprintf("%d", ctl.BrushSize),
		float32(ctl.BrushSize), 1, MaxBrushSize) + 0.5)
	ctl.FoodValue = slider("Food value", fmt.Sprintf("%.2f", ctl.FoodValue),
		ctl.FoodValue, 0, 1)
	ctl.TrailGain = slider("Trail gain", fmt.Sprintf("%.2f", ctl.TrailGain),
		ctl.TrailGain, 0.01, 1)

	ctl.AgentsOnly = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 14, Height: 14}, "Agents only", ctl.AgentsOnly)
	y += 24
	ctl.ShowFood = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 14, Height: 14}, "Show food", ctl.ShowFood)
}
