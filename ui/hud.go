package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/physarum/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Agents       int
	Species      []SpeciesEntry
	Step         uint64
	SimTime      float64
	StepsPerTick int
	Paused       bool
	Stats        telemetry.WindowStats
	Perf         telemetry.PerfStats
	CursorCell   string
}

// SpeciesEntry is one line of the species legend.
type SpeciesEntry struct {
	Name  string
	Color rl.Color
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

// HUDWidth is the width of the HUD column.
const HUDWidth = 330

// Draw renders the HUD at the top right starting at x.
func (h *HUD) Draw(x int32, data HUDData) {
	r := h.renderer
	y := int32(10)

	rl.DrawText(data.Title, x, y, 20, rl.White)
	y += 25

	rl.DrawText(
		fmt.Sprintf("Step: %s | t=%.1fs | %dx | FPS: %.0f",
			humanize.Comma(int64(data.Step)), data.SimTime, data.StepsPerTick, data.Perf.FPS),
		x, y, 16, rl.LightGray,
	)
	y += 20

	if data.Paused {
		rl.DrawText("PAUSED", x, y, 16, rl.Yellow)
		y += 20
	}
	y += 4

	s := data.Stats
	y = r.DrawSectionHeader(x, y, "Field")
	y = r.DrawBar(x, y, HUDWidth, "Coverage", float32(s.Coverage),
		fmt.Sprintf("%.1f%%", s.Coverage*100), rl.Color{})
	y = r.DrawLabelValue(x, y, "Agents", humanize.Comma(int64(data.Agents)))
	y = r.DrawLabelValue(x, y, "Food", fmt.Sprintf("%.1f", s.FoodMass))
	y = r.DrawLabelValue(x, y, "At agent", fmt.Sprintf("%.2f (p90 %.2f)", s.TrailAtAgentMean, s.TrailAtAgentP90))
	y += 4

	y = r.DrawSectionHeader(x, y, "Trail mass")
	for i, sp := range data.Species {
		mass, frac := speciesMass(s, i, len(data.Species))
		y = r.DrawBar(x, y, HUDWidth, sp.Name, frac, humanize.CommafWithDigits(mass, 0), sp.Color)
	}

	if data.CursorCell != "" {
		rl.DrawText(data.CursorCell, x, y+4, r.Theme.FontSize, rl.Gray)
	}
}

// speciesMass returns the trail mass owned by species i and its share of
// the total. A lone species owns every channel.
func speciesMass(s telemetry.WindowStats, i, numSpecies int) (float64, float32) {
	if numSpecies <= 1 {
		if s.TrailMassTotal > 0 {
			return s.TrailMassTotal, 1
		}
		return 0, 0
	}
	masses := [...]float64{s.TrailMass0, s.TrailMass1, s.TrailMass2}
	if i >= len(masses) {
		return 0, 0
	}
	if s.TrailMassTotal <= 0 {
		return masses[i], 0
	}
	return masses[i], float32(masses[i] / s.TrailMassTotal)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders per-phase step timing.
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

// PerfPanelHeight is the height of the performance panel.
var PerfPanelHeight = 40 + 18*int32(len(telemetry.Phases)) + 16

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	pad := r.Theme.Padding
	r.DrawPanel(p.x, p.y, HUDWidth, PerfPanelHeight)

	x := p.x + pad
	y := p.y + pad
	width := int32(HUDWidth) - 2*pad

	y = r.DrawSectionHeader(x, y, "Step Performance")
	y = r.DrawLabelValue(x, y, "Avg step", fmt.Sprintf("%s (%.0f steps/s)",
		stats.AvgStepDuration.Round(time.Microsecond), stats.StepsPerSecond))

	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]
		fill := rl.Color{}
		if pct > 50 {
			fill = rl.Red
		} else if pct > 25 {
			fill = rl.Orange
		}
		y = r.DrawBar(x, y, width, phase, float32(pct/100),
			fmt.Sprintf("%s %.0f%%", stats.PhaseAvg[phase].Round(time.Microsecond), pct), fill)
	}
}
