// Package view is the interactive raylib host: it ticks the simulation once
// per frame, draws the field, and turns mouse clicks into food paint.
package view

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/physarum/camera"
	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/frame"
	"github.com/pthm-cable/physarum/renderer"
	"github.com/pthm-cable/physarum/sim"
	"github.com/pthm-cable/physarum/ui"
)

const controlsLegend = "[Space] Pause  [,/.] Steps  [A] Agents  [F] Food  [Tab] Panel  [P] Perf  [Wheel] Zoom  [RMB] Pan  [LMB] Paint"

// Viewer owns the window-side state for one simulation.
type Viewer struct {
	sim *sim.Simulation
	cfg *config.Config

	cam       *camera.Camera
	field     *renderer.FieldRenderer
	agents    *renderer.AgentRenderer
	controls  *ui.ControlsPanel
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	species   []ui.SpeciesEntry

	ctl      ui.Controls
	snap     sim.Snapshot
	showPerf bool

	screenWidth, screenHeight float32
	lastTick                  time.Time
	ticks                     int
}

// New creates a viewer for s. The raylib window must not be open yet; Run
// opens it.
func New(s *sim.Simulation) *Viewer {
	cfg := s.Config()
	palette := frame.NewPalette(cfg)

	v := &Viewer{
		sim:       s,
		cfg:       cfg,
		field:     renderer.NewFieldRenderer(palette),
		agents:    renderer.NewAgentRenderer(palette),
		controls:  ui.NewControlsPanel(10, 10, 220),
		hud:       ui.NewHUD(),
		perfPanel: ui.NewPerfPanel(10, 0),
		ctl: ui.Controls{
			StepsPerFrame: s.StepsPerTick(),
			BrushSize:     cfg.Food.BrushSize,
			FoodValue:     float32(cfg.Food.Value),
			TrailGain:     0.1,
			AgentsOnly:    cfg.Display.ShowAgentsOnly,
			ShowFood:      true,
		},
	}
	for i, sc := range cfg.Species {
		c := palette.Species[i]
		v.species = append(v.species, ui.SpeciesEntry{
			Name:  sc.Name,
			Color: rl.Color{R: c.R, G: c.G, B: c.B, A: 255},
		})
	}
	return v
}

// Run opens the window and loops until it is closed, ctx is done, maxTicks
// frames have run (when positive), or the simulation fails.
func (v *Viewer) Run(ctx context.Context, maxTicks int) error {
	scale := float32(v.cfg.Display.Scale)
	if scale <= 0 {
		scale = 1
	}
	v.screenWidth = float32(v.cfg.Simulation.Width) * scale
	v.screenHeight = float32(v.cfg.Simulation.Height) * scale

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(v.screenWidth), int32(v.screenHeight), "Physarum")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(v.cfg.Display.TargetFPS))

	v.cam = camera.New(v.screenWidth, v.screenHeight,
		float32(v.cfg.Simulation.Width), float32(v.cfg.Simulation.Height))
	v.field.Init(v.cfg.Simulation.Width, v.cfg.Simulation.Height)
	defer v.field.Unload()

	slog.Info("viewer started",
		"window", fmt.Sprintf("%.0fx%.0f", v.screenWidth, v.screenHeight),
		"target_fps", v.cfg.Display.TargetFPS,
	)

	v.lastTick = time.Now()
	for !rl.WindowShouldClose() {
		if ctx.Err() != nil {
			return nil
		}
		if err := v.Update(ctx); err != nil {
			return err
		}
		v.Draw()

		if maxTicks > 0 && v.ticks >= maxTicks {
			slog.Info("max ticks reached", "ticks", v.ticks, "steps", v.sim.StepCount())
			return nil
		}
	}
	return nil
}

// Update handles input and advances the simulation by one tick unless
// paused.
func (v *Viewer) Update(ctx context.Context) error {
	v.handleInput()

	v.sim.SetStepsPerTick(v.ctl.StepsPerFrame)
	v.field.SetGain(v.ctl.TrailGain)
	v.field.SetShowFood(v.ctl.ShowFood)

	now := time.Now()
	elapsed := now.Sub(v.lastTick)
	v.lastTick = now

	if !v.ctl.Paused {
		if err := v.sim.Tick(ctx, elapsed); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		v.ticks++
	}
	v.sim.RecordFrame()
	return nil
}
