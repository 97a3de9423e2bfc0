package view

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/physarum/renderer"
	"github.com/pthm-cable/physarum/ui"
)

var brushColor = rl.Color{R: 255, G: 255, B: 255, A: 120}

// Draw renders the field, agents and UI for the current frame.
func (v *Viewer) Draw() {
	v.sim.SnapshotInto(&v.snap)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	if v.ctl.AgentsOnly {
		v.agents.Draw(&v.snap, v.cam)
	} else {
		v.field.Update(&v.snap)
		v.field.Draw(v.cam.FieldRect())
	}

	mouse := rl.GetMousePosition()
	cursor := ""
	if x, y, ok := v.cam.CellAt(mouse.X, mouse.Y); ok && !v.controls.Contains(mouse.X, mouse.Y) {
		renderer.DrawBrush(v.cam, x, y, v.ctl.BrushSize, brushColor)
		cursor = fmt.Sprintf("cell (%d, %d) trail %.2f", x, y, v.snap.TrailAt(x, y))
	}

	v.drawUI(cursor)

	rl.EndDrawing()
}

// drawUI draws the controls panel, HUD and optional perf panel.
func (v *Viewer) drawUI(cursor string) {
	v.controls.Draw(&v.ctl)

	v.hud.Draw(int32(v.screenWidth)-340, ui.HUDData{
		Title:        "Physarum",
		Agents:       len(v.snap.X),
		Species:      v.species,
		Step:         v.snap.Step,
		SimTime:      v.snap.SimTime,
		StepsPerTick: v.sim.StepsPerTick(),
		Paused:       v.ctl.Paused,
		Stats:        v.sim.LastStats(),
		Perf:         v.sim.PerfStats(),
		CursorCell:   cursor,
	})

	if v.showPerf {
		v.perfPanel.SetPosition(int32(v.screenWidth)-340, int32(v.screenHeight)-ui.PerfPanelHeight-35)
		v.perfPanel.Draw(v.sim.PerfStats())
	}

	v.hud.DrawControls(int32(v.screenHeight), controlsLegend)
}
