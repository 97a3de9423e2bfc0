package telemetry

import "sync/atomic"

// Collector accumulates events within time windows and produces WindowStats.
// Step events are recorded from the simulation goroutine; paint events may
// arrive from any goroutine.
type Collector struct {
	windowDurationSec   float64
	windowDurationSteps int64
	dt                  float64

	windowStartStep int64

	// Event counters for current window
	deposited float64
	foodEaten float64
	bounces   int

	paintCalls atomic.Int64
	paintCells atomic.Int64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per step
func NewCollector(windowDurationSec, dt float64) *Collector {
	steps := int64(windowDurationSec / dt)
	if steps < 1 {
		steps = 1
	}
	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationSteps: steps,
		dt:                  dt,
	}
}

// RecordStep adds one step's events to the current window.
func (c *Collector) RecordStep(deposited, foodEaten float64, bounces int) {
	c.deposited += deposited
	c.foodEaten += foodEaten
	c.bounces += bounces
}

// RecordPaint records a paint call that wrote cells cells.
func (c *Collector) RecordPaint(cells int) {
	c.paintCalls.Add(1)
	c.paintCells.Add(int64(cells))
}

// ShouldFlush returns true if enough steps have passed to flush the window.
func (c *Collector) ShouldFlush(step int64) bool {
	return step-c.windowStartStep >= c.windowDurationSteps
}

// FieldSample holds field and agent measurements taken at window end.
type FieldSample struct {
	Agents       int
	TrailMass    [3]float64
	Coverage     float64
	FoodMass     float64
	TrailAtAgent []float64 // reordered by Flush
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(step int64, sample FieldSample) WindowStats {
	mean, std, p10, p50, p90 := Distribution(sample.TrailAtAgent)

	stats := WindowStats{
		WindowStartStep: c.windowStartStep,
		WindowEndStep:   step,
		SimTimeSec:      float64(step) * c.dt,

		Agents: sample.Agents,

		TrailMass0:     sample.TrailMass[0],
		TrailMass1:     sample.TrailMass[1],
		TrailMass2:     sample.TrailMass[2],
		TrailMassTotal: sample.TrailMass[0] + sample.TrailMass[1] + sample.TrailMass[2],
		Coverage:       sample.Coverage,
		FoodMass:       sample.FoodMass,

		Deposited:  c.deposited,
		FoodEaten:  c.foodEaten,
		Bounces:    c.bounces,
		PaintCalls: int(c.paintCalls.Swap(0)),
		PaintCells: int(c.paintCells.Swap(0)),

		TrailAtAgentMean: mean,
		TrailAtAgentStd:  std,
		TrailAtAgentP10:  p10,
		TrailAtAgentP50:  p50,
		TrailAtAgentP90:  p90,
	}

	c.windowStartStep = step
	c.deposited = 0
	c.foodEaten = 0
	c.bounces = 0

	return stats
}

// WindowDurationSteps returns the number of steps per window.
func (c *Collector) WindowDurationSteps() int64 {
	return c.windowDurationSteps
}
