package telemetry

import (
	"math"
	"sync"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestDistribution(t *testing.T) {
	values := []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1}
	mean, std, p10, p50, p90 := Distribution(values)

	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	// Population std of 0.1..1.0
	if math.Abs(std-0.2872) > 0.001 {
		t.Errorf("std = %v, want ~0.2872", std)
	}
	if math.Abs(p10-0.19) > 0.01 || math.Abs(p50-0.55) > 0.01 || math.Abs(p90-0.91) > 0.01 {
		t.Errorf("percentiles = %v %v %v", p10, p50, p90)
	}

	mean, std, p10, p50, p90 = Distribution(nil)
	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty sample should return all zeros")
	}
}

func TestCollectorWindows(t *testing.T) {
	c := NewCollector(1.0, 0.25)
	if c.WindowDurationSteps() != 4 {
		t.Fatalf("steps per window = %d, want 4", c.WindowDurationSteps())
	}

	for step := int64(1); step <= 3; step++ {
		c.RecordStep(10, 0.5, 1)
		if c.ShouldFlush(step) {
			t.Fatalf("flush requested early at step %d", step)
		}
	}
	c.RecordStep(10, 0.5, 2)
	if !c.ShouldFlush(4) {
		t.Fatal("expected flush at step 4")
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordPaint(9)
		}()
	}
	wg.Wait()

	stats := c.Flush(4, FieldSample{
		Agents:       3,
		TrailMass:    [3]float64{1, 2, 3},
		Coverage:     0.25,
		FoodMass:     7,
		TrailAtAgent: []float64{3, 1, 2},
	})

	if stats.WindowStartStep != 0 || stats.WindowEndStep != 4 || stats.SimTimeSec != 1 {
		t.Errorf("window = [%d,%d] t=%v", stats.WindowStartStep, stats.WindowEndStep, stats.SimTimeSec)
	}
	if stats.Deposited != 40 || stats.FoodEaten != 2 || stats.Bounces != 5 {
		t.Errorf("events = %v %v %v", stats.Deposited, stats.FoodEaten, stats.Bounces)
	}
	if stats.PaintCalls != 4 || stats.PaintCells != 36 {
		t.Errorf("paint = %d calls %d cells", stats.PaintCalls, stats.PaintCells)
	}
	if stats.TrailMassTotal != 6 || stats.TrailAtAgentP50 != 2 {
		t.Errorf("mass %v p50 %v", stats.TrailMassTotal, stats.TrailAtAgentP50)
	}

	next := c.Flush(8, FieldSample{})
	if next.WindowStartStep != 4 || next.Deposited != 0 || next.PaintCalls != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
}
