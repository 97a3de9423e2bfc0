package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/telemetry"
)

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("%s: got %g, want %g", pv.Specs[i].Name, back[i], def[i])
		}
	}
}

func TestDefaultsWithinBounds(t *testing.T) {
	pv := NewParamVector()
	for _, s := range pv.Specs {
		if s.Default < s.Min || s.Default > s.Max {
			t.Errorf("%s default %g outside [%g, %g]", s.Name, s.Default, s.Min, s.Max)
		}
	}
}

func TestApplyAndExtract(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Defaults()
	cfg.Species = append(cfg.Species, cfg.Species[0])

	values := []float64{7, 0.5, 100, 40, 6, 0.8, 12} // diffuse_rate clamps to 10
	pv.ApplyToConfig(cfg, values)

	if cfg.Trail.DiffuseRate != 10 {
		t.Errorf("diffuse_rate = %g, want clamped 10", cfg.Trail.DiffuseRate)
	}
	for i, sp := range cfg.Species {
		if sp.MoveSpeed != 40 || sp.SensorOffsetDst != 12 {
			t.Errorf("species %d not updated: %+v", i, sp)
		}
	}

	got := pv.ExtractFromConfig(cfg)
	want := []float64{7, 0.5, 10, 40, 6, 0.8, 12}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s = %g, want %g", pv.Specs[i].Name, got[i], want[i])
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("applied config invalid: %v", err)
	}
}

func TestComputeQuality(t *testing.T) {
	fe := NewFitnessEvaluator(NewParamVector(), 0, nil, config.Defaults(), 0.3)

	window := func(coverage, mass, atAgent float64) telemetry.WindowStats {
		return telemetry.WindowStats{Coverage: coverage, TrailMassTotal: mass, TrailAtAgentMean: atAgent}
	}

	t.Run("on target", func(t *testing.T) {
		r := &runResult{cells: 100, windows: []telemetry.WindowStats{
			window(0, 0, 0), window(0, 0, 0),
			window(0.3, 100, 1), window(0.3, 100, 1), window(0.3, 100, 1),
		}}
		q := fe.computeQuality(r)
		if math.Abs(q.Coverage-1) > 1e-9 || math.Abs(q.Stability-1) > 1e-9 {
			t.Errorf("want full coverage and stability, got %+v", q)
		}
		if q.Contrast != 0 {
			t.Errorf("agents on mean trail should score no contrast, got %g", q.Contrast)
		}
		if math.Abs(q.Total-0.8) > 1e-9 {
			t.Errorf("total = %g, want 0.8", q.Total)
		}
	})

	t.Run("off target scores lower", func(t *testing.T) {
		on := fe.computeQuality(&runResult{cells: 100, windows: []telemetry.WindowStats{
			{}, {}, window(0.3, 100, 4), window(0.3, 100, 4),
		}})
		off := fe.computeQuality(&runResult{cells: 100, windows: []telemetry.WindowStats{
			{}, {}, window(0.9, 100, 4), window(0.9, 100, 4),
		}})
		if off.Total >= on.Total {
			t.Errorf("off target %g should score below on target %g", off.Total, on.Total)
		}
		if on.Contrast <= 0 {
			t.Errorf("concentrated agents should score contrast, got %g", on.Contrast)
		}
	})

	t.Run("warmup only", func(t *testing.T) {
		q := fe.computeQuality(&runResult{cells: 100, windows: []telemetry.WindowStats{{}, {}}})
		if q.Total != 0 {
			t.Errorf("total = %g, want 0", q.Total)
		}
	})
}

func TestEvaluateShortRun(t *testing.T) {
	if testing.Short() {
		t.Skip("runs simulations")
	}
	cfg := config.Defaults()
	cfg.Simulation.Width = 48
	cfg.Simulation.Height = 32
	cfg.Simulation.NumAgents = 200
	cfg.Simulation.DeltaTime = 0.05
	cfg.Telemetry.StatsWindow = 0.5

	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 60, []int64{1, 2}, cfg, 0.3)
	fitness := fe.Evaluate(pv.DefaultVector())

	q := fe.LastQuality()
	if q.Failed {
		t.Fatal("evaluation run failed")
	}
	if fitness > 0 || fitness < -1 {
		t.Errorf("fitness %g outside [-1, 0]", fitness)
	}
	if fitness != -q.Total {
		t.Errorf("fitness %g does not match quality %g", fitness, q.Total)
	}
}
