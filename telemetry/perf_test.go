package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartStep()
		pc.StartPhase(PhaseAgents)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseDiffuse)
		time.Sleep(200 * time.Microsecond)
		pc.EndStep()
	}

	stats := pc.Stats()
	if stats.AvgStepDuration <= 0 {
		t.Error("expected positive average step duration")
	}
	if _, ok := stats.PhaseAvg[PhaseAgents]; !ok {
		t.Error("expected agents phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseDiffuse]; !ok {
		t.Error("expected diffuse phase to be tracked")
	}
	if stats.MinStepDuration > stats.MaxStepDuration {
		t.Errorf("min %v > max %v", stats.MinStepDuration, stats.MaxStepDuration)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartStep()
		pc.StartPhase(PhaseSwap)
		pc.EndStep()
	}

	stats := pc.Stats()
	if stats.StepsPerSecond <= 0 {
		t.Error("expected positive steps per second")
	}
}

// backdate moves the running phase's start back by d so phase lengths do not
// depend on the scheduler.
func backdate(pc *PerfCollector, d time.Duration) {
	pc.phaseStart = pc.phaseStart.Add(-d)
	pc.stepStart = pc.stepStart.Add(-d)
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartStep()
		pc.StartPhase(PhaseSwap)
		backdate(pc, time.Millisecond)
		pc.StartPhase(PhaseDiffuse)
		backdate(pc, 9*time.Millisecond)
		pc.EndStep()
	}

	stats := pc.Stats()
	if stats.PhasePct[PhaseDiffuse] <= 2*stats.PhasePct[PhaseSwap] {
		t.Errorf("expected diffuse (%v%%) well above swap (%v%%)", stats.PhasePct[PhaseDiffuse], stats.PhasePct[PhaseSwap])
	}
	if avg := stats.PhaseAvg[PhaseDiffuse]; avg < 9*time.Millisecond {
		t.Errorf("diffuse avg = %v, want at least 9ms", avg)
	}

	row := stats.ToCSV(42)
	if row.WindowEnd != 42 || row.DiffusePct != stats.PhasePct[PhaseDiffuse] {
		t.Errorf("ToCSV = %+v", row)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgStepDuration != 0 {
		t.Error("expected zero avg step duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}
	if stats.FPS <= 0 || stats.FPS > 70 {
		t.Errorf("FPS = %v, want (0, 70]", stats.FPS)
	}
}
