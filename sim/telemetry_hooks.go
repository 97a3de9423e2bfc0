package sim

import (
	"log/slog"

	"github.com/pthm-cable/physarum/systems"
	"github.com/pthm-cable/physarum/telemetry"
)

// flushTelemetry folds this step's counters into the collector and, at a
// window boundary, samples the field and emits stats and bookmarks.
func (s *Simulation) flushTelemetry() {
	var deposited, eaten float64
	var bounces int
	for i := range s.scratch {
		deposited += s.scratch[i].deposited
		eaten += s.scratch[i].foodEaten
		bounces += s.scratch[i].bounces
		s.scratch[i] = workerScratch{}
	}

	if s.collector == nil {
		return
	}
	s.collector.RecordStep(deposited, eaten, bounces)

	step := int64(s.step)
	if !s.collector.ShouldFlush(step) {
		return
	}

	stats := s.collector.Flush(step, s.sampleField())
	perfStats := s.perf.Stats()
	s.lastStats = stats

	if s.onStats != nil {
		s.onStats(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.sink != nil {
		if err := s.sink.WriteWindow(stats, perfStats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
	}

	for _, bm := range s.bookmarks.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if s.sink != nil {
			if err := s.sink.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}

// sampleField measures trail mass, coverage, food and the trail under agents.
func (s *Simulation) sampleField() telemetry.FieldSample {
	sample := telemetry.FieldSample{
		Agents:   s.store.Len(),
		FoodMass: float64(s.food.Mass()),
	}
	for c := 0; c < systems.NumChannels; c++ {
		sample.TrailMass[c] = float64(s.trail.Mass(c))
	}

	threshold := float32(s.cfg.Telemetry.CoverageThreshold)
	cells := s.w * s.h
	covered := 0
	ch0, ch1, ch2 := s.trail.Current(0), s.trail.Current(1), s.trail.Current(2)
	for i := 0; i < cells; i++ {
		if ch0[i]+ch1[i]+ch2[i] > threshold {
			covered++
		}
	}
	if cells > 0 {
		sample.Coverage = float64(covered) / float64(cells)
	}

	view := s.store.View()
	s.samples = s.samples[:0]
	for i := range view {
		a := &view[i]
		x, y := int(a.X), int(a.Y)
		s.samples = append(s.samples, float64(s.trail.At(0, x, y)+s.trail.At(1, x, y)+s.trail.At(2, x, y)))
	}
	sample.TrailAtAgent = s.samples
	return sample
}
