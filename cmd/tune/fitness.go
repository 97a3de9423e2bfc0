package main

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/sim"
	"github.com/pthm-cable/physarum/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int
	seeds      []int64
	baseConfig *config.Config
	target     float64 // desired trail coverage fraction

	mu          sync.Mutex
	lastQuality quality // from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config, target float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
		target:     target,
	}
}

// LastQuality returns the quality breakdown from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() quality {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Quality component weights.
const (
	qualityWeightCoverage  = 0.6
	qualityWeightStability = 0.2
	qualityWeightContrast  = 0.2

	qualityWarmupWindows = 2    // skip first N windows while networks form
	coverageTolerance    = 0.1  // coverage error at which the score falls to 1/e
	contrastScale        = 2.0  // trail-at-agent ratio excess at which the score reaches 1-1/e
)

// quality is the per-run score breakdown, each component in [0, 1].
type quality struct {
	Coverage  float64
	Stability float64
	Contrast  float64
	Total     float64
	Failed    bool
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Fitness is the negated mean quality over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]quality, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.computeQuality(fe.runSimulation(x, s))
		}(i, seed)
	}
	wg.Wait()

	var avg quality
	for _, r := range results {
		avg.Coverage += r.Coverage
		avg.Stability += r.Stability
		avg.Contrast += r.Contrast
		avg.Total += r.Total
		avg.Failed = avg.Failed || r.Failed
	}
	n := float64(len(results))
	avg.Coverage /= n
	avg.Stability /= n
	avg.Contrast /= n
	avg.Total /= n

	fe.mu.Lock()
	fe.lastQuality = avg
	fe.mu.Unlock()

	return -avg.Total
}

// runResult holds the results from a single simulation run.
type runResult struct {
	cells   int
	windows []telemetry.WindowStats // collected via StatsCallback each window
	err     error
}

// runSimulation executes a single headless simulation run of maxTicks ticks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	// Seeds run concurrently; keep each simulation on one worker.
	cfg.Parallel.Workers = 1

	result := &runResult{cells: cfg.Simulation.Width * cfg.Simulation.Height}
	s, err := sim.New(cfg, sim.Options{
		Seed: seed,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windows = append(result.windows, stats)
		},
	})
	if err != nil {
		result.err = err
		return result
	}
	defer s.Close()

	if err := s.Run(context.Background(), 0, fe.maxTicks); err != nil {
		slog.Warn("evaluation run failed", "seed", seed, "error", err)
		result.err = err
	}
	return result
}

// computeQuality scores a run: coverage near the target, stable coverage
// across windows, and agents concentrated on trails.
func (fe *FitnessEvaluator) computeQuality(r *runResult) quality {
	if r.err != nil || len(r.windows) <= qualityWarmupWindows {
		return quality{Failed: r.err != nil}
	}
	valid := r.windows[qualityWarmupWindows:]

	coverage := make([]float64, len(valid))
	var contrastSum float64
	for i, w := range valid {
		coverage[i] = w.Coverage
		if w.TrailMassTotal > 0 && r.cells > 0 {
			fieldMean := w.TrailMassTotal / float64(r.cells)
			ratio := w.TrailAtAgentMean / fieldMean
			contrastSum += 1 - math.Exp(-max(ratio-1, 0)/contrastScale)
		}
	}

	mean, std := stat.MeanStdDev(coverage, nil)
	if math.IsNaN(std) {
		std = 0
	}

	var q quality
	d := (mean - fe.target) / coverageTolerance
	q.Coverage = math.Exp(-d * d)
	if mean > 0 {
		cv := std / mean
		q.Stability = math.Exp(-cv * cv)
	}
	q.Contrast = contrastSum / float64(len(valid))
	q.Total = clamp01(qualityWeightCoverage*q.Coverage +
		qualityWeightStability*q.Stability +
		qualityWeightContrast*q.Contrast)
	return q
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
