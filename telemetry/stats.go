package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartStep int64   `csv:"-" db:"window_start"`
	WindowEndStep   int64   `csv:"window_end" db:"window_end"`
	SimTimeSec      float64 `csv:"sim_time" db:"sim_time"`

	Agents int `csv:"agents" db:"agents"`

	// Trail mass per channel at window end
	TrailMass0     float64 `csv:"trail_mass_0" db:"trail_mass_0"`
	TrailMass1     float64 `csv:"trail_mass_1" db:"trail_mass_1"`
	TrailMass2     float64 `csv:"trail_mass_2" db:"trail_mass_2"`
	TrailMassTotal float64 `csv:"trail_mass" db:"trail_mass"`
	// Fraction of cells whose summed trail exceeds the coverage threshold
	Coverage float64 `csv:"coverage" db:"coverage"`

	FoodMass float64 `csv:"food_mass" db:"food_mass"`

	// Events during window
	Deposited  float64 `csv:"deposited" db:"deposited"`
	FoodEaten  float64 `csv:"food_eaten" db:"food_eaten"`
	Bounces    int     `csv:"bounces" db:"bounces"`
	PaintCalls int     `csv:"paint_calls" db:"paint_calls"`
	PaintCells int     `csv:"paint_cells" db:"paint_cells"`

	// Trail concentration sampled under each agent at window end
	TrailAtAgentMean float64 `csv:"trail_at_agent_mean" db:"trail_at_agent_mean"`
	TrailAtAgentStd  float64 `csv:"trail_at_agent_std" db:"trail_at_agent_std"`
	TrailAtAgentP10  float64 `csv:"trail_at_agent_p10" db:"trail_at_agent_p10"`
	TrailAtAgentP50  float64 `csv:"trail_at_agent_p50" db:"trail_at_agent_p50"`
	TrailAtAgentP90  float64 `csv:"trail_at_agent_p90" db:"trail_at_agent_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Distribution summarizes a sample: mean, population std and percentiles.
// values is sorted in place.
func Distribution(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}
	mean, std = stat.PopMeanStdDev(values, nil)
	sort.Float64s(values)
	return mean, std, Percentile(values, 0.10), Percentile(values, 0.50), Percentile(values, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartStep),
		slog.Int64("window_end", s.WindowEndStep),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("agents", s.Agents),
		slog.Float64("trail_mass", s.TrailMassTotal),
		slog.Float64("coverage", s.Coverage),
		slog.Float64("food_mass", s.FoodMass),
		slog.Float64("deposited", s.Deposited),
		slog.Float64("food_eaten", s.FoodEaten),
		slog.Int("bounces", s.Bounces),
		slog.Int("paint_calls", s.PaintCalls),
		slog.Float64("trail_at_agent_mean", s.TrailAtAgentMean),
		slog.Float64("trail_at_agent_p50", s.TrailAtAgentP50),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndStep,
		"sim_time", s.SimTimeSec,
		"agents", s.Agents,
		"trail_mass", s.TrailMassTotal,
		"trail_mass_0", s.TrailMass0,
		"trail_mass_1", s.TrailMass1,
		"trail_mass_2", s.TrailMass2,
		"coverage", s.Coverage,
		"food_mass", s.FoodMass,
		"deposited", s.Deposited,
		"food_eaten", s.FoodEaten,
		"bounces", s.Bounces,
		"paint_calls", s.PaintCalls,
		"paint_cells", s.PaintCells,
		"trail_at_agent_mean", s.TrailAtAgentMean,
		"trail_at_agent_std", s.TrailAtAgentStd,
		"trail_at_agent_p10", s.TrailAtAgentP10,
		"trail_at_agent_p50", s.TrailAtAgentP50,
		"trail_at_agent_p90", s.TrailAtAgentP90,
	)
}
