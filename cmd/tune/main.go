// Package main provides CMA-ES tuning of trail and sensor parameters for a
// target network coverage.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/physarum/config"
)

// evalRecord is one row of tune_log.csv.
type evalRecord struct {
	Eval               int     `csv:"eval"`
	Fitness            float64 `csv:"fitness"`
	Coverage           float64 `csv:"q_coverage"`
	Stability          float64 `csv:"q_stability"`
	Contrast           float64 `csv:"q_contrast"`
	TrailWeight        float64 `csv:"trail_weight"`
	DecayRate          float64 `csv:"decay_rate"`
	DiffuseRate        float64 `csv:"diffuse_rate"`
	MoveSpeed          float64 `csv:"move_speed"`
	TurnSpeed          float64 `csv:"turn_speed"`
	SensorAngleSpacing float64 `csv:"sensor_angle_spacing"`
	SensorOffsetDst    float64 `csv:"sensor_offset_dst"`
}

func newEvalRecord(eval int, fitness float64, q quality, v []float64) evalRecord {
	return evalRecord{
		Eval: eval, Fitness: fitness,
		Coverage: q.Coverage, Stability: q.Stability, Contrast: q.Contrast,
		TrailWeight: v[0], DecayRate: v[1], DiffuseRate: v[2],
		MoveSpeed: v[3], TurnSpeed: v[4],
		SensorAngleSpacing: v[5], SensorOffsetDst: v[6],
	}
}

// csvLog appends evaluation rows to a CSV file, writing the header once.
type csvLog struct {
	f             *os.File
	headerWritten bool
}

func (l *csvLog) Write(rec evalRecord) error {
	rows := []evalRecord{rec}
	if !l.headerWritten {
		l.headerWritten = true
		return gocsv.MarshalFile(&rows, l.f)
	}
	return gocsv.MarshalWithoutHeaders(&rows, l.f)
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int("max-ticks", 1200, "Simulation ticks per run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	target := flag.Float64("target", 0.3, "Target trail coverage fraction")
	width := flag.Int("width", 0, "Field width for runs (0 = use config)")
	height := flag.Int("height", 0, "Field height for runs (0 = use config)")
	agents := flag.Int("agents", 0, "Agents per run (0 = use config)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "tune",
	})))

	if *outputDir == "" {
		fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fatal("failed to create output directory", "error", err)
	}

	if err := config.Init(*configPath); err != nil {
		fatal("failed to load config", "error", err)
	}
	baseCfg := config.Cfg().Clone()
	if *width > 0 {
		baseCfg.Simulation.Width = *width
	}
	if *height > 0 {
		baseCfg.Simulation.Height = *height
	}
	if *agents > 0 {
		baseCfg.Simulation.NumAgents = *agents
	}
	baseCfg.Simulation.StepsPerFrame = 1

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, *maxTicks, evalSeeds, baseCfg, *target)

	dim := params.Dim()
	initX := params.Normalize(params.Clamp(params.ExtractFromConfig(baseCfg)))

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation; seeds already run in parallel
	}

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		fatal("failed to create log file", "error", err)
	}
	defer logFile.Close()
	csvOut := &csvLog{f: logFile}

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			q := evaluator.LastQuality()
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = append(bestParams[:0], raw...)
			}
			if err := csvOut.Write(newEvalRecord(evalCount, fitness, q, raw)); err != nil {
				slog.Warn("failed to write log row", "error", err)
			}

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval
			fmt.Printf("Eval %d/%d: fitness=%.3f coverage=%.2f stability=%.2f contrast=%.2f (best=%.3f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, fitness, q.Coverage, q.Stability, q.Contrast, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	slog.Info("starting CMA-ES tuning",
		"params", dim,
		"population", popSize,
		"max_evals", *maxEvals,
		"seeds", *seeds,
		"ticks", *maxTicks,
		"target_coverage", *target,
	)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}

	// Best params may come from any evaluation, not just the final one.
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		fatal("no evaluations completed")
	}

	fmt.Printf("\nTuning complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %-22s %.6f\n", spec.Path, bestParams[i])
	}

	bestCfg := config.Cfg().Clone()
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		slog.Error("failed to write best config", "error", err)
		return
	}
	fmt.Printf("\nBest config saved to: %s\n", configOutPath)
}
