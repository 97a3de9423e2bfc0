// physarum runs a multi-agent slime mould simulation.
//
// Usage:
//
//	physarum run     - Run headless, writing telemetry
//	physarum view    - Open the interactive viewer
//	physarum serve   - Stream frames to websocket clients
//
// Global flags:
//
//	--config <path>     - YAML config (default: embedded defaults)
//	--seed <value>      - RNG seed (0 = config or time based)
//	--output-dir <dir>  - Write CSV telemetry and the config snapshot
//	--db <path>         - Record runs and windows in a SQLite database
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/sim"
	"github.com/pthm-cable/physarum/telemetry"
)

var (
	flagConfig        string
	flagSeed          int64
	flagOutputDir     string
	flagDBPath        string
	flagStepsPerFrame int
	flagMaxTicks      int
	flagLogStats      bool
	flagLogJSON       bool
	flagVerbose       bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "physarum",
	Short: "Physarum - a multi-agent slime mould simulation",
	Long: `Physarum simulates agents that sense, follow and deposit chemical trails
on a diffusing field, forming transport networks between painted food.

Examples:
  physarum view
  physarum run --max-ticks 2000 --output-dir out/
  physarum serve --addr :8080 --db runs.db`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		setupLogging()
		return config.Init(flagConfig)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to config.yaml (empty = use defaults)")
	pf.Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = config seed, then time based)")
	pf.StringVar(&flagOutputDir, "output-dir", "", "Output directory for CSV logs and config snapshot")
	pf.StringVar(&flagDBPath, "db", "", "Path to SQLite run database (empty = disabled)")
	pf.IntVar(&flagStepsPerFrame, "steps-per-frame", 0, "Steps per tick (0 = use config)")
	pf.IntVar(&flagMaxTicks, "max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	pf.BoolVar(&flagLogStats, "log-stats", false, "Log stats windows via slog")
	pf.BoolVar(&flagLogJSON, "log-json", false, "Log JSON to stdout instead of text to stderr")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(serveCmd)
}

func setupLogging() {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	if flagLogJSON {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
		return
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "physarum",
		Level:           log.Level(level),
	})
	slog.SetDefault(slog.New(logger))
}

// session is a simulation together with the sinks it writes to.
type session struct {
	sim   *sim.Simulation
	sinks telemetry.Sinks
}

// newSession builds the simulation from the loaded config and opens the
// requested telemetry sinks.
func newSession() (*session, error) {
	cfg := config.Cfg().Clone()
	if flagStepsPerFrame > 0 {
		cfg.Simulation.StepsPerFrame = flagStepsPerFrame
	}

	out, err := telemetry.NewOutputManager(flagOutputDir)
	if err != nil {
		return nil, err
	}
	var store *telemetry.Store
	if flagDBPath != "" {
		if store, err = telemetry.OpenStore(flagDBPath); err != nil {
			out.Close()
			return nil, err
		}
	}

	ss := &session{}
	if out != nil {
		ss.sinks = append(ss.sinks, out)
	}
	if store != nil {
		ss.sinks = append(ss.sinks, store)
	}

	s, err := sim.New(cfg, sim.Options{
		Seed:     flagSeed,
		Sink:     ss.sinks,
		LogStats: flagLogStats,
	})
	if err != nil {
		ss.sinks.Close()
		return nil, err
	}
	ss.sim = s

	// The simulation records the resolved seed in its config copy.
	if err := out.WriteConfig(s.Config()); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}
	if store != nil {
		id, err := store.StartRun(s.Config(), s.Seed())
		if err != nil {
			ss.Close()
			return nil, err
		}
		slog.Info("run recorded", "id", id, "db", flagDBPath)
	}
	if out != nil {
		slog.Info("writing telemetry", "dir", out.Dir())
	}
	return ss, nil
}

func (ss *session) Close() error {
	var err error
	if ss.sim != nil {
		err = ss.sim.Close()
	}
	if cerr := ss.sinks.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
