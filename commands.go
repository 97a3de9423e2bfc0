package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/stream"
	"github.com/pthm-cable/physarum/view"
)

var (
	flagRunInterval   time.Duration
	flagServeInterval time.Duration
	flagAddr          string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation headless",
	Long: `Run the simulation without a window. Ticks run back to back unless
--interval is set. Stops on Ctrl+C or after --max-ticks.

Examples:
  physarum run --max-ticks 5000 --log-stats
  physarum run --output-dir out/ --db runs.db --seed 7`,
	RunE: runHeadless,
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open the interactive viewer",
	Long: `Open a window showing the trail field. Left click paints food, right
drag pans and the wheel zooms. Press Tab for the controls panel.`,
	RunE: runViewer,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream the simulation to websocket clients",
	Long: `Run the simulation and stream downsampled frames over a websocket at
/ws. Clients may paint food and change speed.

Examples:
  physarum serve
  physarum serve --addr :9000 --interval 33ms`,
	RunE: runServe,
}

func init() {
	runCmd.Flags().DurationVar(&flagRunInterval, "interval", 0, "Time between ticks (0 = as fast as possible)")
	serveCmd.Flags().DurationVar(&flagServeInterval, "interval", time.Second/60, "Time between ticks")
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (empty = use config)")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runHeadless(_ *cobra.Command, _ []string) error {
	ss, err := newSession()
	if err != nil {
		return err
	}
	defer ss.Close()

	ctx, stop := signalContext()
	defer stop()

	s := ss.sim
	slog.Info("starting headless simulation",
		"seed", s.Seed(),
		"max_ticks", flagMaxTicks,
		"steps_per_tick", s.StepsPerTick(),
		"interval", flagRunInterval,
	)

	start := time.Now()
	err = s.Run(ctx, flagRunInterval, flagMaxTicks)

	elapsed := time.Since(start)
	steps := s.StepCount()
	rate := float64(steps) / max(elapsed.Seconds(), 1e-9)
	slog.Info("simulation stopped",
		"steps", humanize.Comma(int64(steps)),
		"sim_time", s.SimTime(),
		"elapsed", elapsed.Round(time.Millisecond),
		"steps_per_sec", humanize.CommafWithDigits(rate, 1),
	)
	return err
}

func runViewer(_ *cobra.Command, _ []string) error {
	ss, err := newSession()
	if err != nil {
		return err
	}
	defer ss.Close()

	ctx, stop := signalContext()
	defer stop()

	return view.New(ss.sim).Run(ctx, flagMaxTicks)
}

func runServe(_ *cobra.Command, _ []string) error {
	ss, err := newSession()
	if err != nil {
		return err
	}
	defer ss.Close()

	ctx, stop := signalContext()
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	addr := flagAddr
	if addr == "" {
		addr = config.Cfg().Stream.Addr
	}

	simErr := make(chan error, 1)
	go func() {
		err := ss.sim.Run(ctx, flagServeInterval, flagMaxTicks)
		if err != nil {
			slog.Error("simulation failed", "error", err)
		}
		simErr <- err
		cancel()
	}()

	srvErr := stream.NewServer(ss.sim).ListenAndServe(ctx, addr)
	cancel()
	return errors.Join(srvErr, <-simErr)
}
