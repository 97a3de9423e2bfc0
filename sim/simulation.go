// Package sim runs the physarum simulation loop: agent sensing and motion,
// trail deposit, and diffusion with decay over a double-buffered field.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/systems"
	"github.com/pthm-cable/physarum/telemetry"
)

// Options configures a Simulation beyond the config file.
type Options struct {
	// Seed overrides simulation.seed when non-zero. With both zero the
	// seed is taken from the clock and recorded in the config.
	Seed int64

	// Sink receives every flushed stats window and bookmark.
	Sink telemetry.Sink

	// StatsCallback is called with each flushed window.
	StatsCallback func(telemetry.WindowStats)

	// LogStats logs windows and bookmarks as they are produced.
	LogStats bool

	// DisableTelemetry skips window statistics. Step timing still runs.
	DisableTelemetry bool
}

// workerScratch accumulates per-worker step counters.
type workerScratch struct {
	bounces   int
	deposited float64
	foodEaten float64
}

// Simulation owns the trail field, food map and agents of one run.
//
// Step and Tick may be called from one goroutine at a time; a concurrent
// call returns ErrBusy. PaintFood may be called from any goroutine.
// Snapshot may be called from any goroutine and never observes a
// partially completed step.
type Simulation struct {
	cfg *config.Config

	w, h         int
	dt           float32
	channels     int
	trailWeight  float32
	species      []systems.SpeciesParams
	maskSum      []float32
	diffuse      systems.DiffuseParams
	seed         int64
	hashSeed     uint64
	stepsPerTick atomic.Int32

	trail *systems.TrailField
	food  *systems.FoodMap
	store *AgentStore
	pool  *workerPool

	// Step scratch, reused between steps.
	snapshots []agentSnapshot
	intents   []intent
	scratch   []workerScratch
	samples   []float64

	// mu is held for writing for the whole of a step and for reading by
	// Snapshot and the accessors.
	mu       sync.RWMutex
	state    atomic.Int32
	ticking  atomic.Bool
	closed   atomic.Bool
	failure  atomic.Pointer[error]
	step     uint64
	simTime  float64
	wallTime time.Duration

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	bookmarks *telemetry.BookmarkDetector
	sink      telemetry.Sink
	lastStats telemetry.WindowStats
	onStats   func(telemetry.WindowStats)
	logStats  bool
}

// New validates cfg and builds a simulation ready to step.
// cfg is copied; later changes to it have no effect.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	cfg = cfg.Clone()
	cfg.ComputeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Simulation.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cfg.Simulation.Seed = seed

	rng := rand.New(rand.NewSource(seed))
	agents, err := systems.SpawnAgents(systems.SpawnParams{
		W:          cfg.Simulation.Width,
		H:          cfg.Simulation.Height,
		N:          cfg.Simulation.NumAgents,
		Mode:       cfg.Simulation.SpawnMode,
		NumSpecies: cfg.Derived.NumSpecies,
	}, rng)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	s := &Simulation{
		cfg:         cfg,
		w:           cfg.Simulation.Width,
		h:           cfg.Simulation.Height,
		dt:          cfg.Derived.DT32,
		channels:    cfg.Derived.ActiveChannels,
		trailWeight: float32(cfg.Trail.Weight),
		species:     systems.SpeciesParamsFromConfig(cfg),
		diffuse: systems.NewDiffuseParams(
			float32(cfg.Trail.DiffuseRate),
			float32(cfg.Trail.DecayRate),
			cfg.Derived.DT32,
		),
		seed:     seed,
		hashSeed: uint64(seed),
		trail:    systems.NewTrailField(cfg.Simulation.Width, cfg.Simulation.Height),
		food:     systems.NewFoodMap(cfg.Simulation.Width, cfg.Simulation.Height, float32(cfg.Food.Max)),
		store:    NewAgentStore(agents),
		pool:     newWorkerPool(cfg.Parallel.Workers, cfg.Parallel.Threshold),
		perf:     telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		sink:     opts.Sink,
		onStats:  opts.StatsCallback,
		logStats: opts.LogStats,
	}
	s.stepsPerTick.Store(int32(cfg.Simulation.StepsPerFrame))
	s.scratch = make([]workerScratch, s.pool.numWorkers)
	s.maskSum = make([]float32, len(s.species))
	for i := range s.species {
		m := systems.SpeciesMask(i, len(s.species))
		s.maskSum[i] = m[0] + m[1] + m[2]
	}

	if !opts.DisableTelemetry {
		s.collector = telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Simulation.DeltaTime)
		s.bookmarks = telemetry.NewBookmarkDetector(10, cfg.Telemetry.CoverageThreshold)
	}

	seeded := systems.SeedFoodNoise(s.food, cfg.Food.Noise, float32(cfg.Food.Value), seed)

	slog.Info("simulation created",
		"size", fmt.Sprintf("%dx%d", s.w, s.h),
		"agents", humanize.Comma(int64(s.store.Len())),
		"species", len(s.species),
		"channels", s.channels,
		"spawn", string(cfg.Simulation.SpawnMode),
		"seed", seed,
		"workers", s.pool.numWorkers,
		"food_seeded", seeded,
	)
	return s, nil
}

// Config returns the effective configuration, including the resolved seed.
// The returned value must not be modified.
func (s *Simulation) Config() *config.Config { return s.cfg }

// Seed returns the seed the run was started with.
func (s *Simulation) Seed() int64 { return s.seed }

// State returns the phase the loop is currently in.
func (s *Simulation) State() State { return State(s.state.Load()) }

// Err returns the failure that stopped the simulation, or nil.
func (s *Simulation) Err() error {
	if p := s.failure.Load(); p != nil {
		return *p
	}
	return nil
}

// StepCount returns the number of completed steps.
func (s *Simulation) StepCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.step
}

// SimTime returns simulated seconds elapsed.
func (s *Simulation) SimTime() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.simTime
}

// WallTime returns the host-reported elapsed time summed over ticks.
func (s *Simulation) WallTime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallTime
}

// StepsPerTick returns how many steps each Tick runs.
func (s *Simulation) StepsPerTick() int { return int(s.stepsPerTick.Load()) }

// SetStepsPerTick changes how many steps each Tick runs. Values below 1 are
// raised to 1.
func (s *Simulation) SetStepsPerTick(n int) {
	s.stepsPerTick.Store(int32(max(n, 1)))
}

// LastStats returns the most recently flushed stats window.
func (s *Simulation) LastStats() telemetry.WindowStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastStats
}

// PerfStats returns step timing over the recent window.
func (s *Simulation) PerfStats() telemetry.PerfStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.perf.Stats()
}

// RecordFrame records a rendered frame for FPS accounting.
func (s *Simulation) RecordFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perf.RecordFrame()
}

// Step advances the simulation by exactly one step.
func (s *Simulation) Step() error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.ticking.Store(false)
	return s.stepOnce()
}

// Tick runs StepsPerTick steps, one host frame's worth. elapsed is the wall
// time since the previous tick and only feeds WallTime; the simulation always
// advances by the fixed delta time. A cancelled ctx stops between steps.
func (s *Simulation) Tick(ctx context.Context, elapsed time.Duration) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.ticking.Store(false)

	s.mu.Lock()
	s.wallTime += elapsed
	s.mu.Unlock()

	n := s.StepsPerTick()
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.stepOnce(); err != nil {
			return err
		}
	}
	return nil
}

// Run ticks until ctx is done, maxTicks ticks have run (when positive), or a
// step fails. With a positive interval ticks are paced by a ticker, otherwise
// they run back to back. Cancellation is not an error.
func (s *Simulation) Run(ctx context.Context, interval time.Duration, maxTicks int) error {
	var tickC <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tickC = ticker.C
	}

	last := time.Now()
	for n := 0; maxTicks <= 0 || n < maxTicks; n++ {
		if tickC != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tickC:
			}
		} else if ctx.Err() != nil {
			return nil
		}

		now := time.Now()
		err := s.Tick(ctx, now.Sub(last))
		last = now
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Close stops the worker pool. A step already running completes; steps after
// Close, including the rest of a running Tick, return ErrClosed.
func (s *Simulation) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool.shutdown()
	slog.Debug("simulation closed", "steps", s.step)
	return nil
}

// PaintFood writes value into the square brush around cell (x, y) and returns
// the number of cells written. Safe to call while a step is running; agents
// see the paint from their next sense or consume.
func (s *Simulation) PaintFood(x, y, brush int, value float32) int {
	n := s.food.Paint(x, y, brush, value)
	if s.collector != nil {
		s.collector.RecordPaint(n)
	}
	return n
}

func (s *Simulation) acquire() error {
	if err := s.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	if !s.ticking.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return nil
}

// stepOnce runs the agent, diffuse and swap stages under the write lock.
func (s *Simulation) stepOnce() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return ErrClosed
	}
	defer s.state.Store(int32(StateIdle))

	s.perf.StartStep()

	if err := s.updateAgents(); err != nil {
		return s.fail(err)
	}
	if err := s.diffuseDecay(); err != nil {
		return s.fail(err)
	}
	s.swap()

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()
	s.perf.EndStep()
	return nil
}

// fail records err as the terminal failure.
func (s *Simulation) fail(err error) error {
	s.failure.CompareAndSwap(nil, &err)
	slog.Error("simulation failed", "step", s.step, "error", err)
	return err
}
