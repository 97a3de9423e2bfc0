// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// MaxSpecies is the number of trail channels; each species owns one.
const MaxSpecies = 3

// Config holds all simulation configuration parameters.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Trail      TrailConfig      `yaml:"trail"`
	Food       FoodConfig       `yaml:"food"`
	Species    []SpeciesConfig  `yaml:"species"`
	Parallel   ParallelConfig   `yaml:"parallel"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Display    DisplayConfig    `yaml:"display"`
	Stream     StreamConfig     `yaml:"stream"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimulationConfig holds field dimensions, population and stepping parameters.
type SimulationConfig struct {
	Width         int       `yaml:"width"`
	Height        int       `yaml:"height"`
	NumAgents     int       `yaml:"num_agents"`
	SpawnMode     SpawnMode `yaml:"spawn_mode"`
	StepsPerFrame int       `yaml:"steps_per_frame"`
	DeltaTime     float64   `yaml:"delta_time"` // fixed seconds per step
	Seed          int64     `yaml:"seed"`       // 0 = time-based
}

// TrailConfig holds deposit, diffusion and decay parameters.
type TrailConfig struct {
	Weight      float64 `yaml:"weight"`       // deposited per agent per step
	DecayRate   float64 `yaml:"decay_rate"`   // per second
	DiffuseRate float64 `yaml:"diffuse_rate"` // per second
}

// FoodConfig holds food map and brush parameters.
type FoodConfig struct {
	BrushSize int         `yaml:"brush_size"`
	Value     float64     `yaml:"value"` // intensity written by the brush
	Max       float64     `yaml:"max"`   // upper clamp for painted values
	Color     Color       `yaml:"color"` // display colour
	Noise     NoiseConfig `yaml:"noise"`
}

// NoiseConfig seeds the food map from octave simplex noise at startup.
type NoiseConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Scale     float64 `yaml:"scale"`     // base frequency in cells^-1
	Octaves   int     `yaml:"octaves"`
	Gain      float64 `yaml:"gain"`      // amplitude multiplier per octave
	Threshold float64 `yaml:"threshold"` // normalized noise above this gets food
}

// SpeciesConfig holds per-species movement, sensor and display settings.
type SpeciesConfig struct {
	Name string `yaml:"name"`

	// Movement
	MoveSpeed   float64 `yaml:"move_speed"`    // cells per second
	TurnSpeed   float64 `yaml:"turn_speed"`    // radians per second
	FoodEatRate float64 `yaml:"food_eat_rate"` // food units per second
	RandomSteer bool    `yaml:"random_steer"`  // scale turns by a per-step random strength

	// Sensors
	SensorAngleSpacing float64 `yaml:"sensor_angle_spacing"` // radians between probes
	SensorOffsetDst    float64 `yaml:"sensor_offset_dst"`    // cells ahead of the agent
	SensorSize         int     `yaml:"sensor_size"`          // probes per side
	FoodWeight         float64 `yaml:"food_weight"`          // food attraction vs trail following

	Color Color `yaml:"color"`
}

// ParallelConfig holds worker pool parameters.
type ParallelConfig struct {
	Workers   int `yaml:"workers"`   // 0 = GOMAXPROCS
	Threshold int `yaml:"threshold"` // below this many work items, run inline
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // sim seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // steps averaged by the perf collector
	CoverageThreshold   float64 `yaml:"coverage_threshold"`    // trail intensity counted as "covered"
}

// DisplayConfig holds viewer settings.
type DisplayConfig struct {
	Scale          int  `yaml:"scale"` // screen pixels per field cell
	TargetFPS      int  `yaml:"target_fps"`
	ShowAgentsOnly bool `yaml:"show_agents_only"`
}

// StreamConfig holds websocket stream settings.
type StreamConfig struct {
	Addr          string  `yaml:"addr"`
	FrameInterval float64 `yaml:"frame_interval"` // seconds between frames
	Downsample    int     `yaml:"downsample"`     // field cells per streamed pixel
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32       float32 // Simulation.DeltaTime as float32
	NumSpecies int
	// ActiveChannels is the number of trail channels agents deposit into.
	// A single species deposits into all channels.
	ActiveChannels int
	Cells          int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ComputeDerived()
	return cfg, nil
}

// Parse overlays YAML data onto cfg. Only fields present in data are overwritten,
// except species, which replaces the whole list when present.
func Parse(data []byte, cfg *Config) error {
	var probe struct {
		Species []SpeciesConfig `yaml:"species"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	if probe.Species != nil {
		cfg.Species = nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config.
// Call again after mutating a loaded config.
func (c *Config) ComputeDerived() {
	c.Derived.DT32 = float32(c.Simulation.DeltaTime)
	c.Derived.NumSpecies = len(c.Species)
	c.Derived.ActiveChannels = c.Derived.NumSpecies
	if c.Derived.NumSpecies <= 1 {
		c.Derived.ActiveChannels = MaxSpecies
	}
	if c.Derived.ActiveChannels > MaxSpecies {
		c.Derived.ActiveChannels = MaxSpecies
	}
	c.Derived.Cells = c.Simulation.Width * c.Simulation.Height

	for i := range c.Species {
		if c.Species[i].Name == "" {
			c.Species[i].Name = fmt.Sprintf("species-%d", i)
		}
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Species = append([]SpeciesConfig(nil), c.Species...)
	return &out
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
