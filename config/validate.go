package config

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig matches every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError describes one rejected configuration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidConfig }

// Validate checks the configuration and returns every problem found, joined.
// The result satisfies errors.Is(err, ErrInvalidConfig) when non-nil.
func (c *Config) Validate() error {
	var errs []error
	bad := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	sim := c.Simulation
	if sim.Width <= 0 {
		bad("simulation.width", "must be positive, got %d", sim.Width)
	}
	if sim.Height <= 0 {
		bad("simulation.height", "must be positive, got %d", sim.Height)
	}
	if sim.NumAgents <= 0 {
		bad("simulation.num_agents", "must be positive, got %d", sim.NumAgents)
	}
	if !sim.SpawnMode.Valid() {
		bad("simulation.spawn_mode", "unknown mode %q", sim.SpawnMode)
	}
	if sim.StepsPerFrame < 1 {
		bad("simulation.steps_per_frame", "must be at least 1, got %d", sim.StepsPerFrame)
	}
	if !(sim.DeltaTime > 0) || math.IsInf(sim.DeltaTime, 0) {
		bad("simulation.delta_time", "must be positive and finite, got %g", sim.DeltaTime)
	}

	if !(c.Trail.Weight >= 0) || math.IsInf(c.Trail.Weight, 0) {
		bad("trail.weight", "must be non-negative and finite, got %g", c.Trail.Weight)
	}
	if c.Trail.DecayRate < 0 {
		bad("trail.decay_rate", "must be non-negative, got %g", c.Trail.DecayRate)
	}
	if c.Trail.DiffuseRate < 0 {
		bad("trail.diffuse_rate", "must be non-negative, got %g", c.Trail.DiffuseRate)
	}

	if c.Food.Max < 0 {
		bad("food.max", "must be non-negative, got %g", c.Food.Max)
	}
	if c.Food.Noise.Enabled && c.Food.Noise.Octaves < 1 {
		bad("food.noise.octaves", "must be at least 1 when noise is enabled, got %d", c.Food.Noise.Octaves)
	}

	switch n := len(c.Species); {
	case n == 0:
		bad("species", "at least one species is required")
	case n > MaxSpecies:
		bad("species", "at most %d species are supported, got %d", MaxSpecies, n)
	}
	for i, s := range c.Species {
		field := fmt.Sprintf("species[%d]", i)
		if s.SensorSize < 1 {
			bad(field+".sensor_size", "must be at least 1, got %d", s.SensorSize)
		}
		if s.FoodEatRate < 0 {
			bad(field+".food_eat_rate", "must be non-negative, got %g", s.FoodEatRate)
		}
	}

	if c.Parallel.Workers < 0 {
		bad("parallel.workers", "must be non-negative, got %d", c.Parallel.Workers)
	}

	return errors.Join(errs...)
}
