package main

import (
	"github.com/pthm-cable/physarum/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters. Species
// parameters are applied to every species.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Trail
			{Name: "trail_weight", Path: "trail.weight", Min: 0.5, Max: 20, Default: 5},
			{Name: "decay_rate", Path: "trail.decay_rate", Min: 0.01, Max: 2, Default: 0.25},
			{Name: "diffuse_rate", Path: "trail.diffuse_rate", Min: 0, Max: 10, Default: 3},
			// Movement
			{Name: "move_speed", Path: "species[*].move_speed", Min: 5, Max: 80, Default: 30},
			{Name: "turn_speed", Path: "species[*].turn_speed", Min: 1, Max: 20, Default: 8},
			// Sensors
			{Name: "sensor_angle_spacing", Path: "species[*].sensor_angle_spacing", Min: 0.1, Max: 1.5, Default: 0.52},
			{Name: "sensor_offset_dst", Path: "species[*].sensor_offset_dst", Min: 2, Max: 30, Default: 9},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Trail.Weight = clamped[0]
	cfg.Trail.DecayRate = clamped[1]
	cfg.Trail.DiffuseRate = clamped[2]

	for i := range cfg.Species {
		sp := &cfg.Species[i]
		sp.MoveSpeed = clamped[3]
		sp.TurnSpeed = clamped[4]
		sp.SensorAngleSpacing = clamped[5]
		sp.SensorOffsetDst = clamped[6]
	}
}

// ExtractFromConfig extracts current parameter values from a Config struct,
// reading species parameters from the first species.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := []float64{cfg.Trail.Weight, cfg.Trail.DecayRate, cfg.Trail.DiffuseRate, 0, 0, 0, 0}
	if len(cfg.Species) > 0 {
		sp := cfg.Species[0]
		v[3], v[4], v[5], v[6] = sp.MoveSpeed, sp.TurnSpeed, sp.SensorAngleSpacing, sp.SensorOffsetDst
	}
	return v
}
