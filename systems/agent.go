package systems

import (
	"math"

	"github.com/pthm-cable/physarum/config"
)

// Agent is the flat per-agent state used by the parallel update phases.
type Agent struct {
	X, Y    float32
	Angle   float32
	Species uint8
	Mask    [NumChannels]float32
}

// SpeciesParams is a float32 copy of a species config for the hot path.
type SpeciesParams struct {
	MoveSpeed          float32
	TurnSpeed          float32
	FoodEatRate        float32
	SensorAngleSpacing float32
	SensorOffsetDst    float32
	SensorSize         int
	FoodWeight         float32
	RandomSteer        bool

	// Weights are the per-channel sensing weights, 2*mask-1: attracted to
	// the species' own channels, repelled by the others.
	Weights [NumChannels]float32
}

// SpeciesMask returns the channel mask for species index of numSpecies.
// A lone species owns every channel.
func SpeciesMask(index, numSpecies int) [NumChannels]float32 {
	if numSpecies <= 1 {
		return [NumChannels]float32{1, 1, 1}
	}
	var m [NumChannels]float32
	if index >= 0 && index < NumChannels {
		m[index] = 1
	}
	return m
}

// NewSpeciesParams builds hot-path parameters for species index.
func NewSpeciesParams(sc config.SpeciesConfig, index, numSpecies int) SpeciesParams {
	mask := SpeciesMask(index, numSpecies)
	sp := SpeciesParams{
		MoveSpeed:          float32(sc.MoveSpeed),
		TurnSpeed:          float32(sc.TurnSpeed),
		FoodEatRate:        float32(sc.FoodEatRate),
		SensorAngleSpacing: float32(sc.SensorAngleSpacing),
		SensorOffsetDst:    float32(sc.SensorOffsetDst),
		SensorSize:         sc.SensorSize,
		FoodWeight:         float32(sc.FoodWeight),
		RandomSteer:        sc.RandomSteer,
	}
	for c := range mask {
		sp.Weights[c] = 2*mask[c] - 1
	}
	return sp
}

// SpeciesParamsFromConfig builds hot-path parameters for every species.
func SpeciesParamsFromConfig(cfg *config.Config) []SpeciesParams {
	out := make([]SpeciesParams, len(cfg.Species))
	for i, sc := range cfg.Species {
		out[i] = NewSpeciesParams(sc, i, len(cfg.Species))
	}
	return out
}

// Heading returns the agent's unit direction.
func (a *Agent) Heading() (float32, float32) {
	s, c := math.Sincos(float64(a.Angle))
	return float32(c), float32(s)
}
