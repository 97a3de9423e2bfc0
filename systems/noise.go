package systems

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/physarum/config"
)

// octaveNoise layers octaves of normalized simplex noise and returns a value
// in [0,1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, gain float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= gain
		frequency *= 2
	}
	if maxVal == 0 {
		return 0
	}
	return total / maxVal
}

// SeedFoodNoise fills cells whose octave noise exceeds nc.Threshold with
// value and returns how many cells were filled. Existing food elsewhere is
// left untouched.
func SeedFoodNoise(fm *FoodMap, nc config.NoiseConfig, value float32, seed int64) int {
	if !nc.Enabled || nc.Octaves < 1 {
		return 0
	}
	value = clampFloat(value, 0, fm.Max)
	noise := opensimplex.NewNormalized(seed)

	filled := 0
	for y := 0; y < fm.H; y++ {
		for x := 0; x < fm.W; x++ {
			n := octaveNoise(noise, float64(x), float64(y), nc.Octaves, nc.Scale, nc.Gain)
			if n > nc.Threshold {
				fm.data[y*fm.W+x] = value
				filled++
			}
		}
	}
	return filled
}
