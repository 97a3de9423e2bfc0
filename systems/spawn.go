package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/physarum/config"
)

// SpawnParams describes the initial population.
type SpawnParams struct {
	W, H       int
	N          int
	Mode       config.SpawnMode
	NumSpecies int
}

// Disk radii for the circle spawn modes, as fractions of the field height.
const (
	inwardCircleRadius = 0.5
	randomCircleRadius = 0.15
)

// SpawnAgents creates p.N agents laid out according to p.Mode.
// Every position is inside [0,W)x[0,H).
func SpawnAgents(p SpawnParams, rng *rand.Rand) ([]Agent, error) {
	if p.NumSpecies < 1 || p.NumSpecies > NumChannels {
		return nil, fmt.Errorf("spawn: %d species, want 1..%d", p.NumSpecies, NumChannels)
	}
	if !p.Mode.Valid() {
		return nil, fmt.Errorf("spawn: unknown mode %q", p.Mode)
	}

	agents := make([]Agent, p.N)
	cx := float32(p.W / 2)
	cy := float32(p.H / 2)
	maxX, maxY := upperBound(p.W), upperBound(p.H)

	for i := range agents {
		a := &agents[i]
		switch p.Mode {
		case config.SpawnPoint:
			a.X, a.Y = cx, cy
			a.Angle = randomAngle(rng)
		case config.SpawnRandom:
			a.X = rng.Float32() * float32(p.W)
			a.Y = rng.Float32() * float32(p.H)
			a.Angle = randomAngle(rng)
		case config.SpawnInwardCircle:
			dx, dy := diskPoint(rng, inwardCircleRadius*float32(p.H))
			a.X, a.Y = cx+dx, cy+dy
			a.Angle = normalizeHeading(float32(math.Atan2(float64(-dy), float64(-dx))))
		case config.SpawnRandomCircle:
			dx, dy := diskPoint(rng, randomCircleRadius*float32(p.H))
			a.X, a.Y = cx+dx, cy+dy
			a.Angle = randomAngle(rng)
		}
		a.X = clampFloat(a.X, 0, maxX)
		a.Y = clampFloat(a.Y, 0, maxY)

		if p.NumSpecies > 1 {
			a.Species = uint8(rng.Intn(p.NumSpecies))
		}
		a.Mask = SpeciesMask(int(a.Species), p.NumSpecies)
	}
	return agents, nil
}

func randomAngle(rng *rand.Rand) float32 {
	return normalizeHeading(rng.Float32() * twoPi)
}

// diskPoint returns a uniformly distributed offset inside a disk of radius r.
func diskPoint(rng *rand.Rand, r float32) (float32, float32) {
	rad := r * float32(math.Sqrt(rng.Float64()))
	s, c := math.Sincos(rng.Float64() * twoPi)
	return rad * float32(c), rad * float32(s)
}
