package systems

import (
	"math"
)

// ProbeOffset returns the angular offset of the i-th probe in evaluation
// order: 0, -1, +1, -2, +2, ... times spacing.
func ProbeOffset(i int, spacing float32) float32 {
	k := (i + 1) / 2
	if i%2 == 1 {
		k = -k
	}
	return float32(k) * spacing
}

// Sense returns the score seen by a probe at angular offset off from the
// agent's heading: weighted trail plus weighted food at the probe cell.
func Sense(a *Agent, sp *SpeciesParams, off float32, tf *TrailField, fm *FoodMap) float32 {
	s, c := math.Sincos(float64(a.Angle + off))
	px := a.X + float32(c)*sp.SensorOffsetDst
	py := a.Y + float32(s)*sp.SensorOffsetDst

	score := tf.Score(px, py, &sp.Weights)
	if sp.FoodWeight != 0 {
		score += sp.FoodWeight * fm.At(px, py)
	}
	return score
}

// Steer returns the agent's new heading after sensing. The agent turns toward
// the best probe by at most TurnSpeed*dt*strength; ties go to the probe closest
// to straight ahead. A NaN score, or no finite best, leaves the heading alone.
func Steer(a *Agent, sp *SpeciesParams, tf *TrailField, fm *FoodMap, dt, strength float32) float32 {
	n := 2*sp.SensorSize + 1

	best := float32(math.Inf(-1))
	bestOff := float32(0)
	for i := 0; i < n; i++ {
		off := ProbeOffset(i, sp.SensorAngleSpacing)
		s := Sense(a, sp, off, tf, fm)
		if s != s {
			return a.Angle
		}
		if s > best {
			best = s
			bestOff = off
		}
	}
	if math.IsInf(float64(best), -1) {
		return a.Angle
	}

	limit := sp.TurnSpeed * dt * strength
	if !(limit > 0) {
		return a.Angle
	}
	turn := clampFloat(bestOff, -limit, limit)
	return normalizeHeading(a.Angle + turn)
}

// SteerStrength returns the turn-limit multiplier for an agent this step:
// 1, or a seeded per-step random value in [0,1) when the species steers
// randomly.
func SteerStrength(sp *SpeciesParams, seed, step uint64, agent uint32) float32 {
	if !sp.RandomSteer {
		return 1
	}
	return hash01(seed, step, agent)
}
