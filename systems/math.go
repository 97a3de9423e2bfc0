package systems

import "math"

const twoPi = 2 * math.Pi

// clamp01 clamps a float32 value to the [0, 1] range. NaN maps to 0.
func clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clampInt clamps i to [0, n-1].
func clampInt(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// cellIndex converts a float coordinate to a clamped grid index.
// NaN coordinates land in cell 0.
func cellIndex(v float32, n int) int {
	if !(v >= 0) {
		return 0
	}
	if v >= float32(n) {
		return n - 1
	}
	return int(v)
}

// normalizeHeading wraps a heading to [0, 2*Pi).
func normalizeHeading(h float32) float32 {
	if h >= 0 && h < twoPi {
		return h
	}
	r := float32(math.Mod(float64(h), twoPi))
	if r < 0 {
		r += twoPi
	}
	if r >= twoPi {
		r = 0
	}
	return r
}

// upperBound returns the largest float32 strictly below n.
func upperBound(n int) float32 {
	return math.Nextafter32(float32(n), 0)
}

func isFinite32(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}

// hash01 returns a deterministic pseudo-random value in [0,1) for a
// (seed, step, agent) triple.
func hash01(seed uint64, step uint64, agent uint32) float32 {
	h := seed ^ (step * 0x9e3779b97f4a7c15) ^ (uint64(agent) * 0xbf58476d1ce4e5b9)
	h ^= h >> 30
	h *= 0xbf58476d1ce4e5b9
	h ^= h >> 27
	h *= 0x94d049bb133111eb
	h ^= h >> 31
	return float32(h>>40) / float32(1<<24)
}
