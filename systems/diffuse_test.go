package systems

import (
	"math"
	"math/rand"
	"testing"
)

func sum32(s []float32) float64 {
	var t float64
	for _, v := range s {
		t += float64(v)
	}
	return t
}

func TestDiffuseConservesMass(t *testing.T) {
	const w, h = 17, 11
	rng := rand.New(rand.NewSource(3))
	src := make([]float32, w*h)
	for i := range src {
		src[i] = rng.Float32() * 10
	}
	dst := make([]float32, w*h)

	DiffuseDecayRows(src, dst, w, h, 0, h, DiffuseParams{Mix: 1, Keep: 1})

	before, after := sum32(src), sum32(dst)
	if math.Abs(before-after) > 1e-3*before {
		t.Errorf("pure blur changed mass: %v -> %v", before, after)
	}
}

func TestDiffuseDecayNeverCreatesMass(t *testing.T) {
	const w, h = 9, 9
	rng := rand.New(rand.NewSource(5))
	tests := []struct {
		diffuse, decay, dt float32
	}{
		{0, 0, 1},
		{3, 0.2, 1.0 / 60},
		{1, 1, 0.5},
		{100, 0, 1},
	}
	for _, tt := range tests {
		src := make([]float32, w*h)
		for i := range src {
			src[i] = rng.Float32()
		}
		dst := make([]float32, w*h)
		DiffuseDecayRows(src, dst, w, h, 0, h, NewDiffuseParams(tt.diffuse, tt.decay, tt.dt))

		if after, before := sum32(dst), sum32(src); after > before*(1+1e-5) {
			t.Errorf("%+v: mass grew %v -> %v", tt, before, after)
		}
		for i, v := range dst {
			if v < 0 {
				t.Fatalf("%+v: cell %d negative: %v", tt, i, v)
			}
		}
	}
}

func TestFullDecayZeroesField(t *testing.T) {
	const w, h = 5, 4
	src := make([]float32, w*h)
	for i := range src {
		src[i] = float32(i + 1)
	}
	dst := make([]float32, w*h)
	DiffuseDecayRows(src, dst, w, h, 0, h, NewDiffuseParams(0, 1, 1))
	for i, v := range dst {
		if v != 0 {
			t.Errorf("cell %d = %v after full decay", i, v)
		}
	}
}

func TestDiffuseSpreadsPoint(t *testing.T) {
	const w, h = 5, 5
	src := make([]float32, w*h)
	src[2*w+2] = 9
	dst := make([]float32, w*h)
	DiffuseDecayRows(src, dst, w, h, 0, h, DiffuseParams{Mix: 1, Keep: 1})

	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			if v := dst[y*w+x]; math.Abs(float64(v-1)) > 1e-6 {
				t.Errorf("(%d,%d) = %v, want 1", x, y, v)
			}
		}
	}
	if dst[0] != 0 {
		t.Errorf("corner = %v, want 0", dst[0])
	}
}

func TestDiffuseRowSplitMatchesWhole(t *testing.T) {
	const w, h = 12, 10
	rng := rand.New(rand.NewSource(9))
	src := make([]float32, w*h)
	for i := range src {
		src[i] = rng.Float32()
	}
	p := NewDiffuseParams(2, 0.1, 0.1)

	whole := make([]float32, w*h)
	DiffuseDecayRows(src, whole, w, h, 0, h, p)

	split := make([]float32, w*h)
	for y := 0; y < h; y += 3 {
		DiffuseDecayRows(src, split, w, h, y, min(y+3, h), p)
	}
	for i := range whole {
		if whole[i] != split[i] {
			t.Fatalf("cell %d: whole %v, split %v", i, whole[i], split[i])
		}
	}
}

func TestDiffuseNaNFloors(t *testing.T) {
	src := []float32{float32(math.NaN())}
	dst := make([]float32, 1)
	DiffuseDecayRows(src, dst, 1, 1, 0, 1, DiffuseParams{Mix: 0.5, Keep: 1})
	if dst[0] != 0 {
		t.Errorf("NaN cell = %v, want 0", dst[0])
	}
}

func BenchmarkDiffuseDecay(b *testing.B) {
	const w, h = 640, 360
	src := make([]float32, w*h)
	dst := make([]float32, w*h)
	for i := range src {
		src[i] = float32(i % 7)
	}
	p := NewDiffuseParams(3, 0.2, 1.0/60)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DiffuseDecayRows(src, dst, w, h, 0, h, p)
	}
}
