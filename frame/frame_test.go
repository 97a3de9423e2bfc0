package frame

import (
	"image/color"
	"math"
	"testing"

	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/sim"
)

func testSnapshot() *sim.Snapshot {
	snap := &sim.Snapshot{Width: 2, Height: 2, NumSpecies: 2}
	snap.Trail[0] = []float32{0, 10, 0, 0}
	snap.Trail[1] = []float32{0, 0, 10, 0}
	snap.Trail[2] = []float32{0, 0, 0, 0}
	snap.Food = []float32{0, 0, 0, 1}
	return snap
}

func TestNewPalette(t *testing.T) {
	cfg := config.Defaults()
	p := NewPalette(cfg)

	want := color.RGBA{R: cfg.Species[0].Color.R, G: cfg.Species[0].Color.G, B: cfg.Species[0].Color.B, A: 255}
	if p.Species[0] != want {
		t.Errorf("species colour = %v, want %v", p.Species[0], want)
	}
	if p.Food != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("food colour = %v", p.Food)
	}
	if p.Species[2] != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("unconfigured species should default to white, got %v", p.Species[2])
	}
}

func TestCompose(t *testing.T) {
	p := Palette{
		Species:    [3]color.RGBA{{R: 255, A: 255}, {B: 255, A: 255}, {G: 255, A: 255}},
		Food:       color.RGBA{G: 255, A: 255},
		Background: color.RGBA{A: 255},
	}
	c := NewComposer(p)
	c.Gain = 1

	px := c.Compose(nil, testSnapshot())
	if len(px) != 4 {
		t.Fatalf("expected 4 pixels, got %d", len(px))
	}

	if px[0] != (color.RGBA{A: 255}) {
		t.Errorf("empty cell = %v, want background", px[0])
	}
	// 10/(1+10) of full red
	if px[1].R != 232 || px[1].G != 0 || px[1].B != 0 {
		t.Errorf("species 0 cell = %v", px[1])
	}
	if px[2].B != 232 || px[2].R != 0 {
		t.Errorf("species 1 cell = %v", px[2])
	}
	if px[3].G != 255 {
		t.Errorf("food cell = %v", px[3])
	}

	c.HideFood = true
	px = c.Compose(px, testSnapshot())
	if px[3] != (color.RGBA{A: 255}) {
		t.Errorf("hidden food cell = %v, want background", px[3])
	}

	// Reuses the buffer.
	again := c.Compose(px, testSnapshot())
	if &again[0] != &px[0] {
		t.Error("expected dst to be reused")
	}
}

func TestComposeSingleSpeciesUsesOneChannel(t *testing.T) {
	snap := &sim.Snapshot{Width: 1, Height: 1, NumSpecies: 1}
	for c := range snap.Trail {
		snap.Trail[c] = []float32{1}
	}
	p := Palette{Species: [3]color.RGBA{{R: 100, A: 255}, {R: 100, A: 255}, {R: 100, A: 255}}}
	c := NewComposer(p)
	c.Gain = 1

	px := c.Compose(nil, snap)
	if px[0].R != 50 {
		t.Errorf("expected a single channel contribution of 50, got %d", px[0].R)
	}
}

func TestToneMap(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{0, 0},
		{-1, 0},
		{1, 0.5},
		{3, 0.75},
		{float32(math.NaN()), 0},
		{float32(math.Inf(1)), 1},
	}
	for _, tt := range tests {
		if got := ToneMap(tt.in); got != tt.want {
			t.Errorf("ToneMap(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIntensity(t *testing.T) {
	got := Intensity(nil, testSnapshot())
	want := []float32{0, 10, 10, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDownsample(t *testing.T) {
	// 3x3 grid, factor 2 -> 2x2 with partial edge blocks
	src := []float32{
		1, 3, 5,
		1, 3, 5,
		2, 2, 8,
	}
	out, w, h := Downsample(src, 3, 3, 2)
	if w != 2 || h != 2 {
		t.Fatalf("size = %dx%d, want 2x2", w, h)
	}
	want := []float32{2, 5, 2, 8}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("block %d = %v, want %v", i, out[i], want[i])
		}
	}

	same, w, h := Downsample(src, 3, 3, 1)
	if w != 3 || h != 3 || len(same) != 9 {
		t.Errorf("factor 1 should copy, got %dx%d len %d", w, h, len(same))
	}
	same[0] = 99
	if src[0] == 99 {
		t.Error("factor 1 must not alias the source")
	}
}

func TestQuantize(t *testing.T) {
	got := Quantize([]float32{0, 0.5, 1, 2, -1}, 1)
	want := []byte{0, 128, 255, 255, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("value %d = %d, want %d", i, got[i], want[i])
		}
	}

	auto := Quantize([]float32{0, 2, 4}, 0)
	if auto[2] != 255 || auto[1] != 128 {
		t.Errorf("auto scale = %v", auto)
	}

	zero := Quantize([]float32{0, 0}, 0)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("all-zero grid = %v", zero)
	}
}
