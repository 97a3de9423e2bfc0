// Package frame turns simulation snapshots into images and compact grids
// for display and streaming.
package frame

import (
	"image/color"
	"math"

	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/sim"
)

// Palette maps trail channels and food to display colours.
type Palette struct {
	Species    [config.MaxSpecies]color.RGBA
	Food       color.RGBA
	Background color.RGBA
}

// NewPalette builds a palette from the configured species and food colours.
func NewPalette(cfg *config.Config) Palette {
	p := Palette{
		Food:       rgba(cfg.Food.Color),
		Background: color.RGBA{A: 255},
	}
	for i := range p.Species {
		p.Species[i] = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	for i, sc := range cfg.Species {
		if i >= len(p.Species) {
			break
		}
		p.Species[i] = rgba(sc.Color)
	}
	return p
}

func rgba(c config.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Composer renders snapshots to RGBA pixels.
type Composer struct {
	Palette Palette
	// Gain scales trail values before tone mapping; larger values saturate
	// sooner.
	Gain float32
	// HideFood leaves food out of the composed image.
	HideFood bool
}

// NewComposer creates a composer with the given palette.
func NewComposer(p Palette) *Composer {
	return &Composer{Palette: p, Gain: 0.1}
}

// Compose writes one pixel per cell into dst, growing it as needed.
// Each trail channel adds its species colour weighted by a tone-mapped
// intensity, food adds the food colour on top. A lone species owns every
// channel, so only the first is drawn.
func (c *Composer) Compose(dst []color.RGBA, snap *sim.Snapshot) []color.RGBA {
	n := snap.Width * snap.Height
	if cap(dst) < n {
		dst = make([]color.RGBA, n)
	}
	dst = dst[:n]

	channels := snap.NumSpecies
	if channels < 1 {
		channels = 1
	}
	bg := c.Palette.Background

	for i := 0; i < n; i++ {
		r := float32(bg.R)
		g := float32(bg.G)
		b := float32(bg.B)

		for ch := 0; ch < channels; ch++ {
			if len(snap.Trail[ch]) <= i {
				continue
			}
			v := ToneMap(snap.Trail[ch][i] * c.Gain)
			col := c.Palette.Species[ch]
			r += v * float32(col.R)
			g += v * float32(col.G)
			b += v * float32(col.B)
		}

		if !c.HideFood && len(snap.Food) > i {
			v := clamp01(snap.Food[i])
			col := c.Palette.Food
			r += v * float32(col.R)
			g += v * float32(col.G)
			b += v * float32(col.B)
		}

		dst[i] = color.RGBA{R: channel8(r), G: channel8(g), B: channel8(b), A: 255}
	}
	return dst
}

// ToneMap maps [0, inf) to [0, 1) smoothly. Non-finite or negative input
// maps to 0.
func ToneMap(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if math.IsInf(float64(v), 1) {
		return 1
	}
	return v / (1 + v)
}

// Intensity sums the trail channels of snap into dst, one value per cell.
func Intensity(dst []float32, snap *sim.Snapshot) []float32 {
	n := snap.Width * snap.Height
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	clear(dst)

	channels := max(snap.NumSpecies, 1)
	for ch := 0; ch < channels; ch++ {
		src := snap.Trail[ch]
		for i := 0; i < n && i < len(src); i++ {
			dst[i] += src[i]
		}
	}
	return dst
}

// Downsample box-averages a w x h grid by factor on each axis. Partial blocks
// at the right and bottom edges average only the cells they cover.
func Downsample(src []float32, w, h, factor int) (out []float32, dw, dh int) {
	if factor <= 1 {
		return append([]float32(nil), src...), w, h
	}
	dw = (w + factor - 1) / factor
	dh = (h + factor - 1) / factor
	out = make([]float32, dw*dh)

	for by := 0; by < dh; by++ {
		y0, y1 := by*factor, min((by+1)*factor, h)
		for bx := 0; bx < dw; bx++ {
			x0, x1 := bx*factor, min((bx+1)*factor, w)
			var sum float32
			for y := y0; y < y1; y++ {
				row := y * w
				for x := x0; x < x1; x++ {
					sum += src[row+x]
				}
			}
			out[by*dw+bx] = sum / float32((y1-y0)*(x1-x0))
		}
	}
	return out, dw, dh
}

// Quantize maps values to bytes. Values at or above scale saturate at 255;
// a non-positive scale uses the grid maximum.
func Quantize(src []float32, scale float32) []byte {
	if !(scale > 0) {
		for _, v := range src {
			if v > scale {
				scale = v
			}
		}
	}
	out := make([]byte, len(src))
	if !(scale > 0) {
		return out
	}
	for i, v := range src {
		out[i] = channel8(clamp01(v/scale) * 255)
	}
	return out
}

func clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func channel8(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
