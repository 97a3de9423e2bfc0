package systems

// DiffuseParams are the per-step blend factors derived from the trail rates.
type DiffuseParams struct {
	Mix  float32 // weight of the 3x3 blur, clamp01(diffuse_rate*dt)
	Keep float32 // decay multiplier, 1 - decay_rate*dt
}

// NewDiffuseParams converts per-second rates into per-step factors.
func NewDiffuseParams(diffuseRate, decayRate, dt float32) DiffuseParams {
	return DiffuseParams{
		Mix:  clamp01(diffuseRate * dt),
		Keep: 1 - decayRate*dt,
	}
}

// DiffuseDecayRows blurs, blends and decays rows [y0, y1) of src into dst.
// Neighbours outside the grid count as the centre cell, so edges neither leak
// nor read out of bounds and a pure blur conserves total mass.
// Results are floored at zero.
func DiffuseDecayRows(src, dst []float32, w, h, y0, y1 int, p DiffuseParams) {
	const inv9 = float32(1.0 / 9.0)

	for y := y0; y < y1; y++ {
		yN, yS := y-1, y+1
		row := y * w
		for x := 0; x < w; x++ {
			c := src[row+x]
			sum := float32(0)
			n := 0
			for _, yy := range [3]int{yN, y, yS} {
				if yy < 0 || yy >= h {
					continue
				}
				r := yy * w
				for xx := x - 1; xx <= x+1; xx++ {
					if xx < 0 || xx >= w {
						continue
					}
					sum += src[r+xx]
					n++
				}
			}
			blur := (sum + float32(9-n)*c) * inv9

			v := (c + (blur-c)*p.Mix) * p.Keep
			if !(v > 0) {
				v = 0
			}
			dst[row+x] = v
		}
	}
}
