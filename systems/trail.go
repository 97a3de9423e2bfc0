package systems

import (
	"gonum.org/v1/gonum/blas/blas32"
)

// NumChannels is the number of trail channels, one per species.
const NumChannels = 3

// TrailField is a double-buffered 3-channel pheromone grid.
// Agents read and deposit into the current buffer; diffusion writes the next
// buffer, then Swap flips them.
type TrailField struct {
	W, H int

	buf [2][NumChannels][]float32
	cur int
}

// NewTrailField creates a zeroed trail field.
func NewTrailField(w, h int) *TrailField {
	tf := &TrailField{W: w, H: h}
	for b := range tf.buf {
		for c := range tf.buf[b] {
			tf.buf[b][c] = make([]float32, w*h)
		}
	}
	return tf
}

// Current returns channel c of the readable buffer.
func (tf *TrailField) Current(c int) []float32 { return tf.buf[tf.cur][c] }

// Next returns channel c of the write buffer.
func (tf *TrailField) Next(c int) []float32 { return tf.buf[1-tf.cur][c] }

// Swap exchanges the current and next buffers.
func (tf *TrailField) Swap() { tf.cur = 1 - tf.cur }

// At returns channel c at cell (x, y). Coordinates are clamped to the grid.
func (tf *TrailField) At(c, x, y int) float32 {
	x = clampInt(x, tf.W)
	y = clampInt(y, tf.H)
	return tf.buf[tf.cur][c][y*tf.W+x]
}

// Score returns the weighted trail sum at a float position, using the
// per-channel weights of the sensing species. Positions are clamped.
func (tf *TrailField) Score(x, y float32, weights *[NumChannels]float32) float32 {
	i := cellIndex(y, tf.H)*tf.W + cellIndex(x, tf.W)
	cur := &tf.buf[tf.cur]
	var s float32
	for c := 0; c < NumChannels; c++ {
		if weights[c] != 0 {
			s += weights[c] * cur[c][i]
		}
	}
	return s
}

// Deposit adds weight to every channel where mask is non-zero at the cell
// containing (x, y). Safe for concurrent use.
func (tf *TrailField) Deposit(x, y float32, mask *[NumChannels]float32, weight float32) {
	i := cellIndex(y, tf.H)*tf.W + cellIndex(x, tf.W)
	for c := 0; c < NumChannels; c++ {
		if mask[c] > 0 {
			atomicAddFloat32(tf.buf[tf.cur][c], i, weight*mask[c])
		}
	}
}

// Mass returns the total of channel c in the current buffer.
func (tf *TrailField) Mass(c int) float32 {
	data := tf.buf[tf.cur][c]
	return blas32.Asum(blas32.Vector{N: len(data), Inc: 1, Data: data})
}

// TotalMass returns the sum over all channels.
func (tf *TrailField) TotalMass() float32 {
	var m float32
	for c := 0; c < NumChannels; c++ {
		m += tf.Mass(c)
	}
	return m
}

// CopyCurrent copies channel c of the current buffer into dst, growing it as
// needed, and returns it.
func (tf *TrailField) CopyCurrent(dst []float32, c int) []float32 {
	src := tf.buf[tf.cur][c]
	if cap(dst) < len(src) {
		dst = make([]float32, len(src))
	}
	dst = dst[:len(src)]
	copy(dst, src)
	return dst
}

// Reset zeroes both buffers.
func (tf *TrailField) Reset() {
	for b := range tf.buf {
		for c := range tf.buf[b] {
			clear(tf.buf[b][c])
		}
	}
	tf.cur = 0
}
