package systems

import (
	"math"
)

// Advance moves an agent dist cells along its heading inside a w x h field.
// Leaving the x range reflects the heading about the vertical axis, leaving
// the y range about the horizontal axis, and the position is clamped inside.
// A non-finite result keeps the previous position and heading.
func Advance(a *Agent, dist float32, w, h int) (bounced bool) {
	s, c := math.Sincos(float64(a.Angle))
	nx := a.X + float32(c)*dist
	ny := a.Y + float32(s)*dist
	if !isFinite32(nx) || !isFinite32(ny) {
		return false
	}

	angle := a.Angle
	if nx < 0 || nx >= float32(w) {
		angle = math.Pi - angle
		nx = clampFloat(nx, 0, upperBound(w))
		bounced = true
	}
	if ny < 0 || ny >= float32(h) {
		angle = -angle
		ny = clampFloat(ny, 0, upperBound(h))
		bounced = true
	}

	a.X, a.Y = nx, ny
	if bounced {
		a.Angle = normalizeHeading(angle)
	}
	return bounced
}
