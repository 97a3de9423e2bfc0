// Package camera provides a 2D camera system for viewport control.
package camera

// Camera controls the viewport into a bounded field.
// Supports pan and zoom; the view never leaves the field when zoomed in and
// is centred (letterboxed) when the whole field fits.
type Camera struct {
	// Position is the camera center in field coordinates
	X, Y float32

	// Zoom level in screen pixels per field cell
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Field dimensions in cells
	FieldW, FieldH float32

	// Zoom constraints. MinZoom fits the whole field in the viewport.
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the field, zoomed to fit.
func New(viewportW, viewportH, fieldW, fieldH float32) *Camera {
	c := &Camera{
		X:         fieldW / 2,
		Y:         fieldH / 2,
		ViewportW: viewportW,
		ViewportH: viewportH,
		FieldW:    fieldW,
		FieldH:    fieldH,
	}
	c.MinZoom = fitZoom(viewportW, viewportH, fieldW, fieldH)
	c.MaxZoom = c.MinZoom * 16
	c.Zoom = c.MinZoom
	return c
}

// fitZoom is the largest zoom at which the whole field is visible.
func fitZoom(vw, vh, fw, fh float32) float32 {
	z := vw / fw
	if zy := vh / fh; zy < z {
		z = zy
	}
	return z
}

// WorldToScreen converts field coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to field coordinates.
// The result may lie outside the field.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// CellAt returns the field cell under a screen position and whether it is
// inside the field.
func (c *Camera) CellAt(sx, sy float32) (x, y int, ok bool) {
	wx, wy := c.ScreenToWorld(sx, sy)
	if wx < 0 || wy < 0 || wx >= c.FieldW || wy >= c.FieldH {
		return 0, 0, false
	}
	return int(wx), int(wy), true
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// FieldRect returns the screen rectangle covered by the field.
func (c *Camera) FieldRect() (x, y, w, h float32) {
	x, y = c.WorldToScreen(0, 0)
	return x, y, c.FieldW * c.Zoom, c.FieldH * c.Zoom
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	wasFit := c.Zoom == c.MinZoom
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = fitZoom(viewportW, viewportH, c.FieldW, c.FieldH)
	c.MaxZoom = c.MinZoom * 16
	if wasFit || c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor keeping the field point under (sx, sy) fixed.
func (c *Camera) ZoomAt(sx, sy, factor float32) {
	wx, wy := c.ScreenToWorld(sx, sy)
	c.Zoom = clamp(c.Zoom*factor, c.MinZoom, c.MaxZoom)
	c.X = wx - (sx-c.ViewportW/2)/c.Zoom
	c.Y = wy - (sy-c.ViewportH/2)/c.Zoom
	c.clampCenter()
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.X = c.FieldW / 2
	c.Y = c.FieldH / 2
	c.Zoom = c.MinZoom
}

// VisibleWorldBounds returns the field-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	minX = c.X - halfW
	maxX = c.X + halfW
	minY = c.Y - halfH
	maxY = c.Y + halfH
	return
}

// clampCenter keeps the view inside the field on each axis where the field
// is larger than the view, and centres the field where it is not.
func (c *Camera) clampCenter() {
	c.X = clampAxis(c.X, c.ViewportW/(2*c.Zoom), c.FieldW)
	c.Y = clampAxis(c.Y, c.ViewportH/(2*c.Zoom), c.FieldH)
}

func clampAxis(center, half, size float32) float32 {
	if 2*half >= size {
		return size / 2
	}
	return clamp(center, half, size-half)
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
