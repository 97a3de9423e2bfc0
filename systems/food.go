package systems

// FoodMap is a single-channel grid of food intensity. Cells are read and
// written atomically so painting may race with consumption.
type FoodMap struct {
	W, H int
	Max  float32 // upper bound for painted values

	data []float32
}

// NewFoodMap creates a zeroed food map.
func NewFoodMap(w, h int, maxValue float32) *FoodMap {
	return &FoodMap{W: w, H: h, Max: maxValue, data: make([]float32, w*h)}
}

// At returns the food at a float position. Positions are clamped.
func (fm *FoodMap) At(x, y float32) float32 {
	return atomicLoadFloat32(fm.data, cellIndex(y, fm.H)*fm.W+cellIndex(x, fm.W))
}

// Cell returns the food at integer cell (x, y), which must be in range.
func (fm *FoodMap) Cell(x, y int) float32 {
	return atomicLoadFloat32(fm.data, y*fm.W+x)
}

// Consume removes up to want from the cell containing (x, y) and returns the
// amount eaten. Food never goes below zero.
func (fm *FoodMap) Consume(x, y, want float32) float32 {
	if !(want > 0) {
		return 0
	}
	return atomicTakeFloat32(fm.data, cellIndex(y, fm.H)*fm.W+cellIndex(x, fm.W), want)
}

// Paint sets every cell in [cx-brush+1, cx+brush) x [cy-brush+1, cy+brush)
// to value, clamped to [0, Max]. The brush is clipped to the map; the number
// of cells written is returned.
func (fm *FoodMap) Paint(cx, cy, brush int, value float32) int {
	if brush < 1 {
		return 0
	}
	value = clampFloat(value, 0, fm.Max)
	if !(value >= 0) {
		value = 0
	}

	x0, x1 := max(cx-brush+1, 0), min(cx+brush, fm.W)
	y0, y1 := max(cy-brush+1, 0), min(cy+brush, fm.H)
	if x0 >= x1 || y0 >= y1 {
		return 0
	}

	for y := y0; y < y1; y++ {
		row := y * fm.W
		for x := x0; x < x1; x++ {
			atomicStoreFloat32(fm.data, row+x, value)
		}
	}
	return (x1 - x0) * (y1 - y0)
}

// Mass returns the total food on the map. Safe to call while painting.
func (fm *FoodMap) Mass() float32 {
	var m float32
	for i := range fm.data {
		m += atomicLoadFloat32(fm.data, i)
	}
	return m
}

// CopyInto copies the map into dst, growing it as needed, and returns it.
func (fm *FoodMap) CopyInto(dst []float32) []float32 {
	if cap(dst) < len(fm.data) {
		dst = make([]float32, len(fm.data))
	}
	dst = dst[:len(fm.data)]
	for i := range fm.data {
		dst[i] = atomicLoadFloat32(fm.data, i)
	}
	return dst
}

// Data exposes the raw grid. Callers must not write while agents run.
func (fm *FoodMap) Data() []float32 { return fm.data }
