package camera

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	cam := New(1280, 720, 640, 360)

	// Should be centered on the field, zoomed to fit
	if cam.X != 320 || cam.Y != 180 {
		t.Errorf("expected camera at (320, 180), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 2.0 {
		t.Errorf("expected zoom 2.0, got %f", cam.Zoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720, 640, 360)

	// Camera center should map to screen center
	sx, sy := cam.WorldToScreen(320, 180)
	if math.Abs(float64(sx-640)) > 0.01 || math.Abs(float64(sy-360)) > 0.01 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 640, 360)
	cam.SetZoom(5)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestCellAt(t *testing.T) {
	// Wider viewport than field aspect: letterboxed horizontally.
	cam := New(1000, 360, 640, 360)

	tests := []struct {
		name   string
		sx, sy float32
		x, y   int
		ok     bool
	}{
		{"top-left cell", 180, 0, 0, 0, true},
		{"centre", 500, 180, 320, 180, true},
		{"last cell", 819.5, 359.5, 639, 359, true},
		{"left border", 179, 10, 0, 0, false},
		{"right border", 820, 10, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := cam.CellAt(tt.sx, tt.sy)
			if ok != tt.ok || x != tt.x || y != tt.y {
				t.Errorf("CellAt(%v,%v) = (%d,%d,%v), want (%d,%d,%v)",
					tt.sx, tt.sy, x, y, ok, tt.x, tt.y, tt.ok)
			}
		})
	}
}

func TestPanClampsToField(t *testing.T) {
	cam := New(1280, 720, 640, 360)

	// At fit zoom the field is pinned to the centre.
	cam.Pan(-500, 0)
	if cam.X != 320 {
		t.Errorf("expected pan ignored at fit zoom, got X=%f", cam.X)
	}

	cam.SetZoom(4) // view is 320x180 cells
	cam.Pan(-10000, -10000)
	if cam.X != 160 || cam.Y != 90 {
		t.Errorf("expected view clamped to top-left, got (%f, %f)", cam.X, cam.Y)
	}
	minX, minY, _, _ := cam.VisibleWorldBounds()
	if minX != 0 || minY != 0 {
		t.Errorf("expected visible bounds to start at 0, got (%f, %f)", minX, minY)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 640, 360)

	cam.SetZoom(0.1) // Below min
	if cam.Zoom != 2.0 {
		t.Errorf("expected zoom clamped to 2.0, got %f", cam.Zoom)
	}

	cam.SetZoom(100.0) // Above max
	if cam.Zoom != 32.0 {
		t.Errorf("expected zoom clamped to 32.0, got %f", cam.Zoom)
	}
}

func TestMinZoomFitsField(t *testing.T) {
	// Asymmetric ratios: height limits the fit.
	cam := New(800, 600, 1600, 800)

	// MinZoom = min(800/1600, 600/800) = 0.5
	if math.Abs(float64(cam.MinZoom-0.5)) > 0.001 {
		t.Errorf("expected MinZoom 0.5, got %f", cam.MinZoom)
	}
	_, _, w, h := cam.FieldRect()
	if w > cam.ViewportW || h > cam.ViewportH {
		t.Errorf("field %fx%f does not fit viewport", w, h)
	}
}

func TestZoomAtKeepsPointFixed(t *testing.T) {
	cam := New(1280, 720, 640, 360)
	wx0, wy0 := cam.ScreenToWorld(700, 400)

	cam.ZoomAt(700, 400, 2)

	wx1, wy1 := cam.ScreenToWorld(700, 400)
	if math.Abs(float64(wx1-wx0)) > 0.01 || math.Abs(float64(wy1-wy0)) > 0.01 {
		t.Errorf("point under cursor moved: (%f,%f) -> (%f,%f)", wx0, wy0, wx1, wy1)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 640, 360)
	cam.SetZoom(8) // 160x90 cells around (320, 180)

	if !cam.IsVisible(320, 180, 1) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(10, 10, 1) {
		t.Error("far point should not be visible")
	}
	if !cam.IsVisible(235, 180, 10) {
		t.Error("edge point with large radius should be visible")
	}
}

func TestResizeKeepsFit(t *testing.T) {
	cam := New(1280, 720, 640, 360)
	cam.Resize(640, 360)
	if cam.Zoom != 1 || cam.MinZoom != 1 {
		t.Errorf("expected fit zoom 1 after resize, got zoom %f min %f", cam.Zoom, cam.MinZoom)
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, 640, 360)
	cam.SetZoom(6)
	cam.Pan(100, 50)

	cam.Reset()

	if cam.X != 320 || cam.Y != 180 {
		t.Errorf("expected position (320, 180), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 2.0 {
		t.Errorf("expected zoom 2.0, got %f", cam.Zoom)
	}
}
