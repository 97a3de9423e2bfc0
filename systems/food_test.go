package systems

import (
	"sync"
	"testing"
)

func TestFoodPaintBrush(t *testing.T) {
	tests := []struct {
		name      string
		cx, cy    int
		brush     int
		wantCells int
		wantPaint [][2]int
		wantClear [][2]int
	}{
		{"single cell", 2, 2, 1, 1, [][2]int{{2, 2}}, [][2]int{{1, 2}, {3, 2}, {2, 1}, {2, 3}}},
		{"3x3 block", 2, 2, 2, 9, [][2]int{{1, 1}, {3, 3}, {1, 3}, {3, 1}}, [][2]int{{0, 0}, {2, 0}}},
		{"clipped corner", 0, 0, 2, 4, [][2]int{{0, 0}, {1, 1}}, [][2]int{{2, 2}}},
		{"fully outside", 10, 10, 2, 0, nil, [][2]int{{3, 3}}},
		{"zero brush", 2, 2, 0, 0, nil, [][2]int{{2, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm := NewFoodMap(4, 4, 1)
			if n := fm.Paint(tt.cx, tt.cy, tt.brush, 0.75); n != tt.wantCells {
				t.Errorf("Paint wrote %d cells, want %d", n, tt.wantCells)
			}
			for _, c := range tt.wantPaint {
				if v := fm.Cell(c[0], c[1]); v != 0.75 {
					t.Errorf("cell %v = %v, want 0.75", c, v)
				}
			}
			for _, c := range tt.wantClear {
				if v := fm.Cell(c[0], c[1]); v != 0 {
					t.Errorf("cell %v = %v, want 0", c, v)
				}
			}
			if got, want := fm.Mass(), float32(tt.wantCells)*0.75; got != want {
				t.Errorf("mass = %v, want %v", got, want)
			}
		})
	}
}

func TestFoodPaintClampsValue(t *testing.T) {
	fm := NewFoodMap(4, 4, 2)
	fm.Paint(1, 1, 1, 9)
	if v := fm.Cell(1, 1); v != 2 {
		t.Errorf("painted %v, want clamp to 2", v)
	}
	fm.Paint(1, 1, 1, -3)
	if v := fm.Cell(1, 1); v != 0 {
		t.Errorf("painted %v, want clamp to 0", v)
	}
}

func TestFoodConsumeFloorsAtZero(t *testing.T) {
	fm := NewFoodMap(4, 4, 1)
	fm.Paint(1, 1, 1, 0.3)

	if got := fm.Consume(1.5, 1.5, 0.2); got != 0.2 {
		t.Errorf("first bite = %v, want 0.2", got)
	}
	if got := fm.Consume(1.5, 1.5, 0.2); got < 0.0999 || got > 0.1001 {
		t.Errorf("second bite = %v, want ~0.1", got)
	}
	if got := fm.Consume(1.5, 1.5, 0.2); got != 0 {
		t.Errorf("empty bite = %v, want 0", got)
	}
	if v := fm.Cell(1, 1); v != 0 {
		t.Errorf("cell = %v, want 0", v)
	}
}

func TestFoodConcurrentConsume(t *testing.T) {
	fm := NewFoodMap(2, 2, 100)
	fm.Paint(0, 0, 1, 100)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var eaten float32
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var local float32
			for i := 0; i < 100; i++ {
				local += fm.Consume(0, 0, 0.25)
			}
			mu.Lock()
			eaten += local
			mu.Unlock()
		}()
	}
	wg.Wait()

	if v := fm.Cell(0, 0); v < 0 {
		t.Errorf("food went negative: %v", v)
	}
	if eaten > 100.001 {
		t.Errorf("ate %v, more than painted", eaten)
	}
}
