package systems

import (
	"math"
	"testing"
)

func TestAdvanceStraight(t *testing.T) {
	a := Agent{X: 2, Y: 2, Angle: 0}
	if Advance(&a, 1.5, 10, 10) {
		t.Error("unexpected bounce")
	}
	if a.X != 3.5 || a.Y != 2 {
		t.Errorf("position (%v,%v), want (3.5,2)", a.X, a.Y)
	}
}

func TestAdvanceBounce(t *testing.T) {
	tests := []struct {
		name      string
		x, y      float32
		angle     float32
		wantAngle float32
	}{
		{"right wall", 9.5, 5, 0, math.Pi},
		{"left wall", 0.5, 5, math.Pi, 0},
		{"bottom wall", 5, 9.5, math.Pi / 2, 3 * math.Pi / 2},
		{"top wall", 5, 0.5, 3 * math.Pi / 2, math.Pi / 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Agent{X: tt.x, Y: tt.y, Angle: tt.angle}
			if !Advance(&a, 2, 10, 10) {
				t.Fatal("expected bounce")
			}
			if a.X < 0 || a.X >= 10 || a.Y < 0 || a.Y >= 10 {
				t.Errorf("position (%v,%v) escaped field", a.X, a.Y)
			}
			if math.Abs(float64(a.Angle-tt.wantAngle)) > 1e-5 {
				t.Errorf("angle = %v, want %v", a.Angle, tt.wantAngle)
			}
		})
	}
}

func TestAdvanceCornerBounce(t *testing.T) {
	a := Agent{X: 9.9, Y: 9.9, Angle: math.Pi / 4}
	Advance(&a, 5, 10, 10)
	want := normalizeHeading(math.Pi + math.Pi/4)
	if math.Abs(float64(a.Angle-want)) > 1e-5 {
		t.Errorf("corner angle = %v, want %v", a.Angle, want)
	}
	if a.X >= 10 || a.Y >= 10 {
		t.Errorf("position (%v,%v) escaped field", a.X, a.Y)
	}
}

func TestAdvanceNonFiniteKeepsPosition(t *testing.T) {
	a := Agent{X: 3, Y: 4, Angle: 1}
	Advance(&a, float32(math.Inf(1)), 10, 10)
	if a.X != 3 || a.Y != 4 || a.Angle != 1 {
		t.Errorf("agent changed to %+v", a)
	}
	a.Angle = float32(math.NaN())
	Advance(&a, 1, 10, 10)
	if a.X != 3 || a.Y != 4 {
		t.Errorf("NaN heading moved agent to (%v,%v)", a.X, a.Y)
	}
}

func TestAdvanceContainmentFuzz(t *testing.T) {
	a := Agent{X: 1, Y: 1, Angle: 0.3}
	for i := 0; i < 10000; i++ {
		Advance(&a, 0.7, 3, 2)
		if a.X < 0 || a.X >= 3 || a.Y < 0 || a.Y >= 2 {
			t.Fatalf("step %d: escaped to (%v,%v)", i, a.X, a.Y)
		}
	}
}
