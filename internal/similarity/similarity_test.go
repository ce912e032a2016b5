package similarity

import (
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	t.Parallel()

	huge := float32(math.MaxFloat32)

	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{0.3, -1.2, 4}, b: []float32{0.3, -1.2, 4}, want: 1},
		{name: "opposite", a: []float32{1, 2}, b: []float32{-1, -2}, want: -1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "nil vector", a: nil, b: []float32{1}, want: 0},
		{name: "dimension mismatch", a: []float32{1, 0}, b: []float32{1, 0, 0}, want: 0},
		{name: "zero norm", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
		{name: "extreme values", a: []float32{huge, huge}, b: []float32{huge, huge}, want: 1},
		{name: "nan input", a: []float32{float32(math.NaN()), 1}, b: []float32{1, 1}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestToPercentage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sim  float64
		want int
	}{
		{sim: 1, want: 100},
		{sim: -1, want: 0},
		{sim: 0, want: 50},
		{sim: 0.5, want: 75},
		{sim: 3, want: 100},
		{sim: -7, want: 0},
		{sim: math.NaN(), want: 50},
	}

	for _, tt := range tests {
		if got := ToPercentage(tt.sim); got != tt.want {
			t.Fatalf("ToPercentage(%v): expected %d, got %d", tt.sim, tt.want, got)
		}
	}
}
