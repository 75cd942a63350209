package similarity

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0},
		{"empty", nil, nil, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Cosine(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-6 {
				t.Errorf("Cosine = %f, want %f", got, tc.want)
			}
		})
	}
}

func TestScore_Clamped(t *testing.T) {
	if s := Score([]float32{1, 0}, []float32{-1, 0}); s != 0 {
		t.Errorf("opposite vectors should score 0, got %f", s)
	}
	if s := Score([]float32{0.1, 0.2, 0.3}, []float32{0.1, 0.2, 0.3}); s != 1 {
		t.Errorf("identical vectors should score exactly 1, got %v", s)
	}
	if s := Score([]float32{0, 0}, []float32{0, 0}); s != 0 {
		t.Errorf("zero vectors should score 0, got %v", s)
	}
}

func TestScore_HighDimensionalSelfMatch(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for trial := range 200 {
		v := make([]float32, 1536)
		for i := range v {
			v[i] = float32(r.NormFloat64() * 0.03)
		}
		if s := Score(v, v); s != 1 {
			t.Fatalf("trial %d: identical vector scored %.17f, want exactly 1", trial, s)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"negative", -0.3, 0},
		{"zero", 0, 0},
		{"mid", 0.42, 0.42},
		{"float64 drift below one", 0.99999999999999989, 1},
		{"float32 drift below one", 1 - 5.96046447754e-08, 1},
		{"above one", 1.0000001, 1},
		{"clearly below one", 0.9999, 0.9999},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clamp(tc.in); got != tc.want {
				t.Errorf("Clamp(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
