package systems

import (
	"math"
	"testing"
)

func TestNoise_Deterministic(t *testing.T) {
	for _, kind := range []string{"perlin", "simplex"} {
		a := NewNoise(kind, 42)
		b := NewNoise(kind, 42)
		for i := 0; i < 20; i++ {
			x, y, z := float64(i)*0.37, float64(i)*0.11, float64(i)*0.05
			if a.Eval3(x, y, z) != b.Eval3(x, y, z) {
				t.Fatalf("%s noise differs for equal seeds at %d", kind, i)
			}
		}
	}
}

func TestNoise_Bounded(t *testing.T) {
	for _, kind := range []string{"perlin", "simplex"} {
		n := NewNoise(kind, 7)
		for x := 0.0; x < 10; x += 0.31 {
			for y := 0.0; y < 10; y += 0.29 {
				v := n.Eval3(x, y, 1.5)
				if math.IsNaN(v) || v < -1.5 || v > 1.5 {
					t.Fatalf("%s noise out of range at (%f,%f): %f", kind, x, y, v)
				}
			}
		}
	}
}

func TestNoise_SeedsDiffer(t *testing.T) {
	for _, kind := range []string{"perlin", "simplex"} {
		a := NewNoise(kind, 1)
		b := NewNoise(kind, 2)
		same := 0
		for i := 0; i < 50; i++ {
			x := float64(i)*0.73 + 0.1
			if a.Eval3(x, x*0.5, 0.25) == b.Eval3(x, x*0.5, 0.25) {
				same++
			}
		}
		if same == 50 {
			t.Errorf("%s: different seeds produced identical noise", kind)
		}
	}
}
