package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/sprout/config"
)

func testFields(t *testing.T, mutate func(*config.Config)) *Fields {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	f, err := NewFields(cfg)
	if err != nil {
		t.Fatalf("NewFields: %v", err)
	}
	return f
}

func quiet(cfg *config.Config) {
	cfg.Fields.Sunlight.NoiseAmplitude = 0
	cfg.Fields.Temperature.NoiseAmplitude = 0
	cfg.Fields.Moisture.NoiseAmplitude = 0
	cfg.Fields.Sunlight.DiurnalAmplitude = 0
}

// ---------- Bounds ----------

func TestSample_OutOfBounds(t *testing.T) {
	f := testFields(t, nil)

	tests := []struct {
		name string
		kind FieldKind
		pos  Vec2
	}{
		{"sunlight below ground", Sunlight, Vec2{50, -1}},
		{"sunlight above sky", Sunlight, Vec2{50, 100.5}},
		{"temperature left of domain", Temperature, Vec2{-0.1, 10}},
		{"moisture above ground", Moisture, Vec2{50, 0.5}},
		{"moisture below soil", Moisture, Vec2{50, -21}},
		{"moisture right of domain", Moisture, Vec2{101, -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Sample(tt.kind, tt.pos, 0)
			var oob *OutOfBoundsError
			if !errors.As(err, &oob) {
				t.Fatalf("expected OutOfBoundsError, got %v", err)
			}
			if oob.Kind != tt.kind || oob.Pos != tt.pos {
				t.Errorf("error carries %v at %v, want %v at %v", oob.Kind, oob.Pos, tt.kind, tt.pos)
			}
		})
	}
}

func TestSample_GroundLineBelongsToBoth(t *testing.T) {
	f := testFields(t, nil)
	for _, kind := range []FieldKind{Sunlight, Temperature, Moisture} {
		if _, err := f.Sample(kind, Vec2{50, 0}, 0); err != nil {
			t.Errorf("%v at ground line: %v", kind, err)
		}
	}
}

func TestSampleBatch_RejectsBeforeWriting(t *testing.T) {
	f := testFields(t, nil)
	pts := []Vec2{{10, 10}, {20, 20}, {30, -5}}
	out := []float64{-7, -7, -7}

	if err := f.SampleBatch(Sunlight, pts, 0, out); err == nil {
		t.Fatal("expected error for soil point in sunlight batch")
	}
	for i, v := range out {
		if v != -7 {
			t.Errorf("out[%d] written despite error: %f", i, v)
		}
	}
}

// ---------- Ranges ----------

func TestSample_Ranges(t *testing.T) {
	f := testFields(t, nil)
	lo, hi := f.TemperatureRange()

	for cycle := 0; cycle < 50; cycle += 7 {
		for x := 0.0; x <= 100; x += 12.5 {
			for y := 0.0; y <= 100; y += 12.5 {
				s, err := f.Sample(Sunlight, Vec2{x, y}, cycle)
				if err != nil {
					t.Fatal(err)
				}
				if s < 0 || s > 1 {
					t.Fatalf("sunlight %f out of [0,1] at (%f,%f)", s, x, y)
				}
				temp, err := f.Sample(Temperature, Vec2{x, y}, cycle)
				if err != nil {
					t.Fatal(err)
				}
				if temp < lo || temp > hi {
					t.Fatalf("temperature %f out of [%f,%f]", temp, lo, hi)
				}
			}
			for y := 0.0; y >= -20; y -= 2.5 {
				m, err := f.Sample(Moisture, Vec2{x, y}, cycle)
				if err != nil {
					t.Fatal(err)
				}
				if m < 0 || m > 1 {
					t.Fatalf("moisture %f out of [0,1] at (%f,%f)", m, x, y)
				}
			}
		}
	}
}

// ---------- Determinism ----------

func TestSample_Deterministic(t *testing.T) {
	a := testFields(t, nil)
	b := testFields(t, nil)

	for _, p := range []Vec2{{3, 4}, {50, 50}, {99, 1}} {
		va, _ := a.Sample(Sunlight, p, 11)
		va2, _ := a.Sample(Sunlight, p, 11)
		vb, _ := b.Sample(Sunlight, p, 11)
		if va != va2 || va != vb {
			t.Errorf("sunlight at %v not deterministic: %f %f %f", p, va, va2, vb)
		}
	}
}

func TestSampleBatch_MatchesSample(t *testing.T) {
	f := testFields(t, func(c *config.Config) { c.Fields.Noise = "simplex" })

	cases := []struct {
		kind FieldKind
		pts  []Vec2
	}{
		{Sunlight, []Vec2{{0, 0}, {12, 40}, {77.7, 99}, {100, 100}}},
		{Temperature, []Vec2{{5, 5}, {50, 0}, {99, 63}}},
		{Moisture, []Vec2{{50, -10}, {0, -20}, {33, -1}, {100, 0}}},
	}
	for _, c := range cases {
		out := make([]float64, len(c.pts))
		if err := f.SampleBatch(c.kind, c.pts, 9, out); err != nil {
			t.Fatal(err)
		}
		for i, p := range c.pts {
			v, err := f.Sample(c.kind, p, 9)
			if err != nil {
				t.Fatal(err)
			}
			if v != out[i] {
				t.Errorf("%v at %v: batch %v, single %v", c.kind, p, out[i], v)
			}
		}
	}
}

// ---------- Shape ----------

func TestSunlight_BrighterHigher(t *testing.T) {
	f := testFields(t, quiet)

	low, _ := f.Sample(Sunlight, Vec2{50, 5}, 0)
	high, _ := f.Sample(Sunlight, Vec2{50, 95}, 0)
	if high <= low {
		t.Errorf("expected more light higher up: low %f, high %f", low, high)
	}

	g, err := f.Gradient(Sunlight, Vec2{50, 30}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if g.Y <= 0 {
		t.Errorf("expected sunlight gradient to point up, got %v", g)
	}
	if math.Abs(g.X) > 1e-12 {
		t.Errorf("expected no lateral gradient without tilt, got %v", g)
	}
}

func TestSunlight_DiurnalCycle(t *testing.T) {
	f := testFields(t, func(c *config.Config) {
		quiet(c)
		c.Fields.Sunlight.DiurnalAmplitude = 0.4
		c.Fields.Sunlight.DiurnalPeriod = 24
	})

	noon, _ := f.Sample(Sunlight, Vec2{50, 50}, 0)
	night, _ := f.Sample(Sunlight, Vec2{50, 50}, 12)
	if night >= noon {
		t.Errorf("expected dimmer light mid-period: %f vs %f", night, noon)
	}
	again, _ := f.Sample(Sunlight, Vec2{50, 50}, 24)
	if math.Abs(again-noon) > 1e-12 {
		t.Errorf("expected light to repeat after one period: %f vs %f", again, noon)
	}
}

func TestTemperature_Profile(t *testing.T) {
	f := testFields(t, quiet)

	left, _ := f.Sample(Temperature, Vec2{0, 0}, 0)
	right, _ := f.Sample(Temperature, Vec2{100, 0}, 0)
	if math.Abs(left-30) > 1e-9 || math.Abs(right-10) > 1e-9 {
		t.Errorf("expected 30 at the left wall and 10 at the right, got %f and %f", left, right)
	}

	top, _ := f.Sample(Temperature, Vec2{0, 100}, 0)
	if math.Abs(left-top-4) > 1e-9 {
		t.Errorf("expected 4 degree lapse to the top, got %f", left-top)
	}
}

func TestMoisture_PeaksAtPatch(t *testing.T) {
	f := testFields(t, quiet)

	center := Vec2{50, -10}
	peak, _ := f.Sample(Moisture, center, 0)
	if math.Abs(peak-1) > 1e-9 {
		t.Errorf("expected saturated soil at the patch center, got %f", peak)
	}
	for _, p := range []Vec2{{0, -10}, {100, -10}, {50, 0}, {50, -20}} {
		v, _ := f.Sample(Moisture, p, 0)
		if v >= peak {
			t.Errorf("moisture at %v (%f) should be below the peak", p, v)
		}
		if v < 0.5 {
			t.Errorf("moisture at %v (%f) dropped below the floor", p, v)
		}
	}

	g, err := f.Gradient(Moisture, Vec2{30, -10}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if g.X <= 0 {
		t.Errorf("expected moisture gradient toward the patch, got %v", g)
	}
}

func TestProbeBatch_OneSidedAtEdges(t *testing.T) {
	f := testFields(t, quiet)

	probes := make([]Probe, 2)
	pts := []Vec2{{50, 0}, {0, 50}}
	if err := f.ProbeBatch(Sunlight, pts, 0, probes); err != nil {
		t.Fatalf("probing on the boundary: %v", err)
	}
	if probes[0].Gradient.Y <= 0 {
		t.Errorf("expected upward gradient on the ground line, got %v", probes[0].Gradient)
	}
	for i, p := range pts {
		v, _ := f.Sample(Sunlight, p, 0)
		if probes[i].Value != v {
			t.Errorf("probe value %f differs from sample %f", probes[i].Value, v)
		}
	}
}

func TestNewFields_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Fields.Moisture.Sigma = -1
	_, err := NewFields(cfg)
	var cfgErr *config.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestNewFields_NoiseSeedFallsBackToRunSeed(t *testing.T) {
	derived := config.Default()
	derived.Fields.NoiseSeed = 0
	derived.Run.Seed = 13
	explicit := config.Default()
	explicit.Fields.NoiseSeed = 13

	a, err := NewFields(derived)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewFields(explicit)
	if err != nil {
		t.Fatal(err)
	}
	if derived.Derived.NoiseSeed != 13 {
		t.Errorf("expected derived noise seed 13, got %d", derived.Derived.NoiseSeed)
	}

	for i := 0; i < 10; i++ {
		pos := Vec2{X: 5 + float64(i)*9, Y: -1 - float64(i)}
		va, err := a.Sample(Moisture, pos, i)
		if err != nil {
			t.Fatal(err)
		}
		vb, _ := b.Sample(Moisture, pos, i)
		if va != vb {
			t.Fatalf("noise differs at %v: %f vs %f", pos, va, vb)
		}
	}
}
