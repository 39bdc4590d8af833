package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/sprout/config"
)

var testDomain = Domain{Width: 100, Height: 100, SoilDepth: 20}

func shootParams() config.ShootConfig {
	return config.Default().Shoot
}

func rootParams() config.RootConfig {
	return config.Default().Root
}

func goodShootSamples() ShootSamples {
	return ShootSamples{Sunlight: 0.9, Temperature: 25, Water: 0.9, Gradient: Vec2{0, 0.01}}
}

func shootTip() NodeState {
	return NodeState{Kind: ShootNode, Pos: Vec2{50, 10}, Heading: math.Pi / 2, Tip: true}
}

// ---------- Growth factor ----------

func TestTemperatureFactor(t *testing.T) {
	p := shootParams()
	tests := []struct {
		temp, want float64
	}{
		{25, 1},
		{0, 0.5},
		{50, 0.5},
		{75, 0},
		{-100, 0},
	}
	for _, tt := range tests {
		if got := TemperatureFactor(tt.temp, p); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("TemperatureFactor(%f) = %f, want %f", tt.temp, got, tt.want)
		}
	}
}

func TestShootGrowthFactor_Product(t *testing.T) {
	p := shootParams()
	s := ShootSamples{Sunlight: 0.5, Water: 0.8, Temperature: 25}
	if got := ShootGrowthFactor(s, p); math.Abs(got-0.4) > 1e-12 {
		t.Errorf("expected 0.4, got %f", got)
	}
	s.Water = 0
	if got := ShootGrowthFactor(s, p); got != 0 {
		t.Errorf("expected no growth without water, got %f", got)
	}
}

// ---------- Shoot decisions ----------

func TestDecideShootGrowth_BranchCertain(t *testing.T) {
	p := shootParams()
	p.BranchProbability = 1
	rng := NewRNG(1)

	for i := 0; i < 50; i++ {
		act := DecideShootGrowth(shootTip(), goodShootSamples(), p, testDomain, rng)
		if act.Kind != Branch || act.Children() != 2 {
			t.Fatalf("expected branch with 2 children, got %v", act.Kind)
		}
		if act.Positions[0] == act.Positions[1] {
			t.Errorf("branch children share position %v", act.Positions[0])
		}
	}
}

func TestDecideShootGrowth_NeverBranches(t *testing.T) {
	p := shootParams()
	p.BranchProbability = 0
	rng := NewRNG(2)

	for i := 0; i < 200; i++ {
		act := DecideShootGrowth(shootTip(), goodShootSamples(), p, testDomain, rng)
		if act.Kind != Extend {
			t.Fatalf("expected extend, got %v", act.Kind)
		}
	}
}

func TestDecideShootGrowth_PerturbationBound(t *testing.T) {
	p := shootParams()
	p.BranchProbability = 0
	p.Phototropism = 0
	p.Gravitropism = 0
	rng := NewRNG(3)
	n := shootTip()

	for i := 0; i < 500; i++ {
		act := DecideShootGrowth(n, goodShootSamples(), p, testDomain, rng)
		if d := math.Abs(act.Headings[0] - n.Heading); d > p.AngleRange+1e-12 {
			t.Fatalf("heading moved %f, more than the angle range %f", d, p.AngleRange)
		}
		wantLen := p.BaseLength * act.Vigor
		if l := act.Positions[0].Sub(n.Pos).Len(); math.Abs(l-wantLen) > 1e-9 {
			t.Fatalf("segment length %f, want %f", l, wantLen)
		}
	}
}

func TestDecideShootGrowth_TerminatesWhenStarved(t *testing.T) {
	p := shootParams()
	s := goodShootSamples()
	s.Sunlight = 0.01

	rng := NewRNG(4)
	before := rng.Int63()
	rng = NewRNG(4)

	act := DecideShootGrowth(shootTip(), s, p, testDomain, rng)
	if act.Kind != Terminate || act.Children() != 0 {
		t.Fatalf("expected terminate, got %v", act.Kind)
	}
	if rng.Int63() != before {
		t.Error("a terminated decision must not consume random draws")
	}
}

func TestDecideShootGrowth_PinnedAtCeiling(t *testing.T) {
	p := shootParams()
	p.BranchProbability = 0
	p.AngleRange = 0
	n := shootTip()
	n.Pos = Vec2{50, 100}

	act := DecideShootGrowth(n, goodShootSamples(), p, testDomain, NewRNG(5))
	if act.Kind != Terminate {
		t.Fatalf("expected a tip pinned at the ceiling to terminate, got %v", act.Kind)
	}
}

func TestDecideShootGrowth_StaysInAir(t *testing.T) {
	p := shootParams()
	p.BaseLength = 30
	p.AngleRange = math.Pi
	p.BranchProbability = 0.5
	rng := NewRNG(6)

	n := NodeState{Kind: ShootNode, Pos: Vec2{1, 1}, Heading: -math.Pi / 2, Tip: true}
	for i := 0; i < 300; i++ {
		act := DecideShootGrowth(n, goodShootSamples(), p, testDomain, rng)
		for c := 0; c < act.Children(); c++ {
			if !testDomain.InAir(act.Positions[c]) {
				t.Fatalf("child at %v left the air region", act.Positions[c])
			}
		}
	}
}

func TestDecideShootGrowth_PhototropismTurnsTowardLight(t *testing.T) {
	p := shootParams()
	p.BranchProbability = 0
	p.AngleRange = 0
	p.Gravitropism = 0
	p.Phototropism = 1

	n := shootTip()
	s := goodShootSamples()
	s.Gradient = Vec2{0.05, 0} // light to the right

	act := DecideShootGrowth(n, s, p, testDomain, NewRNG(7))
	if act.Headings[0] >= n.Heading {
		t.Errorf("expected heading to bend right from %f, got %f", n.Heading, act.Headings[0])
	}
}

// ---------- Root decisions ----------

func TestDecideRootGrowth(t *testing.T) {
	p := rootParams()
	p.BranchProbability = 0
	n := NodeState{Kind: RootNode, Pos: Vec2{50, -5}, Heading: -math.Pi / 2, Tip: true}
	rng := NewRNG(8)

	act := DecideRootGrowth(n, RootSamples{Moisture: 0.8}, p, testDomain, rng)
	if act.Kind != Extend {
		t.Fatalf("expected extend, got %v", act.Kind)
	}
	if !testDomain.InSoil(act.Positions[0]) {
		t.Errorf("root child at %v is not in soil", act.Positions[0])
	}
	if act.Positions[0].Y >= n.Pos.Y {
		t.Errorf("expected root to grow down, got %v", act.Positions[0])
	}

	dry := DecideRootGrowth(n, RootSamples{Moisture: 0.01}, p, testDomain, rng)
	if dry.Kind != Terminate {
		t.Errorf("expected dry root to terminate, got %v", dry.Kind)
	}
}

func TestDecideRootGrowth_HydrotropismTurnsTowardWater(t *testing.T) {
	p := rootParams()
	p.BranchProbability = 0
	p.AngleRange = 0
	p.Gravitropism = 0
	n := NodeState{Kind: RootNode, Pos: Vec2{50, -5}, Heading: -math.Pi / 2, Tip: true}

	act := DecideRootGrowth(n, RootSamples{Moisture: 0.8, Gradient: Vec2{-0.1, 0}}, p, testDomain, NewRNG(9))
	if act.Positions[0].X >= n.Pos.X {
		t.Errorf("expected root to bend toward wetter soil on the left, got %v", act.Positions[0])
	}
}

// ---------- Organs ----------

func TestShouldFlower(t *testing.T) {
	tip := NodeState{Kind: ShootNode, Tip: true, AxisBorn: 2}
	tests := []struct {
		name  string
		node  NodeState
		cycle int
		want  bool
	}{
		{"young axis", tip, 5, false},
		{"at threshold", tip, 6, true},
		{"past threshold", tip, 40, true},
		{"not a tip", NodeState{Kind: ShootNode, AxisBorn: 2}, 40, false},
		{"root tip", NodeState{Kind: RootNode, Tip: true, AxisBorn: 2}, 40, false},
		{"already flowered", NodeState{Kind: ShootNode, Tip: true, AxisBorn: 2, Flowered: true}, 40, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldFlower(tt.node, tt.cycle, 4); got != tt.want {
				t.Errorf("ShouldFlower = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldGrowLeaf_Extremes(t *testing.T) {
	rng := NewRNG(10)
	for i := 0; i < 100; i++ {
		if ShouldGrowLeaf(0, rng) {
			t.Fatal("leaf grown with probability 0")
		}
		if !ShouldGrowLeaf(1, rng) {
			t.Fatal("leaf not grown with probability 1")
		}
	}
}

func TestPickColor(t *testing.T) {
	palette := []string{"red", "pink", "orange"}
	rng := NewRNG(11)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		seen[PickColor(palette, rng)] = true
	}
	if len(seen) != len(palette) {
		t.Errorf("expected every palette color, saw %v", seen)
	}
}

func TestNormalizeAngle(t *testing.T) {
	for _, a := range []float64{0, 1, -1, 3 * math.Pi, -3 * math.Pi, 100, -100} {
		n := normalizeAngle(a)
		if n < -math.Pi || n > math.Pi {
			t.Errorf("normalizeAngle(%f) = %f out of range", a, n)
		}
		if math.Abs(math.Sin(n)-math.Sin(a)) > 1e-9 || math.Abs(math.Cos(n)-math.Cos(a)) > 1e-9 {
			t.Errorf("normalizeAngle(%f) = %f changed the direction", a, n)
		}
	}
}
