package telemetry

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/sprout/plant"
)

func TestComputeVigorStats(t *testing.T) {
	values := []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1}
	mean, p10, p50, p90 := ComputeVigorStats(values)

	if math.Abs(mean-0.55) > 1e-9 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	if !(p10 <= p50 && p50 <= p90) {
		t.Errorf("percentiles out of order: %v %v %v", p10, p50, p90)
	}
	if p10 < 0.1 || p90 > 1.0 {
		t.Errorf("percentiles outside the data: %v %v", p10, p90)
	}
	if math.Abs(p50-0.5) > 0.051 {
		t.Errorf("p50 = %v, want ~0.5", p50)
	}

	// Input must not be reordered
	if values[0] != 1.0 {
		t.Error("ComputeVigorStats sorted its input")
	}
}

func TestComputeVigorStatsEmpty(t *testing.T) {
	mean, p10, p50, p90 := ComputeVigorStats(nil)
	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestNewCycleStats(t *testing.T) {
	prev := plant.Census{Cycle: 4, ShootNodes: 5, RootNodes: 4, Leaves: 1, Flowers: 0}
	cur := plant.Census{
		Cycle:      5,
		ShootNodes: 8,
		RootNodes:  5,
		Leaves:     3,
		Flowers:    1,
		ShootTips:  2,
		Height:     6.5,
		RootDepth:  2.25,
		ShootXs:    []float64{50, 48.5, 52, 51},
		TipVigor:   []float64{0.4, 0.6},
	}

	s := NewCycleStats(cur, &prev, 1500*time.Microsecond)
	if s.Cycle != 5 {
		t.Errorf("expected cycle 5, got %d", s.Cycle)
	}
	if s.NewShootNodes != 3 || s.NewRootNodes != 1 || s.NewLeaves != 2 || s.NewFlowers != 1 {
		t.Errorf("unexpected deltas %+v", s)
	}
	if math.Abs(s.Spread-3.5) > 1e-12 {
		t.Errorf("spread = %v, want 3.5", s.Spread)
	}
	if math.Abs(s.VigorMean-0.5) > 1e-12 {
		t.Errorf("vigor mean = %v, want 0.5", s.VigorMean)
	}
	if s.ElapsedMS != 1.5 {
		t.Errorf("elapsed = %v ms, want 1.5", s.ElapsedMS)
	}

	first := NewCycleStats(cur, nil, 0)
	if first.NewShootNodes != 0 || first.NewLeaves != 0 {
		t.Error("first cycle should report no deltas")
	}
}

func TestNewCycleStats_EmptyShoot(t *testing.T) {
	s := NewCycleStats(plant.Census{Cycle: 1}, nil, 0)
	if s.Spread != 0 || s.VigorMean != 0 {
		t.Errorf("expected zero spread and vigor, got %+v", s)
	}
}
