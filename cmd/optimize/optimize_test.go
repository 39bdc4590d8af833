package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/telemetry"
)

func TestParamVector_RoundTripsDefaults(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	raw := pv.ExtractFromConfig(cfg)
	back := pv.Denormalize(pv.Normalize(raw))
	for i, spec := range pv.Specs {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: %f became %f", spec.Name, raw[i], back[i])
		}
	}
}

func TestParamVector_DefaultsWithinBounds(t *testing.T) {
	pv := NewParamVector()
	raw := pv.ExtractFromConfig(config.Default())
	for i, spec := range pv.Specs {
		if raw[i] < spec.Min || raw[i] > spec.Max {
			t.Errorf("%s default %f outside [%f, %f]", spec.Name, raw[i], spec.Min, spec.Max)
		}
	}
}

func TestParamVector_ApplyClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	values := make([]float64, pv.Dim())
	for i := range values {
		values[i] = 1e6
	}
	pv.ApplyToConfig(cfg, values)

	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] != spec.Max {
			t.Errorf("%s: expected clamp to %f, got %f", spec.Name, spec.Max, got[i])
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("parameter upper bounds produce an invalid config: %v", err)
	}
}

func TestComputeFitness(t *testing.T) {
	bare := telemetry.CycleStats{ShootNodes: 10, RootNodes: 10}
	leafy := telemetry.CycleStats{ShootNodes: 10, RootNodes: 10, LeafArea: 20, Flowers: 2}
	if computeFitness(leafy) >= computeFitness(bare) {
		t.Error("leaf area and flowers should lower fitness")
	}

	rootless := leafy
	rootless.RootNodes = 0
	if computeFitness(rootless) <= computeFitness(leafy) {
		t.Error("a plant without roots should score worse")
	}
}

func TestFitnessEvaluator_Evaluate(t *testing.T) {
	pv := NewParamVector()
	base := config.Default()
	fe := NewFitnessEvaluator(pv, 15, []int64{1, 2}, base)

	x := pv.ExtractFromConfig(base)
	a := fe.Evaluate(x)
	b := fe.Evaluate(x)
	if a != b {
		t.Errorf("same parameters scored %f then %f", a, b)
	}
	if fe.Cycles() != 15 {
		t.Errorf("expected 15 cycles, got %d", fe.Cycles())
	}
	if s := fe.BestStats(); s.Cycle != 15 {
		t.Errorf("best stats from cycle %d, want 15", s.Cycle)
	}
}
