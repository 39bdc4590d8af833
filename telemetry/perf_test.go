package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate a few cycles
	for i := 0; i < 5; i++ {
		pc.StartCycle()
		pc.StartPhase(PhaseSample)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseDecide)
		time.Sleep(200 * time.Microsecond)
		pc.EndCycle()
	}

	stats := pc.Stats()

	// Verify we got timing data
	if stats.AvgCycleDuration <= 0 {
		t.Error("expected positive average cycle duration")
	}

	// Verify phases are tracked
	if len(stats.PhaseAvg) == 0 {
		t.Error("expected phase averages to be populated")
	}

	if _, ok := stats.PhaseAvg[PhaseSample]; !ok {
		t.Error("expected sample phase to be tracked")
	}

	if _, ok := stats.PhaseAvg[PhaseDecide]; !ok {
		t.Error("expected decide phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window

	// Fill window completely
	for i := 0; i < 10; i++ {
		pc.StartCycle()
		pc.StartPhase(PhaseSample)
		pc.EndCycle()
	}

	stats := pc.Stats()

	// Should have data
	if stats.AvgCycleDuration <= 0 {
		t.Error("expected positive average cycle duration after window filled")
	}

	if stats.CyclesPerSecond <= 0 {
		t.Error("expected positive cycles per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate with uneven phase durations
	for i := 0; i < 5; i++ {
		pc.StartCycle()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndCycle()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]

	// Slow phase should take more % than fast
	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	// Empty collector should return zero values without panicking
	if stats.AvgCycleDuration != 0 {
		t.Error("expected zero avg cycle duration for empty collector")
	}

	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}

	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// First call establishes baseline
	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond) // ~60fps frame time
	// Second call measures duration
	pc.RecordFrame()

	stats := pc.Stats()

	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}

	if stats.FPS <= 0 {
		t.Error("expected positive FPS")
	}

	// With 16ms frames, expect ~60 FPS (allow range 40-80)
	if stats.FPS < 40 || stats.FPS > 80 {
		t.Errorf("expected FPS between 40-80 with 16ms frame time, got %v", stats.FPS)
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	pc := NewPerfCollector(4)
	for i := 0; i < 3; i++ {
		pc.StartCycle()
		pc.StartPhase(PhaseSample)
		time.Sleep(50 * time.Microsecond)
		pc.StartPhase(PhaseOrgans)
		time.Sleep(50 * time.Microsecond)
		if d := pc.EndCycle(); d <= 0 {
			t.Fatalf("expected positive cycle duration, got %v", d)
		}
	}

	row := pc.Stats().ToCSV(3)
	if row.Cycle != 3 {
		t.Errorf("expected cycle 3, got %d", row.Cycle)
	}
	if row.SamplePct <= 0 || row.OrgansPct <= 0 {
		t.Errorf("expected sample and organs percentages, got %+v", row)
	}
	if row.DecidePct != 0 {
		t.Errorf("expected no decide time, got %f", row.DecidePct)
	}
	if sum := row.SamplePct + row.OrgansPct; sum > 100.0001 {
		t.Errorf("phase percentages exceed 100: %f", sum)
	}
}
