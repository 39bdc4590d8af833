package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/sprout/plant"
)

// Phase names for one growth cycle. The plant reports the first four
// through its phase hook; the runner adds the telemetry phase.
const (
	PhaseSample    = plant.PhaseSample
	PhaseDecide    = plant.PhaseDecide
	PhaseApply     = plant.PhaseApply
	PhaseOrgans    = plant.PhaseOrgans
	PhaseTelemetry = "telemetry"
)

var phaseOrder = []string{PhaseSample, PhaseDecide, PhaseApply, PhaseOrgans, PhaseTelemetry}

// PhaseOrder returns the cycle phases in execution order.
func PhaseOrder() []string {
	return append([]string(nil), phaseOrder...)
}

// PerfSample holds timing data for a single cycle.
type PerfSample struct {
	CycleDuration time.Duration
	Phases        map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	cycleStart    time.Time
	phaseStart    time.Time
	lastPhase     string

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a collector averaging over the last windowSize cycles.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 30
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartCycle begins timing a new growth cycle.
func (p *PerfCollector) StartCycle() {
	p.cycleStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	// End previous phase if any
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndCycle finishes timing the current cycle, records the sample and
// returns the cycle's wall time.
func (p *PerfCollector) EndCycle() time.Duration {
	now := time.Now()
	// End final phase
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	sample := PerfSample{
		CycleDuration: now.Sub(p.cycleStart),
		Phases:        p.currentPhases,
	}
	p.lastPhase = ""

	p.samples[p.writeIndex] = sample
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	return sample.CycleDuration
}

// RecordFrame records frame timing for the viewer.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgCycleDuration time.Duration
	MinCycleDuration time.Duration
	MaxCycleDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total cycle time
	PhasePct map[string]float64

	CyclesPerSecond float64

	// Frame timing (viewer only)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	// Frame timing is independent of cycle samples
	var fps float64
	if p.frameDuration > 0 {
		fps = float64(time.Second) / float64(p.frameDuration)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:      make(map[string]time.Duration),
			PhasePct:      make(map[string]float64),
			FrameDuration: p.frameDuration,
			FPS:           fps,
		}
	}

	var total, minCycle, maxCycle time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.CycleDuration

		if i == 0 || s.CycleDuration < minCycle {
			minCycle = s.CycleDuration
		}
		if s.CycleDuration > maxCycle {
			maxCycle = s.CycleDuration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	// Calculate phase averages and percentages
	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var perSec float64
	if avg > 0 {
		perSec = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgCycleDuration: avg,
		MinCycleDuration: minCycle,
		MaxCycleDuration: maxCycle,
		PhaseAvg:         phaseAvg,
		PhasePct:         phasePct,
		CyclesPerSecond:  perSec,
		FrameDuration:    p.frameDuration,
		FPS:              fps,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_cycle_us", s.AvgCycleDuration.Microseconds(),
		"min_cycle_us", s.MinCycleDuration.Microseconds(),
		"max_cycle_us", s.MaxCycleDuration.Microseconds(),
		"cycles_per_sec", int(s.CyclesPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	for _, phase := range phaseOrder {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_cycle_us", s.AvgCycleDuration.Microseconds()),
		slog.Int64("min_cycle_us", s.MinCycleDuration.Microseconds()),
		slog.Int64("max_cycle_us", s.MaxCycleDuration.Microseconds()),
		slog.Float64("cycles_per_sec", s.CyclesPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for _, phase := range phaseOrder {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Cycle        int     `csv:"cycle"`
	AvgCycleUS   int64   `csv:"avg_cycle_us"`
	MinCycleUS   int64   `csv:"min_cycle_us"`
	MaxCycleUS   int64   `csv:"max_cycle_us"`
	CyclesPerSec float64 `csv:"cycles_per_sec"`
	FPS          float64 `csv:"fps"`
	SamplePct    float64 `csv:"sample_pct"`
	DecidePct    float64 `csv:"decide_pct"`
	ApplyPct     float64 `csv:"apply_pct"`
	OrgansPct    float64 `csv:"organs_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(cycle int) PerfStatsCSV {
	return PerfStatsCSV{
		Cycle:        cycle,
		AvgCycleUS:   s.AvgCycleDuration.Microseconds(),
		MinCycleUS:   s.MinCycleDuration.Microseconds(),
		MaxCycleUS:   s.MaxCycleDuration.Microseconds(),
		CyclesPerSec: s.CyclesPerSecond,
		FPS:          s.FPS,
		SamplePct:    s.PhasePct[PhaseSample],
		DecidePct:    s.PhasePct[PhaseDecide],
		ApplyPct:     s.PhasePct[PhaseApply],
		OrgansPct:    s.PhasePct[PhaseOrgans],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
