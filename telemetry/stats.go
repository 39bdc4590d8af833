// Package telemetry provides per-cycle growth statistics, step timing and
// CSV output for simulation runs.
package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/sprout/plant"
)

// CycleStats summarises the plant after one cycle.
type CycleStats struct {
	Cycle     int     `csv:"cycle"`
	ElapsedMS float64 `csv:"elapsed_ms"`

	// Totals at cycle end
	ShootNodes int `csv:"shoot_nodes"`
	RootNodes  int `csv:"root_nodes"`
	Leaves     int `csv:"leaves"`
	Flowers    int `csv:"flowers"`
	ShootTips  int `csv:"shoot_tips"`
	RootTips   int `csv:"root_tips"`
	Terminated int `csv:"terminated"`

	// Growth during the cycle
	NewShootNodes int `csv:"new_shoot_nodes"`
	NewRootNodes  int `csv:"new_root_nodes"`
	NewLeaves     int `csv:"new_leaves"`
	NewFlowers    int `csv:"new_flowers"`

	// Shape
	Height     float64 `csv:"height"`
	RootDepth  float64 `csv:"root_depth"`
	Spread     float64 `csv:"spread"` // horizontal extent of the shoot
	StemLength float64 `csv:"stem_length"`
	RootLength float64 `csv:"root_length"`
	LeafArea   float64 `csv:"leaf_area"`

	// Growth factor at shoot tips
	VigorMean float64 `csv:"vigor_mean"`
	VigorP10  float64 `csv:"vigor_p10"`
	VigorP50  float64 `csv:"vigor_p50"`
	VigorP90  float64 `csv:"vigor_p90"`
}

// NewCycleStats builds stats from a census. prev is the previous cycle's
// census, or nil for the first cycle; deltas are taken against it.
func NewCycleStats(c plant.Census, prev *plant.Census, elapsed time.Duration) CycleStats {
	s := CycleStats{
		Cycle:      c.Cycle,
		ElapsedMS:  float64(elapsed.Microseconds()) / 1000,
		ShootNodes: c.ShootNodes,
		RootNodes:  c.RootNodes,
		Leaves:     c.Leaves,
		Flowers:    c.Flowers,
		ShootTips:  c.ShootTips,
		RootTips:   c.RootTips,
		Terminated: c.Terminated,
		Height:     c.Height,
		RootDepth:  c.RootDepth,
		StemLength: c.StemLength,
		RootLength: c.RootLength,
		LeafArea:   c.LeafArea,
	}
	if prev != nil {
		s.NewShootNodes = c.ShootNodes - prev.ShootNodes
		s.NewRootNodes = c.RootNodes - prev.RootNodes
		s.NewLeaves = c.Leaves - prev.Leaves
		s.NewFlowers = c.Flowers - prev.Flowers
	}
	if len(c.ShootXs) > 0 {
		s.Spread = floats.Max(c.ShootXs) - floats.Min(c.ShootXs)
	}
	s.VigorMean, s.VigorP10, s.VigorP50, s.VigorP90 = ComputeVigorStats(c.TipVigor)
	return s
}

// ComputeVigorStats calculates mean and percentiles of tip growth factors.
func ComputeVigorStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.LinInterp, sorted, nil)
	p50 = stat.Quantile(0.50, stat.LinInterp, sorted, nil)
	p90 = stat.Quantile(0.90, stat.LinInterp, sorted, nil)
	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s CycleStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("cycle", s.Cycle),
		slog.Float64("elapsed_ms", s.ElapsedMS),
		slog.Int("shoot_nodes", s.ShootNodes),
		slog.Int("root_nodes", s.RootNodes),
		slog.Int("leaves", s.Leaves),
		slog.Int("flowers", s.Flowers),
		slog.Int("shoot_tips", s.ShootTips),
		slog.Int("root_tips", s.RootTips),
		slog.Int("terminated", s.Terminated),
		slog.Float64("height", s.Height),
		slog.Float64("root_depth", s.RootDepth),
		slog.Float64("spread", s.Spread),
		slog.Float64("vigor_mean", s.VigorMean),
	)
}

// LogStats logs the cycle as one line with its growth deltas.
func (s CycleStats) LogStats() {
	slog.Info("cycle",
		"cycle", s.Cycle,
		"elapsed_ms", s.ElapsedMS,
		"shoot_nodes", s.ShootNodes,
		"new_shoot", s.NewShootNodes,
		"root_nodes", s.RootNodes,
		"new_root", s.NewRootNodes,
		"leaves", s.Leaves,
		"new_leaves", s.NewLeaves,
		"flowers", s.Flowers,
		"new_flowers", s.NewFlowers,
		"tips", s.ShootTips,
		"terminated", s.Terminated,
		"height", s.Height,
		"root_depth", s.RootDepth,
		"vigor_mean", s.VigorMean,
	)
}
