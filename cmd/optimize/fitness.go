package main

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/sim"
	"github.com/pthm-cable/sprout/telemetry"
)

// Fitness weights. Leaf area is the main reward; flowers add a bonus and
// every node costs a little, so sprawling plants do not win by size alone.
const (
	flowerWeight = 5.0
	nodeCost     = 0.02
	rootShare    = 0.1 // minimum root nodes per shoot node before a penalty applies
)

// FitnessEvaluator runs headless growth runs and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxCycles  int
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	bestFitness float64
	bestStats   telemetry.CycleStats
	lastStats   telemetry.CycleStats // best seed of the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxCycles int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxCycles:   maxCycles,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// Cycles returns the cycle count of each run.
func (fe *FitnessEvaluator) Cycles() int {
	if fe.maxCycles > 0 {
		return fe.maxCycles
	}
	return fe.baseConfig.Run.MaxCycles
}

// BestStats returns the final stats of the best run so far.
func (fe *FitnessEvaluator) BestStats() telemetry.CycleStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestStats
}

// LastStats returns the final stats of the best seed in the most recent evaluation.
func (fe *FitnessEvaluator) LastStats() telemetry.CycleStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastStats
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	final   telemetry.CycleStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			final, err := fe.runSimulation(cfg, s)
			if err != nil {
				slog.Warn("evaluation run failed", "seed", s, "error", err)
				results[idx] = seedResult{fitness: 0}
				return
			}
			results[idx] = seedResult{fitness: computeFitness(final), final: final}
		}(i, seed)
	}
	wg.Wait()

	var total float64
	best := seedResult{fitness: math.Inf(1)}
	for _, r := range results {
		total += r.fitness
		if r.fitness < best.fitness {
			best = r
		}
	}
	avgFitness := total / float64(len(fe.seeds))

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestStats = best.final
	}
	fe.lastStats = best.final
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation grows one plant to completion and returns its final stats.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) (telemetry.CycleStats, error) {
	r, err := sim.NewRunner(cfg, sim.Options{
		Seed:      seed,
		MaxCycles: fe.maxCycles,
		Workers:   1, // seeds already run in parallel
	})
	if err != nil {
		return telemetry.CycleStats{}, err
	}
	defer r.Close()

	if err := r.Run(context.Background()); err != nil {
		return telemetry.CycleStats{}, err
	}
	return r.LastStats(), nil
}

// computeFitness scores a finished plant (lower = better).
// Formula: -(leafArea + flowerWeight*flowers - nodeCost*nodes) * rootBalance
func computeFitness(s telemetry.CycleStats) float64 {
	nodes := float64(s.ShootNodes + s.RootNodes)
	score := s.LeafArea + flowerWeight*float64(s.Flowers) - nodeCost*nodes
	return -score * rootBalance(s)
}

// rootBalance scales the score down when the plant grows too few roots to
// be plausible, reaching 1 at rootShare roots per shoot node.
func rootBalance(s telemetry.CycleStats) float64 {
	if s.ShootNodes == 0 {
		return 1
	}
	share := float64(s.RootNodes) / float64(s.ShootNodes)
	return min(1, 0.5+0.5*share/rootShare)
}
