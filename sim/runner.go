// Package sim drives a plant through its growth cycles and feeds the
// results to telemetry and to a viewer.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/plant"
	"github.com/pthm-cable/sprout/systems"
	"github.com/pthm-cable/sprout/telemetry"
)

const (
	// pausedPoll is how often a paused runner checks for a step request.
	pausedPoll = 10 * time.Millisecond

	// bookmarkHistory is the number of cycles bookmark detection averages over.
	bookmarkHistory = 10
)

// Options configures a Runner.
type Options struct {
	Seed      int64  // RNG seed; 0 keeps run.seed from config
	MaxCycles int    // cycle limit; 0 keeps run.max_cycles from config
	Workers   int    // sampling workers; 0 keeps run.workers from config
	LogStats  bool   // log cycle and perf stats via slog
	OutputDir string // directory for CSV logs and config snapshot; empty disables

	// SnapshotDir receives a JSON snapshot at every bookmark and at the end
	// of the run; empty disables.
	SnapshotDir string

	// StatsCallback is called after every cycle with its stats.
	StatsCallback func(telemetry.CycleStats)
}

// Runner owns one plant, its fields and RNG, and the telemetry around them.
// Step and Run must be called from one goroutine; sinks read through the
// Handoff.
type Runner struct {
	cfg    *config.Config
	fields *systems.Fields
	plant  *plant.Plant
	rng    *rand.Rand

	handoff     *Handoff
	perf        *telemetry.PerfCollector
	output      *telemetry.OutputManager
	bookmarks   *telemetry.BookmarkDetector
	snapshotDir string

	logStats      bool
	logEvery      int
	statsCallback func(telemetry.CycleStats)

	prev *plant.Census
	last telemetry.CycleStats
}

// NewRunner builds the fields, the plant and a seeded RNG from cfg with the
// option overrides applied. cfg itself is not modified.
func NewRunner(cfg *config.Config, opts Options) (*Runner, error) {
	cfg = cfg.Clone()
	if opts.Seed != 0 {
		cfg.Run.Seed = opts.Seed
	}
	if opts.MaxCycles > 0 {
		cfg.Run.MaxCycles = opts.MaxCycles
	}
	if opts.Workers > 0 {
		cfg.Run.Workers = opts.Workers
	}
	if err := cfg.Refresh(); err != nil {
		return nil, err
	}

	fields, err := systems.NewFields(cfg)
	if err != nil {
		return nil, err
	}
	p, err := plant.New(plant.Origin(cfg), cfg)
	if err != nil {
		return nil, err
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	r := &Runner{
		cfg:           cfg,
		fields:        fields,
		plant:         p,
		rng:           systems.NewRNG(cfg.Run.Seed),
		handoff:       NewHandoff(),
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		output:        output,
		bookmarks:     telemetry.NewBookmarkDetector(bookmarkHistory),
		snapshotDir:   opts.SnapshotDir,
		logStats:      opts.LogStats,
		logEvery:      cfg.Telemetry.LogEvery,
		statsCallback: opts.StatsCallback,
	}
	p.SetPhaseHook(r.perf.StartPhase)
	r.handoff.Offer(Frame{Snapshot: p.Snapshot()})
	return r, nil
}

// Config returns the effective configuration of the run.
func (r *Runner) Config() *config.Config { return r.cfg }

// Handoff returns the mailbox the runner publishes frames to.
func (r *Runner) Handoff() *Handoff { return r.handoff }

// Fields returns the environmental fields. They are read-only and safe to
// sample from other goroutines.
func (r *Runner) Fields() *systems.Fields { return r.fields }

// Domain returns the region the plant grows in.
func (r *Runner) Domain() systems.Domain { return r.plant.Domain() }

// Cycle returns the number of completed cycles.
func (r *Runner) Cycle() int { return r.plant.Cycle() }

// Done reports whether the cycle limit was reached.
func (r *Runner) Done() bool { return r.plant.Done() }

// LastStats returns the stats of the most recent cycle.
func (r *Runner) LastStats() telemetry.CycleStats { return r.last }

// Snapshot returns the current plant geometry.
func (r *Runner) Snapshot() plant.PlantSnapshot { return r.plant.Snapshot() }

// Step runs one cycle and its telemetry. It is a no-op once the run is done.
// A field sampled out of bounds is returned wrapped; the run cannot continue.
func (r *Runner) Step() error {
	if r.plant.Done() {
		return nil
	}

	r.perf.StartCycle()
	if err := r.plant.Step(r.fields, r.rng); err != nil {
		r.perf.EndCycle()
		return fmt.Errorf("cycle %d: %w", r.plant.Cycle()+1, err)
	}

	r.perf.StartPhase(telemetry.PhaseTelemetry)
	snap := r.plant.Snapshot()
	census := r.plant.Census()
	elapsed := r.perf.EndCycle()

	stats := telemetry.NewCycleStats(census, r.prev, elapsed)
	perfStats := r.perf.Stats()
	r.prev = &census
	r.last = stats
	r.handoff.Offer(Frame{Snapshot: snap, Stats: stats, Perf: perfStats})

	if r.statsCallback != nil {
		r.statsCallback(stats)
	}
	r.flushTelemetry(stats, perfStats)
	for _, b := range r.bookmarks.Check(stats) {
		r.recordBookmark(b, snap)
	}
	return nil
}

// recordBookmark logs a bookmark and saves the plant as it stood.
func (r *Runner) recordBookmark(b telemetry.Bookmark, snap plant.PlantSnapshot) {
	if r.logStats {
		b.LogBookmark()
	}
	r.saveSnapshot(snap, &b)
}

// saveSnapshot writes snap to the snapshot directory, if one is set.
func (r *Runner) saveSnapshot(snap plant.PlantSnapshot, b *telemetry.Bookmark) {
	if r.snapshotDir == "" {
		return
	}
	path, err := telemetry.SaveSnapshot(&telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		RNGSeed:  r.cfg.Run.Seed,
		Domain:   r.plant.Domain(),
		Cycle:    snap.Cycle,
		Plant:    snap,
		Stats:    r.last,
		Bookmark: b,
	}, r.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Debug("snapshot saved", "path", path)
}

// flushTelemetry logs and records a cycle's stats.
func (r *Runner) flushTelemetry(stats telemetry.CycleStats, perfStats telemetry.PerfStats) {
	report := r.logEvery > 0 && stats.Cycle%r.logEvery == 0
	if !report && !r.plant.Done() {
		return
	}

	if r.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if r.output != nil {
		if err := r.output.WriteStats(stats); err != nil {
			slog.Error("failed to write stats", "error", err)
		}
		if err := r.output.WritePerf(perfStats, stats.Cycle); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// Run steps until the run is done or ctx is cancelled. Cancellation is
// checked between cycles only.
func (r *Runner) Run(ctx context.Context) error {
	for !r.plant.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Step(); err != nil {
			return err
		}
	}
	r.finish()
	return nil
}

// RunPaced is Run throttled by a pacer for interactive viewing.
func (r *Runner) RunPaced(ctx context.Context, pacer *Pacer) error {
	for !r.plant.Done() {
		ok, wait := pacer.next()
		if !ok {
			wait = pausedPoll
		} else if err := r.Step(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	r.finish()
	return nil
}

// finish writes the final geometry once the run is done.
func (r *Runner) finish() {
	snap := r.plant.Snapshot()
	if err := r.output.WriteGeometry(snap); err != nil {
		slog.Error("failed to write geometry", "error", err)
	}
	r.saveSnapshot(snap, nil)
	if r.logStats {
		slog.Info("run complete", "final", r.last)
	}
}

// Close stops the sampling workers and closes output files.
func (r *Runner) Close() error {
	r.plant.Close()
	return r.output.Close()
}
