package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/sim"
	"github.com/pthm-cable/sprout/systems"
	"github.com/pthm-cable/sprout/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for plant snapshots at bookmarks and run end")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxCycles := flag.Int("max-cycles", 0, "Stop after N cycles (0 = use config)")
	workers := flag.Int("cpuworkers", 0, "Field sampling workers (0 = use config)")
	rate := flag.Float64("rate", 10, "Growth cycles per second in graphical mode")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := sim.Options{
		Seed:        rngSeed,
		MaxCycles:   *maxCycles,
		Workers:     *workers,
		LogStats:    *logStats,
		OutputDir:   *outputDir,
		SnapshotDir: *snapshotDir,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *headless {
		os.Exit(runHeadless(ctx, cfg, opts))
	}
	os.Exit(runGraphical(ctx, cfg, opts, *rate))
}

// runHeadless grows the plant to completion without a window.
func runHeadless(ctx context.Context, cfg *config.Config, opts sim.Options) int {
	r, err := sim.NewRunner(cfg, opts)
	if err != nil {
		slog.Error("failed to start run", "error", err)
		return 1
	}
	defer r.Close()

	slog.Info("starting headless simulation",
		"seed", r.Config().Run.Seed,
		"max_cycles", r.Config().Run.MaxCycles,
		"output_dir", opts.OutputDir,
	)

	if err := r.Run(ctx); err != nil {
		return exitCode(err)
	}
	return 0
}

// runGraphical opens a window and grows the plant at the given rate.
func runGraphical(ctx context.Context, cfg *config.Config, opts sim.Options, rate float64) int {
	r, err := sim.NewRunner(cfg, opts)
	if err != nil {
		slog.Error("failed to start run", "error", err)
		return 1
	}
	defer r.Close()

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Sprout")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v := viewer.New(r, rate)
	if err := v.Run(ctx); err != nil {
		return exitCode(err)
	}
	return 0
}

// exitCode logs a run error and maps it to a process exit status.
func exitCode(err error) int {
	var oob *systems.OutOfBoundsError
	switch {
	case errors.Is(err, context.Canceled):
		slog.Info("run interrupted")
		return 130
	case errors.As(err, &oob):
		slog.Error("field sampled out of bounds", "field", oob.Kind.String(), "x", oob.Pos.X, "y", oob.Pos.Y, "error", err)
		return 1
	default:
		slog.Error("run failed", "error", err)
		return 1
	}
}
