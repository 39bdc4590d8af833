package telemetry

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/plant"
	"github.com/pthm-cable/sprout/systems"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager without error, got %v, %v", om, err)
	}
	// Nil manager methods are no-ops
	if err := om.WriteStats(CycleStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteGeometry(plant.PlantSnapshot{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManager_StatsHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for c := 1; c <= 3; c++ {
		if err := om.WriteStats(CycleStats{Cycle: c, ShootNodes: c + 1}); err != nil {
			t.Fatalf("WriteStats: %v", err)
		}
	}
	if err := om.WritePerf(NewPerfCollector(5).Stats(), 3); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	lines := readLines(t, filepath.Join(dir, "stats.csv"))
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "cycle,elapsed_ms,shoot_nodes") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[3], "3,") {
		t.Errorf("unexpected last row %q", lines[3])
	}

	perf := readLines(t, filepath.Join(dir, "perf.csv"))
	if len(perf) != 2 || !strings.HasPrefix(perf[0], "cycle,avg_cycle_us") {
		t.Errorf("unexpected perf.csv %v", perf)
	}
}

func TestOutputManager_GeometryAndConfig(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	snap := plant.PlantSnapshot{
		Cycle:   2,
		Shoots:  []plant.Edge{{From: systems.Vec2{X: 50}, To: systems.Vec2{X: 50, Y: 1}}},
		Roots:   []plant.Edge{{From: systems.Vec2{X: 50}, To: systems.Vec2{X: 50, Y: -0.5}}},
		Leaves:  []plant.LeafView{{Pos: systems.Vec2{X: 50, Y: 1}, Size: 1.2}},
		Flowers: []plant.FlowerView{{Pos: systems.Vec2{X: 50, Y: 1}, Color: "pink", Size: 5}},
	}
	if err := om.WriteGeometry(snap); err != nil {
		t.Fatalf("WriteGeometry: %v", err)
	}
	// A second write replaces the first
	if err := om.WriteGeometry(snap); err != nil {
		t.Fatalf("WriteGeometry: %v", err)
	}

	lines := readLines(t, filepath.Join(dir, "geometry.csv"))
	if len(lines) != 5 {
		t.Fatalf("expected header plus 4 rows, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[4], "flower") || !strings.Contains(lines[4], "pink") {
		t.Errorf("expected flower row last, got %q", lines[4])
	}

	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}

func TestGeometryRecords_Order(t *testing.T) {
	snap := plant.PlantSnapshot{
		Shoots: []plant.Edge{{}, {}},
		Roots:  []plant.Edge{{}},
	}
	recs := GeometryRecords(snap)
	want := []string{"shoot", "shoot", "root"}
	if len(recs) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(recs))
	}
	for i, w := range want {
		if recs[i].Part != w {
			t.Errorf("record %d is %s, want %s", i, recs[i].Part, w)
		}
	}
}

type failingCloser struct {
	bytes.Buffer
	err error
}

func (f *failingCloser) Close() error { return f.err }

func TestOutputManager_GeometryCloseError(t *testing.T) {
	om, err := NewOutputManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	diskFull := errors.New("no space left on device")
	w := &failingCloser{err: diskFull}
	orig := createFile
	createFile = func(string) (io.WriteCloser, error) { return w, nil }
	defer func() { createFile = orig }()

	snap := plant.PlantSnapshot{Shoots: []plant.Edge{{To: systems.Vec2{Y: 1}}}}
	err = om.WriteGeometry(snap)
	if !errors.Is(err, diskFull) {
		t.Fatalf("expected the close error, got %v", err)
	}
	if !strings.Contains(w.String(), "shoot") {
		t.Errorf("expected geometry written before close, got %q", w.String())
	}
}
