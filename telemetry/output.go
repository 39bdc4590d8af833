package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/plant"
)

// GeometryRecord is one row of geometry.csv: an edge, leaf or flower of the
// final plant.
type GeometryRecord struct {
	Cycle int     `csv:"cycle"`
	Part  string  `csv:"part"` // shoot, root, leaf or flower
	X0    float64 `csv:"x0"`
	Y0    float64 `csv:"y0"`
	X1    float64 `csv:"x1"`
	Y1    float64 `csv:"y1"`
	Size  float64 `csv:"size"`
	Color string  `csv:"color"`
}

// GeometryRecords flattens a snapshot into CSV rows, edges first.
func GeometryRecords(snap plant.PlantSnapshot) []GeometryRecord {
	out := make([]GeometryRecord, 0, len(snap.Shoots)+len(snap.Roots)+len(snap.Leaves)+len(snap.Flowers))
	for _, e := range snap.Shoots {
		out = append(out, GeometryRecord{Cycle: snap.Cycle, Part: "shoot", X0: e.From.X, Y0: e.From.Y, X1: e.To.X, Y1: e.To.Y})
	}
	for _, e := range snap.Roots {
		out = append(out, GeometryRecord{Cycle: snap.Cycle, Part: "root", X0: e.From.X, Y0: e.From.Y, X1: e.To.X, Y1: e.To.Y})
	}
	for _, l := range snap.Leaves {
		out = append(out, GeometryRecord{Cycle: snap.Cycle, Part: "leaf", X0: l.Pos.X, Y0: l.Pos.Y, X1: l.Pos.X, Y1: l.Pos.Y, Size: l.Size})
	}
	for _, f := range snap.Flowers {
		out = append(out, GeometryRecord{Cycle: snap.Cycle, Part: "flower", X0: f.Pos.X, Y0: f.Pos.Y, X1: f.Pos.X, Y1: f.Pos.Y, Size: f.Size, Color: f.Color})
	}
	return out
}

// createFile opens whole-file outputs that are rewritten on each write.
var createFile = func(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir       string
	statsFile *os.File
	perfFile  *os.File

	// Track if headers have been written
	statsHeaderWritten bool
	perfHeaderWritten  bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "stats.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating stats.csv: %w", err)
	}
	om.statsFile = f

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.statsFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// WriteConfig saves the run configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteStats appends a cycle record to stats.csv.
func (om *OutputManager) WriteStats(stats CycleStats) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(om.statsFile, []CycleStats{stats}, &om.statsHeaderWritten); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// WritePerf appends a performance record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, cycle int) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(om.perfFile, []PerfStatsCSV{stats.ToCSV(cycle)}, &om.perfHeaderWritten); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteGeometry writes the snapshot's edges and organs to geometry.csv,
// replacing any earlier geometry.
func (om *OutputManager) WriteGeometry(snap plant.PlantSnapshot) error {
	if om == nil {
		return nil
	}
	f, err := createFile(filepath.Join(om.dir, "geometry.csv"))
	if err != nil {
		return fmt.Errorf("creating geometry.csv: %w", err)
	}

	records := GeometryRecords(snap)
	if err := gocsv.Marshal(&records, f); err != nil {
		f.Close()
		return fmt.Errorf("writing geometry: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing geometry.csv: %w", err)
	}
	return nil
}

// writeRecords marshals records, including the header only on first use.
func writeRecords(f *os.File, records any, headerWritten *bool) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.statsFile, om.perfFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
