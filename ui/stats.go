package ui

import (
	"fmt"

	"github.com/pthm-cable/sprout/telemetry"
)

// StatsPanel shows the latest cycle's growth stats.
type StatsPanel struct {
	renderer *Renderer
	desc     PanelDescriptor
	x, y     int32
	visible  bool
}

// NewStatsPanel creates a stats panel with the standard growth layout.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		desc:     GrowthPanel(width),
		x:        x,
		y:        y,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (s *StatsPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Toggle switches panel visibility.
func (s *StatsPanel) Toggle() bool {
	s.visible = !s.visible
	return s.visible
}

// Draw renders the panel for stats.
func (s *StatsPanel) Draw(stats telemetry.CycleStats) {
	if !s.visible {
		return
	}
	s.renderer.DrawPanelDescriptor(s.x, s.y, s.desc, stats)
}

func cycleStats(data any) telemetry.CycleStats {
	s, _ := data.(telemetry.CycleStats)
	return s
}

func intField(label string, get func(telemetry.CycleStats) int) FieldDescriptor {
	return FieldDescriptor{
		ID:     label,
		Label:  label,
		Widget: WidgetText,
		TextGetter: func(d any) string {
			return fmt.Sprintf("%d", get(cycleStats(d)))
		},
	}
}

func floatField(label, format string, get func(telemetry.CycleStats) float64) FieldDescriptor {
	return FieldDescriptor{
		ID:     label,
		Label:  label,
		Widget: WidgetText,
		Format: format,
		Getter: func(d any) float32 { return float32(get(cycleStats(d))) },
	}
}

func vigorBar(label string, get func(telemetry.CycleStats) float64) FieldDescriptor {
	return FieldDescriptor{
		ID:     label,
		Label:  label,
		Widget: WidgetBar,
		Range:  DefaultRange(),
		Getter: func(d any) float32 { return float32(get(cycleStats(d))) },
	}
}

// GrowthPanel describes the stats panel layout.
func GrowthPanel(width int32) PanelDescriptor {
	return PanelDescriptor{
		ID:    "growth",
		Title: "Growth",
		Width: width,
		Sections: []SectionDescriptor{
			{
				ID:    "organs",
				Title: "Organs",
				Fields: []FieldDescriptor{
					intField("Shoot tips", func(s telemetry.CycleStats) int { return s.ShootTips }),
					intField("Root tips", func(s telemetry.CycleStats) int { return s.RootTips }),
					intField("Terminated", func(s telemetry.CycleStats) int { return s.Terminated }),
					intField("New nodes", func(s telemetry.CycleStats) int { return s.NewShootNodes + s.NewRootNodes }),
				},
			},
			{
				ID:    "shape",
				Title: "Shape",
				Fields: []FieldDescriptor{
					floatField("Height", "%.1f", func(s telemetry.CycleStats) float64 { return s.Height }),
					floatField("Root depth", "%.1f", func(s telemetry.CycleStats) float64 { return s.RootDepth }),
					floatField("Spread", "%.1f", func(s telemetry.CycleStats) float64 { return s.Spread }),
					floatField("Leaf area", "%.2f", func(s telemetry.CycleStats) float64 { return s.LeafArea }),
				},
			},
			{
				ID:    "vigor",
				Title: "Tip vigor",
				Visible: func(d any) bool {
					return cycleStats(d).ShootTips > 0
				},
				Fields: []FieldDescriptor{
					vigorBar("Mean", func(s telemetry.CycleStats) float64 { return s.VigorMean }),
					vigorBar("p10", func(s telemetry.CycleStats) float64 { return s.VigorP10 }),
					vigorBar("p50", func(s telemetry.CycleStats) float64 { return s.VigorP50 }),
					vigorBar("p90", func(s telemetry.CycleStats) float64 { return s.VigorP90 }),
				},
			},
		},
	}
}
