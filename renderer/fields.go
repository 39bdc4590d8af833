// Package renderer draws the growth domain, environmental field overlays and
// plant geometry with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sprout/camera"
	"github.com/pthm-cable/sprout/systems"
)

// OverlayMode selects which field the overlay shows.
type OverlayMode int

const (
	OverlayNone OverlayMode = iota
	OverlaySunlight
	OverlayTemperature
	OverlayMoisture
	overlayCount
)

// String returns the overlay label.
func (m OverlayMode) String() string {
	switch m {
	case OverlaySunlight:
		return "sunlight"
	case OverlayTemperature:
		return "temperature"
	case OverlayMoisture:
		return "moisture"
	default:
		return "none"
	}
}

// Next cycles to the following overlay.
func (m OverlayMode) Next() OverlayMode {
	return (m + 1) % overlayCount
}

func (m OverlayMode) kind() systems.FieldKind {
	switch m {
	case OverlayTemperature:
		return systems.Temperature
	case OverlayMoisture:
		return systems.Moisture
	default:
		return systems.Sunlight
	}
}

// FieldOverlay draws a field as a coarse heat map over its region. The grid
// is resampled only when the mode or cycle changes.
type FieldOverlay struct {
	fields *systems.Fields
	cols   int

	mode  OverlayMode
	cycle int
	valid bool

	rows    int
	cellW   float64
	cellH   float64
	originY float64
	pts     []systems.Vec2
	values  []float64
}

// NewFieldOverlay creates an overlay with cols cells across the domain.
func NewFieldOverlay(fields *systems.Fields, cols int) *FieldOverlay {
	if cols < 4 {
		cols = 4
	}
	return &FieldOverlay{fields: fields, cols: cols}
}

// Mode returns the current overlay mode.
func (o *FieldOverlay) Mode() OverlayMode { return o.mode }

// SetMode changes the displayed field.
func (o *FieldOverlay) SetMode(m OverlayMode) {
	if m != o.mode {
		o.mode = m
		o.valid = false
	}
}

// resample fills the grid with cell-center values for the current mode.
func (o *FieldOverlay) resample(cycle int) {
	d := o.fields.Domain()
	kind := o.mode.kind()

	o.cellW = d.Width / float64(o.cols)
	height, bottom := d.Height, 0.0
	if kind.Soil() {
		height, bottom = d.SoilDepth, -d.SoilDepth
	}
	o.rows = max(1, int(float64(o.cols)*height/d.Width))
	o.cellH = height / float64(o.rows)
	o.originY = bottom

	n := o.rows * o.cols
	o.pts = o.pts[:0]
	for j := 0; j < o.rows; j++ {
		for i := 0; i < o.cols; i++ {
			o.pts = append(o.pts, systems.Vec2{
				X: (float64(i) + 0.5) * o.cellW,
				Y: bottom + (float64(j)+0.5)*o.cellH,
			})
		}
	}
	if cap(o.values) < n {
		o.values = make([]float64, n)
	}
	o.values = o.values[:n]

	if err := o.fields.SampleBatch(kind, o.pts, cycle, o.values); err != nil {
		o.values = o.values[:0]
	}
	o.cycle = cycle
	o.valid = true
}

// Draw renders the overlay for the given cycle.
func (o *FieldOverlay) Draw(cam *camera.Camera, cycle int) {
	if o.mode == OverlayNone {
		return
	}
	if !o.valid || o.cycle != cycle {
		o.resample(cycle)
	}

	lo, hi := 0.0, 1.0
	if o.mode == OverlayTemperature {
		lo, hi = o.fields.TemperatureRange()
	}

	for idx, v := range o.values {
		i, j := idx%o.cols, idx/o.cols
		x0 := float64(i) * o.cellW
		y0 := o.originY + float64(j)*o.cellH

		sx0, sy0 := cam.WorldToScreen(float32(x0), float32(y0+o.cellH))
		sx1, sy1 := cam.WorldToScreen(float32(x0+o.cellW), float32(y0))
		rect := rl.Rectangle{X: sx0, Y: sy0, Width: sx1 - sx0, Height: sy1 - sy0}
		rl.DrawRectangleRec(rect, o.color(normalize(v, lo, hi)))
	}
}

// color maps a normalized value to the overlay's palette.
func (o *FieldOverlay) color(t float64) rl.Color {
	a := uint8(70 + 110*t)
	switch o.mode {
	case OverlayTemperature:
		return rl.Color{R: uint8(60 + 195*t), G: 60, B: uint8(255 - 195*t), A: 150}
	case OverlayMoisture:
		return rl.Color{R: 30, G: uint8(80 + 80*t), B: 220, A: a}
	default:
		return rl.Color{R: 255, G: 230, B: uint8(60 + 120*(1-t)), A: a}
	}
}

func normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	t := (v - lo) / (hi - lo)
	return min(1, max(0, t))
}
