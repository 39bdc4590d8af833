package systems

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/sprout/config"
)

// Noise planes are offset along z so the three fields do not share a pattern.
var noiseOffset = [...]float64{
	Sunlight:    0,
	Temperature: 101.3,
	Moisture:    211.7,
}

// Fields evaluates the sunlight, temperature and moisture fields.
//
// Sampling is pure: the result depends only on (kind, position, cycle) and the
// configuration captured at construction. Evaluation is done on whole slices
// of points with gonum/floats, and Sample is a batch of one, so per-call and
// batched results are identical.
type Fields struct {
	domain   Domain
	sun      config.SunlightConfig
	temp     config.TemperatureConfig
	moist    config.MoistureConfig
	gradStep float64
	noise    Noise
}

// Probe is a field value together with its local gradient.
type Probe struct {
	Value    float64
	Gradient Vec2
}

// NewFields builds the field engine from configuration.
func NewFields(cfg *config.Config) (*Fields, error) {
	if err := cfg.Refresh(); err != nil {
		return nil, err
	}
	return &Fields{
		domain:   NewDomain(cfg),
		sun:      cfg.Fields.Sunlight,
		temp:     cfg.Fields.Temperature,
		moist:    cfg.Fields.Moisture,
		gradStep: cfg.Fields.GradientStep,
		noise:    NewNoise(cfg.Fields.Noise, cfg.Derived.NoiseSeed),
	}, nil
}

// Domain returns the region the fields are defined over.
func (f *Fields) Domain() Domain { return f.domain }

// TemperatureRange returns the bounds temperature samples are clamped to.
func (f *Fields) TemperatureRange() (lo, hi float64) {
	t := f.temp
	return t.Base - t.Amplitude - t.Lapse - t.NoiseAmplitude, t.Base + t.Amplitude + t.NoiseAmplitude
}

// Sample returns the value of one field at pos for the given cycle.
func (f *Fields) Sample(kind FieldKind, pos Vec2, cycle int) (float64, error) {
	var out [1]float64
	if err := f.SampleBatch(kind, []Vec2{pos}, cycle, out[:]); err != nil {
		return 0, err
	}
	return out[0], nil
}

// SampleBatch writes the value of kind at each of pts into out.
// All points are bounds-checked before anything is written.
func (f *Fields) SampleBatch(kind FieldKind, pts []Vec2, cycle int, out []float64) error {
	if len(out) < len(pts) {
		return fmt.Errorf("systems: output buffer holds %d values, need %d", len(out), len(pts))
	}
	for _, p := range pts {
		if !f.domain.Contains(kind, p) {
			return &OutOfBoundsError{Kind: kind, Pos: p}
		}
	}
	out = out[:len(pts)]
	if len(pts) == 0 {
		return nil
	}

	switch kind {
	case Sunlight:
		f.sunlight(pts, cycle, out)
	case Temperature:
		f.temperature(pts, cycle, out)
	case Moisture:
		f.moisture(pts, cycle, out)
	default:
		return fmt.Errorf("systems: unknown field %v", kind)
	}
	return nil
}

// Gradient returns the central-difference gradient of kind at pos.
func (f *Fields) Gradient(kind FieldKind, pos Vec2, cycle int) (Vec2, error) {
	var out [1]Probe
	if err := f.ProbeBatch(kind, []Vec2{pos}, cycle, out[:]); err != nil {
		return Vec2{}, err
	}
	return out[0].Gradient, nil
}

// ProbeBatch samples kind and its gradient at each point. The four
// difference points are clamped into the field's region, so probing on the
// ground line or a wall uses a one-sided difference.
func (f *Fields) ProbeBatch(kind FieldKind, pts []Vec2, cycle int, out []Probe) error {
	if len(out) < len(pts) {
		return fmt.Errorf("systems: output buffer holds %d probes, need %d", len(out), len(pts))
	}
	for _, p := range pts {
		if !f.domain.Contains(kind, p) {
			return &OutOfBoundsError{Kind: kind, Pos: p}
		}
	}

	h := f.gradStep
	const stride = 5
	buf := make([]Vec2, 0, stride*len(pts))
	for _, p := range pts {
		buf = append(buf,
			p,
			f.domain.Clamp(kind, Vec2{p.X - h, p.Y}),
			f.domain.Clamp(kind, Vec2{p.X + h, p.Y}),
			f.domain.Clamp(kind, Vec2{p.X, p.Y - h}),
			f.domain.Clamp(kind, Vec2{p.X, p.Y + h}),
		)
	}
	vals := make([]float64, len(buf))
	if err := f.SampleBatch(kind, buf, cycle, vals); err != nil {
		return err
	}

	for i := range pts {
		b := buf[i*stride : i*stride+stride]
		v := vals[i*stride : i*stride+stride]
		var g Vec2
		if dx := b[2].X - b[1].X; dx > 0 {
			g.X = (v[2] - v[1]) / dx
		}
		if dy := b[4].Y - b[3].Y; dy > 0 {
			g.Y = (v[4] - v[3]) / dy
		}
		out[i] = Probe{Value: v[0], Gradient: g}
	}
	return nil
}

// daylight returns the diurnal multiplier for a cycle, 1 at noon.
func (f *Fields) daylight(cycle int) float64 {
	if f.sun.DiurnalPeriod <= 0 {
		return 1
	}
	phase := 2 * math.Pi * float64(cycle) / f.sun.DiurnalPeriod
	return 1 - f.sun.DiurnalAmplitude*0.5*(1-math.Cos(phase))
}

// sunlight: brightest at the top of the domain, dimmer toward the ground,
// with a lateral tilt, a day cycle and a noise perturbation. Range [0,1].
func (f *Fields) sunlight(pts []Vec2, cycle int, out []float64) {
	d := f.domain
	for i, p := range pts {
		out[i] = math.Sin(0.5 * math.Pi * p.Y / d.Height)
	}
	floats.Scale(1-f.sun.Floor, out)
	floats.AddConst(f.sun.Floor, out)
	floats.Scale(f.daylight(cycle), out)

	tmp := make([]float64, len(pts))
	if f.sun.Lateral != 0 {
		for i, p := range pts {
			tmp[i] = p.X / d.Width
		}
		floats.AddConst(-0.5, tmp)
		floats.Scale(f.sun.Lateral, tmp)
		floats.Add(out, tmp)
	}
	f.addNoise(Sunlight, f.sun.NoiseConfig, pts, cycle, out, tmp)
	clampSlice(out, 0, 1)
}

// temperature: a cosine profile across the width (warmest at x=0), cooling
// with height. Degrees Celsius.
func (f *Fields) temperature(pts []Vec2, cycle int, out []float64) {
	d := f.domain
	for i, p := range pts {
		out[i] = math.Cos(math.Pi * p.X / d.Width)
	}
	floats.Scale(f.temp.Amplitude, out)
	floats.AddConst(f.temp.Base, out)

	tmp := make([]float64, len(pts))
	for i, p := range pts {
		tmp[i] = p.Y / d.Height
	}
	floats.Scale(-f.temp.Lapse, tmp)
	floats.Add(out, tmp)

	f.addNoise(Temperature, f.temp.NoiseConfig, pts, cycle, out, tmp)
	lo, hi := f.TemperatureRange()
	clampSlice(out, lo, hi)
}

// moisture: a Gaussian wet patch in the soil over a background floor. Range [0,1].
func (f *Fields) moisture(pts []Vec2, cycle int, out []float64) {
	d := f.domain
	cx := d.Width * f.moist.CenterX
	cy := -d.SoilDepth * f.moist.CenterDepth
	sigma := d.Width * f.moist.Sigma
	for i, p := range pts {
		if sigma <= 0 {
			out[i] = 0
			continue
		}
		dx, dy := p.X-cx, p.Y-cy
		out[i] = math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
	}
	floats.Scale(1-f.moist.Floor, out)
	floats.AddConst(f.moist.Floor, out)

	tmp := make([]float64, len(pts))
	f.addNoise(Moisture, f.moist.NoiseConfig, pts, cycle, out, tmp)
	clampSlice(out, 0, 1)
}

// addNoise adds amplitude * noise to out, using tmp as scratch.
func (f *Fields) addNoise(kind FieldKind, nc config.NoiseConfig, pts []Vec2, cycle int, out, tmp []float64) {
	if nc.NoiseAmplitude == 0 {
		return
	}
	z := float64(cycle)*nc.TimeSpeed + noiseOffset[kind]
	for i, p := range pts {
		tmp[i] = f.noise.Eval3(p.X*nc.NoiseScale, p.Y*nc.NoiseScale, z)
	}
	floats.Scale(nc.NoiseAmplitude, tmp)
	floats.Add(out, tmp)
}

func clampSlice(v []float64, lo, hi float64) {
	for i := range v {
		v[i] = clamp(v[i], lo, hi)
	}
}
