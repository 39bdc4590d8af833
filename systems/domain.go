package systems

import (
	"fmt"

	"github.com/pthm-cable/sprout/config"
)

// FieldKind selects one of the environmental scalar fields.
type FieldKind uint8

const (
	Sunlight FieldKind = iota
	Temperature
	Moisture
)

func (k FieldKind) String() string {
	switch k {
	case Sunlight:
		return "sunlight"
	case Temperature:
		return "temperature"
	case Moisture:
		return "moisture"
	}
	return fmt.Sprintf("field(%d)", uint8(k))
}

// Soil reports whether the field is defined below ground.
func (k FieldKind) Soil() bool { return k == Moisture }

// Domain is the simulated region. Air spans y in [0, Height], soil spans
// y in [-SoilDepth, 0]; both span x in [0, Width]. The ground line belongs
// to both.
type Domain struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	SoilDepth float64 `json:"soil_depth"`
}

// NewDomain builds the domain from configuration.
func NewDomain(cfg *config.Config) Domain {
	return Domain{
		Width:     cfg.Domain.Width,
		Height:    cfg.Domain.Height,
		SoilDepth: cfg.Domain.SoilDepth,
	}
}

// InAir reports whether p lies in the above-ground region.
func (d Domain) InAir(p Vec2) bool {
	return p.X >= 0 && p.X <= d.Width && p.Y >= 0 && p.Y <= d.Height
}

// InSoil reports whether p lies in the below-ground region.
func (d Domain) InSoil(p Vec2) bool {
	return p.X >= 0 && p.X <= d.Width && p.Y <= 0 && p.Y >= -d.SoilDepth
}

// Contains reports whether p lies in the region where kind is defined.
func (d Domain) Contains(kind FieldKind, p Vec2) bool {
	if kind.Soil() {
		return d.InSoil(p)
	}
	return d.InAir(p)
}

// ClampAir moves p to the nearest point of the above-ground region.
func (d Domain) ClampAir(p Vec2) Vec2 {
	return Vec2{clamp(p.X, 0, d.Width), clamp(p.Y, 0, d.Height)}
}

// ClampSoil moves p to the nearest point of the below-ground region.
func (d Domain) ClampSoil(p Vec2) Vec2 {
	return Vec2{clamp(p.X, 0, d.Width), clamp(p.Y, -d.SoilDepth, 0)}
}

// Clamp moves p into the region where kind is defined.
func (d Domain) Clamp(kind FieldKind, p Vec2) Vec2 {
	if kind.Soil() {
		return d.ClampSoil(p)
	}
	return d.ClampAir(p)
}

// OutOfBoundsError reports a field sampled outside its region. Inside the
// growth engine it means a node escaped the domain, which is fatal for a run.
type OutOfBoundsError struct {
	Kind FieldKind
	Pos  Vec2
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("systems: %s sampled out of bounds at (%.4f, %.4f)", e.Kind, e.Pos.X, e.Pos.Y)
}
