package main

import (
	"github.com/pthm-cable/sprout/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name  string  // Human-readable name
	Path  string  // Config path for logging
	Min   float64 // Lower bound
	Max   float64 // Upper bound
	field func(*config.Config) *float64
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable growth parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Shoot
			{Name: "shoot_base_length", Path: "shoot.base_length", Min: 0.3, Max: 3.0,
				field: func(c *config.Config) *float64 { return &c.Shoot.BaseLength }},
			{Name: "shoot_angle_range", Path: "shoot.angle_range", Min: 0.05, Max: 1.2,
				field: func(c *config.Config) *float64 { return &c.Shoot.AngleRange }},
			{Name: "shoot_branch_prob", Path: "shoot.branch_probability", Min: 0.0, Max: 0.2,
				field: func(c *config.Config) *float64 { return &c.Shoot.BranchProbability }},
			{Name: "shoot_branch_spread", Path: "shoot.branch_spread", Min: 0.2, Max: 1.6,
				field: func(c *config.Config) *float64 { return &c.Shoot.BranchSpread }},
			{Name: "phototropism", Path: "shoot.phototropism", Min: 0.0, Max: 1.0,
				field: func(c *config.Config) *float64 { return &c.Shoot.Phototropism }},
			{Name: "shoot_gravitropism", Path: "shoot.gravitropism", Min: 0.0, Max: 0.5,
				field: func(c *config.Config) *float64 { return &c.Shoot.Gravitropism }},
			// Root
			{Name: "root_base_length", Path: "root.base_length", Min: 0.2, Max: 2.0,
				field: func(c *config.Config) *float64 { return &c.Root.BaseLength }},
			{Name: "root_branch_prob", Path: "root.branch_probability", Min: 0.0, Max: 0.15,
				field: func(c *config.Config) *float64 { return &c.Root.BranchProbability }},
			{Name: "hydrotropism", Path: "root.hydrotropism", Min: 0.0, Max: 1.0,
				field: func(c *config.Config) *float64 { return &c.Root.Hydrotropism }},
			// Leaves
			{Name: "leaf_probability", Path: "leaf.probability", Min: 0.0, Max: 1.0,
				field: func(c *config.Config) *float64 { return &c.Leaf.Probability }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(spec.Max, max(spec.Min, v[i]))
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].field(cfg) = v
	}
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = *spec.field(cfg)
	}
	return out
}
