// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Domain    DomainConfig    `yaml:"domain"`
	Fields    FieldsConfig    `yaml:"fields"`
	Shoot     ShootConfig     `yaml:"shoot"`
	Root      RootConfig      `yaml:"root"`
	Leaf      LeafConfig      `yaml:"leaf"`
	Flower    FlowerConfig    `yaml:"flower"`
	Run       RunConfig       `yaml:"run"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the graphical viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// DomainConfig holds the simulated region. The ground line is y=0; shoots
// live in [0, height] and roots in [-soil_depth, 0].
type DomainConfig struct {
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	SoilDepth float64 `yaml:"soil_depth"`
	OriginX   float64 `yaml:"origin_x"` // Stem base as a fraction of width
}

// FieldsConfig holds scalar field parameters.
type FieldsConfig struct {
	Noise        string            `yaml:"noise"`         // "perlin" or "simplex"
	NoiseSeed    int64             `yaml:"noise_seed"`    // 0 = derive from run.seed
	GradientStep float64           `yaml:"gradient_step"` // Central difference step in world units
	Sunlight     SunlightConfig    `yaml:"sunlight"`
	Temperature  TemperatureConfig `yaml:"temperature"`
	Moisture     MoistureConfig    `yaml:"moisture"`
}

// NoiseConfig holds the shared noise perturbation parameters of a field.
type NoiseConfig struct {
	NoiseAmplitude float64 `yaml:"noise_amplitude"`
	NoiseScale     float64 `yaml:"noise_scale"` // Noise frequency per world unit
	TimeSpeed      float64 `yaml:"time_speed"`  // Noise drift per cycle (0 = static)
}

// SunlightConfig holds sunlight field parameters. Values are normalized to [0,1].
type SunlightConfig struct {
	Floor            float64 `yaml:"floor"`             // Intensity at ground level
	Lateral          float64 `yaml:"lateral"`           // Horizontal gradient (+ = brighter to the right)
	DiurnalAmplitude float64 `yaml:"diurnal_amplitude"` // Fractional dimming at the trough of the day cycle
	DiurnalPeriod    float64 `yaml:"diurnal_period"`    // Cycles per day (0 = no variation)
	NoiseConfig      `yaml:",inline"`
}

// TemperatureConfig holds temperature field parameters in degrees Celsius.
type TemperatureConfig struct {
	Base        float64 `yaml:"base"`
	Amplitude   float64 `yaml:"amplitude"` // Cosine swing across the width
	Lapse       float64 `yaml:"lapse"`     // Cooling from ground to top of domain
	NoiseConfig `yaml:",inline"`
}

// MoistureConfig holds soil moisture field parameters. Values are normalized to [0,1].
type MoistureConfig struct {
	Floor       float64 `yaml:"floor"`        // Background moisture away from the wet patch
	CenterX     float64 `yaml:"center_x"`     // Wet patch center as a fraction of width
	CenterDepth float64 `yaml:"center_depth"` // Wet patch center as a fraction of soil depth
	Sigma       float64 `yaml:"sigma"`        // Wet patch spread as a fraction of width
	NoiseConfig `yaml:",inline"`
}

// ShootConfig holds above-ground growth parameters.
type ShootConfig struct {
	BaseLength           float64 `yaml:"base_length"`           // Segment length at growth factor 1
	AngleRange           float64 `yaml:"angle_range"`           // Max random deviation (± radians) per cycle
	BranchProbability    float64 `yaml:"branch_probability"`    // Per-tip, per-cycle bifurcation chance
	BranchSpread         float64 `yaml:"branch_spread"`         // Angle between the two children of a branch
	Phototropism         float64 `yaml:"phototropism"`          // Turn fraction toward brighter light
	Gravitropism         float64 `yaml:"gravitropism"`          // Turn fraction toward straight up
	GradientSensitivity  float64 `yaml:"gradient_sensitivity"`  // Gradient magnitude at half steering strength is 1/this
	MinGrowth            float64 `yaml:"min_growth"`            // Tips below this growth factor terminate
	OptimalTemperature   float64 `yaml:"optimal_temperature"`   // Degrees Celsius
	TemperatureTolerance float64 `yaml:"temperature_tolerance"` // Degrees from optimum where growth stops
}

// RootConfig holds below-ground growth parameters.
type RootConfig struct {
	BaseLength          float64 `yaml:"base_length"`
	AngleRange          float64 `yaml:"angle_range"`
	BranchProbability   float64 `yaml:"branch_probability"`
	BranchSpread        float64 `yaml:"branch_spread"`
	Hydrotropism        float64 `yaml:"hydrotropism"` // Turn fraction toward wetter soil
	Gravitropism        float64 `yaml:"gravitropism"` // Turn fraction toward straight down
	GradientSensitivity float64 `yaml:"gradient_sensitivity"`
	MinMoisture         float64 `yaml:"min_moisture"`
}

// LeafConfig holds leaf creation parameters.
type LeafConfig struct {
	Probability float64 `yaml:"probability"`  // Per-node, per-cycle chance
	BaseSize    float64 `yaml:"base_size"`    // Leaf size = base_size * growth factor
	MaxPerNode  int     `yaml:"max_per_node"` // 0 = unlimited
}

// FlowerConfig holds flowering parameters.
type FlowerConfig struct {
	CycleThreshold int      `yaml:"cycle_threshold"` // Axis age in cycles before its tip may flower
	BaseSize       float64  `yaml:"base_size"`
	Colors         []string `yaml:"colors"`
}

// RunConfig holds run control parameters.
type RunConfig struct {
	MaxCycles int   `yaml:"max_cycles"`
	Seed      int64 `yaml:"seed"`
	Workers   int   `yaml:"workers"` // Field sampling workers (0 = GOMAXPROCS)
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	LogEvery   int `yaml:"log_every"`   // Log stats every N cycles (0 = final cycle only)
	PerfWindow int `yaml:"perf_window"` // Cycles averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	OriginX   float64 // Stem base x in world units
	NoiseSeed int64   // Effective noise seed
	Workers   int     // Effective worker count
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a validated copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Flower.Colors = append([]string(nil), c.Flower.Colors...)
	return &out
}

// Validate checks parameter ranges. It returns a *ConfigurationError for the
// first offending field.
func (c *Config) Validate() error {
	positive := []struct {
		field string
		v     float64
	}{
		{"domain.width", c.Domain.Width},
		{"domain.height", c.Domain.Height},
		{"domain.soil_depth", c.Domain.SoilDepth},
		{"shoot.base_length", c.Shoot.BaseLength},
		{"root.base_length", c.Root.BaseLength},
		{"shoot.temperature_tolerance", c.Shoot.TemperatureTolerance},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return &ConfigurationError{Field: p.field, Reason: fmt.Sprintf("must be positive, got %v", p.v)}
		}
	}

	unit := []struct {
		field string
		v     float64
	}{
		{"domain.origin_x", c.Domain.OriginX},
		{"fields.sunlight.floor", c.Fields.Sunlight.Floor},
		{"fields.sunlight.diurnal_amplitude", c.Fields.Sunlight.DiurnalAmplitude},
		{"fields.moisture.floor", c.Fields.Moisture.Floor},
		{"fields.moisture.center_x", c.Fields.Moisture.CenterX},
		{"fields.moisture.center_depth", c.Fields.Moisture.CenterDepth},
		{"shoot.branch_probability", c.Shoot.BranchProbability},
		{"shoot.phototropism", c.Shoot.Phototropism},
		{"shoot.gravitropism", c.Shoot.Gravitropism},
		{"shoot.min_growth", c.Shoot.MinGrowth},
		{"root.branch_probability", c.Root.BranchProbability},
		{"root.hydrotropism", c.Root.Hydrotropism},
		{"root.gravitropism", c.Root.Gravitropism},
		{"root.min_moisture", c.Root.MinMoisture},
		{"leaf.probability", c.Leaf.Probability},
	}
	for _, p := range unit {
		if !(p.v >= 0 && p.v <= 1) {
			return &ConfigurationError{Field: p.field, Reason: fmt.Sprintf("must be in [0,1], got %v", p.v)}
		}
	}

	nonNegative := []struct {
		field string
		v     float64
	}{
		{"fields.gradient_step", c.Fields.GradientStep},
		{"fields.sunlight.diurnal_period", c.Fields.Sunlight.DiurnalPeriod},
		{"fields.sunlight.noise_amplitude", c.Fields.Sunlight.NoiseAmplitude},
		{"fields.sunlight.noise_scale", c.Fields.Sunlight.NoiseScale},
		{"fields.temperature.noise_amplitude", c.Fields.Temperature.NoiseAmplitude},
		{"fields.temperature.noise_scale", c.Fields.Temperature.NoiseScale},
		{"fields.moisture.sigma", c.Fields.Moisture.Sigma},
		{"fields.moisture.noise_amplitude", c.Fields.Moisture.NoiseAmplitude},
		{"fields.moisture.noise_scale", c.Fields.Moisture.NoiseScale},
		{"shoot.angle_range", c.Shoot.AngleRange},
		{"shoot.branch_spread", c.Shoot.BranchSpread},
		{"shoot.gradient_sensitivity", c.Shoot.GradientSensitivity},
		{"root.angle_range", c.Root.AngleRange},
		{"root.branch_spread", c.Root.BranchSpread},
		{"root.gradient_sensitivity", c.Root.GradientSensitivity},
		{"leaf.base_size", c.Leaf.BaseSize},
		{"flower.base_size", c.Flower.BaseSize},
	}
	for _, p := range nonNegative {
		if !(p.v >= 0) || math.IsInf(p.v, 0) {
			return &ConfigurationError{Field: p.field, Reason: fmt.Sprintf("must be non-negative, got %v", p.v)}
		}
	}

	if c.Fields.Sunlight.Lateral < -1 || c.Fields.Sunlight.Lateral > 1 {
		return &ConfigurationError{Field: "fields.sunlight.lateral", Reason: fmt.Sprintf("must be in [-1,1], got %v", c.Fields.Sunlight.Lateral)}
	}
	if c.Fields.Temperature.Amplitude < 0 || c.Fields.Temperature.Lapse < 0 {
		return &ConfigurationError{Field: "fields.temperature", Reason: "amplitude and lapse must be non-negative"}
	}
	switch c.Fields.Noise {
	case "", "perlin", "simplex":
	default:
		return &ConfigurationError{Field: "fields.noise", Reason: fmt.Sprintf("unknown noise generator %q", c.Fields.Noise)}
	}
	if c.Leaf.MaxPerNode < 0 {
		return &ConfigurationError{Field: "leaf.max_per_node", Reason: "must be non-negative"}
	}
	if c.Flower.CycleThreshold < 0 {
		return &ConfigurationError{Field: "flower.cycle_threshold", Reason: "must be non-negative"}
	}
	if len(c.Flower.Colors) == 0 {
		return &ConfigurationError{Field: "flower.colors", Reason: "palette must not be empty"}
	}
	if c.Run.MaxCycles < 1 {
		return &ConfigurationError{Field: "run.max_cycles", Reason: fmt.Sprintf("must be at least 1, got %d", c.Run.MaxCycles)}
	}
	if c.Run.Workers < 0 {
		return &ConfigurationError{Field: "run.workers", Reason: "must be non-negative"}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.OriginX = c.Domain.Width * c.Domain.OriginX

	c.Derived.NoiseSeed = c.Fields.NoiseSeed
	if c.Derived.NoiseSeed == 0 {
		c.Derived.NoiseSeed = c.Run.Seed
	}

	c.Derived.Workers = c.Run.Workers
	if c.Derived.Workers == 0 {
		c.Derived.Workers = runtime.GOMAXPROCS(0)
	}
}

// Refresh re-validates the config and recomputes derived values after
// fields were changed in code.
func (c *Config) Refresh() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
