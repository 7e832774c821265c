// Package config loads, validates and defaults the YAML run
// configuration, and owns the name registries for systems and
// integrators. Everything downstream of here works with parsed
// domain values; the kernels never re-check.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chaoscope/internal/colormap"
	"github.com/san-kum/chaoscope/internal/diverge"
	"github.com/san-kum/chaoscope/internal/dynamo"
	"github.com/san-kum/chaoscope/internal/mapping"
)

const (
	DefaultDt         = 0.002
	DefaultGravity    = 9.81
	DefaultResolution = 512
	DefaultTile       = 64
	DefaultChunkIters = 5
	DefaultSamples    = 8
	DefaultScale      = 1e-7
	DefaultSeed       = 42
	DefaultThreshold  = 0.05
	DefaultPeriod     = 1.0

	MinResolution = 8
	MaxResolution = 8192
)

type Config struct {
	System               string      `yaml:"system"`
	Integrator           string      `yaml:"integrator"`
	Dt                   float64     `yaml:"dt"`
	Gravity              float64     `yaml:"gravity"`
	Resolution           int         `yaml:"resolution"`
	Tile                 int         `yaml:"tile"`
	IterationsPerChunk   int         `yaml:"iterations_per_chunk"`
	ChunksBetweenSamples int         `yaml:"chunks_between_samples"`
	Perturbations        int         `yaml:"perturbations"`
	PerturbationScale    float64     `yaml:"perturbation_scale"`
	PerturbationMode     string      `yaml:"perturbation_mode"`
	Seed                 int64       `yaml:"seed"`
	View                 string      `yaml:"view"`
	Threshold            float64     `yaml:"threshold"`
	Palette              string      `yaml:"palette"`
	ValueMode            string      `yaml:"value_mode"`
	Period               float64     `yaml:"period"`
	Layer                LayerConfig `yaml:"layer"`
	Basis                BasisConfig `yaml:"basis"`
}

type AxisConfig struct {
	Dim string  `yaml:"dim"`
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type LayerConfig struct {
	X     AxisConfig `yaml:"x"`
	Y     AxisConfig `yaml:"y"`
	Delta bool       `yaml:"delta"`
}

// BasisConfig holds the value of every mappable dimension for pixels
// the layer does not drive.
type BasisConfig struct {
	Theta1 float64 `yaml:"theta1"`
	Theta2 float64 `yaml:"theta2"`
	Omega1 float64 `yaml:"omega1"`
	Omega2 float64 `yaml:"omega2"`
	L1     float64 `yaml:"l1"`
	L2     float64 `yaml:"l2"`
	M1     float64 `yaml:"m1"`
	M2     float64 `yaml:"m2"`
}

func DefaultConfig() *Config {
	return &Config{
		System:             "double-pendulum",
		Integrator:         "verlet",
		Dt:                 DefaultDt,
		Gravity:            DefaultGravity,
		Resolution:         DefaultResolution,
		Tile:               DefaultTile,
		IterationsPerChunk: DefaultChunkIters,
		Perturbations:      DefaultSamples,
		PerturbationScale:  DefaultScale,
		PerturbationMode:   "fixed",
		Seed:               DefaultSeed,
		View:               "accumulated",
		Threshold:          DefaultThreshold,
		Palette:            "mako",
		ValueMode:          "linear",
		Period:             DefaultPeriod,
		Layer: LayerConfig{
			X: AxisConfig{Dim: "theta1", Min: -math.Pi, Max: math.Pi},
			Y: AxisConfig{Dim: "theta2", Min: -math.Pi, Max: math.Pi},
		},
		Basis: BasisConfig{L1: 1, L2: 1, M1: 1, M2: 1},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every field and reports the first problem. A nil
// return means the accessor methods below cannot fail.
func (c *Config) Validate() error {
	reg := NewRegistry()
	sys, err := reg.System(c.System)
	if err != nil {
		return err
	}
	if _, err := reg.Integrator(c.Integrator); err != nil {
		return err
	}
	if c.Integrator == "verlet" {
		if _, ok := sys.(dynamo.Splittable); !ok {
			return fmt.Errorf("config: verlet needs a splittable system, %s is not", c.System)
		}
	}

	if !(c.Dt > 0) {
		return fmt.Errorf("config: dt must be positive, got %g", c.Dt)
	}
	if math.IsNaN(c.Gravity) || c.Gravity < 0 {
		return fmt.Errorf("config: gravity must be non-negative, got %g", c.Gravity)
	}
	if c.Resolution < MinResolution || c.Resolution > MaxResolution {
		return fmt.Errorf("config: resolution must be %d..%d, got %d", MinResolution, MaxResolution, c.Resolution)
	}
	if c.Tile < 1 {
		return fmt.Errorf("config: tile must be at least 1, got %d", c.Tile)
	}
	if c.ChunksBetweenSamples < 0 {
		return fmt.Errorf("config: chunks_between_samples must not be negative, got %d", c.ChunksBetweenSamples)
	}
	if _, err := diverge.ParseOffsetMode(c.PerturbationMode); err != nil {
		return err
	}
	if err := c.DivergeConfig().Validate(); err != nil {
		return err
	}
	if _, err := diverge.ParseView(c.View); err != nil {
		return err
	}
	if _, err := colormap.ParsePalette(c.Palette); err != nil {
		return err
	}
	mode, err := colormap.ParseMode(c.ValueMode)
	if err != nil {
		return err
	}
	if mode == colormap.ModePeriodic && !(c.Period > 0) {
		return fmt.Errorf("config: period must be positive for periodic value mode, got %g", c.Period)
	}

	layer, err := c.MapLayer()
	if err != nil {
		return err
	}
	if err := layer.Validate(); err != nil {
		return err
	}
	for _, d := range []dynamo.Dimension{layer.XDim, layer.YDim} {
		if !dimensionUsed(sys, d) {
			return fmt.Errorf("%w: layer maps %s but system %s does not use it", dynamo.ErrUnmappedDimension, d, c.System)
		}
	}
	return nil
}

// Warnings returns advisory notes that do not block a run.
func (c *Config) Warnings() []string {
	var warns []string
	if c.Resolution&(c.Resolution-1) != 0 {
		warns = append(warns, fmt.Sprintf("resolution %d is not a power of two; tiles will be ragged", c.Resolution))
	}
	if c.Perturbations > 16 {
		warns = append(warns, fmt.Sprintf("%d perturbations per pixel is expensive; 8 is usually enough", c.Perturbations))
	}
	return warns
}

func dimensionUsed(sys dynamo.System, d dynamo.Dimension) bool {
	for _, sd := range sys.StateDims() {
		if sd == d {
			return true
		}
	}
	for _, pd := range sys.ParamDims() {
		if pd == d {
			return true
		}
	}
	return false
}

// DivergeConfig converts the perturbation settings to engine form.
func (c *Config) DivergeConfig() diverge.Config {
	mode := diverge.OffsetFixed
	if c.PerturbationMode == "gaussian" {
		mode = diverge.OffsetGaussian
	}
	return diverge.Config{
		Samples:    c.Perturbations,
		Scale:      c.PerturbationScale,
		Mode:       mode,
		Seed:       c.Seed,
		Dt:         c.Dt,
		ChunkIters: c.IterationsPerChunk,
		Threshold:  c.Threshold,
	}
}

// MapLayer parses the layer section into mapping form.
func (c *Config) MapLayer() (mapping.Layer, error) {
	xd, err := dynamo.ParseDimension(c.Layer.X.Dim)
	if err != nil {
		return mapping.Layer{}, err
	}
	yd, err := dynamo.ParseDimension(c.Layer.Y.Dim)
	if err != nil {
		return mapping.Layer{}, err
	}
	return mapping.Layer{
		XDim: xd, YDim: yd,
		X:     mapping.Range{Min: c.Layer.X.Min, Max: c.Layer.X.Max},
		Y:     mapping.Range{Min: c.Layer.Y.Min, Max: c.Layer.Y.Max},
		Delta: c.Layer.Delta,
	}, nil
}

// MapBasis converts the basis section, gravity included.
func (c *Config) MapBasis() mapping.Basis {
	var b mapping.Basis
	b.G = c.Gravity
	b.Slots[dynamo.DimTheta1] = c.Basis.Theta1
	b.Slots[dynamo.DimTheta2] = c.Basis.Theta2
	b.Slots[dynamo.DimOmega1] = c.Basis.Omega1
	b.Slots[dynamo.DimOmega2] = c.Basis.Omega2
	b.Slots[dynamo.DimL1] = c.Basis.L1
	b.Slots[dynamo.DimL2] = c.Basis.L2
	b.Slots[dynamo.DimM1] = c.Basis.M1
	b.Slots[dynamo.DimM2] = c.Basis.M2
	return b
}

// Stack builds the initial mapping stack: the configured basis pinned
// under the configured layer.
func (c *Config) Stack() (*mapping.Stack, error) {
	layer, err := c.MapLayer()
	if err != nil {
		return nil, err
	}
	return mapping.NewStack(mapping.SampledPoint{Basis: c.MapBasis(), U: 0.5, V: 0.5}, layer), nil
}
