package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/chaoscope/internal/diverge"
	"github.com/san-kum/chaoscope/internal/dynamo"
)

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.Warnings())
}

func TestPresets_AllValidate(t *testing.T) {
	names := ListPresets()
	require.NotEmpty(t, names)

	for _, name := range names {
		cfg := GetPreset(name)
		require.NotNil(t, cfg, name)
		assert.NoError(t, cfg.Validate(), name)
		assert.Empty(t, cfg.Warnings(), name)
	}
}

func TestGetPreset_ReturnsFreshCopy(t *testing.T) {
	a := GetPreset("classic")
	require.NotNil(t, a)
	a.Resolution = 9999

	b := GetPreset("classic")
	assert.Equal(t, DefaultResolution, b.Resolution)

	assert.Nil(t, GetPreset("nonexistent"))
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	yaml := []byte("system: duffing\nintegrator: rk4\ndt: 0.01\n")
	require.NoError(t, os.WriteFile(path, yaml, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "duffing", cfg.System)
	assert.Equal(t, 0.01, cfg.Dt)
	assert.Equal(t, DefaultResolution, cfg.Resolution)
	assert.Equal(t, "mako", cfg.Palette)
	assert.Equal(t, 1.0, cfg.Basis.L1)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	want := GetPreset("henon-escape")
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown system", func(c *Config) { c.System = "triple-pendulum" }},
		{"unknown integrator", func(c *Config) { c.Integrator = "euler" }},
		{"verlet on non-splittable system", func(c *Config) { c.System = "duffing" }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative gravity", func(c *Config) { c.Gravity = -1 }},
		{"resolution too small", func(c *Config) { c.Resolution = 4 }},
		{"resolution too large", func(c *Config) { c.Resolution = 100000 }},
		{"zero tile", func(c *Config) { c.Tile = 0 }},
		{"zero chunk iterations", func(c *Config) { c.IterationsPerChunk = 0 }},
		{"negative sampling cadence", func(c *Config) { c.ChunksBetweenSamples = -1 }},
		{"zero perturbations", func(c *Config) { c.Perturbations = 0 }},
		{"too many perturbations", func(c *Config) { c.Perturbations = 40 }},
		{"zero perturbation scale", func(c *Config) { c.PerturbationScale = 0 }},
		{"unknown perturbation mode", func(c *Config) { c.PerturbationMode = "uniform" }},
		{"zero threshold", func(c *Config) { c.Threshold = 0 }},
		{"unknown view", func(c *Config) { c.View = "spectral" }},
		{"unknown palette", func(c *Config) { c.Palette = "viridis" }},
		{"unknown value mode", func(c *Config) { c.ValueMode = "sqrt" }},
		{"periodic without period", func(c *Config) { c.ValueMode = "periodic"; c.Period = 0 }},
		{"unknown layer dimension", func(c *Config) { c.Layer.X.Dim = "theta3" }},
		{"same axis dimensions", func(c *Config) { c.Layer.Y.Dim = "theta1" }},
		{"layer dimension unused by system", func(c *Config) {
			c.System = "henon-heiles"
			c.Layer.X.Dim = "l1"
		}},
		{"non-finite range", func(c *Config) { c.Layer.X.Min = math.NaN() }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_PeriodicNeedsNoPeriodElsewhere(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ValueMode = "linear"
	cfg.Period = 0
	assert.NoError(t, cfg.Validate())
}

func TestWarnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolution = 500
	warns := cfg.Warnings()
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "power of two")

	cfg.Resolution = 512
	assert.Empty(t, cfg.Warnings())
}

func TestDivergeConfig_Mapping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PerturbationMode = "gaussian"
	cfg.Perturbations = 12
	cfg.Seed = 7

	dc := cfg.DivergeConfig()
	assert.Equal(t, diverge.OffsetGaussian, dc.Mode)
	assert.Equal(t, 12, dc.Samples)
	assert.Equal(t, int64(7), dc.Seed)
	assert.Equal(t, cfg.Dt, dc.Dt)
	assert.Equal(t, cfg.IterationsPerChunk, dc.ChunkIters)
}

func TestStack_FromConfig(t *testing.T) {
	cfg := DefaultConfig()
	stack, err := cfg.Stack()
	require.NoError(t, err)

	top := stack.Top()
	assert.Equal(t, dynamo.DimTheta1, top.XDim)
	assert.Equal(t, dynamo.DimTheta2, top.YDim)
	assert.Equal(t, cfg.Gravity, stack.Basis().G)

	// The center pixel of the default view is the rest state.
	b := stack.At(0.5, 0.5)
	assert.Equal(t, 0.0, b.Slots[dynamo.DimTheta1])
	assert.Equal(t, 0.0, b.Slots[dynamo.DimTheta2])
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	assert.Equal(t, []string{"double-pendulum", "duffing", "elastic-pendulum", "henon-heiles"}, reg.ListSystems())
	assert.Equal(t, []string{"rk4", "verlet"}, reg.ListIntegrators())

	sys, err := reg.System("double-pendulum")
	require.NoError(t, err)
	assert.Equal(t, 4, sys.StateDim())

	_, err = reg.System("lorenz")
	assert.Error(t, err)
	_, err = reg.Integrator("euler")
	assert.Error(t, err)

	// Factory must hand out independent instances for worker pools.
	factory, err := reg.IntegratorFactory("rk4")
	require.NoError(t, err)
	assert.NotSame(t, factory(), factory())
}
