package config

import "sort"

// Presets are complete ready-to-render configurations. Each starts
// from DefaultConfig, so every preset carries sane values for the
// fields it does not mention.
var presets = map[string]func(*Config){
	// The classic chaos map: both release angles swept over a full
	// turn, stretching rate accumulated over time.
	"classic": func(*Config) {},

	// Time until the twin trajectories tear apart, the flip-fractal
	// look. Runs RK4 so the sharp tongues are not energy-smoothed.
	"flip-time": func(c *Config) {
		c.Integrator = "rk4"
		c.View = "divtime"
		c.Threshold = 3.0
		c.Palette = "ember"
	},

	// A close-up of a chaotic tongue boundary near the upright state.
	"zoomed-tongue": func(c *Config) {
		c.View = "instant"
		c.Palette = "glacier"
		c.Layer.X = AxisConfig{Dim: "theta1", Min: 1.85, Max: 2.25}
		c.Layer.Y = AxisConfig{Dim: "theta2", Min: 2.35, Max: 2.75}
	},

	// Which well a driven Duffing oscillator settles into, as a
	// final-position map over launch conditions.
	"duffing-basins": func(c *Config) {
		c.System = "duffing"
		c.Integrator = "rk4"
		c.Dt = 0.01
		c.View = "position"
		c.Palette = "rocket"
		c.Layer.X = AxisConfig{Dim: "theta1", Min: -1.6, Max: 1.6}
		c.Layer.Y = AxisConfig{Dim: "omega1", Min: -1.6, Max: 1.6}
		c.Basis = BasisConfig{L1: 1, L2: 1, M1: 1, M2: 1}
	},

	// Escape times from the Henon-Heiles potential over the classic
	// section axes. Pixels below the escape energy never latch.
	"henon-escape": func(c *Config) {
		c.System = "henon-heiles"
		c.Dt = 0.004
		c.View = "divtime"
		c.Threshold = 1.0
		c.Layer.X = AxisConfig{Dim: "theta2", Min: -0.5, Max: 0.7}
		c.Layer.Y = AxisConfig{Dim: "omega2", Min: -0.5, Max: 0.5}
		c.Basis = BasisConfig{Omega1: 0.2, L1: 1, L2: 1, M1: 1, M2: 1}
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	fn(cfg)
	return cfg
}

// ListPresets returns all preset names, sorted.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
