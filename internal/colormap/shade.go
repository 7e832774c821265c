package colormap

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/chaoscope/internal/diverge"
)

// Mode selects how a raw field value is transformed before it is
// normalized into the palette range.
type Mode uint8

const (
	// ModeLinear maps values directly.
	ModeLinear Mode = iota
	// ModeLog maps log10(max(v, 1e-6)), compressing heavy tails.
	ModeLog
	// ModePeriodic wraps values modulo Period. The display range is
	// ignored; one period spans the whole palette.
	ModePeriodic
)

const logFloor = 1e-6

func (m Mode) String() string {
	switch m {
	case ModeLinear:
		return "linear"
	case ModeLog:
		return "log"
	case ModePeriodic:
		return "periodic"
	}
	return "unknown"
}

// ParseMode returns the value mapping mode with the given name.
func ParseMode(name string) (Mode, error) {
	for _, m := range []Mode{ModeLinear, ModeLog, ModePeriodic} {
		if m.String() == name {
			return m, nil
		}
	}
	return ModeLinear, fmt.Errorf("colormap: unknown value mode %q", name)
}

// Shader maps field values to colors. It is a pure value: changing
// the display range or palette and re-shading never touches the
// underlying field.
type Shader struct {
	Palette *Palette
	Mode    Mode
	Period  float64
	Lo, Hi  float64
}

// Shade returns the color for a single field value. Values outside
// [Lo, Hi] clamp to the palette ends; NaN shades as the low end.
func (s Shader) Shade(v float64) color.RGBA {
	return s.Palette.At(s.normalize(v))
}

func (s Shader) normalize(v float64) float64 {
	switch s.Mode {
	case ModePeriodic:
		if s.Period <= 0 {
			return 0
		}
		t := math.Mod(v, s.Period)
		if t < 0 {
			t += s.Period
		}
		return t / s.Period
	case ModeLog:
		lo := math.Log10(math.Max(s.Lo, logFloor))
		hi := math.Log10(math.Max(s.Hi, logFloor))
		return (math.Log10(math.Max(v, logFloor)) - lo) / (hi - lo)
	default:
		return (v - s.Lo) / (s.Hi - s.Lo)
	}
}

// Image shades a field's display channel into an RGBA image. Field
// row 0 is the bottom of the view, so rows are flipped into image
// coordinates here.
func (s Shader) Image(f *diverge.Field) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Res, f.Res))
	for py := 0; py < f.Res; py++ {
		for px := 0; px < f.Res; px++ {
			img.SetRGBA(px, f.Res-1-py, s.Shade(float64(f.Value(px, py, 0))))
		}
	}
	return img
}

// AutoRange picks a display range from the 2nd and 98th percentiles
// of the field's display channel, sampled at every 8th pixel so large
// fields stay cheap. Returns (0, 1) when nothing finite is sampled.
func AutoRange(f *diverge.Field) (lo, hi float64) {
	n := f.Res * f.Res
	vals := make([]float64, 0, n/8+1)
	for i := 0; i < n; i += 8 {
		v := float64(f.Value(i%f.Res, i/f.Res, 0))
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		vals = append(vals, v)
	}
	if len(vals) == 0 {
		return 0, 1
	}
	sort.Float64s(vals)
	lo = stat.Quantile(0.02, stat.Empirical, vals, nil)
	hi = stat.Quantile(0.98, stat.Empirical, vals, nil)
	return lo, hi
}
