// Package colormap turns scalar field values into colors: named
// palettes built from control points blended in CIE-Lab, value
// mapping modes, and percentile auto-ranging.
package colormap

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const lutSize = 256

// Palette is a named gradient sampled into a fixed lookup table.
// Control points are blended in Lab space so the ramps stay
// perceptually even.
type Palette struct {
	Name string
	lut  [lutSize]color.RGBA
}

// Available palettes
var (
	PaletteMako = newPalette("mako",
		[]float64{0, 0.25, 0.5, 0.75, 1},
		[]string{"#0c0304", "#3d3266", "#357ba2", "#4cc3ad", "#ddf4e4"})

	PaletteRocket = newPalette("rocket",
		[]float64{0, 0.25, 0.5, 0.75, 1},
		[]string{"#03051a", "#5b1e51", "#cb1e4e", "#f3845d", "#fae8d8"})

	PaletteGlacier = newPalette("glacier",
		[]float64{0, 0.15, 0.45, 0.75, 1},
		[]string{"#000415", "#000951", "#1f2ff0", "#319cfd", "#affef6"})

	PaletteEmber = newPalette("ember",
		[]float64{0, 0.3, 0.55, 0.8, 1},
		[]string{"#140202", "#781a07", "#d65d0e", "#fabd2f", "#fff3c7"})

	Palettes = []*Palette{PaletteMako, PaletteRocket, PaletteGlacier, PaletteEmber}
)

// ParsePalette returns the palette with the given name.
func ParsePalette(name string) (*Palette, error) {
	for _, p := range Palettes {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("colormap: unknown palette %q (have %v)", name, PaletteNames())
}

// PaletteNames returns the list of available palette names.
func PaletteNames() []string {
	names := make([]string, len(Palettes))
	for i, p := range Palettes {
		names[i] = p.Name
	}
	return names
}

// At returns the color at position t in [0, 1].
func (p *Palette) At(t float64) color.RGBA {
	if !(t > 0) {
		return p.lut[0]
	}
	if t >= 1 {
		return p.lut[lutSize-1]
	}
	return p.lut[int(t*float64(lutSize-1)+0.5)]
}

func newPalette(name string, pos []float64, hexes []string) *Palette {
	if len(pos) != len(hexes) || len(pos) < 2 {
		panic("colormap: malformed palette definition " + name)
	}
	cols := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic("colormap: bad control point in " + name + ": " + err.Error())
		}
		cols[i] = c
	}

	p := &Palette{Name: name}
	seg := 0
	for i := range p.lut {
		t := float64(i) / float64(lutSize-1)
		for seg < len(pos)-2 && t > pos[seg+1] {
			seg++
		}
		frac := (t - pos[seg]) / (pos[seg+1] - pos[seg])
		c := cols[seg].BlendLab(cols[seg+1], frac).Clamped()
		r, g, b := c.RGB255()
		p.lut[i] = color.RGBA{R: r, G: g, B: b, A: 0xff}
	}
	return p
}
