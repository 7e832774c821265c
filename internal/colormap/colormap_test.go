package colormap

import (
	"math"
	"testing"

	"github.com/san-kum/chaoscope/internal/diverge"
)

func TestParsePalette(t *testing.T) {
	for _, name := range PaletteNames() {
		p, err := ParsePalette(name)
		if err != nil {
			t.Fatalf("ParsePalette(%q): %v", name, err)
		}
		if p.Name != name {
			t.Errorf("ParsePalette(%q).Name = %q", name, p.Name)
		}
	}
	if _, err := ParsePalette("viridis"); err == nil {
		t.Error("expected error for unknown palette")
	}
}

func TestPalette_Endpoints(t *testing.T) {
	// mako runs dark to light, so luminance must grow along the ramp.
	lo := PaletteMako.At(0)
	hi := PaletteMako.At(1)
	sum := func(c [4]uint8) int { return int(c[0]) + int(c[1]) + int(c[2]) }
	if sum([4]uint8{lo.R, lo.G, lo.B}) >= sum([4]uint8{hi.R, hi.G, hi.B}) {
		t.Errorf("mako endpoints not dark-to-light: %v -> %v", lo, hi)
	}

	mid := PaletteMako.At(0.5)
	if mid == lo || mid == hi {
		t.Error("midpoint should differ from both endpoints")
	}
}

func TestPalette_AtClamps(t *testing.T) {
	p := PaletteRocket
	if p.At(-3) != p.At(0) {
		t.Error("negative t should clamp to low end")
	}
	if p.At(7) != p.At(1) {
		t.Error("t > 1 should clamp to high end")
	}
	if p.At(math.NaN()) != p.At(0) {
		t.Error("NaN should shade as the low end")
	}
}

func TestShader_Linear(t *testing.T) {
	s := Shader{Palette: PaletteMako, Mode: ModeLinear, Lo: 2, Hi: 4}
	if s.Shade(2) != PaletteMako.At(0) {
		t.Error("Lo should shade as palette start")
	}
	if s.Shade(4) != PaletteMako.At(1) {
		t.Error("Hi should shade as palette end")
	}
	if s.Shade(3) != PaletteMako.At(0.5) {
		t.Error("midpoint mismatch")
	}
	if s.Shade(-100) != PaletteMako.At(0) || s.Shade(100) != PaletteMako.At(1) {
		t.Error("out-of-range values should clamp")
	}
}

func TestShader_DegenerateRange(t *testing.T) {
	s := Shader{Palette: PaletteMako, Mode: ModeLinear, Lo: 1, Hi: 1}
	if s.Shade(1) != PaletteMako.At(0) {
		t.Error("degenerate range should not panic and shades low")
	}
}

func TestShader_Log(t *testing.T) {
	s := Shader{Palette: PaletteEmber, Mode: ModeLog, Lo: 1e-4, Hi: 1}
	// Geometric midpoint of the range lands mid-palette.
	if got := s.normalize(1e-2); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("normalize(1e-2) = %v, want 0.5", got)
	}
	if s.Shade(0) != PaletteEmber.At(0) {
		t.Error("non-positive values floor to the low end")
	}
}

func TestShader_PeriodicWraps(t *testing.T) {
	s := Shader{Palette: PaletteGlacier, Mode: ModePeriodic, Period: 2}
	if s.Shade(0.5) != s.Shade(2.5) {
		t.Error("values one period apart should shade identically")
	}
	if s.Shade(-0.5) != s.Shade(1.5) {
		t.Error("negative values should wrap into the period")
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeLinear, ModeLog, ModePeriodic} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("sqrt"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestAutoRange(t *testing.T) {
	f := diverge.NewField(64)
	for py := 0; py < 64; py++ {
		for px := 0; px < 64; px++ {
			f.Set(px, py, [4]float32{float32(py*64 + px), 0, 0, 1})
		}
	}

	lo, hi := AutoRange(f)
	if lo >= hi {
		t.Fatalf("lo %v >= hi %v", lo, hi)
	}
	// Percentiles of a uniform ramp over [0, 4095].
	if lo < 0 || lo > 4095*0.05 {
		t.Errorf("lo = %v, want near 2nd percentile", lo)
	}
	if hi < 4095*0.95 || hi > 4095 {
		t.Errorf("hi = %v, want near 98th percentile", hi)
	}
}

func TestAutoRange_Empty(t *testing.T) {
	f := diverge.NewField(8)
	for py := 0; py < 8; py++ {
		for px := 0; px < 8; px++ {
			f.Set(px, py, [4]float32{float32(math.Inf(1)), 0, 0, 0})
		}
	}
	lo, hi := AutoRange(f)
	if lo != 0 || hi != 1 {
		t.Errorf("AutoRange of all-Inf field = (%v, %v), want (0, 1)", lo, hi)
	}
}

func TestShader_Image(t *testing.T) {
	f := diverge.NewField(4)
	// One hot pixel at field (0, 0), the bottom-left corner.
	f.Set(0, 0, [4]float32{1, 0, 0, 1})

	s := Shader{Palette: PaletteMako, Mode: ModeLinear, Lo: 0, Hi: 1}
	img := s.Image(f)

	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
		t.Fatalf("image bounds %v", img.Bounds())
	}
	// Rows flip: field row 0 becomes the last image row.
	if img.RGBAAt(0, 3) != PaletteMako.At(1) {
		t.Error("hot field pixel should land at image bottom-left")
	}
	if img.RGBAAt(0, 0) != PaletteMako.At(0) {
		t.Error("cold field pixel should shade as palette start")
	}
}
