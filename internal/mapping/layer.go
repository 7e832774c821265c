package mapping

import (
	"fmt"
	"math"

	"github.com/san-kum/chaoscope/internal/dynamo"
)

// Vector holds one value per mappable dimension, indexed by
// [dynamo.Dimension].
type Vector [dynamo.DimCount]float64

// Basis supplies the value of every dimension a layer leaves unmapped,
// plus gravity, which is configurable but never an axis.
type Basis struct {
	Slots Vector
	G     float64
}

// DefaultBasis is the double pendulum at rest with unit rods and bobs.
func DefaultBasis() Basis {
	var b Basis
	b.Slots[dynamo.DimL1] = 1
	b.Slots[dynamo.DimL2] = 1
	b.Slots[dynamo.DimM1] = 1
	b.Slots[dynamo.DimM2] = 1
	b.G = 9.81
	return b
}

// Realize builds the kernel inputs for sys from the basis slots. The
// returned params are clamped; the kernel never re-checks them.
func (b Basis) Realize(sys dynamo.System) (dynamo.State, dynamo.Params) {
	dims := sys.StateDims()
	x := make(dynamo.State, len(dims))
	for i, d := range dims {
		x[i] = b.Slots[d]
	}
	p := dynamo.Params{
		L1: b.Slots[dynamo.DimL1],
		L2: b.Slots[dynamo.DimL2],
		M1: b.Slots[dynamo.DimM1],
		M2: b.Slots[dynamo.DimM2],
		G:  b.G,
	}
	return x, p.Clamp()
}

// Range maps the unit interval linearly onto [Min, Max]. Min > Max is
// legal and flips the axis; Min == Max collapses it to a constant.
type Range struct {
	Min, Max float64
}

func (r Range) At(u float64) float64 {
	return r.Min + u*(r.Max-r.Min)
}

func (r Range) IsValid() bool {
	return !math.IsNaN(r.Min) && !math.IsInf(r.Min, 0) &&
		!math.IsNaN(r.Max) && !math.IsInf(r.Max, 0)
}

// Layer binds the two image axes to two distinct dimensions. In delta
// mode the mapped value is added to the basis value instead of
// replacing it, so a layer can explore an offset neighborhood of a
// pinned point.
type Layer struct {
	XDim, YDim dynamo.Dimension
	X, Y       Range
	Delta      bool
}

func (l Layer) Validate() error {
	if l.XDim >= dynamo.DimCount || l.YDim >= dynamo.DimCount {
		return fmt.Errorf("layer: %w", dynamo.ErrUnknownDimension)
	}
	if l.XDim == l.YDim {
		return fmt.Errorf("layer: both axes mapped to %s", l.XDim)
	}
	if !l.X.IsValid() || !l.Y.IsValid() {
		return fmt.Errorf("layer: non-finite range")
	}
	return nil
}

// At derives the basis for unit point (u, v). Total for finite inputs:
// out-of-range u and v extrapolate, lengths and masses are clamped
// after derivation, and no NaN is ever produced from a valid layer.
func (l Layer) At(u, v float64, base Basis) Basis {
	out := base
	if l.Delta {
		out.Slots[l.XDim] += l.X.At(u)
		out.Slots[l.YDim] += l.Y.At(v)
	} else {
		out.Slots[l.XDim] = l.X.At(u)
		out.Slots[l.YDim] = l.Y.At(v)
	}
	for d := dynamo.DimL1; d <= dynamo.DimM2; d++ {
		out.Slots[d] = math.Max(out.Slots[d], dynamo.MinParam)
	}
	return out
}
