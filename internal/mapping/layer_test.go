package mapping

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/chaoscope/internal/dynamo"
	"github.com/san-kum/chaoscope/internal/physics"
)

func TestRange_At(t *testing.T) {
	r := Range{Min: -2, Max: 6}

	assert.Equal(t, -2.0, r.At(0))
	assert.Equal(t, 6.0, r.At(1))
	assert.Equal(t, 2.0, r.At(0.5))

	flipped := Range{Min: 6, Max: -2}
	assert.Equal(t, 6.0, flipped.At(0))
	assert.Equal(t, -2.0, flipped.At(1))

	constant := Range{Min: 3, Max: 3}
	assert.Equal(t, 3.0, constant.At(0.7))
}

func TestLayer_Validate(t *testing.T) {
	tests := []struct {
		name  string
		layer Layer
		ok    bool
	}{
		{"valid", Layer{XDim: dynamo.DimTheta1, YDim: dynamo.DimTheta2, X: Range{-1, 1}, Y: Range{-1, 1}}, true},
		{"same dims", Layer{XDim: dynamo.DimM1, YDim: dynamo.DimM1, X: Range{0, 1}, Y: Range{0, 1}}, false},
		{"nan range", Layer{XDim: dynamo.DimTheta1, YDim: dynamo.DimTheta2, X: Range{math.NaN(), 1}, Y: Range{0, 1}}, false},
		{"inf range", Layer{XDim: dynamo.DimTheta1, YDim: dynamo.DimTheta2, X: Range{0, 1}, Y: Range{0, math.Inf(1)}}, false},
		{"degenerate ok", Layer{XDim: dynamo.DimOmega1, YDim: dynamo.DimOmega2, X: Range{2, 2}, Y: Range{-1, 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layer.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLayer_At_Absolute(t *testing.T) {
	l := Layer{
		XDim: dynamo.DimTheta1, YDim: dynamo.DimTheta2,
		X: Range{-math.Pi, math.Pi}, Y: Range{-math.Pi, math.Pi},
	}
	base := DefaultBasis()

	got := l.At(0.5, 0.5, base)
	assert.Zero(t, got.Slots[dynamo.DimTheta1])
	assert.Zero(t, got.Slots[dynamo.DimTheta2])

	got = l.At(0, 1, base)
	assert.Equal(t, -math.Pi, got.Slots[dynamo.DimTheta1])
	assert.Equal(t, math.Pi, got.Slots[dynamo.DimTheta2])

	// Unmapped slots ride through untouched.
	assert.Equal(t, 1.0, got.Slots[dynamo.DimL1])
	assert.Equal(t, 9.81, got.G)
}

func TestLayer_At_Delta(t *testing.T) {
	base := DefaultBasis()
	base.Slots[dynamo.DimOmega1] = 2.0

	l := Layer{
		XDim: dynamo.DimOmega1, YDim: dynamo.DimOmega2,
		X: Range{-0.5, 0.5}, Y: Range{-0.5, 0.5},
		Delta: true,
	}

	got := l.At(1, 0.5, base)
	assert.InDelta(t, 2.5, got.Slots[dynamo.DimOmega1], 1e-12)
	assert.InDelta(t, 0.0, got.Slots[dynamo.DimOmega2], 1e-12)
}

func TestLayer_At_ClampsParams(t *testing.T) {
	l := Layer{
		XDim: dynamo.DimM1, YDim: dynamo.DimL2,
		X: Range{-3, 3}, Y: Range{-3, 3},
	}
	base := DefaultBasis()

	got := l.At(0, 0, base)
	assert.Equal(t, dynamo.MinParam, got.Slots[dynamo.DimM1])
	assert.Equal(t, dynamo.MinParam, got.Slots[dynamo.DimL2])

	// Delta pushing a param below the floor clamps too.
	dl := Layer{XDim: dynamo.DimL1, YDim: dynamo.DimTheta1, X: Range{-10, -10}, Y: Range{0, 0}, Delta: true}
	got = dl.At(0.3, 0.9, base)
	assert.Equal(t, dynamo.MinParam, got.Slots[dynamo.DimL1])
}

func TestLayer_At_Total(t *testing.T) {
	// Every dimension pairing over the whole unit square stays finite.
	base := DefaultBasis()
	for xd := dynamo.Dimension(0); xd < dynamo.DimCount; xd++ {
		for yd := dynamo.Dimension(0); yd < dynamo.DimCount; yd++ {
			if xd == yd {
				continue
			}
			l := Layer{XDim: xd, YDim: yd, X: Range{-8, 8}, Y: Range{8, -8}}
			for u := 0.0; u <= 1.0; u += 0.25 {
				for v := 0.0; v <= 1.0; v += 0.25 {
					got := l.At(u, v, base)
					for d, val := range got.Slots {
						require.Falsef(t, math.IsNaN(val) || math.IsInf(val, 0),
							"non-finite slot %s for %s x %s at (%v,%v)", dynamo.Dimension(d), xd, yd, u, v)
					}
					for d := dynamo.DimL1; d <= dynamo.DimM2; d++ {
						require.GreaterOrEqual(t, got.Slots[d], dynamo.MinParam)
					}
				}
			}
		}
	}
}

func TestBasis_Realize(t *testing.T) {
	base := DefaultBasis()
	base.Slots[dynamo.DimTheta1] = 0.7
	base.Slots[dynamo.DimOmega2] = -1.2
	base.Slots[dynamo.DimM2] = 0.0 // below floor

	x, p := base.Realize(physics.NewDoublePendulum())
	require.Len(t, x, 4)
	assert.Equal(t, dynamo.State{0.7, 0, 0, -1.2}, x)
	assert.Equal(t, dynamo.MinParam, p.M2)
	assert.Equal(t, 9.81, p.G)
}

func TestBasis_Realize_SlotOrder(t *testing.T) {
	// The Duffing kernel routes theta1->x, omega1->v, theta2->phase.
	base := DefaultBasis()
	base.Slots[dynamo.DimTheta1] = 1.5
	base.Slots[dynamo.DimOmega1] = -0.25
	base.Slots[dynamo.DimTheta2] = 3.0

	x, _ := base.Realize(physics.NewDuffing())
	require.Len(t, x, 3)
	assert.Equal(t, dynamo.State{1.5, -0.25, 3.0}, x)
}

func TestPixelCenter_Locate(t *testing.T) {
	const res = 64
	for _, px := range []int{0, 1, 31, 62, 63} {
		for _, py := range []int{0, 17, 63} {
			u, v := PixelCenter(px, py, res)
			gx, gy := Locate(u, v, res)
			assert.Equal(t, px, gx)
			assert.Equal(t, py, gy)
		}
	}

	// Edges clamp instead of walking off the grid.
	px, py := Locate(1.0, -0.01, res)
	assert.Equal(t, res-1, px)
	assert.Equal(t, 0, py)
}
