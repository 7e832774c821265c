package physics

import (
	"github.com/san-kum/chaoscope/internal/dynamo"
)

// HenonHeiles models a star orbiting in a galactic plane under a cubic
// potential. State is {x, y, px, py}, carried in the theta1/theta2/
// omega1/omega2 slots; no physical parameter applies, so layers may
// only drive the four state slots.
type HenonHeiles struct {
	Lambda float64
}

func NewHenonHeiles() *HenonHeiles {
	return &HenonHeiles{Lambda: 1.0}
}

func (h *HenonHeiles) Name() string  { return "henon-heiles" }
func (h *HenonHeiles) StateDim() int { return 4 }

func (h *HenonHeiles) StateDims() []dynamo.Dimension {
	return []dynamo.Dimension{dynamo.DimTheta1, dynamo.DimTheta2, dynamo.DimOmega1, dynamo.DimOmega2}
}

func (h *HenonHeiles) ParamDims() []dynamo.Dimension { return nil }

func (h *HenonHeiles) Periodic(i int) bool { return false }

func (h *HenonHeiles) Split() int { return 2 }

func (h *HenonHeiles) Derive(x dynamo.State, _ dynamo.Params, _ float64, dst dynamo.State) {
	px, py := x[2], x[3]
	qx, qy := x[0], x[1]

	dst[0] = px
	dst[1] = py
	dst[2] = -qx - 2*h.Lambda*qx*qy
	dst[3] = -qy - h.Lambda*(qx*qx-qy*qy)
}

func (h *HenonHeiles) Energy(x dynamo.State, _ dynamo.Params) float64 {
	qx, qy, px, py := x[0], x[1], x[2], x[3]
	return 0.5*(px*px+py*py) +
		0.5*(qx*qx+qy*qy) +
		h.Lambda*(qx*qx*qy-qy*qy*qy/3)
}

func (h *HenonHeiles) Position(x dynamo.State, _ dynamo.Params) (px, py float64) {
	return x[0], x[1]
}
