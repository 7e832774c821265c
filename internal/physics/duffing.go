package physics

import (
	"math"

	"github.com/san-kum/chaoscope/internal/dynamo"
)

// Duffing models a forced bistable oscillator. The drive phase rides
// along as a third state coordinate (phi' = Omega), keeping the system
// autonomous so every integrator and snapshot treats it uniformly.
// Displacement maps through the theta1 slot, velocity through omega1,
// initial drive phase through theta2.
type Duffing struct {
	Alpha, Beta, Delta, Gamma, Omega float64
}

func NewDuffing() *Duffing {
	return &Duffing{-1.0, 1.0, 0.3, 0.5, 1.2}
}

func (d *Duffing) Name() string  { return "duffing" }
func (d *Duffing) StateDim() int { return 3 }

func (d *Duffing) StateDims() []dynamo.Dimension {
	return []dynamo.Dimension{dynamo.DimTheta1, dynamo.DimOmega1, dynamo.DimTheta2}
}

func (d *Duffing) ParamDims() []dynamo.Dimension { return nil }

func (d *Duffing) Periodic(i int) bool { return i == 2 }

func (d *Duffing) Derive(x dynamo.State, _ dynamo.Params, _ float64, dst dynamo.State) {
	pos, v, phi := x[0], x[1], x[2]

	dst[0] = v
	dst[1] = -d.Delta*v - d.Alpha*pos - d.Beta*pos*pos*pos + d.Gamma*math.Cos(phi)
	dst[2] = d.Omega
}

func (d *Duffing) Position(x dynamo.State, _ dynamo.Params) (px, py float64) {
	return x[0], x[1]
}
