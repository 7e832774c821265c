package physics

import (
	"math"

	"github.com/san-kum/chaoscope/internal/dynamo"
)

// DoublePendulum models two rigid pendula joined end to end, angles
// measured from the downward vertical. Both bobs are point masses and
// the rods are massless.
type DoublePendulum struct{}

func NewDoublePendulum() *DoublePendulum { return &DoublePendulum{} }

func (d *DoublePendulum) Name() string  { return "double-pendulum" }
func (d *DoublePendulum) StateDim() int { return 4 }

func (d *DoublePendulum) StateDims() []dynamo.Dimension {
	return []dynamo.Dimension{dynamo.DimTheta1, dynamo.DimTheta2, dynamo.DimOmega1, dynamo.DimOmega2}
}

func (d *DoublePendulum) ParamDims() []dynamo.Dimension {
	return []dynamo.Dimension{dynamo.DimL1, dynamo.DimL2, dynamo.DimM1, dynamo.DimM2}
}

func (d *DoublePendulum) Periodic(i int) bool { return i < 2 }

// Split reports two position coordinates ahead of two velocities.
func (d *DoublePendulum) Split() int { return 2 }

func (d *DoublePendulum) Derive(x dynamo.State, p dynamo.Params, _ float64, dst dynamo.State) {
	theta1, theta2, omega1, omega2 := x[0], x[1], x[2], x[3]

	delta := theta1 - theta2
	sinD, cosD := math.Sin(delta), math.Cos(delta)
	m := p.M1 + p.M2
	den := p.M1 + p.M2*sinD*sinD

	alpha1 := (-p.M2*p.L1*omega1*omega1*sinD*cosD -
		p.M2*p.L2*omega2*omega2*sinD -
		m*p.G*math.Sin(theta1) +
		p.M2*p.G*math.Sin(theta2)*cosD) / (p.L1 * den)

	alpha2 := (p.M2*p.L2*omega2*omega2*sinD*cosD +
		m*p.L1*omega1*omega1*sinD +
		m*p.G*math.Sin(theta1)*cosD -
		m*p.G*math.Sin(theta2)) / (p.L2 * den)

	dst[0] = omega1
	dst[1] = omega2
	dst[2] = alpha1
	dst[3] = alpha2
}

func (d *DoublePendulum) Energy(x dynamo.State, p dynamo.Params) float64 {
	theta1, theta2, omega1, omega2 := x[0], x[1], x[2], x[3]

	v1sq := p.L1 * p.L1 * omega1 * omega1
	v2sq := v1sq + p.L2*p.L2*omega2*omega2 +
		2*p.L1*p.L2*omega1*omega2*math.Cos(theta1-theta2)
	ke := 0.5*p.M1*v1sq + 0.5*p.M2*v2sq

	y1 := -p.L1 * math.Cos(theta1)
	y2 := y1 - p.L2*math.Cos(theta2)
	pe := p.M1*p.G*y1 + p.M2*p.G*y2

	return ke + pe
}

// Position reports the second bob in the vertical plane, x right, y up.
func (d *DoublePendulum) Position(x dynamo.State, p dynamo.Params) (px, py float64) {
	px = p.L1*math.Sin(x[0]) + p.L2*math.Sin(x[1])
	py = -p.L1*math.Cos(x[0]) - p.L2*math.Cos(x[1])
	return px, py
}
