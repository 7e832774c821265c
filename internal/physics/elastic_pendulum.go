package physics

import (
	"math"

	"github.com/san-kum/chaoscope/internal/dynamo"
)

const DefaultStiffness = 40.0

// ElasticPendulum models a bob swinging on a massless radial spring.
// State is {theta, stretch, thetadot, stretchdot}: the swing angle from
// the downward vertical and the spring extension past its rest length
// (taken from Params.L1). Mass comes from Params.M1; stiffness is a
// kernel constant, not a map axis.
type ElasticPendulum struct {
	K float64
}

func NewElasticPendulum() *ElasticPendulum {
	return &ElasticPendulum{K: DefaultStiffness}
}

func (e *ElasticPendulum) Name() string  { return "elastic-pendulum" }
func (e *ElasticPendulum) StateDim() int { return 4 }

// StateDims routes the stretch through the theta2 slot and its rate
// through omega2, so both layer axes of a pendulum map stay meaningful.
func (e *ElasticPendulum) StateDims() []dynamo.Dimension {
	return []dynamo.Dimension{dynamo.DimTheta1, dynamo.DimTheta2, dynamo.DimOmega1, dynamo.DimOmega2}
}

func (e *ElasticPendulum) ParamDims() []dynamo.Dimension {
	return []dynamo.Dimension{dynamo.DimL1, dynamo.DimM1}
}

func (e *ElasticPendulum) Periodic(i int) bool { return i == 0 }

func (e *ElasticPendulum) Split() int { return 2 }

func (e *ElasticPendulum) Derive(x dynamo.State, p dynamo.Params, _ float64, dst dynamo.State) {
	theta, s, thetadot, sdot := x[0], x[1], x[2], x[3]
	r := p.L1 + s

	dst[0] = thetadot
	dst[1] = sdot
	dst[2] = (-p.G*math.Sin(theta) - 2*sdot*thetadot) / r
	dst[3] = r*thetadot*thetadot + p.G*math.Cos(theta) - (e.K/p.M1)*s
}

func (e *ElasticPendulum) Energy(x dynamo.State, p dynamo.Params) float64 {
	theta, s, thetadot, sdot := x[0], x[1], x[2], x[3]
	r := p.L1 + s

	ke := 0.5 * p.M1 * (sdot*sdot + r*r*thetadot*thetadot)
	pe := -p.M1*p.G*r*math.Cos(theta) + 0.5*e.K*s*s
	return ke + pe
}

func (e *ElasticPendulum) Position(x dynamo.State, p dynamo.Params) (px, py float64) {
	r := p.L1 + x[1]
	return r * math.Sin(x[0]), -r * math.Cos(x[0])
}
