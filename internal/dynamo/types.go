package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Params carries the physical constants a kernel reads. One struct serves
// every system; kernels ignore the fields they have no use for.
type Params struct {
	L1 float64
	L2 float64
	M1 float64
	M2 float64
	G  float64
}

// MinParam is the floor applied to lengths and masses after any
// derivation. Kernels divide by these values and assume the floor held.
const MinParam = 0.1

// Clamp returns p with lengths and masses raised to at least MinParam.
// Gravity is left alone.
func (p Params) Clamp() Params {
	p.L1 = math.Max(p.L1, MinParam)
	p.L2 = math.Max(p.L2, MinParam)
	p.M1 = math.Max(p.M1, MinParam)
	p.M2 = math.Max(p.M2, MinParam)
	return p
}

func (p Params) IsValid() bool {
	for _, v := range [...]float64{p.L1, p.L2, p.M1, p.M2, p.G} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is a dynamical-system kernel. Implementations are stateless:
// everything a derivative evaluation needs arrives through the arguments,
// so a single value may be shared across concurrent renders.
type System interface {
	Name() string
	StateDim() int

	// StateDims lists, in state order, the dimension slot feeding each
	// state coordinate. Its length equals StateDim.
	StateDims() []Dimension

	// ParamDims lists the parameter slots the kernel actually reads.
	ParamDims() []Dimension

	// Periodic reports whether state coordinate i is an angle, so that
	// comparisons must use CircDiff rather than raw subtraction.
	Periodic(i int) bool

	// Derive evaluates dX/dt at (x, t) into dst. Callers size dst to
	// StateDim; implementations must not retain x or dst.
	Derive(x State, p Params, t float64, dst State)
}

// Integrator advances a state by one fixed step. Implementations keep
// scratch buffers and are not safe for concurrent use; give each worker
// its own instance.
type Integrator interface {
	Name() string

	// Step advances x from t to t+dt into dst. dst is sized like x and
	// may be x itself.
	Step(sys System, x State, p Params, t, dt float64, dst State)
}

// Hamiltonian is implemented by systems with a conserved total energy.
type Hamiltonian interface {
	Energy(x State, p Params) float64
}

// Splittable is implemented by systems whose state orders positions
// before velocities, enabling symplectic stepping. Split returns the
// number of position coordinates.
type Splittable interface {
	Split() int
}

// Positioned is implemented by systems that project a state to a point
// in real space (the double pendulum reports its second bob).
type Positioned interface {
	Position(x State, p Params) (px, py float64)
}
