package integrators

import "github.com/san-kum/chaoscope/internal/dynamo"

// Verlet is the velocity form: kick, drift, kick. It expects states
// ordered positions-then-velocities; callers pair it only with systems
// implementing [dynamo.Splittable] (config validation enforces this).
type Verlet struct {
	acc     dynamo.State
	vh      dynamo.State
	scratch dynamo.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) ensureScratch(n int) {
	if len(v.scratch) != n {
		v.acc = make(dynamo.State, n)
		v.vh = make(dynamo.State, n)
		v.scratch = make(dynamo.State, n)
	}
}

func (v *Verlet) Step(sys dynamo.System, x dynamo.State, p dynamo.Params, t, dt float64, dst dynamo.State) {
	n := len(x)
	half := n / 2
	if sp, ok := sys.(dynamo.Splittable); ok {
		half = sp.Split()
	}
	v.ensureScratch(n)

	sys.Derive(x, p, t, v.acc)

	halfDt := 0.5 * dt
	for i := 0; i < half; i++ {
		v.vh[i] = x[half+i] + halfDt*v.acc[half+i]
	}

	for i := 0; i < half; i++ {
		dst[i] = x[i] + dt*v.vh[i]
	}

	// Accelerations at the new positions, with half-stepped velocities.
	for i := 0; i < half; i++ {
		v.scratch[i] = dst[i]
		v.scratch[half+i] = v.vh[i]
	}
	sys.Derive(v.scratch, p, t+dt, v.acc)

	for i := 0; i < half; i++ {
		dst[half+i] = v.vh[i] + halfDt*v.acc[half+i]
	}
}
