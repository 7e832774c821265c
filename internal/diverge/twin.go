package diverge

import "github.com/san-kum/chaoscope/internal/dynamo"

// Twin steps a reference and a single offset trajectory in lockstep and
// latches the step of first threshold passage. The latch is permanent:
// separation shrinking again later never clears it.
type Twin struct {
	A, B dynamo.State

	par       dynamo.Params
	threshold float64

	t          float64
	step       int
	sep        float64
	DivergedAt int
}

func NewTwin(a, b dynamo.State, p dynamo.Params, threshold float64) *Twin {
	return &Twin{
		A:          a.Clone(),
		B:          b.Clone(),
		par:        p,
		threshold:  threshold,
		DivergedAt: -1,
	}
}

// Step advances both trajectories by dt and updates the latch.
func (tw *Twin) Step(sys dynamo.System, integ dynamo.Integrator, dt float64) {
	integ.Step(sys, tw.A, tw.par, tw.t, dt, tw.A)
	integ.Step(sys, tw.B, tw.par, tw.t, dt, tw.B)
	tw.t += dt
	tw.step++

	tw.sep = dynamo.Separation(sys, tw.A, tw.B)
	if tw.DivergedAt < 0 && tw.sep > tw.threshold {
		tw.DivergedAt = tw.step
	}
}

// Diverged reports whether the threshold has ever been passed.
func (tw *Twin) Diverged() bool { return tw.DivergedAt >= 0 }

// Separation returns the circular-metric distance after the last step.
func (tw *Twin) Separation() float64 { return tw.sep }

// Steps returns how many steps have been applied.
func (tw *Twin) Steps() int { return tw.step }
