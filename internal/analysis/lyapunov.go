package analysis

import (
	"math"

	"github.com/san-kum/chaoscope/internal/dynamo"
)

// LargestExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Two nearby trajectories run side by side; after every step the
// perturbed one is pulled back to distance d0 along the current
// separation direction, and the logged growth ratios average into
// the exponent.
func LargestExponent(
	sys dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	p dynamo.Params,
	dt, duration float64,
	d0 float64,
) float64 {
	if len(x0) == 0 || !(d0 > 0) || !(dt > 0) {
		return 0
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += d0

	t := 0.0
	sumLog := 0.0
	count := 0

	for t < duration {
		integ.Step(sys, x, p, t, dt, x)
		integ.Step(sys, xp, p, t, dt, xp)
		t += dt

		sep := 0.0
		for i := range x {
			diff := xp[i] - x[i]
			sep += diff * diff
		}
		sep = math.Sqrt(sep)

		if !x.IsValid() || !xp.IsValid() {
			break
		}
		if sep > 0 {
			sumLog += math.Log(sep / d0)
			count++

			scale := d0 / sep
			for i := range xp {
				xp[i] = x[i] + (xp[i]-x[i])*scale
			}
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * dt)
}
