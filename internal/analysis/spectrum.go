package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/chaoscope/internal/dynamo"
)

// Series integrates a trajectory and samples one state coordinate
// every step.
func Series(
	sys dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	p dynamo.Params,
	idx int,
	dt float64,
	steps int,
) []float64 {
	if idx < 0 || idx >= len(x0) {
		return nil
	}

	x := x0.Clone()
	out := make([]float64, 0, steps)
	t := 0.0
	for i := 0; i < steps; i++ {
		integ.Step(sys, x, p, t, dt, x)
		t += dt
		if !x.IsValid() {
			break
		}
		out = append(out, x[idx])
	}
	return out
}

// PowerSpectrum returns the magnitude of each positive-frequency bin
// of the sampled series. Bin k corresponds to frequency k/(n*dt).
//
// A few dominant peaks mean periodic or quasi-periodic motion; a
// broad continuous spectrum is a signature of chaos.
func PowerSpectrum(samples []float64) []float64 {
	if len(samples) < 2 {
		return nil
	}

	spec := fft.FFTReal(samples)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}
