// Package analysis provides chaos characterization tools that run
// outside the tiled renderer.
//
//   - [LargestExponent]: largest Lyapunov exponent via trajectory separation
//   - [Reference]: sequential single-cell and whole-field evaluation
//   - [Series]: one state coordinate sampled along a trajectory
//   - [PowerSpectrum]: frequency content of a sampled coordinate
//   - [HistogramDivergence]: distribution of divergence onset times
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda := analysis.LargestExponent(sys, integ, x0, p, dt, duration, 1e-8)
//	if lambda > 0 {
//	    // System is chaotic
//	}
package analysis
