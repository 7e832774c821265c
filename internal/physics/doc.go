// Package physics provides the dynamical-system kernels that chaos maps
// are rendered from.
//
// Each kernel implements [dynamo.System], defining the differential
// equations governing the system's evolution:
//
//   - [DoublePendulum]: two coupled rigid pendula, the canonical map subject
//   - [ElasticPendulum]: pendulum on a radial spring
//   - [HenonHeiles]: star orbit in a cubic galactic potential
//   - [Duffing]: forced bistable oscillator, drive phase carried in state
//
// Kernels are pure: parameters arrive per call through [dynamo.Params],
// already clamped upstream, and kernels never validate them. The same
// Derive is the single source of truth for tiled renders, incremental
// sessions, probes, and tests.
//
// Conservative systems also implement [dynamo.Hamiltonian]:
//
//	sys := physics.NewDoublePendulum()
//	if h, ok := sys.(dynamo.Hamiltonian); ok {
//	    drift := h.Energy(x1, p) - h.Energy(x0, p)
//	}
package physics
