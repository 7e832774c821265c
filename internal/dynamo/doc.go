// Package dynamo provides phase-space primitives for chaos-map rendering.
//
// The package defines the vocabulary every execution context shares:
//
//   - [State]: phase-space coordinate vector
//   - [Params]: physical constants a kernel reads (clamped via [Params.Clamp])
//   - [Dimension]: the eight quantities an image axis can drive
//   - [System]: dynamical-system kernel interface (dX/dt = f(X, p, t))
//   - [CircDiff]: shortest signed angular difference, in (-pi, pi]
//
// Optional capabilities are discovered by type assertion: [Hamiltonian]
// for systems with conserved energy, [Splittable] for symplectic-safe
// position/velocity splits, [Positioned] for real-space projection.
//
// # Thread Safety
//
// Systems are stateless and may be shared freely; State values are not
// synchronized and belong to one goroutine at a time.
package dynamo
