// Package dynamo provides the core data model for pressure soft body simulation.
//
// The package defines the shared types and interfaces the rest of the
// simulator is built from:
//
//   - [Particle], [Spring]: per-point and per-edge data of a closed ring
//   - [State]: one particle array (current or predicted)
//   - [System]: a force model that accumulates forces into a [State]
//   - [Integrator]: advances a [State] using a [System]
//   - [Host]: the outside world the core synchronizes with once per tick
//   - [Frame]: the positions, velocities and normals produced by a step
//
// # Example
//
//	body, _ := physics.NewPressureBody(16, 1.0, dynamo.DefaultParams())
//	s := sim.New(body, integrators.NewHeun())
//	frame, err := s.Step(pos, vel, 0.02, 10)
//
// # Thread Safety
//
// A State is owned by exactly one simulator. Independent simulators may be
// stepped concurrently; see sim.Ensemble.
package dynamo
