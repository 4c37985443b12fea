// Package physics implements the pressure soft body force model.
//
// A [PressureBody] owns the immutable ring topology (one spring per adjacent
// particle pair) and accumulates damped spring and pressure forces into a
// dynamo.State. It holds no particle state of its own beyond the initial
// configuration, so the same body serves both the current and the predicted
// arrays of a Heun step.
package physics
