package integrators

import (
	"github.com/san-kum/psbody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Heun is the two-stage predictor-corrector: a forward Euler prediction
// supplies a second force sample and the correction averages both.
type Heun struct{}

func NewHeun() *Heun {
	return &Heun{}
}

func (h *Heun) Name() string { return "heun" }

// Step runs Accumulate(cur), Predict, Accumulate(pred), Correct.
func (h *Heun) Step(sys dynamo.System, cur, pred dynamo.State, dt float64) error {
	if err := accumulate(sys, cur, "current"); err != nil {
		return err
	}
	Predict(cur, pred, sys.Mass(), dt)

	if err := accumulate(sys, pred, "predicted"); err != nil {
		return err
	}
	Correct(cur, pred, sys.Mass(), dt)
	return nil
}

// Predict writes a forward Euler estimate of cur into pred.
// cur must hold forces for its current positions and velocities.
func Predict(cur, pred dynamo.State, mass, dt float64) {
	for i := range cur {
		pred[i].Velocity = r2.Add(cur[i].Velocity, r2.Scale(dt/mass, cur[i].Force))
		pred[i].Position = r2.Add(cur[i].Position, r2.Scale(dt, pred[i].Velocity))
	}
}

// Correct advances cur in place using the average of the forces held by
// cur and pred.
func Correct(cur, pred dynamo.State, mass, dt float64) {
	halfDt := 0.5 * dt
	for i := range cur {
		avg := r2.Add(cur[i].Force, pred[i].Force)
		cur[i].Velocity = r2.Add(cur[i].Velocity, r2.Scale(halfDt/mass, avg))
		cur[i].Position = r2.Add(cur[i].Position, r2.Scale(dt, cur[i].Velocity))
	}
}

func accumulate(sys dynamo.System, s dynamo.State, stage string) error {
	v, err := sys.Accumulate(s)
	if err != nil {
		return &dynamo.StepError{Stage: stage, Volume: v, Wrapped: err}
	}
	return nil
}
