package integrators

import (
	"github.com/san-kum/psbody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Verlet is velocity Verlet. Damping makes the force velocity dependent, so
// the second force sample uses a first-order velocity estimate.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) Step(sys dynamo.System, cur, scratch dynamo.State, dt float64) error {
	if err := accumulate(sys, cur, "current"); err != nil {
		return err
	}

	m := sys.Mass()
	halfDt2 := 0.5 * dt * dt
	for i := range cur {
		a := r2.Scale(1/m, cur[i].Force)
		scratch[i].Position = r2.Add(cur[i].Position, r2.Add(r2.Scale(dt, cur[i].Velocity), r2.Scale(halfDt2, a)))
		scratch[i].Velocity = r2.Add(cur[i].Velocity, r2.Scale(dt, a))
	}

	if err := accumulate(sys, scratch, "predicted"); err != nil {
		return err
	}

	halfDt := 0.5 * dt
	for i := range cur {
		avg := r2.Add(cur[i].Force, scratch[i].Force)
		cur[i].Velocity = r2.Add(cur[i].Velocity, r2.Scale(halfDt/m, avg))
		cur[i].Position = scratch[i].Position
	}
	return nil
}
