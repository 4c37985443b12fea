package integrators

import (
	"github.com/san-kum/psbody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Euler is semi-implicit (symplectic) Euler: velocity first, then position
// with the new velocity. It needs one force evaluation per step.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(sys dynamo.System, cur, _ dynamo.State, dt float64) error {
	if err := accumulate(sys, cur, "current"); err != nil {
		return err
	}
	m := sys.Mass()
	for i := range cur {
		cur[i].Velocity = r2.Add(cur[i].Velocity, r2.Scale(dt/m, cur[i].Force))
		cur[i].Position = r2.Add(cur[i].Position, r2.Scale(dt, cur[i].Velocity))
	}
	return nil
}
