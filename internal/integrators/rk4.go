package integrators

import (
	"github.com/san-kum/psbody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

var rk4Stages = [4]string{"rk4 k1", "rk4 k2", "rk4 k3", "rk4 k4"}

// RK4 is the classic fourth-order Runge-Kutta on (position, velocity).
type RK4 struct {
	kx, kv [4][]dynamo.Vec2
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) ensureScratch(n int) {
	if len(r.kx[0]) != n {
		for s := 0; s < 4; s++ {
			r.kx[s] = make([]dynamo.Vec2, n)
			r.kv[s] = make([]dynamo.Vec2, n)
		}
	}
}

func (r *RK4) Step(sys dynamo.System, cur, scratch dynamo.State, dt float64) error {
	r.ensureScratch(len(cur))
	m := sys.Mass()

	if err := accumulate(sys, cur, rk4Stages[0]); err != nil {
		return err
	}
	for i := range cur {
		r.kx[0][i] = cur[i].Velocity
		r.kv[0][i] = r2.Scale(1/m, cur[i].Force)
	}

	offsets := [3]float64{0.5 * dt, 0.5 * dt, dt}
	for s := 1; s < 4; s++ {
		h := offsets[s-1]
		for i := range cur {
			scratch[i].Position = r2.Add(cur[i].Position, r2.Scale(h, r.kx[s-1][i]))
			scratch[i].Velocity = r2.Add(cur[i].Velocity, r2.Scale(h, r.kv[s-1][i]))
		}
		if err := accumulate(sys, scratch, rk4Stages[s]); err != nil {
			return err
		}
		for i := range scratch {
			r.kx[s][i] = scratch[i].Velocity
			r.kv[s][i] = r2.Scale(1/m, scratch[i].Force)
		}
	}

	dt6 := dt / 6.0
	for i := range cur {
		dx := r2.Add(r2.Add(r.kx[0][i], r2.Scale(2, r2.Add(r.kx[1][i], r.kx[2][i]))), r.kx[3][i])
		dv := r2.Add(r2.Add(r.kv[0][i], r2.Scale(2, r2.Add(r.kv[1][i], r.kv[2][i]))), r.kv[3][i])
		cur[i].Position = r2.Add(cur[i].Position, r2.Scale(dt6, dx))
		cur[i].Velocity = r2.Add(cur[i].Velocity, r2.Scale(dt6, dv))
	}
	return nil
}
