package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/psbody/internal/dynamo"
)

// anchored ties every particle to the origin with a unit spring, giving
// x(t) = x0*cos(t) for unit mass.
type anchored struct {
	n     int
	k     float64
	fail  bool
	calls int
}

func (a *anchored) Accumulate(s dynamo.State) (float64, error) {
	a.calls++
	if a.fail {
		return 0, dynamo.ErrDegenerateVolume
	}
	for i := range s {
		s[i].Force = dynamo.Vec2{X: -a.k * s[i].Position.X, Y: -a.k * s[i].Position.Y}
	}
	return 1, nil
}

func (a *anchored) RefreshNormals(dynamo.State) {}
func (a *anchored) Volume(dynamo.State) float64 { return 1 }
func (a *anchored) Mass() float64               { return 1 }
func (a *anchored) Len() int                    { return a.n }
func (a *anchored) InitialState() dynamo.State {
	s := make(dynamo.State, a.n)
	for i := range s {
		s[i].Position = dynamo.Vec2{X: 1, Y: float64(i)}
	}
	return s
}

func run(integ dynamo.Integrator, sys dynamo.System, steps int, dt float64) dynamo.State {
	cur := sys.InitialState()
	scratch := cur.Clone()
	for i := 0; i < steps; i++ {
		if err := integ.Step(sys, cur, scratch, dt); err != nil {
			panic(err)
		}
	}
	return cur
}

func TestIntegratorAccuracy(t *testing.T) {
	const (
		dt    = 0.01
		steps = 1000
	)
	tests := []struct {
		integ dynamo.Integrator
		tol   float64
	}{
		{NewHeun(), 5e-2},
		{NewEuler(), 5e-2},
		{NewVerlet(), 1e-3},
		{NewRK4(), 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.integ.Name(), func(t *testing.T) {
			sys := &anchored{n: 2, k: 1}
			x := run(tt.integ, sys, steps, dt)

			tEnd := float64(steps) * dt
			for i := range x {
				wantX := math.Cos(tEnd)
				wantY := float64(i) * math.Cos(tEnd)
				if math.Abs(x[i].Position.X-wantX) > tt.tol || math.Abs(x[i].Position.Y-wantY) > tt.tol {
					t.Errorf("particle %d: got %v, want (%.6f, %.6f)", i, x[i].Position, wantX, wantY)
				}
			}
			if !x.IsValid() {
				t.Error("integrator produced invalid state")
			}
		})
	}
}

func TestPredict(t *testing.T) {
	cur := dynamo.State{{
		Position: dynamo.Vec2{X: 1, Y: 2},
		Velocity: dynamo.Vec2{X: 0.5, Y: -1},
		Force:    dynamo.Vec2{X: 4, Y: 2},
	}}
	pred := make(dynamo.State, 1)

	Predict(cur, pred, 2, 0.1)

	// v' = v + F/m*dt, x' = x + v'*dt
	if math.Abs(pred[0].Velocity.X-0.7) > 1e-12 || math.Abs(pred[0].Velocity.Y+0.9) > 1e-12 {
		t.Errorf("predicted velocity = %v, want (0.7, -0.9)", pred[0].Velocity)
	}
	if math.Abs(pred[0].Position.X-1.07) > 1e-12 || math.Abs(pred[0].Position.Y-1.91) > 1e-12 {
		t.Errorf("predicted position = %v, want (1.07, 1.91)", pred[0].Position)
	}
	if cur[0].Position.X != 1 || cur[0].Velocity.X != 0.5 {
		t.Error("Predict must not modify the current state")
	}
}

func TestCorrect(t *testing.T) {
	cur := dynamo.State{{
		Position: dynamo.Vec2{X: 1, Y: 2},
		Velocity: dynamo.Vec2{X: 0.5, Y: -1},
		Force:    dynamo.Vec2{X: 4, Y: 2},
	}}
	pred := dynamo.State{{Force: dynamo.Vec2{X: 2, Y: -2}}}

	Correct(cur, pred, 2, 0.1)

	// v += dt/2 * (F + Fp)/m = (0.5 + 0.15, -1 + 0)
	if math.Abs(cur[0].Velocity.X-0.65) > 1e-12 || math.Abs(cur[0].Velocity.Y+1) > 1e-12 {
		t.Errorf("corrected velocity = %v, want (0.65, -1)", cur[0].Velocity)
	}
	if math.Abs(cur[0].Position.X-1.065) > 1e-12 || math.Abs(cur[0].Position.Y-1.9) > 1e-12 {
		t.Errorf("corrected position = %v, want (1.065, 1.9)", cur[0].Position)
	}
}

func TestHeun_TwoForceSamples(t *testing.T) {
	sys := &anchored{n: 3, k: 1}
	cur := sys.InitialState()

	if err := NewHeun().Step(sys, cur, cur.Clone(), 0.01); err != nil {
		t.Fatal(err)
	}
	if sys.calls != 2 {
		t.Errorf("expected 2 force evaluations, got %d", sys.calls)
	}
}

func TestStepErrors(t *testing.T) {
	for _, integ := range []dynamo.Integrator{NewHeun(), NewEuler(), NewVerlet(), NewRK4()} {
		t.Run(integ.Name(), func(t *testing.T) {
			sys := &anchored{n: 3, k: 1, fail: true}
			cur := sys.InitialState()
			err := integ.Step(sys, cur, cur.Clone(), 0.01)

			if !errors.Is(err, dynamo.ErrDegenerateVolume) {
				t.Fatalf("expected ErrDegenerateVolume, got %v", err)
			}
			var se *dynamo.StepError
			if !errors.As(err, &se) || se.Stage == "" {
				t.Errorf("expected StepError with stage, got %v", err)
			}
		})
	}
}
