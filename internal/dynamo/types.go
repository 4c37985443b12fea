package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec2 is a 2D point or vector.
type Vec2 = r2.Vec

// Particle is one point mass of the ring.
type Particle struct {
	Position Vec2
	Velocity Vec2
	Force    Vec2
	Normal   Vec2

	// PrevSpring ends at this particle, NextSpring starts from it.
	PrevSpring int
	NextSpring int
}

// Spring joins particle I to particle J.
type Spring struct {
	I, J       int
	RestLength float64
	// Normal is perpendicular to the edge I->J, unit length unless the
	// edge has collapsed, in which case it is zero.
	Normal Vec2
}

type State []Particle

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// CopyFrom copies src into s. Both must have the same length.
func (s State) CopyFrom(src State) {
	copy(s, src)
}

func (s State) IsValid() bool {
	for i := range s {
		p := &s[i]
		if !finite(p.Position.X) || !finite(p.Position.Y) ||
			!finite(p.Velocity.X) || !finite(p.Velocity.Y) {
			return false
		}
	}
	return true
}

func (s State) Centroid() Vec2 {
	if len(s) == 0 {
		return Vec2{}
	}
	var c Vec2
	for i := range s {
		c = r2.Add(c, s[i].Position)
	}
	return r2.Scale(1/float64(len(s)), c)
}

// Momentum returns the total linear momentum for uniform particle mass.
func (s State) Momentum(mass float64) Vec2 {
	var p Vec2
	for i := range s {
		p = r2.Add(p, s[i].Velocity)
	}
	return r2.Scale(mass, p)
}

func (s State) KineticEnergy(mass float64) float64 {
	e := 0.0
	for i := range s {
		v := s[i].Velocity
		e += 0.5 * mass * r2.Dot(v, v)
	}
	return e
}

func (s State) Positions() []Vec2 {
	out := make([]Vec2, len(s))
	for i := range s {
		out[i] = s[i].Position
	}
	return out
}

func (s State) Velocities() []Vec2 {
	out := make([]Vec2, len(s))
	for i := range s {
		out[i] = s[i].Velocity
	}
	return out
}

func (s State) Normals() []Vec2 {
	out := make([]Vec2, len(s))
	for i := range s {
		out[i] = s[i].Normal
	}
	return out
}

// Frame is the externally visible result of a step.
type Frame struct {
	Positions  []Vec2
	Velocities []Vec2
	Normals    []Vec2
	Volume     float64
}

func (f Frame) Len() int { return len(f.Positions) }

// Params are the scalar parameters of a pressure soft body.
type Params struct {
	Mass       float64
	Elasticity float64
	Damping    float64
	Pressure   float64
	// GravityScale is carried for the host world; the core applies no gravity.
	GravityScale float64
}

func DefaultParams() Params {
	return Params{
		Mass:         1.0,
		Elasticity:   200.0,
		Damping:      2.0,
		Pressure:     25.0,
		GravityScale: 1.0,
	}
}

// System accumulates forces into a State in place.
type System interface {
	// Accumulate resets and recomputes every particle force and normal and
	// returns the enclosed volume used for the pressure term.
	Accumulate(s State) (float64, error)
	// RefreshNormals recomputes spring and particle normals without forces.
	RefreshNormals(s State)
	Volume(s State) float64
	Mass() float64
	Len() int
	InitialState() State
}

type Hamiltonian interface {
	Energy(s State) float64
}

// Integrator advances cur by dt, using scratch as the predicted state.
type Integrator interface {
	Name() string
	Step(sys System, cur, scratch State, dt float64) error
}

// Host is the outside world a simulator is synchronized with each tick.
type Host interface {
	Sync() (positions, velocities []Vec2)
	Apply(f Frame)
	Advance(dt float64) error
}

type Metric interface {
	Name() string
	Observe(s State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f Frame, t float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Finite reports whether every value is neither NaN nor Inf.
func Finite(vals ...float64) bool {
	for _, v := range vals {
		if !finite(v) {
			return false
		}
	}
	return true
}
