package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/psbody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// VolumeMethod selects how the enclosed area of the ring is estimated.
type VolumeMethod string

const (
	// VolumeDivergence is the signed divergence-theorem area. It is exact for
	// simple polygons and turns negative when the ring inverts.
	VolumeDivergence VolumeMethod = "divergence"
	// VolumeExtent sums 0.5*|dx|*|nx|*len per spring. Always non-negative.
	VolumeExtent VolumeMethod = "extent"
)

func ParseVolumeMethod(s string) (VolumeMethod, error) {
	switch VolumeMethod(s) {
	case "", VolumeDivergence:
		return VolumeDivergence, nil
	case VolumeExtent:
		return VolumeExtent, nil
	}
	return "", fmt.Errorf("%w: unknown volume method %q", dynamo.ErrInvalidParameter, s)
}

// PressureBody is a closed ring of point masses joined by damped springs and
// inflated by an internal pressure.
// The spring table is fixed at construction and shared by every State the
// body accumulates forces into.
type PressureBody struct {
	n       int
	radius  float64
	params  dynamo.Params
	method  VolumeMethod
	springs []dynamo.Spring
	initial dynamo.State
}

type Option func(*PressureBody)

func WithVolumeMethod(m VolumeMethod) Option {
	return func(b *PressureBody) { b.method = m }
}

// NewPressureBody places n particles evenly on a circle of the given radius
// and joins each particle k to particle (k+1) mod n.
func NewPressureBody(n int, radius float64, p dynamo.Params, opts ...Option) (*PressureBody, error) {
	if n < 3 {
		return nil, fmt.Errorf("%w: got %d particles", dynamo.ErrInvalidTopology, n)
	}
	if radius <= 0 || !dynamo.Finite(radius) {
		return nil, fmt.Errorf("%w: radius must be positive, got %g", dynamo.ErrInvalidParameter, radius)
	}
	if err := validateParams(p); err != nil {
		return nil, err
	}

	b := &PressureBody{
		n:      n,
		radius: radius,
		params: p,
		method: VolumeDivergence,
	}
	for _, opt := range opts {
		opt(b)
	}
	if _, err := ParseVolumeMethod(string(b.method)); err != nil {
		return nil, err
	}

	b.createParticles()
	b.createSprings()
	return b, nil
}

func validateParams(p dynamo.Params) error {
	if !dynamo.Finite(p.Mass, p.Elasticity, p.Damping, p.Pressure, p.GravityScale) {
		return fmt.Errorf("%w: parameters must be finite", dynamo.ErrInvalidParameter)
	}
	if p.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %g", dynamo.ErrInvalidParameter, p.Mass)
	}
	return nil
}

func (b *PressureBody) createParticles() {
	b.initial = make(dynamo.State, b.n)
	for k := 0; k < b.n; k++ {
		angle := float64(k+1) * 2 * math.Pi / float64(b.n)
		b.initial[k].Position = dynamo.Vec2{
			X: b.radius * math.Sin(angle),
			Y: b.radius * math.Cos(angle),
		}
	}
}

func (b *PressureBody) createSprings() {
	b.springs = make([]dynamo.Spring, b.n)
	for k := 0; k < b.n; k++ {
		j := (k + 1) % b.n
		b.springs[k] = dynamo.Spring{
			I:          k,
			J:          j,
			RestLength: r2.Norm(r2.Sub(b.initial[k].Position, b.initial[j].Position)),
		}
		b.initial[k].NextSpring = k
		b.initial[j].PrevSpring = k
	}
}

func (b *PressureBody) Len() int                   { return b.n }
func (b *PressureBody) Mass() float64              { return b.params.Mass }
func (b *PressureBody) Radius() float64            { return b.radius }
func (b *PressureBody) Params() dynamo.Params      { return b.params }
func (b *PressureBody) VolumeMethod() VolumeMethod { return b.method }

// InitialState returns a fresh copy of the state built at construction.
func (b *PressureBody) InitialState() dynamo.State {
	return b.initial.Clone()
}

// Springs returns a copy of the spring table.
func (b *PressureBody) Springs() []dynamo.Spring {
	out := make([]dynamo.Spring, len(b.springs))
	copy(out, b.springs)
	return out
}

// RestArea is the divergence area of the undeformed ring.
func (b *PressureBody) RestArea() float64 {
	return 0.5 * float64(b.n) * b.radius * b.radius * math.Sin(2*math.Pi/float64(b.n))
}

// GetParams implements dynamo.Configurable
func (b *PressureBody) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":       b.params.Mass,
		"elasticity": b.params.Elasticity,
		"damping":    b.params.Damping,
		"pressure":   b.params.Pressure,
	}
}

// SetParam implements dynamo.Configurable
func (b *PressureBody) SetParam(name string, value float64) error {
	if !dynamo.Finite(value) {
		return fmt.Errorf("%w: %s must be finite", dynamo.ErrInvalidParameter, name)
	}
	switch name {
	case "mass":
		if value <= 0 {
			return fmt.Errorf("%w: mass must be positive, got %g", dynamo.ErrInvalidParameter, value)
		}
		b.params.Mass = value
	case "elasticity":
		b.params.Elasticity = value
	case "damping":
		b.params.Damping = value
	case "pressure":
		b.params.Pressure = value
	default:
		return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrInvalidParameter, name)
	}
	return nil
}
