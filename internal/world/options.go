package world

import (
	"fmt"

	"github.com/san-kum/psbody/internal/dynamo"
)

const StandardGravity = 9.81

type Options struct {
	Gravity        float64
	GravityScale   float64
	Drag           float64
	ParticleRadius float64
	Floor          bool
	FloorY         float64
	Friction       float64
	Restitution    float64
}

func DefaultOptions() Options {
	return Options{
		Gravity:        StandardGravity,
		GravityScale:   1.0,
		Drag:           0.0,
		ParticleRadius: 0.05,
		FloorY:         -3.0,
		Friction:       0.6,
		Restitution:    0.2,
	}
}

func (o Options) Validate() error {
	if !dynamo.Finite(o.Gravity, o.GravityScale, o.Drag, o.ParticleRadius, o.FloorY, o.Friction, o.Restitution) {
		return fmt.Errorf("%w: world options must be finite", dynamo.ErrInvalidParameter)
	}
	if o.Drag < 0 {
		return fmt.Errorf("%w: drag must be non-negative, got %g", dynamo.ErrInvalidParameter, o.Drag)
	}
	if o.ParticleRadius <= 0 {
		return fmt.Errorf("%w: particle radius must be positive, got %g", dynamo.ErrInvalidParameter, o.ParticleRadius)
	}
	return nil
}

// acceleration is the gravity vector every particle feels.
func (o Options) acceleration() dynamo.Vec2 {
	return dynamo.Vec2{Y: -o.Gravity * o.GravityScale}
}

// Kind names a host implementation.
type Kind string

const (
	KindNone     Kind = "none"
	KindFree     Kind = "free"
	KindChipmunk Kind = "chipmunk"
)

func Kinds() []Kind {
	return []Kind{KindNone, KindFree, KindChipmunk}
}

// New builds the host of the given kind seeded with frame. KindNone returns a
// nil host, which the simulator treats as its own state.
func New(kind Kind, frame dynamo.Frame, mass float64, opts Options) (dynamo.Host, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	switch kind {
	case KindNone, "":
		return nil, nil
	case KindFree:
		return NewFree(frame, opts), nil
	case KindChipmunk:
		return NewChipmunk(frame, mass, opts)
	default:
		return nil, fmt.Errorf("%w: unknown host %q", dynamo.ErrInvalidParameter, kind)
	}
}
