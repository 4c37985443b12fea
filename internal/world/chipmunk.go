package world

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/jakecoffman/cp"
	"github.com/san-kum/psbody/internal/dynamo"
)

const (
	floorHalfWidth = 1000.0
	floorThickness = 0.1
)

var nextGroup atomic.Uint64

// Chipmunk hosts each particle as a rotation-locked circle body in a cp.Space.
// The core's result is applied the way a kinematic move would be: bodies are
// driven to the core's positions over one space step, and whatever velocity
// change the space adds on top (gravity, damping, contacts) is kept.
type Chipmunk struct {
	opts   Options
	space  *cp.Space
	bodies []*cp.Body
	target []cp.Vector
	vel    []cp.Vector
	kick   []cp.Vector
	floor  *cp.Shape
}

func NewChipmunk(frame dynamo.Frame, mass float64, opts Options) (*Chipmunk, error) {
	if mass <= 0 || !dynamo.Finite(mass) {
		return nil, fmt.Errorf("%w: particle mass must be positive, got %g", dynamo.ErrInvalidParameter, mass)
	}

	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(toCP(opts.acceleration()))
	space.SetDamping(math.Exp(-opts.Drag))

	n := frame.Len()
	c := &Chipmunk{
		opts:   opts,
		space:  space,
		bodies: make([]*cp.Body, n),
		target: make([]cp.Vector, n),
		vel:    make([]cp.Vector, n),
		kick:   make([]cp.Vector, n),
	}

	// particles of one body share a group and never collide with each other
	filter := cp.NewShapeFilter(uint(nextGroup.Add(1)), cp.ALL_CATEGORIES, cp.ALL_CATEGORIES)

	for i := 0; i < n; i++ {
		body := cp.NewBody(mass, math.Inf(1))
		body.SetPosition(toCP(frame.Positions[i]))
		body.SetVelocityVector(toCP(frame.Velocities[i]))

		shape := cp.NewCircle(body, opts.ParticleRadius, cp.Vector{})
		shape.SetFriction(opts.Friction)
		shape.SetElasticity(opts.Restitution)
		shape.SetFilter(filter)

		space.AddBody(body)
		space.AddShape(shape)
		c.bodies[i] = body
	}

	if opts.Floor {
		// rounded segment whose top surface sits at FloorY
		y := opts.FloorY - floorThickness
		c.floor = cp.NewSegment(space.StaticBody,
			cp.Vector{X: -floorHalfWidth, Y: y},
			cp.Vector{X: floorHalfWidth, Y: y}, floorThickness)
		c.floor.SetFriction(opts.Friction)
		c.floor.SetElasticity(opts.Restitution)
		space.AddShape(c.floor)
	}

	return c, nil
}

func (c *Chipmunk) Space() *cp.Space { return c.space }

func (c *Chipmunk) Sync() ([]dynamo.Vec2, []dynamo.Vec2) {
	pos := make([]dynamo.Vec2, len(c.bodies))
	vel := make([]dynamo.Vec2, len(c.bodies))
	for i, b := range c.bodies {
		pos[i] = fromCP(b.Position())
		vel[i] = fromCP(b.Velocity())
	}
	return pos, vel
}

func (c *Chipmunk) Apply(frame dynamo.Frame) {
	for i := range c.bodies {
		c.target[i] = toCP(frame.Positions[i])
		c.vel[i] = toCP(frame.Velocities[i])
	}
}

func (c *Chipmunk) Advance(dt float64) error {
	if dt <= 0 || !dynamo.Finite(dt) {
		return fmt.Errorf("%w: step must be positive, got %g", dynamo.ErrInvalidParameter, dt)
	}

	for i, b := range c.bodies {
		c.kick[i] = c.target[i].Sub(b.Position()).Mult(1 / dt)
		b.SetVelocityVector(c.kick[i])
	}

	c.space.Step(dt)

	for i, b := range c.bodies {
		dv := b.Velocity().Sub(c.kick[i])
		v := c.vel[i].Add(dv)
		if !dynamo.Finite(v.X, v.Y) {
			return fmt.Errorf("%w: body %d velocity diverged", dynamo.ErrInvalidState, i)
		}
		b.SetVelocityVector(v)
	}
	return nil
}

func toCP(v dynamo.Vec2) cp.Vector   { return cp.Vector{X: v.X, Y: v.Y} }
func fromCP(v cp.Vector) dynamo.Vec2 { return dynamo.Vec2{X: v.X, Y: v.Y} }
