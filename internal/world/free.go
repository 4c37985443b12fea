package world

import (
	"github.com/san-kum/psbody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Free is a host with gravity, linear drag and an optional flat floor.
// Positions belong to the core; Advance only changes velocities, plus the
// floor clamp.
type Free struct {
	opts Options
	pos  []dynamo.Vec2
	vel  []dynamo.Vec2
}

func NewFree(frame dynamo.Frame, opts Options) *Free {
	f := &Free{
		opts: opts,
		pos:  make([]dynamo.Vec2, frame.Len()),
		vel:  make([]dynamo.Vec2, frame.Len()),
	}
	copy(f.pos, frame.Positions)
	copy(f.vel, frame.Velocities)
	return f
}

func (f *Free) Sync() ([]dynamo.Vec2, []dynamo.Vec2) {
	pos := make([]dynamo.Vec2, len(f.pos))
	vel := make([]dynamo.Vec2, len(f.vel))
	copy(pos, f.pos)
	copy(vel, f.vel)
	return pos, vel
}

func (f *Free) Apply(frame dynamo.Frame) {
	copy(f.pos, frame.Positions)
	copy(f.vel, frame.Velocities)
}

func (f *Free) Advance(dt float64) error {
	g := r2.Scale(dt, f.opts.acceleration())
	drag := 1 / (1 + f.opts.Drag*dt)

	for i := range f.vel {
		f.vel[i] = r2.Scale(drag, r2.Add(f.vel[i], g))

		if f.opts.Floor && f.pos[i].Y < f.opts.FloorY {
			f.pos[i].Y = f.opts.FloorY
			if f.vel[i].Y < 0 {
				f.vel[i].Y = -f.vel[i].Y * f.opts.Restitution
			}
			f.vel[i].X *= 1 - f.opts.Friction*dt
		}
	}
	return nil
}
