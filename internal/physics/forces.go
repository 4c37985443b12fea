package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/psbody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Accumulate recomputes every particle force for s in place: damped Hooke
// springs along each edge plus a pressure term pushing each edge outward in
// proportion to its length and inversely to the enclosed volume.
func (b *PressureBody) Accumulate(s dynamo.State) (float64, error) {
	for i := range s {
		s[i].Force = dynamo.Vec2{}
	}

	k, c := b.params.Elasticity, b.params.Damping
	for idx := range b.springs {
		sp := &b.springs[idx]
		p1, p2 := &s[sp.I], &s[sp.J]

		f, d, l := hooke(p1, p2, sp.RestLength, k, c)
		p1.Force = r2.Sub(p1.Force, f)
		p2.Force = r2.Add(p2.Force, f)

		sp.Normal = edgeNormal(d, l)
	}

	volume := b.Volume(s)
	if volume <= 0 || !dynamo.Finite(volume) {
		return volume, fmt.Errorf("%w: volume %g", dynamo.ErrDegenerateVolume, volume)
	}

	pressure := b.params.Pressure
	for idx := range b.springs {
		sp := &b.springs[idx]
		l := r2.Norm(r2.Sub(s[sp.I].Position, s[sp.J].Position))

		// P = 1/V * A * P * N
		pv := l * pressure / volume
		f := r2.Scale(pv, sp.Normal)
		s[sp.I].Force = r2.Add(s[sp.I].Force, f)
		s[sp.J].Force = r2.Add(s[sp.J].Force, f)
	}

	b.particleNormals(s)
	return volume, nil
}

// RefreshNormals recomputes spring and particle normals from positions only.
func (b *PressureBody) RefreshNormals(s dynamo.State) {
	for idx := range b.springs {
		sp := &b.springs[idx]
		d := r2.Sub(s[sp.I].Position, s[sp.J].Position)
		sp.Normal = edgeNormal(d, r2.Norm(d))
	}
	b.particleNormals(s)
}

func (b *PressureBody) particleNormals(s dynamo.State) {
	for i := range s {
		sum := r2.Add(b.springs[s[i].PrevSpring].Normal, b.springs[s[i].NextSpring].Normal)
		n := r2.Norm(sum)
		if n == 0 {
			s[i].Normal = dynamo.Vec2{}
			continue
		}
		s[i].Normal = r2.Scale(1/n, sum)
	}
}

// Volume returns the enclosed area of s using the body's estimator.
// It does not touch forces or normals.
func (b *PressureBody) Volume(s dynamo.State) float64 {
	return b.volumeOf(s, b.method)
}

func (b *PressureBody) volumeOf(s dynamo.State, method VolumeMethod) float64 {
	v := 0.0
	for idx := range b.springs {
		sp := &b.springs[idx]
		p1, p2 := s[sp.I].Position, s[sp.J].Position
		d := r2.Sub(p1, p2)

		switch method {
		case VolumeExtent:
			l := r2.Norm(d)
			n := edgeNormal(d, l)
			v += 0.5 * math.Abs(d.X) * math.Abs(n.X) * l
		default:
			// midpoint dotted with the outward normal scaled by edge length
			mid := r2.Scale(0.5, r2.Add(p1, p2))
			v += 0.5 * (mid.X*d.Y - mid.Y*d.X)
		}
	}
	return v
}

// Energy returns kinetic plus elastic spring energy.
func (b *PressureBody) Energy(s dynamo.State) float64 {
	e := s.KineticEnergy(b.params.Mass)
	for idx := range b.springs {
		sp := &b.springs[idx]
		stretch := r2.Norm(r2.Sub(s[sp.I].Position, s[sp.J].Position)) - sp.RestLength
		e += 0.5 * b.params.Elasticity * stretch * stretch
	}
	return e
}

// hooke returns the damped spring force acting on p2 (p1 receives its
// negation) together with the edge vector p1-p2 and its length.
// A collapsed edge produces no force.
func hooke(p1, p2 *dynamo.Particle, rest, k, c float64) (f, d dynamo.Vec2, l float64) {
	d = r2.Sub(p1.Position, p2.Position)
	l = r2.Norm(d)
	if l == 0 {
		return dynamo.Vec2{}, d, 0
	}
	v12 := r2.Sub(p1.Velocity, p2.Velocity)
	fMag := (l-rest)*k + r2.Dot(v12, d)*c/l
	return r2.Scale(fMag/l, d), d, l
}

func edgeNormal(d dynamo.Vec2, l float64) dynamo.Vec2 {
	if l == 0 {
		return dynamo.Vec2{}
	}
	return dynamo.Vec2{X: d.Y / l, Y: -d.X / l}
}
