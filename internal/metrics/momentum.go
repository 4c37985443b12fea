package metrics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/psbody/internal/dynamo"
)

// MomentumDrift tracks the largest change in total linear momentum since the
// first sample. Internal forces cancel, so any drift comes from the host
// world (gravity, drag, contacts) or from round-off.
type MomentumDrift struct {
	name     string
	mass     float64
	initial  dynamo.Vec2
	maxDrift float64
	samples  int
}

func NewMomentumDrift(mass float64) *MomentumDrift {
	return &MomentumDrift{
		name: "momentum_drift",
		mass: mass,
	}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(x dynamo.State, t float64) {
	p := x.Momentum(m.mass)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++

	if d := r2.Norm(r2.Sub(p, m.initial)); d > m.maxDrift {
		m.maxDrift = d
	}
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = dynamo.Vec2{}
	m.maxDrift = 0
	m.samples = 0
}
