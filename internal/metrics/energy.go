package metrics

import (
	"math"

	"github.com/san-kum/psbody/internal/dynamo"
)

// Energy averages the body's kinetic plus spring energy over the samples
// seen since the last Reset. Peak keeps the largest single sample.
type Energy struct {
	body dynamo.Hamiltonian
	sum  float64
	peak float64
	n    int
}

func NewEnergy(body dynamo.Hamiltonian) *Energy {
	return &Energy{body: body}
}

func (*Energy) Name() string { return "energy" }

func (e *Energy) Observe(x dynamo.State, _ float64) {
	v := e.body.Energy(x)
	if e.n == 0 || v > e.peak {
		e.peak = v
	}
	e.sum += v
	e.n++
}

func (e *Energy) Value() float64 {
	if e.n == 0 {
		return 0
	}
	return e.sum / float64(e.n)
}

func (e *Energy) Peak() float64 { return e.peak }

func (e *Energy) Reset() { *e = Energy{body: e.body} }

// EnergyDrift is the worst relative departure from the energy of the first
// sample. A pressurised or damped body drifts by design; with pressure and
// damping at zero the value is pure integrator error.
type EnergyDrift struct {
	sys   dynamo.System
	ref   float64
	worst float64
	seen  bool
}

func NewEnergyDrift(sys dynamo.System) *EnergyDrift {
	return &EnergyDrift{sys: sys}
}

func (*EnergyDrift) Name() string { return "energy_drift" }

func (d *EnergyDrift) Observe(x dynamo.State, _ float64) {
	h, ok := d.sys.(dynamo.Hamiltonian)
	if !ok {
		return
	}
	v := h.Energy(x)
	if !d.seen {
		d.ref, d.seen = v, true
		return
	}
	if d.ref == 0 {
		return
	}
	d.worst = math.Max(d.worst, math.Abs((v-d.ref)/d.ref))
}

func (d *EnergyDrift) Value() float64 { return d.worst }

// Reference is the energy the drift is measured against.
func (d *EnergyDrift) Reference() float64 { return d.ref }

func (d *EnergyDrift) Reset() { *d = EnergyDrift{sys: d.sys} }
