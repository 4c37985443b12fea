package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/psbody/internal/dynamo"
	"github.com/san-kum/psbody/internal/physics"
)

func newBody(t *testing.T) *physics.PressureBody {
	t.Helper()
	body, err := physics.NewPressureBody(12, 1.0, dynamo.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func TestEnergy(t *testing.T) {
	body := newBody(t)
	m := NewEnergy(body)

	x := body.InitialState()
	for i := range x {
		x[i].Velocity = dynamo.Vec2{X: 1}
	}

	m.Observe(x, 0)
	// rest lengths, so only kinetic energy: 12 * 0.5 * 1 * 1
	if math.Abs(m.Value()-6) > 1e-9 {
		t.Errorf("expected energy 6, got %f", m.Value())
	}
	m.Observe(body.InitialState(), 0.1)
	if math.Abs(m.Value()-3) > 1e-9 || math.Abs(m.Peak()-6) > 1e-9 {
		t.Errorf("expected mean 3 and peak 6, got %f and %f", m.Value(), m.Peak())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	body := newBody(t)
	m := NewEnergyDrift(body)

	x := body.InitialState()
	for i := range x {
		x[i].Velocity = dynamo.Vec2{Y: 2}
	}
	m.Observe(x, 0)

	for i := range x {
		x[i].Velocity = dynamo.Vec2{Y: 1}
	}
	m.Observe(x, 0.1)

	if math.Abs(m.Value()-0.75) > 1e-9 {
		t.Errorf("expected drift 0.75, got %f", m.Value())
	}
	if math.Abs(m.Reference()-24) > 1e-9 {
		t.Errorf("expected reference energy 24, got %f", m.Reference())
	}
}

func TestMomentumDrift(t *testing.T) {
	body := newBody(t)
	m := NewMomentumDrift(2.0)

	x := body.InitialState()
	m.Observe(x, 0)
	if m.Value() != 0 {
		t.Errorf("expected zero drift on first sample, got %f", m.Value())
	}

	x[0].Velocity = dynamo.Vec2{X: 3, Y: 4}
	m.Observe(x, 0.1)
	if math.Abs(m.Value()-10) > 1e-12 {
		t.Errorf("expected drift 10, got %f", m.Value())
	}
}

func TestAreaRatio(t *testing.T) {
	body := newBody(t)
	m := NewAreaRatio(body, body.RestArea())

	x := body.InitialState()
	m.Observe(x, 0)

	grown := x.Clone()
	for i := range grown {
		grown[i].Position.X *= 2
		grown[i].Position.Y *= 2
	}
	m.Observe(grown, 0.1)

	if math.Abs(m.Value()-2.5) > 1e-9 {
		t.Errorf("expected mean ratio 2.5, got %f", m.Value())
	}
	lo, hi := m.Range()
	if math.Abs(lo-1) > 1e-9 || math.Abs(hi-4) > 1e-9 {
		t.Errorf("expected range [1, 4], got [%f, %f]", lo, hi)
	}
	if m.Stddev() <= 0 {
		t.Error("expected a positive spread")
	}

	swing := NewAreaSwing(body, body.RestArea())
	swing.Observe(x, 0)
	swing.Observe(x, 0.1)
	if swing.Name() != "area_swing" || swing.Value() != 0 {
		t.Errorf("constant area should not swing: %s = %f", swing.Name(), swing.Value())
	}
}

func TestStability(t *testing.T) {
	body := newBody(t)
	m := NewStability(10)

	x := body.InitialState()
	m.Observe(x, 0)

	x[3].Velocity = dynamo.Vec2{X: 11}
	m.Observe(x, 0.1)

	x[3].Velocity = dynamo.Vec2{X: math.NaN()}
	m.Observe(x, 0.2)

	if math.Abs(m.Value()-1.0/3) > 1e-12 {
		t.Errorf("expected stability 1/3, got %f", m.Value())
	}
	if m.FirstFailure() != 0.1 {
		t.Errorf("expected first failure at 0.1, got %f", m.FirstFailure())
	}
	m.Reset()
	if m.Value() != 1 {
		t.Error("expected full stability after reset")
	}
}

func TestStandard(t *testing.T) {
	body := newBody(t)
	ms := Standard(body, body.RestArea())

	names := make(map[string]bool)
	for _, m := range ms {
		names[m.Name()] = true
	}
	for _, want := range []string{"energy", "energy_drift", "momentum_drift", "area_ratio", "area_swing", "stability"} {
		if !names[want] {
			t.Errorf("missing metric %q", want)
		}
	}
}
