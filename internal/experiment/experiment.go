package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/psbody/internal/config"
	"github.com/san-kum/psbody/internal/dynamo"
	"github.com/san-kum/psbody/internal/metrics"
	"github.com/san-kum/psbody/internal/physics"
	"github.com/san-kum/psbody/internal/sim"
	"github.com/san-kum/psbody/internal/world"
)

// Experiment is one configured body, its simulator and the host world it
// syncs with.
type Experiment struct {
	cfg       *config.Config
	body      *physics.PressureBody
	simulator *sim.Simulator
	kind      world.Kind
	host      dynamo.Host
}

// New validates cfg and wires body, integrator, host and the standard
// metric set.
func New(cfg *config.Config, reg *Registry) (*Experiment, error) {
	if reg == nil {
		reg = NewRegistry()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	method, err := reg.GetVolumeMethod(cfg.Body.Volume)
	if err != nil {
		return nil, err
	}
	body, err := physics.NewPressureBody(cfg.Body.Particles, cfg.Body.Radius, cfg.Params(), physics.WithVolumeMethod(method))
	if err != nil {
		return nil, err
	}

	integ, err := reg.GetIntegrator(cfg.Run.Integrator)
	if err != nil {
		return nil, err
	}
	kind, err := reg.GetHost(cfg.World.Host)
	if err != nil {
		return nil, err
	}

	s := sim.New(body, integ)
	host, err := world.New(kind, s.Frame(), body.Mass(), cfg.WorldOptions())
	if err != nil {
		return nil, fmt.Errorf("host %s: %w", kind, err)
	}

	for _, m := range metrics.Standard(body, body.RestArea()) {
		s.AddMetric(m)
	}

	return &Experiment{
		cfg:       cfg,
		body:      body,
		simulator: s,
		kind:      kind,
		host:      host,
	}, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.host, e.cfg.SimConfig())
}

// Tick advances one host round trip, for interactive drivers.
func (e *Experiment) Tick() (dynamo.Frame, error) {
	host := e.host
	if host == nil {
		f := e.simulator.Frame()
		return e.simulator.Step(f.Positions, f.Velocities, e.cfg.Run.Tick, e.cfg.Run.Iterations)
	}

	pos, vel := host.Sync()
	frame, err := e.simulator.Step(pos, vel, e.cfg.Run.Tick, e.cfg.Run.Iterations)
	if err != nil {
		return frame, err
	}
	host.Apply(frame)
	if err := host.Advance(e.cfg.Run.Tick); err != nil {
		return frame, err
	}
	return frame, nil
}

// Recenter resets the body around its centroid and pushes the reset state to
// the host.
func (e *Experiment) Recenter() {
	e.simulator.Recenter()
	if e.host == nil {
		return
	}
	e.host = e.rebuildHost()
}

// Place sets the body's positions and velocities and reseeds the host world
// from them.
func (e *Experiment) Place(positions, velocities []dynamo.Vec2) error {
	if err := e.simulator.Place(positions, velocities); err != nil {
		return err
	}
	if e.host != nil {
		e.host = e.rebuildHost()
	}
	return nil
}

// Member adapts the experiment for a sim.Ensemble.
func (e *Experiment) Member() sim.Member {
	cfg := e.cfg.SimConfig()
	return sim.Member{Sim: e.simulator, Host: e.host, Config: &cfg}
}

func (e *Experiment) rebuildHost() dynamo.Host {
	host, err := world.New(e.kind, e.simulator.Frame(), e.body.Mass(), e.cfg.WorldOptions())
	if err != nil {
		return e.host
	}
	return host
}

func (e *Experiment) Config() *config.Config      { return e.cfg }
func (e *Experiment) Body() *physics.PressureBody { return e.body }
func (e *Experiment) Host() dynamo.Host           { return e.host }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
