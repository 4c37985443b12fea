package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/psbody/internal/dynamo"
	"github.com/san-kum/psbody/internal/integrators"
	"github.com/san-kum/psbody/internal/physics"
)

// Simulator drives one soft body. It owns the current state and the
// predicted scratch state; the force model owns the spring table.
type Simulator struct {
	sys        dynamo.System
	integrator dynamo.Integrator
	cur        dynamo.State
	pred       dynamo.State
	backup     dynamo.State
	volume     float64
	ticks      int
	time       float64
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
}

func New(sys dynamo.System, integrator dynamo.Integrator) *Simulator {
	cur := sys.InitialState()
	sys.RefreshNormals(cur)
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		cur:        cur,
		pred:       cur.Clone(),
		backup:     cur.Clone(),
		volume:     sys.Volume(cur),
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
	}
}

// Create builds a pressure body of n particles on a circle of the given
// radius and a Heun-driven simulator for it.
func Create(n int, radius float64, p dynamo.Params, opts ...physics.Option) (*Simulator, error) {
	body, err := physics.NewPressureBody(n, radius, p, opts...)
	if err != nil {
		return nil, err
	}
	return New(body, integrators.NewHeun()), nil
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) System() dynamo.System         { return s.sys }
func (s *Simulator) Integrator() dynamo.Integrator { return s.integrator }
func (s *Simulator) Len() int                      { return len(s.cur) }
func (s *Simulator) Ticks() int                    { return s.ticks }
func (s *Simulator) Time() float64                 { return s.time }
func (s *Simulator) Volume() float64               { return s.volume }

// State returns a copy of the current particle state.
func (s *Simulator) State() dynamo.State { return s.cur.Clone() }

func (s *Simulator) Centroid() dynamo.Vec2 { return s.cur.Centroid() }

// Frame returns the current positions, velocities and normals.
func (s *Simulator) Frame() dynamo.Frame {
	return dynamo.Frame{
		Positions:  s.cur.Positions(),
		Velocities: s.cur.Velocities(),
		Normals:    s.cur.Normals(),
		Volume:     s.volume,
	}
}

// Step copies the external positions and velocities into the current state,
// advances it by tick in subIterations equal sub-steps and returns the result.
// On error the current state is left as it was before the call.
func (s *Simulator) Step(positions, velocities []dynamo.Vec2, tick float64, subIterations int) (dynamo.Frame, error) {
	if err := s.validateStep(positions, velocities, tick, subIterations); err != nil {
		return dynamo.Frame{}, err
	}

	s.backup.CopyFrom(s.cur)
	for i := range s.cur {
		s.cur[i].Position = positions[i]
		s.cur[i].Velocity = velocities[i]
	}

	dt := tick / float64(subIterations)
	for k := 0; k < subIterations; k++ {
		if err := s.integrator.Step(s.sys, s.cur, s.pred, dt); err != nil {
			s.cur.CopyFrom(s.backup)
			return dynamo.Frame{}, s.stepError(err, k)
		}
	}

	if !s.cur.IsValid() {
		s.cur.CopyFrom(s.backup)
		return dynamo.Frame{}, s.stepError(&dynamo.StepError{Stage: "output", Wrapped: dynamo.ErrInvalidState}, subIterations-1)
	}

	s.sys.RefreshNormals(s.cur)
	s.volume = s.sys.Volume(s.cur)
	s.ticks++
	s.time += tick

	return s.Frame(), nil
}

func (s *Simulator) validateStep(positions, velocities []dynamo.Vec2, tick float64, subIterations int) error {
	if subIterations < 1 {
		return fmt.Errorf("%w: sub-iterations must be at least 1, got %d", dynamo.ErrInvalidParameter, subIterations)
	}
	if tick <= 0 || !dynamo.Finite(tick) {
		return fmt.Errorf("%w: tick duration must be positive, got %g", dynamo.ErrInvalidParameter, tick)
	}
	if len(positions) != len(s.cur) || len(velocities) != len(s.cur) {
		return fmt.Errorf("%w: expected %d positions and velocities, got %d and %d",
			dynamo.ErrInvalidParameter, len(s.cur), len(positions), len(velocities))
	}
	for i := range positions {
		if !dynamo.Finite(positions[i].X, positions[i].Y, velocities[i].X, velocities[i].Y) {
			return fmt.Errorf("%w: particle %d has a non-finite position or velocity", dynamo.ErrInvalidParameter, i)
		}
	}
	return nil
}

func (s *Simulator) stepError(err error, sub int) error {
	var se *dynamo.StepError
	if errors.As(err, &se) {
		se.Tick = s.ticks
		se.SubIteration = sub
		return se
	}
	return &dynamo.StepError{Tick: s.ticks, SubIteration: sub, Stage: "integrator", Wrapped: err}
}

// Reset moves every particle by -centerOffset and stops it.
func (s *Simulator) Reset(centerOffset dynamo.Vec2) {
	for i := range s.cur {
		s.cur[i].Position.X -= centerOffset.X
		s.cur[i].Position.Y -= centerOffset.Y
		s.cur[i].Velocity = dynamo.Vec2{}
	}
}

// Place overwrites the current positions and velocities without stepping.
// The spring rest lengths are kept, so a placed shape starts out strained.
func (s *Simulator) Place(positions, velocities []dynamo.Vec2) error {
	if err := s.validateStep(positions, velocities, 1, 1); err != nil {
		return err
	}
	for i := range s.cur {
		s.cur[i].Position = positions[i]
		s.cur[i].Velocity = velocities[i]
	}
	s.sys.RefreshNormals(s.cur)
	s.volume = s.sys.Volume(s.cur)
	return nil
}

// Recenter resets the body around its own centroid and returns the offset used.
func (s *Simulator) Recenter() dynamo.Vec2 {
	c := s.cur.Centroid()
	s.Reset(c)
	return c
}

// Run steps the body against host for cfg.Duration, one host round trip per
// tick: Sync, Step, Apply, Advance.
func (s *Simulator) Run(ctx context.Context, host dynamo.Host, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if host == nil {
		host = &passthrough{sim: s}
	}

	ticks := cfg.Ticks()
	every := cfg.RecordEvery
	if every < 1 {
		every = 1
	}

	result := &Result{
		Times:   make([]float64, 0, ticks/every+1),
		Frames:  make([]dynamo.Frame, 0, ticks/every+1),
		Volumes: make([]float64, 0, ticks/every+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result.record(s.Frame(), s.time)

	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			s.collectMetrics(result)
			return result, ctx.Err()
		default:
		}

		pos, vel := host.Sync()
		frame, err := s.Step(pos, vel, cfg.Tick, cfg.SubIterations)
		if err != nil {
			s.collectMetrics(result)
			return result, err
		}

		host.Apply(frame)
		if err := host.Advance(cfg.Tick); err != nil {
			s.collectMetrics(result)
			return result, fmt.Errorf("host advance at tick %d: %w", s.ticks, err)
		}

		for _, m := range s.metrics {
			m.Observe(s.cur, s.time)
		}
		for _, obs := range s.observers {
			obs.OnStep(frame, s.time)
		}

		result.StepsTaken++
		if result.StepsTaken%every == 0 {
			result.record(frame, s.time)
		}
	}

	s.collectMetrics(result)
	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Tick <= 0 {
		return fmt.Errorf("%w: tick must be positive, got %f", dynamo.ErrInvalidParameter, cfg.Tick)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrInvalidParameter, cfg.Duration)
	}
	if cfg.SubIterations < 1 {
		return fmt.Errorf("%w: sub-iterations must be at least 1, got %d", dynamo.ErrInvalidParameter, cfg.SubIterations)
	}
	return nil
}

func (s *Simulator) collectMetrics(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (r *Result) record(f dynamo.Frame, t float64) {
	r.Frames = append(r.Frames, f)
	r.Times = append(r.Times, t)
	r.Volumes = append(r.Volumes, f.Volume)
}

// passthrough feeds the simulator its own state back, for runs without a
// host world.
type passthrough struct {
	sim *Simulator
}

func (p *passthrough) Sync() ([]dynamo.Vec2, []dynamo.Vec2) {
	return p.sim.cur.Positions(), p.sim.cur.Velocities()
}

func (p *passthrough) Apply(dynamo.Frame)    {}
func (p *passthrough) Advance(float64) error { return nil }
