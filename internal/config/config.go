package config

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/psbody/internal/dynamo"
	"github.com/san-kum/psbody/internal/physics"
	"github.com/san-kum/psbody/internal/sim"
	"github.com/san-kum/psbody/internal/world"
)

const (
	DefaultParticles  = 24
	DefaultRadius     = 1.0
	DefaultTick       = 0.02
	DefaultIterations = 10
	DefaultDuration   = 10.0
)

type Config struct {
	Name  string      `yaml:"name"`
	Body  BodyConfig  `yaml:"body"`
	Run   RunConfig   `yaml:"run"`
	World WorldConfig `yaml:"world"`
}

type BodyConfig struct {
	Particles    int     `yaml:"particles"`
	Radius       float64 `yaml:"radius"`
	Mass         float64 `yaml:"mass"`
	Elasticity   float64 `yaml:"elasticity"`
	Damping      float64 `yaml:"damping"`
	Pressure     float64 `yaml:"pressure"`
	GravityScale float64 `yaml:"gravity_scale"`
	Volume       string  `yaml:"volume"`
}

type RunConfig struct {
	Integrator  string  `yaml:"integrator"`
	Tick        float64 `yaml:"tick"`
	Iterations  int     `yaml:"iterations"`
	Duration    float64 `yaml:"duration"`
	RecordEvery int     `yaml:"record_every"`
}

type WorldConfig struct {
	Host           string  `yaml:"host"`
	Gravity        float64 `yaml:"gravity"`
	Drag           float64 `yaml:"drag"`
	ParticleRadius float64 `yaml:"particle_radius"`
	Floor          bool    `yaml:"floor"`
	FloorY         float64 `yaml:"floor_y"`
	Friction       float64 `yaml:"friction"`
	Restitution    float64 `yaml:"restitution"`
}

func DefaultConfig() *Config {
	p := dynamo.DefaultParams()
	w := world.DefaultOptions()
	return &Config{
		Name: "body",
		Body: BodyConfig{
			Particles:    DefaultParticles,
			Radius:       DefaultRadius,
			Mass:         p.Mass,
			Elasticity:   p.Elasticity,
			Damping:      p.Damping,
			Pressure:     p.Pressure,
			GravityScale: p.GravityScale,
			Volume:       string(physics.VolumeDivergence),
		},
		Run: RunConfig{
			Integrator:  "heun",
			Tick:        DefaultTick,
			Iterations:  DefaultIterations,
			Duration:    DefaultDuration,
			RecordEvery: 1,
		},
		World: WorldConfig{
			Host:           string(world.KindNone),
			Gravity:        w.Gravity,
			Drag:           w.Drag,
			ParticleRadius: w.ParticleRadius,
			FloorY:         w.FloorY,
			Friction:       w.Friction,
			Restitution:    w.Restitution,
		},
	}
}

// Load reads a YAML file over the defaults; keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Overlay decodes a YAML file on top of an existing config.
func (c *Config) Overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func (c *Config) Params() dynamo.Params {
	return dynamo.Params{
		Mass:         c.Body.Mass,
		Elasticity:   c.Body.Elasticity,
		Damping:      c.Body.Damping,
		Pressure:     c.Body.Pressure,
		GravityScale: c.Body.GravityScale,
	}
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Tick:          c.Run.Tick,
		SubIterations: c.Run.Iterations,
		Duration:      c.Run.Duration,
		RecordEvery:   c.Run.RecordEvery,
	}
}

func (c *Config) WorldOptions() world.Options {
	return world.Options{
		Gravity:        c.World.Gravity,
		GravityScale:   c.Body.GravityScale,
		Drag:           c.World.Drag,
		ParticleRadius: c.World.ParticleRadius,
		Floor:          c.World.Floor,
		FloorY:         c.World.FloorY,
		Friction:       c.World.Friction,
		Restitution:    c.World.Restitution,
	}
}

func (c *Config) Validate() error {
	b := c.Body
	if b.Particles < 3 {
		return fmt.Errorf("%w: body needs at least 3 particles, got %d", dynamo.ErrInvalidTopology, b.Particles)
	}
	if b.Radius <= 0 || !dynamo.Finite(b.Radius) {
		return fmt.Errorf("%w: radius must be positive, got %g", dynamo.ErrInvalidParameter, b.Radius)
	}
	if b.Mass <= 0 || !dynamo.Finite(b.Mass) {
		return fmt.Errorf("%w: mass must be positive, got %g", dynamo.ErrInvalidParameter, b.Mass)
	}
	if !dynamo.Finite(b.Elasticity, b.Damping, b.Pressure, b.GravityScale) {
		return fmt.Errorf("%w: body parameters must be finite", dynamo.ErrInvalidParameter)
	}
	if _, err := physics.ParseVolumeMethod(b.Volume); err != nil {
		return err
	}

	r := c.Run
	if r.Tick <= 0 || !dynamo.Finite(r.Tick) {
		return fmt.Errorf("%w: tick must be positive, got %g", dynamo.ErrInvalidParameter, r.Tick)
	}
	if r.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1, got %d", dynamo.ErrInvalidParameter, r.Iterations)
	}
	if r.Duration <= 0 || !dynamo.Finite(r.Duration) {
		return fmt.Errorf("%w: duration must be positive, got %g", dynamo.ErrInvalidParameter, r.Duration)
	}
	if r.RecordEvery < 0 {
		return fmt.Errorf("%w: record_every must not be negative, got %d", dynamo.ErrInvalidParameter, r.RecordEvery)
	}

	if !isKnownHost(c.World.Host) {
		return fmt.Errorf("%w: unknown host %q", dynamo.ErrInvalidParameter, c.World.Host)
	}
	return c.WorldOptions().Validate()
}

func isKnownHost(name string) bool {
	if name == "" {
		return true
	}
	for _, k := range world.Kinds() {
		if string(k) == name {
			return true
		}
	}
	return false
}

// Set assigns a numeric field by its yaml-style name, e.g. "pressure",
// "particles" or "floor_y".
func (c *Config) Set(name string, v float64) error {
	if !dynamo.Finite(v) {
		return fmt.Errorf("%w: %s must be finite", dynamo.ErrInvalidParameter, name)
	}
	switch name {
	case "particles":
		if v != math.Trunc(v) {
			return fmt.Errorf("%w: particles must be whole, got %g", dynamo.ErrInvalidParameter, v)
		}
		c.Body.Particles = int(v)
	case "radius":
		c.Body.Radius = v
	case "mass":
		c.Body.Mass = v
	case "elasticity":
		c.Body.Elasticity = v
	case "damping":
		c.Body.Damping = v
	case "pressure":
		c.Body.Pressure = v
	case "gravity_scale":
		c.Body.GravityScale = v
	case "tick":
		c.Run.Tick = v
	case "iterations":
		if v != math.Trunc(v) {
			return fmt.Errorf("%w: iterations must be whole, got %g", dynamo.ErrInvalidParameter, v)
		}
		c.Run.Iterations = int(v)
	case "duration":
		c.Run.Duration = v
	case "gravity":
		c.World.Gravity = v
	case "drag":
		c.World.Drag = v
	case "particle_radius":
		c.World.ParticleRadius = v
	case "floor_y":
		c.World.FloorY = v
	case "friction":
		c.World.Friction = v
	case "restitution":
		c.World.Restitution = v
	default:
		return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrInvalidParameter, name)
	}
	return nil
}

// SetAll applies Set for every entry, in sorted key order.
func (c *Config) SetAll(params map[string]float64) error {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := c.Set(k, params[k]); err != nil {
			return err
		}
	}
	return nil
}
