package config

import "sort"

var Presets = map[string]func() *Config{
	"balloon": func() *Config {
		c := DefaultConfig()
		c.Name = "balloon"
		c.Body.Particles = 32
		c.Body.Elasticity = 120
		c.Body.Pressure = 40
		c.World.Host = "free"
		c.World.Floor = true
		c.Body.GravityScale = 0.2
		return c
	},
	"jelly": func() *Config {
		c := DefaultConfig()
		c.Name = "jelly"
		c.Body.Elasticity = 60
		c.Body.Damping = 0.5
		c.Body.Pressure = 10
		c.World.Host = "chipmunk"
		c.World.Floor = true
		return c
	},
	"stiff": func() *Config {
		c := DefaultConfig()
		c.Name = "stiff"
		c.Body.Elasticity = 2000
		c.Body.Damping = 10
		c.Body.Pressure = 50
		c.Run.Iterations = 40
		return c
	},
	// four particles at rest without pressure: nothing should move
	"square": func() *Config {
		c := DefaultConfig()
		c.Name = "square"
		c.Body.Particles = 4
		c.Body.Radius = 1.0
		c.Body.Mass = 1.0
		c.Body.Elasticity = 50
		c.Body.Damping = 1
		c.Body.Pressure = 0
		c.Run.Iterations = 1
		c.Run.Duration = 2.0
		return c
	},
	"deflated": func() *Config {
		c := DefaultConfig()
		c.Name = "deflated"
		c.Body.Pressure = 0
		c.Body.Damping = 0.2
		c.World.Host = "free"
		c.World.Floor = true
		return c
	},
	"bouncy": func() *Config {
		c := DefaultConfig()
		c.Name = "bouncy"
		c.Body.Particles = 20
		c.Body.Radius = 0.6
		c.Body.Pressure = 60
		c.Body.Elasticity = 400
		c.Run.Tick = 0.01
		c.World.Host = "chipmunk"
		c.World.Floor = true
		c.World.FloorY = -2
		c.World.Restitution = 0.8
		return c
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
