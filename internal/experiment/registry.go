package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/psbody/internal/dynamo"
	"github.com/san-kum/psbody/internal/integrators"
	"github.com/san-kum/psbody/internal/physics"
	"github.com/san-kum/psbody/internal/world"
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
	hosts       map[string]world.Kind
	volumes     map[string]physics.VolumeMethod
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		hosts:       make(map[string]world.Kind),
		volumes:     make(map[string]physics.VolumeMethod),
	}

	r.integrators["heun"] = func() dynamo.Integrator { return integrators.NewHeun() }
	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["verlet"] = func() dynamo.Integrator { return integrators.NewVerlet() }

	for _, k := range world.Kinds() {
		r.hosts[string(k)] = k
	}

	r.volumes[string(physics.VolumeDivergence)] = physics.VolumeDivergence
	r.volumes[string(physics.VolumeExtent)] = physics.VolumeExtent

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator: %s", dynamo.ErrInvalidParameter, name)
	}
	return fn(), nil
}

func (r *Registry) GetHost(name string) (world.Kind, error) {
	if name == "" {
		return world.KindNone, nil
	}
	k, ok := r.hosts[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown host: %s", dynamo.ErrInvalidParameter, name)
	}
	return k, nil
}

func (r *Registry) GetVolumeMethod(name string) (physics.VolumeMethod, error) {
	if name == "" {
		return physics.VolumeDivergence, nil
	}
	m, ok := r.volumes[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown volume method: %s", dynamo.ErrInvalidParameter, name)
	}
	return m, nil
}

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListHosts() []string       { return sortedKeys(r.hosts) }
func (r *Registry) ListVolumeMethods() []string {
	return sortedKeys(r.volumes)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
