package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/chaoscope/internal/dynamo"
	"github.com/san-kum/chaoscope/internal/integrators"
	"github.com/san-kum/chaoscope/internal/physics"
)

// Registry maps config names to system and integrator factories.
type Registry struct {
	systems     map[string]func() dynamo.System
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		systems:     make(map[string]func() dynamo.System),
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.systems["double-pendulum"] = func() dynamo.System { return physics.NewDoublePendulum() }
	r.systems["elastic-pendulum"] = func() dynamo.System { return physics.NewElasticPendulum() }
	r.systems["henon-heiles"] = func() dynamo.System { return physics.NewHenonHeiles() }
	r.systems["duffing"] = func() dynamo.System { return physics.NewDuffing() }

	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["verlet"] = func() dynamo.Integrator { return integrators.NewVerlet() }

	return r
}

func (r *Registry) System(name string) (dynamo.System, error) {
	fn, ok := r.systems[name]
	if !ok {
		return nil, fmt.Errorf("config: unknown system %q (have %v)", name, r.ListSystems())
	}
	return fn(), nil
}

func (r *Registry) Integrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("config: unknown integrator %q (have %v)", name, r.ListIntegrators())
	}
	return fn(), nil
}

// IntegratorFactory returns the constructor itself, for callers that
// need one integrator per worker.
func (r *Registry) IntegratorFactory(name string) (func() dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("config: unknown integrator %q (have %v)", name, r.ListIntegrators())
	}
	return fn, nil
}

func (r *Registry) ListSystems() []string {
	names := make([]string, 0, len(r.systems))
	for name := range r.systems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
