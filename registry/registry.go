// Package registry holds the scenario definitions known to the process.
// Scenarios are Go functions, so there is no file discovery: user code
// registers definitions, typically from init functions, and the app hands
// the registered set to the engine after selector filtering.
package registry

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"github.com/drover-run/drover/types"
)

// Registry stores scenario definitions in registration order. Names may
// repeat; definitions are identified by pointer.
type Registry struct {
	log  log.Logger
	mu   sync.RWMutex
	defs []*types.ScenarioDef
}

// New creates an empty registry.
func New(logger log.Logger) *Registry {
	if logger == nil {
		logger = log.Root()
	}
	return &Registry{log: logger}
}

// Register validates def, captures the caller's source location, and adds
// the definition to the registry.
func (r *Registry) Register(def types.ScenarioDef) error {
	return r.register(def, 2)
}

// MustRegister is Register panicking on a validation error, for use from
// init functions.
func (r *Registry) MustRegister(def types.ScenarioDef) {
	if err := r.register(def, 2); err != nil {
		panic(err)
	}
}

func (r *Registry) register(def types.ScenarioDef, skip int) error {
	if err := validate(&def); err != nil {
		return err
	}

	// The location is diagnostic metadata only. A caller-provided one is
	// kept; otherwise the registration site is captured.
	if def.Location.File == "" {
		if _, file, line, ok := runtime.Caller(skip); ok {
			def.Location = types.Location{File: file, Line: line}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs = append(r.defs, &def)
	r.log.Debug("Registered scenario", "name", def.Name, "steps", len(def.Steps), "location", def.Location.String())
	return nil
}

func validate(def *types.ScenarioDef) error {
	if def.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if err := def.StepOptions.Validate(); err != nil {
		return fmt.Errorf("scenario %q: invalid step options: %w", def.Name, err)
	}
	for i := range def.Steps {
		step := &def.Steps[i]
		if step.Name == "" {
			return fmt.Errorf("scenario %q: step %d has no name", def.Name, i)
		}
		if step.Fn == nil {
			return fmt.Errorf("scenario %q: step %q has no function", def.Name, step.Name)
		}
		if err := step.Options.Validate(); err != nil {
			return fmt.Errorf("scenario %q: step %q: invalid options: %w", def.Name, step.Name, err)
		}
	}
	return nil
}

// Scenarios returns the registered definitions in registration order.
func (r *Registry) Scenarios() []*types.ScenarioDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*types.ScenarioDef, len(r.defs))
	copy(out, r.defs)
	return out
}

// Len returns the number of registered scenarios.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

var defaultRegistry = New(log.Root())

// Default returns the process-wide registry used by package-level
// registration.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a scenario to the default registry.
func Register(def types.ScenarioDef) error {
	return defaultRegistry.register(def, 2)
}

// MustRegister adds a scenario to the default registry, panicking on a
// validation error.
func MustRegister(def types.ScenarioDef) {
	if err := defaultRegistry.register(def, 2); err != nil {
		panic(err)
	}
}
