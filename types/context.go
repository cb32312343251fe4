package types

import (
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

// ScenarioContext is the typed running context threaded through a scenario's
// setup, steps, and teardown. It carries the scenario's identity plus a
// small value store used to pass data from one step to later ones: a passed
// step's non-nil return value is stored under the step's name.
//
// The store is guarded because an abandoned, timed-out attempt may still
// write after the scenario has moved on.
type ScenarioContext struct {
	Scenario string
	RunID    string
	Logger   log.Logger

	mu     sync.RWMutex
	values map[string]any
}

// NewScenarioContext creates the running context for one scenario execution.
func NewScenarioContext(scenario, runID string, logger log.Logger) *ScenarioContext {
	if logger == nil {
		logger = log.Root()
	}
	return &ScenarioContext{
		Scenario: scenario,
		RunID:    runID,
		Logger:   logger.New("scenario", scenario),
		values:   make(map[string]any),
	}
}

// Set stores a value under key, replacing any existing entry.
func (sc *ScenarioContext) Set(key string, value any) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.values == nil {
		sc.values = make(map[string]any)
	}
	sc.values[key] = value
}

// Get returns the value stored under key and whether it was present.
func (sc *ScenarioContext) Get(key string) (any, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	v, ok := sc.values[key]
	return v, ok
}

// Value returns the value stored under key, or nil when absent.
func (sc *ScenarioContext) Value(key string) any {
	v, _ := sc.Get(key)
	return v
}

// Keys returns the stored keys in no particular order.
func (sc *ScenarioContext) Keys() []string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	keys := make([]string, 0, len(sc.values))
	for k := range sc.values {
		keys = append(keys, k)
	}
	return keys
}
