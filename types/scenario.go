package types

import (
	"context"
	"fmt"
)

// HookFunc is a scenario setup or teardown callable. Hooks receive the
// scenario's running context and report failure through the returned error.
type HookFunc func(ctx context.Context, sc *ScenarioContext) error

// StepFunc is the callable under test for a single step. A non-nil returned
// value is stored in the running context under the step's name so that later
// steps can consume it.
type StepFunc func(ctx context.Context, sc *ScenarioContext) (any, error)

// Location records where a scenario was defined. Diagnostic metadata only;
// it never affects scheduling.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	if l.File == "" {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// StepDef describes one step: the smallest retryable, timeout-able unit of
// work within a scenario.
type StepDef struct {
	Name    string
	Fn      StepFunc
	Options StepOptions
}

// ScenarioDef is a scenario definition: a named unit of optional
// setup/teardown around an ordered list of steps. Definitions are treated as
// immutable once handed to the engine; names are not required to be unique.
type ScenarioDef struct {
	Name        string
	Description string
	Tags        []string

	// Skip marks the scenario as skipped: it is reported but never executed.
	// SkipReason may be empty.
	Skip       bool
	SkipReason string

	Setup    HookFunc
	Teardown HookFunc
	Steps    []StepDef

	// StepOptions are scenario-level defaults for timeout/retry, overriding
	// run-level defaults and overridden by per-step options.
	StepOptions StepOptions

	Location Location
}

// HasTag reports whether the scenario carries the exact tag.
func (s *ScenarioDef) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
