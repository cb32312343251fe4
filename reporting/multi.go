package reporting

import (
	"context"
	"errors"

	"github.com/drover-run/drover/runner"
	"github.com/drover-run/drover/types"
)

// MultiReporter fans every event out to a list of reporters in order.
// Every reporter sees the event even when an earlier one fails; the
// combined error is returned so the engine still stops the run.
type MultiReporter struct {
	reporters []runner.Reporter
}

var _ runner.Reporter = (*MultiReporter)(nil)

// NewMultiReporter combines reporters into one. Nil entries are dropped.
func NewMultiReporter(reporters ...runner.Reporter) *MultiReporter {
	m := &MultiReporter{}
	for _, r := range reporters {
		if r != nil {
			m.reporters = append(m.reporters, r)
		}
	}
	return m
}

func (m *MultiReporter) each(fn func(r runner.Reporter) error) error {
	var errs []error
	for _, r := range m.reporters {
		if err := fn(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiReporter) OnRunStart(ctx context.Context, scenarios []*types.ScenarioDef) error {
	return m.each(func(r runner.Reporter) error { return r.OnRunStart(ctx, scenarios) })
}

func (m *MultiReporter) OnScenarioStart(ctx context.Context, scenario *types.ScenarioDef) error {
	return m.each(func(r runner.Reporter) error { return r.OnScenarioStart(ctx, scenario) })
}

func (m *MultiReporter) OnScenarioSkip(ctx context.Context, scenario *types.ScenarioDef, reason string) error {
	return m.each(func(r runner.Reporter) error { return r.OnScenarioSkip(ctx, scenario, reason) })
}

func (m *MultiReporter) OnStepStart(ctx context.Context, scenario *types.ScenarioDef, step *types.StepDef) error {
	return m.each(func(r runner.Reporter) error { return r.OnStepStart(ctx, scenario, step) })
}

func (m *MultiReporter) OnStepEnd(ctx context.Context, scenario *types.ScenarioDef, step *types.StepDef, result *types.StepResult) error {
	return m.each(func(r runner.Reporter) error { return r.OnStepEnd(ctx, scenario, step, result) })
}

func (m *MultiReporter) OnStepError(ctx context.Context, scenario *types.ScenarioDef, step *types.StepDef, stepErr error) error {
	return m.each(func(r runner.Reporter) error { return r.OnStepError(ctx, scenario, step, stepErr) })
}

func (m *MultiReporter) OnScenarioEnd(ctx context.Context, scenario *types.ScenarioDef, result *types.ScenarioResult) error {
	return m.each(func(r runner.Reporter) error { return r.OnScenarioEnd(ctx, scenario, result) })
}

func (m *MultiReporter) OnRunEnd(ctx context.Context, summary *types.RunSummary) error {
	return m.each(func(r runner.Reporter) error { return r.OnRunEnd(ctx, summary) })
}
