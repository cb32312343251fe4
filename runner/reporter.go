package runner

import (
	"context"
	"fmt"

	"github.com/drover-run/drover/types"
)

// Reporter consumes lifecycle events from the engine. For any single
// scenario the calls arrive in the order
//
//	OnScenarioStart (or OnScenarioSkip),
//	[OnStepStart+, (OnStepEnd | OnStepError)]*,
//	OnScenarioEnd
//
// where OnStepStart fires before every retry attempt of a step, so a step
// retried n times contributes n OnStepStart calls followed by exactly one
// OnStepEnd or OnStepError. Events from different scenarios interleave
// arbitrarily. OnRunStart
// precedes every other event and OnRunEnd follows every other event. Each
// callback is awaited before the owning scenario proceeds, and a returned
// error fails the whole run.
//
// Callbacks for different scenarios may be invoked concurrently;
// implementations serialize their own I/O.
type Reporter interface {
	OnRunStart(ctx context.Context, scenarios []*types.ScenarioDef) error
	OnScenarioStart(ctx context.Context, scenario *types.ScenarioDef) error
	OnScenarioSkip(ctx context.Context, scenario *types.ScenarioDef, reason string) error
	OnStepStart(ctx context.Context, scenario *types.ScenarioDef, step *types.StepDef) error
	OnStepEnd(ctx context.Context, scenario *types.ScenarioDef, step *types.StepDef, result *types.StepResult) error
	OnStepError(ctx context.Context, scenario *types.ScenarioDef, step *types.StepDef, stepErr error) error
	OnScenarioEnd(ctx context.Context, scenario *types.ScenarioDef, result *types.ScenarioResult) error
	OnRunEnd(ctx context.Context, summary *types.RunSummary) error
}

// NopReporter ignores every event. It is the default when no reporter is
// configured.
type NopReporter struct{}

var _ Reporter = NopReporter{}

func (NopReporter) OnRunStart(context.Context, []*types.ScenarioDef) error { return nil }
func (NopReporter) OnScenarioStart(context.Context, *types.ScenarioDef) error {
	return nil
}
func (NopReporter) OnScenarioSkip(context.Context, *types.ScenarioDef, string) error {
	return nil
}
func (NopReporter) OnStepStart(context.Context, *types.ScenarioDef, *types.StepDef) error {
	return nil
}
func (NopReporter) OnStepEnd(context.Context, *types.ScenarioDef, *types.StepDef, *types.StepResult) error {
	return nil
}
func (NopReporter) OnStepError(context.Context, *types.ScenarioDef, *types.StepDef, error) error {
	return nil
}
func (NopReporter) OnScenarioEnd(context.Context, *types.ScenarioDef, *types.ScenarioResult) error {
	return nil
}
func (NopReporter) OnRunEnd(context.Context, *types.RunSummary) error { return nil }

// reporterBridge funnels engine events into the reporter. Per-scenario
// ordering falls out of each scenario executor being a single goroutine that
// awaits every callback; the bridge never blocks one scenario's callbacks on
// another's. Callback errors are wrapped with the callback name so the run
// error names the broken method.
type reporterBridge struct {
	reporter Reporter
}

func newReporterBridge(reporter Reporter) *reporterBridge {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &reporterBridge{reporter: reporter}
}

func (b *reporterBridge) runStart(ctx context.Context, scenarios []*types.ScenarioDef) error {
	if err := b.reporter.OnRunStart(ctx, scenarios); err != nil {
		return fmt.Errorf("reporter OnRunStart: %w", err)
	}
	return nil
}

func (b *reporterBridge) scenarioStart(ctx context.Context, scenario *types.ScenarioDef) error {
	if err := b.reporter.OnScenarioStart(ctx, scenario); err != nil {
		return fmt.Errorf("reporter OnScenarioStart: %w", err)
	}
	return nil
}

func (b *reporterBridge) scenarioSkip(ctx context.Context, scenario *types.ScenarioDef, reason string) error {
	if err := b.reporter.OnScenarioSkip(ctx, scenario, reason); err != nil {
		return fmt.Errorf("reporter OnScenarioSkip: %w", err)
	}
	return nil
}

func (b *reporterBridge) stepStart(ctx context.Context, scenario *types.ScenarioDef, step *types.StepDef) error {
	if err := b.reporter.OnStepStart(ctx, scenario, step); err != nil {
		return fmt.Errorf("reporter OnStepStart: %w", err)
	}
	return nil
}

func (b *reporterBridge) stepEnd(ctx context.Context, scenario *types.ScenarioDef, step *types.StepDef, result *types.StepResult) error {
	if err := b.reporter.OnStepEnd(ctx, scenario, step, result); err != nil {
		return fmt.Errorf("reporter OnStepEnd: %w", err)
	}
	return nil
}

func (b *reporterBridge) stepError(ctx context.Context, scenario *types.ScenarioDef, step *types.StepDef, stepErr error) error {
	if err := b.reporter.OnStepError(ctx, scenario, step, stepErr); err != nil {
		return fmt.Errorf("reporter OnStepError: %w", err)
	}
	return nil
}

func (b *reporterBridge) scenarioEnd(ctx context.Context, scenario *types.ScenarioDef, result *types.ScenarioResult) error {
	if err := b.reporter.OnScenarioEnd(ctx, scenario, result); err != nil {
		return fmt.Errorf("reporter OnScenarioEnd: %w", err)
	}
	return nil
}

func (b *reporterBridge) runEnd(ctx context.Context, summary *types.RunSummary) error {
	if err := b.reporter.OnRunEnd(ctx, summary); err != nil {
		return fmt.Errorf("reporter OnRunEnd: %w", err)
	}
	return nil
}
