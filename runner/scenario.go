package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/drover-run/drover/types"
)

// scenarioExecutor runs one scenario through its lifecycle:
// skip short-circuit, setup, sequential steps with first-failure early exit,
// then best-effort teardown. It owns the scenario's event emission.
type scenarioExecutor struct {
	log      log.Logger
	tracer   trace.Tracer
	bridge   *reporterBridge
	runID    string
	defaults types.StepOptions
}

// run executes scenario and returns its result. The returned error is
// reserved for reporter failures; scenario failures are carried in the
// result. When a reporter callback fails mid-scenario, event emission stops
// but teardown still runs so resources are not stranded.
func (e *scenarioExecutor) run(ctx context.Context, scenario *types.ScenarioDef) (*types.ScenarioResult, error) {
	start := time.Now()
	result := &types.ScenarioResult{Name: scenario.Name}

	if scenario.Skip {
		result.Status = types.StatusSkip
		result.SkipReason = scenario.SkipReason
		result.Duration = time.Since(start)
		e.log.Info("Skipping scenario", "scenario", scenario.Name, "reason", scenario.SkipReason)
		if err := e.bridge.scenarioSkip(ctx, scenario, scenario.SkipReason); err != nil {
			return nil, err
		}
		return result, nil
	}

	ctx, span := e.tracer.Start(ctx, fmt.Sprintf("scenario %s", scenario.Name))
	defer span.End()

	if err := e.bridge.scenarioStart(ctx, scenario); err != nil {
		return nil, err
	}

	sc := types.NewScenarioContext(scenario.Name, e.runID, e.log)

	if scenario.Setup != nil {
		if err := runHook(ctx, scenario.Setup, sc); err != nil {
			e.log.Warn("Scenario setup failed", "scenario", scenario.Name, "err", err)
			result.Status = types.StatusError
			result.Err = fmt.Errorf("setup: %w", err)
		}
	}

	var reporterErr error
	if result.Err == nil {
		reporterErr = e.runSteps(ctx, scenario, sc, result)
	}

	// Teardown runs whenever the scenario was not skipped, even after a
	// setup failure, a step failure, or a broken reporter. Its failure is
	// recorded but never replaces the primary outcome.
	if scenario.Teardown != nil {
		if err := runHook(ctx, scenario.Teardown, sc); err != nil {
			e.log.Warn("Scenario teardown failed", "scenario", scenario.Name, "err", err)
			result.TeardownErr = fmt.Errorf("teardown: %w", err)
		}
	}

	if result.Status == "" {
		result.Status = types.StatusPass
	}
	result.Duration = time.Since(start)

	if reporterErr != nil {
		return nil, reporterErr
	}
	if err := e.bridge.scenarioEnd(ctx, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// runSteps executes the steps strictly sequentially, stopping at the first
// failure. OnStepStart fires before every attempt of a step, then exactly
// one of OnStepEnd or OnStepError closes the step out. The returned error is
// a reporter failure, not a step failure.
func (e *scenarioExecutor) runSteps(ctx context.Context, scenario *types.ScenarioDef, sc *types.ScenarioContext, result *types.ScenarioResult) error {
	for i := range scenario.Steps {
		step := &scenario.Steps[i]

		opts := types.ResolveStepOptions(e.defaults, scenario.StepOptions, step.Options)
		stepResult, err := executeStep(ctx, e.log, step, opts, sc, func(int) error {
			return e.bridge.stepStart(ctx, scenario, step)
		})
		if err != nil {
			return err
		}
		result.Steps = append(result.Steps, stepResult)

		if stepResult.Status != types.StatusPass {
			result.Status = types.StatusFail
			result.Err = stepResult.Err
			return e.bridge.stepError(ctx, scenario, step, stepResult.Err)
		}
		if err := e.bridge.stepEnd(ctx, scenario, step, &result.Steps[len(result.Steps)-1]); err != nil {
			return err
		}
	}
	return nil
}

// runHook invokes a setup or teardown callable, converting a panic into an
// error. Hooks are not subject to step timeout or retry options.
func runHook(ctx context.Context, hook types.HookFunc, sc *types.ScenarioContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook panicked: %v", r)
		}
	}()
	return hook(ctx, sc)
}
