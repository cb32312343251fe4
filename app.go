package drover

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/drover-run/drover/flags"
	"github.com/drover-run/drover/registry"
	"github.com/drover-run/drover/reporting"
	"github.com/drover-run/drover/runner"
	"github.com/drover-run/drover/selector"
	"github.com/drover-run/drover/types"
)

// App wires the registry, selector filtering, the run coordinator, and the
// configured reporter stack into one runnable service.
type App struct {
	ctx       context.Context
	config    *Config
	version   string
	registry  *registry.Registry
	coord     *runner.Coordinator
	scheduler Scheduler
	reporter  runner.Reporter
	scenarios []*types.ScenarioDef

	mu     sync.Mutex
	result *types.RunSummary

	shutdownCallback func(error) // Callback to signal application shutdown
}

// New creates an App from the given configuration. A nil reg falls back to
// the process-wide default registry. shutdownCallback, when non-nil, is
// invoked after a successful run in run-once mode; callers that drive
// shutdown themselves may pass nil.
func New(ctx context.Context, config *Config, version string, reg *registry.Registry, shutdownCallback func(error)) (*App, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if reg == nil {
		reg = registry.Default()
	}

	config.Log.Debug("Creating drover with config",
		"selectors", len(config.Selectors),
		"maxConcurrency", config.MaxConcurrency,
		"maxFailures", config.MaxFailures,
		"reporter", config.Reporter,
		"logDir", config.LogDir,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce)

	reporter, err := buildReporter(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create reporter: %w", err)
	}

	app := &App{
		ctx:              ctx,
		config:           config,
		version:          version,
		registry:         reg,
		coord:            runner.NewCoordinator(config.Log),
		scheduler:        NewDefaultScheduler(config.RunInterval, config.RunOnce, config.Log),
		reporter:         reporter,
		shutdownCallback: shutdownCallback,
	}
	config.Log.Info("drover.New: created run coordinator", "version", version)

	return app, nil
}

// buildReporter assembles the reporter stack for the configured output mode,
// plus per-run file artifacts when a log directory is set.
func buildReporter(config *Config) (runner.Reporter, error) {
	var console runner.Reporter
	switch config.Reporter {
	case flags.ReporterJSON:
		console = reporting.NewJSONLReporter(os.Stdout)
	case flags.ReporterQuiet:
		console = runner.NopReporter{}
	default:
		console = reporting.NewConsoleReporter(config.Log, os.Stdout, config.Verbose)
	}

	if config.LogDir == "" {
		return console, nil
	}
	file, err := reporting.NewFileReporter(config.Log, config.LogDir)
	if err != nil {
		return nil, err
	}
	return reporting.NewMultiReporter(console, file), nil
}

// Start selects the scenarios to run, runs them once immediately, and in
// continuous mode keeps re-running them at the configured interval.
func (a *App) Start(ctx context.Context) (err error) {
	// A panic anywhere in the run path is a runtime error, not a crash
	defer func() {
		if r := recover(); r != nil {
			a.config.Log.Error("Runtime error occurred", "error", r)
			err = fmt.Errorf("runtime panic: %v", r)
		}
	}()

	a.ctx = ctx

	scenarios := selector.Filter(a.registry.Scenarios(), a.config.Selectors)
	if len(scenarios) == 0 {
		if a.registry.Len() == 0 {
			return NewNotFoundError("no scenarios registered")
		}
		return NewNotFoundError(fmt.Sprintf("no scenarios match selectors: %s", describeSelectors(a.config.Selectors)))
	}
	a.scenarios = scenarios
	a.config.Log.Info("Selected scenarios", "selected", len(scenarios), "registered", a.registry.Len())

	a.scheduler.RegisterCallback(a.runScenarios)

	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}

	if a.config.RunOnce {
		a.config.Log.Info("Run completed, exiting (run-once mode)")

		if result := a.Result(); result != nil && result.Failures() > 0 {
			a.config.Log.Warn("Run-once run completed with failures, returning exit code 1")
			return NewRunFailureError(result.String())
		}

		if a.shutdownCallback != nil {
			go func() {
				a.shutdownCallback(nil)
			}()
		}
		return nil
	}

	a.config.Log.Debug("drover started successfully")
	return nil
}

// runScenarios runs all selected scenarios once and records the summary.
func (a *App) runScenarios() error {
	a.config.Log.Info("Running scenarios...", "count", len(a.scenarios))

	summary, err := a.coord.Run(a.ctx, a.scenarios, runner.Options{
		Reporter:       a.reporter,
		MaxConcurrency: a.config.MaxConcurrency,
		MaxFailures:    a.config.MaxFailures,
		StepDefaults:   a.config.StepDefaults,
	})
	if summary != nil {
		a.mu.Lock()
		a.result = summary
		a.mu.Unlock()
	}
	if err != nil {
		// An engine or reporter error, not a scenario failure
		a.config.Log.Error("Runtime error running scenarios", "error", err)
		return err
	}

	a.config.Log.Info("Run completed",
		"run_id", summary.RunID,
		"status", summary.Status(),
		"total", summary.Total,
		"passed", summary.Passed,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"errored", summary.Errored,
		"cutoff", summary.Cutoff,
		"duration", summary.Duration)
	return nil
}

// Stop stops the drover service.
func (a *App) Stop(ctx context.Context) error {
	a.config.Log.Info("Stopping drover")

	if err := a.scheduler.Stop(); err != nil {
		return err
	}

	a.config.Log.Info("drover stopped successfully")
	return nil
}

// Stopped returns true if the drover service is stopped.
func (a *App) Stopped() bool {
	return a.scheduler.Stopped()
}

// WaitForShutdown blocks until all background goroutines have terminated.
// This is useful in tests to ensure complete cleanup before moving to the next test.
func (a *App) WaitForShutdown(ctx context.Context) error {
	return a.scheduler.WaitForShutdown(ctx)
}

// Result returns the summary of the most recent completed run, or nil when
// no run has completed yet.
func (a *App) Result() *types.RunSummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

func describeSelectors(sels []selector.Selector) string {
	parts := make([]string, 0, len(sels))
	for _, s := range sels {
		parts = append(parts, fmt.Sprintf("%q", s.String()))
	}
	return strings.Join(parts, ", ")
}
