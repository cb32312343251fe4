package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/drover-run/drover/metrics"
	"github.com/drover-run/drover/types"
)

// Coordinator drives scenarios through the concurrency gate, enforces the
// failure budget, and aggregates the run summary.
type Coordinator struct {
	log    log.Logger
	tracer trace.Tracer
}

func NewCoordinator(logger log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Root()
	}
	return &Coordinator{
		log:    logger,
		tracer: otel.Tracer("scenario runner"),
	}
}

// runState is the only state shared between concurrently finishing
// scenarios: the failure counter, the budget cutoff flag, and the first
// fatal (reporter) error, all behind one mutex.
type runState struct {
	mu        sync.Mutex
	failures  int
	budgetHit bool
	fatalErr  error
}

// recordResult counts a finished scenario against the failure budget and
// reports whether this result tripped the cutoff.
func (s *runState) recordResult(status types.Status, maxFailures int) bool {
	if status != types.StatusFail && status != types.StatusError {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
	if maxFailures > 0 && s.failures >= maxFailures && !s.budgetHit {
		s.budgetHit = true
		return true
	}
	return false
}

// recordFatal keeps the first fatal error; later ones are dropped.
func (s *runState) recordFatal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fatalErr == nil {
		s.fatalErr = err
	}
}

// stopped reports whether new scheduling must halt.
func (s *runState) stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgetHit || s.fatalErr != nil
}

func (s *runState) fatal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fatalErr
}

func (s *runState) cutoff() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgetHit
}

// Run executes the scenarios under opts and returns the aggregated summary.
//
// Scenarios are scheduled in input order, each behind a gate slot, and
// execute concurrently up to MaxConcurrency. A scenario finishing Failed or
// Errored counts against MaxFailures; reaching the budget stops new
// scheduling while in-flight scenarios finish and are counted. Scenarios
// never scheduled are excluded from the summary entirely.
//
// Scenario failures are data in the summary, never an error. Run returns an
// error for invalid options, for the first reporter callback failure (the
// summary is then lost and OnRunEnd is not emitted), and for run-context
// cancellation (scheduling stops, in-flight scenarios finish, and the
// partial summary is returned together with ctx.Err()).
func (c *Coordinator) Run(ctx context.Context, scenarios []*types.ScenarioDef, opts Options) (*types.RunSummary, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	logger := c.log.New("run_id", runID)
	bridge := newReporterBridge(opts.Reporter)

	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("run %s", runID))
	defer span.End()

	start := time.Now()
	if err := bridge.runStart(ctx, scenarios); err != nil {
		return nil, err
	}

	logger.Info("Starting run",
		"scenarios", len(scenarios),
		"max_concurrency", opts.MaxConcurrency,
		"max_failures", opts.MaxFailures)

	g := newGate(opts.MaxConcurrency)
	state := &runState{}
	results := make([]*types.ScenarioResult, len(scenarios))
	exec := &scenarioExecutor{
		log:      logger,
		tracer:   c.tracer,
		bridge:   bridge,
		runID:    runID,
		defaults: opts.StepDefaults,
	}

	var wg sync.WaitGroup
	var ctxErr error
	for i, scenario := range scenarios {
		if state.stopped() {
			logger.Warn("Not scheduling remaining scenarios", "remaining", len(scenarios)-i)
			break
		}
		if err := g.acquire(ctx); err != nil {
			ctxErr = err
			break
		}
		// A budget trip that happened while blocked on the gate still
		// prevents new scheduling.
		if state.stopped() {
			g.release()
			logger.Warn("Not scheduling remaining scenarios", "remaining", len(scenarios)-i)
			break
		}

		wg.Add(1)
		go func(i int, scenario *types.ScenarioDef) {
			defer wg.Done()
			defer g.release()

			res, err := exec.run(ctx, scenario)
			if err != nil {
				state.recordFatal(err)
				return
			}
			// Each goroutine owns its slot; the WaitGroup is the barrier.
			results[i] = res
			metrics.RecordScenario(runID, scenario.Name, string(res.Status), res.Duration)
			if state.recordResult(res.Status, opts.MaxFailures) {
				logger.Warn("Failure budget reached, stopping new scheduling",
					"max_failures", opts.MaxFailures)
			}
		}(i, scenario)
	}
	wg.Wait()

	if err := state.fatal(); err != nil {
		logger.Error("Run aborted by reporter failure", "err", err)
		metrics.RecordError("reporter_failure")
		return nil, err
	}

	summary := buildSummary(runID, start, results, state.cutoff())
	logger.Info("Run complete",
		"status", summary.Status(),
		"total", summary.Total,
		"passed", summary.Passed,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"duration", summary.Duration)
	metrics.RecordRun(runID, string(summary.Status()),
		summary.Total, summary.Passed, summary.Failed, summary.Skipped, summary.Duration)

	if err := bridge.runEnd(ctx, summary); err != nil {
		return summary, err
	}
	return summary, ctxErr
}

// buildSummary folds the collected results into counts. Nil slots are
// scenarios the cutoff kept from being scheduled; they contribute to no
// count. Errored scenarios count as failed so the summary invariant
// Passed+Failed+Skipped == Total holds.
func buildSummary(runID string, start time.Time, results []*types.ScenarioResult, cutoff bool) *types.RunSummary {
	summary := &types.RunSummary{
		RunID:  runID,
		Start:  start,
		Cutoff: cutoff,
	}
	for _, res := range results {
		if res == nil {
			continue
		}
		summary.Total++
		switch res.Status {
		case types.StatusPass:
			summary.Passed++
		case types.StatusSkip:
			summary.Skipped++
		case types.StatusError:
			summary.Failed++
			summary.Errored++
		default:
			summary.Failed++
		}
	}
	summary.Duration = time.Since(start)
	return summary
}
