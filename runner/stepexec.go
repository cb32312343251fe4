package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/drover-run/drover/metrics"
	"github.com/drover-run/drover/types"
)

// ErrStepTimeout is the distinguished error kind carried by a step result
// whose attempt exceeded its timeout. Match it with errors.Is.
var ErrStepTimeout = errors.New("step timed out")

type stepOutcome struct {
	value any
	err   error
}

// executeStep runs one step to completion under the resolved options: up to
// MaxAttempts invocations of Fn, each raced against the timeout, with the
// backoff delay between failures. A passed step's non-nil value is stored in
// the scenario context under the step name.
//
// The executor emits no reporter events itself; the caller supplies
// onAttempt, invoked before every attempt, and emits the terminal events
// from the returned result. A non-nil onAttempt error aborts the step
// immediately and is returned as-is with a zero result.
func executeStep(ctx context.Context, logger log.Logger, step *types.StepDef, opts types.EffectiveStepOptions, sc *types.ScenarioContext, onAttempt func(attempt int) error) (types.StepResult, error) {
	start := time.Now()
	result := types.StepResult{Name: step.Name}

	var lastErr error
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if onAttempt != nil {
			if err := onAttempt(attempt); err != nil {
				return types.StepResult{}, err
			}
		}
		result.Attempts = attempt

		value, err := runAttempt(ctx, step.Fn, opts.Timeout, sc)
		if err == nil {
			if value != nil {
				sc.Set(step.Name, value)
			}
			result.Status = types.StatusPass
			result.Value = value
			result.Duration = time.Since(start)
			return result, nil
		}

		lastErr = err
		logger.Debug("Step attempt failed",
			"step", step.Name,
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"timed_out", errors.Is(err, ErrStepTimeout),
			"err", err)

		if attempt < opts.MaxAttempts {
			metrics.RecordStepRetry(sc.RunID, sc.Scenario, step.Name)
			delay := backoffDelay(opts.Backoff, attempt, opts.Base)
			if !sleepContext(ctx, delay) {
				// Run aborted during backoff; the current failure is terminal.
				break
			}
		}
	}

	result.Status = types.StatusFail
	result.Err = lastErr
	result.TimedOut = errors.Is(lastErr, ErrStepTimeout)
	result.Duration = time.Since(start)
	return result, nil
}

// runAttempt invokes fn once, racing completion against the timeout. The
// attempt runs in its own goroutine with a deadline-derived context, so a
// cooperative fn can stop early; one that ignores cancellation is abandoned
// (the buffered channel lets it finish without leaking a blocked goroutine)
// and its eventual result is discarded. A panic inside fn becomes the
// attempt's failure. A zero timeout waits indefinitely, bounded only by the
// parent context.
func runAttempt(ctx context.Context, fn types.StepFunc, timeout time.Duration, sc *types.ScenarioContext) (any, error) {
	attemptCtx := ctx
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	outcome := make(chan stepOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				outcome <- stepOutcome{err: fmt.Errorf("step panicked: %v", r)}
			}
		}()
		value, err := fn(attemptCtx, sc)
		outcome <- stepOutcome{value: value, err: err}
	}()

	select {
	case out := <-outcome:
		// A cooperative fn that bails out on our expired deadline still
		// counts as a timeout, not a plain failure.
		if out.err != nil && timeout > 0 &&
			errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && errors.Is(out.err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrStepTimeout, timeout)
		}
		return out.value, out.err
	case <-attemptCtx.Done():
		if timeout > 0 && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrStepTimeout, timeout)
		}
		return nil, attemptCtx.Err()
	}
}
