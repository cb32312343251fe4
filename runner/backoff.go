package runner

import (
	"context"
	"time"

	"github.com/drover-run/drover/types"
)

// Shifts beyond this would overflow time.Duration long before any sane
// attempt count reaches it.
const maxBackoffShift = 32

// backoffDelay computes the sleep before the next retry attempt. attempt
// starts at 1 for the delay before the second attempt; no delay precedes the
// first attempt.
//
//	linear:      base * attempt
//	exponential: base * 2^(attempt-1)
func backoffDelay(kind types.BackoffKind, attempt int, base time.Duration) time.Duration {
	if attempt < 1 || base <= 0 {
		return 0
	}
	switch kind {
	case types.BackoffExponential:
		shift := uint(attempt - 1)
		if shift > maxBackoffShift {
			shift = maxBackoffShift
		}
		return base << shift
	default:
		return base * time.Duration(attempt)
	}
}

// sleepContext sleeps for d, returning early with false when ctx is done
// first. A non-positive d reports true immediately.
func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
