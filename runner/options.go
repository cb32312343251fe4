package runner

import (
	"fmt"

	"github.com/drover-run/drover/types"
)

// Options configures one engine invocation.
type Options struct {
	// Reporter receives lifecycle events; nil means NopReporter.
	Reporter Reporter
	// MaxConcurrency bounds simultaneously executing scenarios.
	// 0 means unbounded; negative is invalid.
	MaxConcurrency int
	// MaxFailures is the failure budget: once this many scenarios have
	// failed or errored, no new scenarios are scheduled. 0 disables the
	// budget; negative is invalid.
	MaxFailures int
	// StepDefaults are run-level step options, the lowest layer of the
	// timeout/retry merge.
	StepDefaults types.StepOptions
}

func (o Options) validate() error {
	if o.MaxConcurrency < 0 {
		return fmt.Errorf("max concurrency must not be negative, got %d", o.MaxConcurrency)
	}
	if o.MaxFailures < 0 {
		return fmt.Errorf("max failures must not be negative, got %d", o.MaxFailures)
	}
	if err := o.StepDefaults.Validate(); err != nil {
		return fmt.Errorf("invalid step defaults: %w", err)
	}
	return nil
}
