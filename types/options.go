package types

import (
	"fmt"
	"time"
)

// BackoffKind selects the delay strategy applied between retry attempts.
type BackoffKind string

const (
	BackoffLinear      BackoffKind = "linear"
	BackoffExponential BackoffKind = "exponential"
)

// DefaultBackoffBase is the backoff delay unit used when no configuration
// layer sets one.
const DefaultBackoffBase = 100 * time.Millisecond

// RetryOptions configures per-step retries. Zero values mean "unset" so the
// layered merge can fall through to a lower layer.
type RetryOptions struct {
	// MaxAttempts is the total number of attempts including the first.
	// Must be >= 1 when set; 0 means unset.
	MaxAttempts int `yaml:"max_attempts,omitempty"`
	// Backoff selects the delay strategy between attempts.
	Backoff BackoffKind `yaml:"backoff,omitempty"`
	// Base is the backoff delay unit.
	Base *time.Duration `yaml:"base,omitempty"`
}

// StepOptions configures a step's timeout and retry behavior. Fields left
// unset at a higher layer fall through to the lower layer during the merge.
type StepOptions struct {
	Timeout *time.Duration `yaml:"timeout,omitempty"`
	Retry   *RetryOptions  `yaml:"retry,omitempty"`
}

// Validate checks option sanity for a single layer.
func (o StepOptions) Validate() error {
	if o.Timeout != nil && *o.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", *o.Timeout)
	}
	if o.Retry == nil {
		return nil
	}
	if o.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry max_attempts must be >= 1, got %d", o.Retry.MaxAttempts)
	}
	if k := o.Retry.Backoff; k != "" && k != BackoffLinear && k != BackoffExponential {
		return fmt.Errorf("unknown backoff kind %q", k)
	}
	if o.Retry.Base != nil && *o.Retry.Base < 0 {
		return fmt.Errorf("retry base must not be negative, got %s", *o.Retry.Base)
	}
	return nil
}

// EffectiveStepOptions is the fully resolved option set for one step
// execution. A zero Timeout means unbounded.
type EffectiveStepOptions struct {
	Timeout     time.Duration
	MaxAttempts int
	Backoff     BackoffKind
	Base        time.Duration
}

// ResolveStepOptions merges the three option layers, lowest to highest
// priority: run defaults < scenario defaults < step options. The merge is
// field-wise including retry subfields; an unset field falls through to the
// layer below. Defaults: unbounded timeout, a single attempt, linear backoff
// with DefaultBackoffBase.
func ResolveStepOptions(run, scenario, step StepOptions) EffectiveStepOptions {
	eff := EffectiveStepOptions{
		MaxAttempts: 1,
		Backoff:     BackoffLinear,
		Base:        DefaultBackoffBase,
	}
	for _, layer := range []StepOptions{run, scenario, step} {
		if layer.Timeout != nil {
			eff.Timeout = *layer.Timeout
		}
		if layer.Retry == nil {
			continue
		}
		if layer.Retry.MaxAttempts > 0 {
			eff.MaxAttempts = layer.Retry.MaxAttempts
		}
		if layer.Retry.Backoff != "" {
			eff.Backoff = layer.Retry.Backoff
		}
		if layer.Retry.Base != nil {
			eff.Base = *layer.Retry.Base
		}
	}
	return eff
}
