package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func durPtr(d time.Duration) *time.Duration { return &d }

func TestResolveStepOptionsDefaults(t *testing.T) {
	eff := ResolveStepOptions(StepOptions{}, StepOptions{}, StepOptions{})

	assert.Equal(t, time.Duration(0), eff.Timeout, "default timeout is unbounded")
	assert.Equal(t, 1, eff.MaxAttempts, "default is a single attempt")
	assert.Equal(t, BackoffLinear, eff.Backoff)
	assert.Equal(t, DefaultBackoffBase, eff.Base)
}

func TestResolveStepOptionsLayering(t *testing.T) {
	run := StepOptions{
		Timeout: durPtr(time.Minute),
		Retry:   &RetryOptions{MaxAttempts: 5, Backoff: BackoffExponential, Base: durPtr(time.Second)},
	}
	scenario := StepOptions{
		Retry: &RetryOptions{MaxAttempts: 3},
	}
	step := StepOptions{
		Timeout: durPtr(10 * time.Second),
	}

	eff := ResolveStepOptions(run, scenario, step)

	assert.Equal(t, 10*time.Second, eff.Timeout, "step timeout overrides run timeout")
	assert.Equal(t, 3, eff.MaxAttempts, "scenario retry overrides run retry")
	assert.Equal(t, BackoffExponential, eff.Backoff, "unset scenario backoff falls through to run layer")
	assert.Equal(t, time.Second, eff.Base, "unset base falls through to run layer")
}

func TestResolveStepOptionsRetrySubfieldFallthrough(t *testing.T) {
	// A retry block at a higher layer only overrides the subfields it sets.
	run := StepOptions{Retry: &RetryOptions{MaxAttempts: 4, Backoff: BackoffExponential}}
	step := StepOptions{Retry: &RetryOptions{Backoff: BackoffLinear}}

	eff := ResolveStepOptions(run, StepOptions{}, step)

	assert.Equal(t, 4, eff.MaxAttempts, "step retry block without max_attempts keeps run value")
	assert.Equal(t, BackoffLinear, eff.Backoff)
}

func TestStepOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    StepOptions
		wantErr bool
	}{
		{name: "empty", opts: StepOptions{}},
		{name: "valid", opts: StepOptions{
			Timeout: durPtr(time.Second),
			Retry:   &RetryOptions{MaxAttempts: 2, Backoff: BackoffLinear},
		}},
		{name: "negative timeout", opts: StepOptions{Timeout: durPtr(-time.Second)}, wantErr: true},
		{name: "negative attempts", opts: StepOptions{Retry: &RetryOptions{MaxAttempts: -1}}, wantErr: true},
		{name: "unknown backoff", opts: StepOptions{Retry: &RetryOptions{Backoff: "fibonacci"}}, wantErr: true},
		{name: "negative base", opts: StepOptions{Retry: &RetryOptions{Base: durPtr(-time.Millisecond)}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
