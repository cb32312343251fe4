package drover

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	"github.com/drover-run/drover/flags"
	"github.com/drover-run/drover/types"
)

// Plan is an optional YAML file holding the run settings a team wants applied
// to every invocation. Flags override plan values field by field.
//
//	defaults:
//	  timeout: 30s
//	  retry:
//	    max_attempts: 3
//	    backoff: exponential
//	    base: 250ms
//	max_concurrency: 4
//	max_failures: 10
//	selectors:
//	  - tag:smoke
//	reporter: console
//	log_dir: logs
//	run_interval: 1h
type Plan struct {
	// Defaults seeds the run-level layer of the step option merge.
	Defaults types.StepOptions `yaml:"defaults,omitempty"`
	// MaxConcurrency bounds simultaneously running scenarios. 0 means unbounded.
	MaxConcurrency int `yaml:"max_concurrency,omitempty"`
	// MaxFailures stops scheduling new scenarios once reached. 0 disables the budget.
	MaxFailures int `yaml:"max_failures,omitempty"`
	// Selectors filter which registered scenarios run.
	Selectors []string `yaml:"selectors,omitempty"`
	// Reporter selects the console output mode (console, json or quiet).
	Reporter string `yaml:"reporter,omitempty"`
	// LogDir enables per-run file artifacts when set.
	LogDir string `yaml:"log_dir,omitempty"`
	// RunInterval re-runs the scenarios on a timer. 0 means run-once mode.
	RunInterval time.Duration `yaml:"run_interval,omitempty"`
	// RunOnce forces a single run even when RunInterval is set.
	RunOnce bool `yaml:"run_once,omitempty"`
	// Verbose includes per-step rows in the console summary table.
	Verbose bool `yaml:"verbose,omitempty"`
}

// LoadPlan reads and validates a run plan file.
func LoadPlan(path string) (*Plan, error) {
	log.Debug("Reading run plan file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parsing plan file: %w", err)
	}

	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan file %s: %w", path, err)
	}

	return &plan, nil
}

// Validate checks plan sanity. Selector strings are parsed later, after the
// flag merge, so they are not checked here.
func (p *Plan) Validate() error {
	if err := p.Defaults.Validate(); err != nil {
		return fmt.Errorf("invalid defaults: %w", err)
	}
	if p.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must not be negative, got %d", p.MaxConcurrency)
	}
	if p.MaxFailures < 0 {
		return fmt.Errorf("max_failures must not be negative, got %d", p.MaxFailures)
	}
	if p.RunInterval < 0 {
		return fmt.Errorf("run_interval must not be negative, got %s", p.RunInterval)
	}
	if p.Reporter != "" && !flags.ReporterType(p.Reporter).IsValid() {
		return fmt.Errorf("unknown reporter %q", p.Reporter)
	}
	return nil
}
