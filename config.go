package drover

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/drover-run/drover/flags"
	"github.com/drover-run/drover/selector"
	"github.com/drover-run/drover/types"
)

// MaxReasonableConcurrency is the bound above which NewConfig warns that the
// host is likely oversubscribed. Higher values are still allowed.
const MaxReasonableConcurrency = 32

// Config holds the application configuration
type Config struct {
	Selectors      []selector.Selector // parsed scenario filters, OR-combined
	MaxConcurrency int                 // simultaneous scenarios, 0 = unbounded
	MaxFailures    int                 // failure budget, 0 = disabled
	StepDefaults   types.StepOptions   // run-level layer of the step option merge
	Reporter       flags.ReporterType  // console output mode
	LogDir         string              // per-run artifact directory, empty disables file output
	RunInterval    time.Duration       // interval between runs
	RunOnce        bool                // exit after a single run
	Verbose        bool                // per-step rows in the console table
	Log            log.Logger
}

// NewConfig creates a new Config from the cli context, layering flag values
// over the run plan (when one is given) over built-in defaults.
func NewConfig(ctx *cli.Context, logger log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	plan := &Plan{}
	if path := ctx.String(flags.Plan.Name); path != "" {
		var err error
		plan, err = LoadPlan(path)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		MaxConcurrency: plan.MaxConcurrency,
		MaxFailures:    plan.MaxFailures,
		StepDefaults:   plan.Defaults,
		Reporter:       flags.ReporterConsole,
		LogDir:         plan.LogDir,
		RunInterval:    plan.RunInterval,
		Verbose:        plan.Verbose,
		Log:            logger,
	}
	if plan.Reporter != "" {
		cfg.Reporter = flags.ReporterType(plan.Reporter)
	}

	if ctx.IsSet(flags.MaxConcurrency.Name) {
		cfg.MaxConcurrency = ctx.Int(flags.MaxConcurrency.Name)
	}
	if ctx.IsSet(flags.MaxFailures.Name) {
		cfg.MaxFailures = ctx.Int(flags.MaxFailures.Name)
	}
	if ctx.IsSet(flags.Reporter.Name) {
		cfg.Reporter = flags.ReporterType(ctx.String(flags.Reporter.Name))
	}
	if ctx.IsSet(flags.LogDir.Name) {
		cfg.LogDir = ctx.String(flags.LogDir.Name)
	}
	if ctx.IsSet(flags.RunInterval.Name) {
		cfg.RunInterval = ctx.Duration(flags.RunInterval.Name)
	}
	if ctx.IsSet(flags.Verbose.Name) {
		cfg.Verbose = ctx.Bool(flags.Verbose.Name)
	}

	mergeStepFlags(ctx, &cfg.StepDefaults)

	raws := plan.Selectors
	if ctx.IsSet(flags.Selectors.Name) {
		raws = ctx.StringSlice(flags.Selectors.Name)
	}
	sels, err := selector.ParseAll(raws)
	if err != nil {
		return nil, fmt.Errorf("parsing selectors: %w", err)
	}
	cfg.Selectors = sels

	// A zero interval means run-once mode. The plan may force run-once with
	// an interval configured, but an explicit interval flag wins.
	cfg.RunOnce = cfg.RunInterval == 0
	if !ctx.IsSet(flags.RunInterval.Name) && plan.RunOnce {
		cfg.RunOnce = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.LogDir != "" {
		absLogDir, err := filepath.Abs(cfg.LogDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for log directory '%s': %w", cfg.LogDir, err)
		}
		cfg.LogDir = absLogDir
	}

	if cfg.MaxConcurrency > MaxReasonableConcurrency {
		logger.Warn("Very high max concurrency, the host may be oversubscribed",
			"max_concurrency", cfg.MaxConcurrency,
			"reasonable", MaxReasonableConcurrency)
	}

	return cfg, nil
}

// mergeStepFlags overlays the step option flags onto the plan-provided
// defaults. Only flags the user actually set override the plan.
func mergeStepFlags(ctx *cli.Context, opts *types.StepOptions) {
	if ctx.IsSet(flags.Timeout.Name) {
		timeout := ctx.Duration(flags.Timeout.Name)
		opts.Timeout = &timeout
	}

	if !ctx.IsSet(flags.RetryAttempts.Name) &&
		!ctx.IsSet(flags.RetryBackoff.Name) &&
		!ctx.IsSet(flags.RetryBase.Name) {
		return
	}
	if opts.Retry == nil {
		opts.Retry = &types.RetryOptions{}
	}
	if ctx.IsSet(flags.RetryAttempts.Name) {
		opts.Retry.MaxAttempts = ctx.Int(flags.RetryAttempts.Name)
	}
	if ctx.IsSet(flags.RetryBackoff.Name) {
		opts.Retry.Backoff = types.BackoffKind(ctx.String(flags.RetryBackoff.Name))
	}
	if ctx.IsSet(flags.RetryBase.Name) {
		base := ctx.Duration(flags.RetryBase.Name)
		opts.Retry.Base = &base
	}
}

// Validate checks the assembled configuration before it reaches the engine.
func (c *Config) Validate() error {
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max concurrency must not be negative, got %d", c.MaxConcurrency)
	}
	if c.MaxFailures < 0 {
		return fmt.Errorf("max failures must not be negative, got %d", c.MaxFailures)
	}
	if c.RunInterval < 0 {
		return fmt.Errorf("run interval must not be negative, got %s", c.RunInterval)
	}
	if err := c.StepDefaults.Validate(); err != nil {
		return fmt.Errorf("invalid step defaults: %w", err)
	}
	if !c.Reporter.IsValid() {
		return fmt.Errorf("unknown reporter %q", c.Reporter)
	}
	return nil
}
