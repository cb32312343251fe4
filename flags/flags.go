package flags

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "DROVER"

// prefixEnvVars prepends the application env var prefix to name.
func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

// ReporterType selects the console output mode for a run.
type ReporterType string

const (
	// ReporterConsole renders the summary table after the run.
	ReporterConsole ReporterType = "console"
	// ReporterJSON streams one JSON object per lifecycle event to stdout.
	ReporterJSON ReporterType = "json"
	// ReporterQuiet suppresses console output entirely.
	ReporterQuiet ReporterType = "quiet"
)

func (r ReporterType) String() string {
	return string(r)
}

// IsValid reports whether the reporter type is one of the supported modes.
func (r ReporterType) IsValid() bool {
	switch r {
	case ReporterConsole, ReporterJSON, ReporterQuiet:
		return true
	default:
		return false
	}
}

// ValidReporterTypes returns all supported reporter types.
func ValidReporterTypes() []ReporterType {
	return []ReporterType{ReporterConsole, ReporterJSON, ReporterQuiet}
}

func validateReporter(value string) error {
	if !ReporterType(value).IsValid() {
		names := make([]string, 0, len(ValidReporterTypes()))
		for _, t := range ValidReporterTypes() {
			names = append(names, t.String())
		}
		return fmt.Errorf("reporter must be one of: %s (got: %s)", strings.Join(names, ", "), value)
	}
	return nil
}

var (
	Plan = &cli.StringFlag{
		Name:    "plan",
		Value:   "",
		EnvVars: prefixEnvVars("PLAN"),
		Usage:   "Path to a run plan file (eg. 'drover.yaml')",
	}
	Selectors = &cli.StringSliceFlag{
		Name:    "select",
		Aliases: []string{"s"},
		EnvVars: prefixEnvVars("SELECT"),
		Usage:   "Scenario selector, repeatable. Comma joins AND terms (eg. 'tag:smoke,!checkout')",
	}
	MaxConcurrency = &cli.IntFlag{
		Name:    "max-concurrency",
		Value:   0,
		EnvVars: prefixEnvVars("MAX_CONCURRENCY"),
		Usage:   "Maximum number of scenarios running at once. Set to 0 or omit for unbounded.",
	}
	MaxFailures = &cli.IntFlag{
		Name:    "max-failures",
		Value:   0,
		EnvVars: prefixEnvVars("MAX_FAILURES"),
		Usage:   "Stop scheduling new scenarios after this many failures. Set to 0 or omit to disable the budget.",
	}
	Timeout = &cli.DurationFlag{
		Name:    "timeout",
		Value:   0,
		EnvVars: prefixEnvVars("TIMEOUT"),
		Usage:   "Default timeout for individual steps (eg. '30s'). Set to 0 or omit for unbounded.",
	}
	RetryAttempts = &cli.IntFlag{
		Name:    "retry-attempts",
		Value:   0,
		EnvVars: prefixEnvVars("RETRY_ATTEMPTS"),
		Usage:   "Default number of attempts per step, including the first",
	}
	RetryBackoff = &cli.StringFlag{
		Name:    "retry-backoff",
		Value:   "",
		EnvVars: prefixEnvVars("RETRY_BACKOFF"),
		Usage:   "Default backoff strategy between retries ('linear' or 'exponential')",
	}
	RetryBase = &cli.DurationFlag{
		Name:    "retry-base",
		Value:   0,
		EnvVars: prefixEnvVars("RETRY_BASE"),
		Usage:   "Default backoff base delay between retries (eg. '100ms')",
	}
	Reporter = &cli.StringFlag{
		Name:    "reporter",
		Value:   ReporterConsole.String(),
		EnvVars: prefixEnvVars("REPORTER"),
		Usage:   "Console output mode ('console', 'json' or 'quiet')",
		Action: func(_ *cli.Context, value string) error {
			return validateReporter(value)
		},
	}
	LogDir = &cli.StringFlag{
		Name:    "log-dir",
		Value:   "",
		EnvVars: prefixEnvVars("LOG_DIR"),
		Usage:   "Directory to store per-run artifacts. Empty disables file output.",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVars("RUN_INTERVAL"),
		Usage:   "Interval between runs (eg. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	Verbose = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Value:   false,
		EnvVars: prefixEnvVars("VERBOSE"),
		Usage:   "Log per-step progress while the run executes",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log.level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "The lowest log level that will be output",
	}
	LogFormat = &cli.StringFlag{
		Name:    "log.format",
		Value:   "text",
		EnvVars: prefixEnvVars("LOG_FORMAT"),
		Usage:   "Format the log output. Supported formats: 'text', 'terminal', 'logfmt', 'json'",
	}
	MetricsEnabled = &cli.BoolFlag{
		Name:    "metrics.enabled",
		Value:   false,
		EnvVars: prefixEnvVars("METRICS_ENABLED"),
		Usage:   "Enable the metrics server",
	}
	MetricsAddr = &cli.StringFlag{
		Name:    "metrics.addr",
		Value:   "0.0.0.0",
		EnvVars: prefixEnvVars("METRICS_ADDR"),
		Usage:   "Metrics listening address",
	}
	MetricsPort = &cli.IntFlag{
		Name:    "metrics.port",
		Value:   7300,
		EnvVars: prefixEnvVars("METRICS_PORT"),
		Usage:   "Metrics listening port",
	}
)

var requiredFlags = []cli.Flag{}

var optionalFlags = []cli.Flag{
	Plan,
	Selectors,
	MaxConcurrency,
	MaxFailures,
	Timeout,
	RetryAttempts,
	RetryBackoff,
	RetryBase,
	Reporter,
	LogDir,
	RunInterval,
	Verbose,
	LogLevel,
	LogFormat,
	MetricsEnabled,
	MetricsAddr,
	MetricsPort,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

// CheckRequired verifies that every required flag is set on the cli context.
func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
