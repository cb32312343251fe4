package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	drover "github.com/drover-run/drover"
	"github.com/drover-run/drover/exitcodes"
	"github.com/drover-run/drover/flags"
	"github.com/drover-run/drover/service"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "drover"
	app.Usage = "Scenario runner service"
	app.Description = "drover runs registered scenarios under concurrency, retry and timeout policies"
	app.Flags = flags.Flags
	// Selector strings use commas as AND separators, so slice flags must not
	// split on them. Repeat --select to OR selectors instead.
	app.DisableSliceFlagSeparator = true
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			// Use the exit code from the ExitCoder
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			cli.HandleExitCoder(cli.Exit(err.Error(), exitCodeForError(err)))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}

// exitCodeForError maps classified application errors to process exit codes.
// Scenario failures are exit code 1, empty selections exit code 4, and
// everything else, including usage errors, is a runtime error.
func exitCodeForError(err error) int {
	switch {
	case drover.IsRunFailureError(err):
		return exitcodes.RunFailure
	case drover.IsNotFoundError(err):
		return exitcodes.NotFound
	case drover.IsUsageError(err):
		return exitcodes.RuntimeErr
	default:
		return exitcodes.RuntimeErr
	}
}

func run(cliCtx *cli.Context) error {
	logger, err := setupLogger(cliCtx)
	if err != nil {
		return drover.NewUsageError(err)
	}

	cfg, err := drover.NewConfig(cliCtx, logger)
	if err != nil {
		return drover.NewUsageError(fmt.Errorf("failed to create config: %w", err))
	}

	// Telemetry export is opt-in via the standard OTEL env vars
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
			otelconfig.WithServiceName(cliCtx.App.Name),
			otelconfig.WithServiceVersion(cliCtx.App.Version),
		)
		if err != nil {
			return fmt.Errorf("failed to set up open telemetry: %w", err)
		}
		defer otelShutdown()
	}

	if cliCtx.Bool(flags.MetricsEnabled.Name) {
		metricsAddr := net.JoinHostPort(
			cliCtx.String(flags.MetricsAddr.Name),
			strconv.Itoa(cliCtx.Int(flags.MetricsPort.Name)),
		)
		svc := service.New().WithAddrs(net.JoinHostPort(service.HealthzHost, service.HealthzPort), metricsAddr)
		svc.Start(cliCtx.Context)
		defer svc.Shutdown()
	}

	droverApp, err := drover.New(cliCtx.Context, cfg, Version, nil, nil)
	if err != nil {
		return drover.NewUsageError(fmt.Errorf("failed to create drover: %w", err))
	}

	if err := droverApp.Start(cliCtx.Context); err != nil {
		return err
	}

	if cfg.RunOnce {
		return nil
	}

	// Continuous mode: run until interrupted
	<-cliCtx.Context.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := droverApp.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop drover: %w", err)
	}
	return droverApp.WaitForShutdown(stopCtx)
}

// setupLogger builds the root logger from the log.level and log.format flags
// and installs it as the process default.
func setupLogger(cliCtx *cli.Context) (log.Logger, error) {
	lvl, err := levelFromString(cliCtx.String(flags.LogLevel.Name))
	if err != nil {
		return nil, err
	}

	useColor := isatty.IsTerminal(os.Stdout.Fd())

	var handler slog.Handler
	switch strings.ToLower(cliCtx.String(flags.LogFormat.Name)) {
	case "json":
		handler = log.JSONHandlerWithLevel(os.Stdout, lvl)
	case "logfmt":
		handler = log.LogfmtHandlerWithLevel(os.Stdout, lvl)
	default: // text, terminal
		handler = log.NewTerminalHandlerWithLevel(os.Stdout, lvl, useColor)
	}

	logger := log.NewLogger(handler)
	log.SetDefault(logger)
	return logger, nil
}

// levelFromString parses a log level name into a slog level.
func levelFromString(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info":
		return log.LevelInfo, nil
	case "warn":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	case "crit":
		return log.LevelCrit, nil
	default:
		return log.LevelInfo, fmt.Errorf("unknown log level %q, want trace, debug, info, warn, error, or crit", s)
	}
}
