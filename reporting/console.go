// Package reporting provides the reporter implementations handed to the
// engine: a console table reporter, a JSON-lines event stream, per-run file
// artifacts, and a fan-out combining several reporters.
package reporting

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/drover-run/drover/runner"
	"github.com/drover-run/drover/types"
)

// ConsoleReporter streams scenario progress to the logger and renders a
// result table once the run completes.
type ConsoleReporter struct {
	log     log.Logger
	out     io.Writer
	verbose bool

	mu      sync.Mutex
	results []*types.ScenarioResult
}

var _ runner.Reporter = (*ConsoleReporter)(nil)

// NewConsoleReporter creates a console reporter writing its table to out.
// A nil out means os.Stdout. Verbose adds per-step progress logging.
func NewConsoleReporter(logger log.Logger, out io.Writer, verbose bool) *ConsoleReporter {
	if logger == nil {
		logger = log.Root()
	}
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{log: logger, out: out, verbose: verbose}
}

func (c *ConsoleReporter) OnRunStart(_ context.Context, scenarios []*types.ScenarioDef) error {
	c.mu.Lock()
	c.results = nil
	c.mu.Unlock()
	c.log.Info("Run starting", "scenarios", len(scenarios))
	return nil
}

func (c *ConsoleReporter) OnScenarioStart(_ context.Context, scenario *types.ScenarioDef) error {
	if c.verbose {
		c.log.Info("Scenario starting", "scenario", scenario.Name)
	}
	return nil
}

func (c *ConsoleReporter) OnScenarioSkip(_ context.Context, scenario *types.ScenarioDef, reason string) error {
	c.collect(&types.ScenarioResult{
		Name:       scenario.Name,
		Status:     types.StatusSkip,
		SkipReason: reason,
	})
	c.log.Info("Scenario skipped", "scenario", scenario.Name, "reason", reason)
	return nil
}

func (c *ConsoleReporter) OnStepStart(_ context.Context, scenario *types.ScenarioDef, step *types.StepDef) error {
	if c.verbose {
		c.log.Info("Step starting", "scenario", scenario.Name, "step", step.Name)
	}
	return nil
}

func (c *ConsoleReporter) OnStepEnd(_ context.Context, scenario *types.ScenarioDef, step *types.StepDef, result *types.StepResult) error {
	if c.verbose {
		c.log.Info("Step passed",
			"scenario", scenario.Name,
			"step", step.Name,
			"attempts", result.Attempts,
			"duration", result.Duration)
	}
	return nil
}

func (c *ConsoleReporter) OnStepError(_ context.Context, scenario *types.ScenarioDef, step *types.StepDef, stepErr error) error {
	c.log.Error("Step failed", "scenario", scenario.Name, "step", step.Name, "err", stepErr)
	return nil
}

func (c *ConsoleReporter) OnScenarioEnd(_ context.Context, scenario *types.ScenarioDef, result *types.ScenarioResult) error {
	c.collect(result)
	c.log.Info("Scenario finished",
		"scenario", scenario.Name,
		"status", result.Status,
		"duration", result.Duration)
	return nil
}

func (c *ConsoleReporter) OnRunEnd(_ context.Context, summary *types.RunSummary) error {
	c.mu.Lock()
	results := c.results
	c.mu.Unlock()
	c.render(results, summary)
	return nil
}

func (c *ConsoleReporter) collect(result *types.ScenarioResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

// render prints the result table, one block per scenario with its steps
// nested underneath, in completion order.
func (c *ConsoleReporter) render(results []*types.ScenarioResult, summary *types.RunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.SetTitle(fmt.Sprintf("Scenario Run Results (%s)", formatDuration(summary.Duration)))

	t.AppendHeader(table.Row{
		"Type", "Name", "Duration", "Steps", "Passed", "Failed", "Skipped", "Status", "Error",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Type", AutoMerge: true},
		{Name: "Name", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Steps", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
	})

	for _, res := range results {
		var stepsPassed, stepsFailed int
		for _, step := range res.Steps {
			if step.Status == types.StatusPass {
				stepsPassed++
			} else {
				stepsFailed++
			}
		}

		t.AppendRow(table.Row{
			"Scenario",
			res.Name,
			formatDuration(res.Duration),
			len(res.Steps),
			stepsPassed,
			stepsFailed,
			boolToInt(res.Status == types.StatusSkip),
			getResultString(res.Status),
			errorCell(res.Err),
		})

		for i := range res.Steps {
			step := &res.Steps[i]
			prefix := "├─"
			if i == len(res.Steps)-1 {
				prefix = "└─"
			}
			name := fmt.Sprintf("%s %s", prefix, step.Name)
			if step.Attempts > 1 {
				name = fmt.Sprintf("%s (%d attempts)", name, step.Attempts)
			}

			t.AppendRow(table.Row{
				"",
				name,
				formatDuration(step.Duration),
				"1",
				boolToInt(step.Status == types.StatusPass),
				boolToInt(step.Status != types.StatusPass),
				0,
				getResultString(step.Status),
				errorCell(step.Err),
			})
		}

		if res.TeardownErr != nil {
			t.AppendRow(table.Row{
				"", "└─ teardown", "", "", "", "", "", getResultString(types.StatusFail), errorCell(res.TeardownErr),
			})
		}

		t.AppendSeparator()
	}

	switch summary.Status() {
	case types.StatusPass:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case types.StatusSkip:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		"",
		formatDuration(summary.Duration),
		summary.Total,
		summary.Passed,
		summary.Failed,
		summary.Skipped,
		getResultString(summary.Status()),
		"",
	})

	t.Render()
	fmt.Fprintln(c.out, summary.String())
}

// errorCell renders an error for a table cell. Step functions may wrap
// colored tool output; embedded escape codes break column width math, so
// they are stripped.
func errorCell(err error) string {
	if err == nil {
		return ""
	}
	return stripansi.Strip(err.Error())
}

func getResultString(status types.Status) string {
	switch status {
	case types.StatusPass:
		return "✓ pass"
	case types.StatusSkip:
		return "- skip"
	case types.StatusError:
		return "✗ error"
	default:
		return "✗ fail"
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
