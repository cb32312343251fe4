package reporting

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drover-run/drover/types"
)

func testLogger() log.Logger {
	return log.NewLogger(log.DiscardHandler())
}

func TestConsoleReporterRendersTable(t *testing.T) {
	var buf bytes.Buffer
	rep := NewConsoleReporter(testLogger(), &buf, false)
	ctx := context.Background()

	checkout := &types.ScenarioDef{Name: "checkout"}
	inventory := &types.ScenarioDef{Name: "inventory"}
	nightly := &types.ScenarioDef{Name: "nightly-import"}

	require.NoError(t, rep.OnRunStart(ctx, []*types.ScenarioDef{checkout, inventory, nightly}))
	require.NoError(t, rep.OnScenarioStart(ctx, checkout))
	require.NoError(t, rep.OnScenarioEnd(ctx, checkout, &types.ScenarioResult{
		Name:   "checkout",
		Status: types.StatusPass,
		Steps: []types.StepResult{
			{Name: "login", Status: types.StatusPass, Attempts: 1, Duration: 20 * time.Millisecond},
			{Name: "pay", Status: types.StatusPass, Attempts: 2, Duration: 120 * time.Millisecond},
		},
		Duration: 140 * time.Millisecond,
	}))
	require.NoError(t, rep.OnScenarioEnd(ctx, inventory, &types.ScenarioResult{
		Name:   "inventory",
		Status: types.StatusFail,
		Err:    errors.New("stock mismatch"),
		Steps: []types.StepResult{
			{Name: "sync", Status: types.StatusFail, Err: errors.New("stock mismatch"), Attempts: 3},
		},
		Duration: 300 * time.Millisecond,
	}))
	require.NoError(t, rep.OnScenarioSkip(ctx, nightly, "window closed"))
	require.NoError(t, rep.OnRunEnd(ctx, &types.RunSummary{
		RunID:    "run-1",
		Total:    3,
		Passed:   1,
		Failed:   1,
		Skipped:  1,
		Duration: 440 * time.Millisecond,
	}))

	out := stripansi.Strip(buf.String())
	assert.Contains(t, out, "Scenario Run Results")
	assert.Contains(t, out, "checkout")
	assert.Contains(t, out, "inventory")
	assert.Contains(t, out, "nightly-import")
	assert.Contains(t, out, "✓ pass")
	assert.Contains(t, out, "✗ fail")
	assert.Contains(t, out, "- skip")
	assert.Contains(t, out, "(2 attempts)")
	assert.Contains(t, out, "(3 attempts)")
	assert.Contains(t, out, "stock mismatch")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "RunSummary{RunID: run-1")
}

func TestConsoleReporterStripsEscapeCodesFromErrors(t *testing.T) {
	var buf bytes.Buffer
	rep := NewConsoleReporter(testLogger(), &buf, false)
	ctx := context.Background()

	def := &types.ScenarioDef{Name: "colored"}
	require.NoError(t, rep.OnRunStart(ctx, []*types.ScenarioDef{def}))
	require.NoError(t, rep.OnScenarioEnd(ctx, def, &types.ScenarioResult{
		Name:   "colored",
		Status: types.StatusFail,
		Err:    errors.New("\x1b[31mred alert\x1b[0m"),
	}))
	require.NoError(t, rep.OnRunEnd(ctx, &types.RunSummary{Total: 1, Failed: 1}))

	assert.Contains(t, stripansi.Strip(buf.String()), "red alert")
	assert.NotContains(t, buf.String(), "\x1b[31mred alert")
}

func TestConsoleReporterEmptyRun(t *testing.T) {
	var buf bytes.Buffer
	rep := NewConsoleReporter(testLogger(), &buf, false)
	ctx := context.Background()

	require.NoError(t, rep.OnRunStart(ctx, nil))
	require.NoError(t, rep.OnRunEnd(ctx, &types.RunSummary{}))
	assert.Contains(t, stripansi.Strip(buf.String()), "TOTAL")
}

func TestConsoleReporterTeardownErrorShown(t *testing.T) {
	var buf bytes.Buffer
	rep := NewConsoleReporter(testLogger(), &buf, false)
	ctx := context.Background()

	def := &types.ScenarioDef{Name: "leaky"}
	require.NoError(t, rep.OnRunStart(ctx, []*types.ScenarioDef{def}))
	require.NoError(t, rep.OnScenarioEnd(ctx, def, &types.ScenarioResult{
		Name:        "leaky",
		Status:      types.StatusPass,
		TeardownErr: errors.New("socket left open"),
	}))
	require.NoError(t, rep.OnRunEnd(ctx, &types.RunSummary{Total: 1, Passed: 1}))

	out := stripansi.Strip(buf.String())
	assert.Contains(t, out, "teardown")
	assert.Contains(t, out, "socket left open")
}

func TestGetResultString(t *testing.T) {
	assert.Equal(t, "✓ pass", getResultString(types.StatusPass))
	assert.Equal(t, "- skip", getResultString(types.StatusSkip))
	assert.Equal(t, "✗ fail", getResultString(types.StatusFail))
	assert.Equal(t, "✗ error", getResultString(types.StatusError))
}
