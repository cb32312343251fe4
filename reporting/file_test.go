package reporting

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drover-run/drover/types"
)

func TestFileReporterWritesRunArtifacts(t *testing.T) {
	base := t.TempDir()
	rep, err := NewFileReporter(testLogger(), base)
	require.NoError(t, err)
	ctx := context.Background()

	checkout := &types.ScenarioDef{Name: "checkout"}
	inventory := &types.ScenarioDef{Name: "inventory sync"}
	nightly := &types.ScenarioDef{Name: "nightly"}

	require.NoError(t, rep.OnRunStart(ctx, []*types.ScenarioDef{checkout, inventory, nightly}))
	dir := rep.Dir()
	require.NotEmpty(t, dir)

	require.NoError(t, rep.OnScenarioStart(ctx, checkout))
	require.NoError(t, rep.OnStepStart(ctx, checkout, &types.StepDef{Name: "pay"}))
	require.NoError(t, rep.OnStepEnd(ctx, checkout, &types.StepDef{Name: "pay"}, &types.StepResult{
		Name: "pay", Status: types.StatusPass, Attempts: 1, Duration: 10 * time.Millisecond,
	}))
	require.NoError(t, rep.OnScenarioEnd(ctx, checkout, &types.ScenarioResult{
		Name:   "checkout",
		Status: types.StatusPass,
		Steps:  []types.StepResult{{Name: "pay", Status: types.StatusPass, Attempts: 1}},
	}))

	require.NoError(t, rep.OnStepError(ctx, inventory, &types.StepDef{Name: "sync"}, errors.New("boom")))
	require.NoError(t, rep.OnScenarioEnd(ctx, inventory, &types.ScenarioResult{
		Name:   "inventory sync",
		Status: types.StatusFail,
		Err:    errors.New("boom"),
		Steps: []types.StepResult{
			{Name: "sync", Status: types.StatusFail, Err: errors.New("boom"), Attempts: 3, TimedOut: true},
		},
	}))

	require.NoError(t, rep.OnScenarioSkip(ctx, nightly, "window closed"))

	require.NoError(t, rep.OnRunEnd(ctx, &types.RunSummary{
		RunID:   "run-42",
		Total:   3,
		Passed:  1,
		Failed:  1,
		Skipped: 1,
		Start:   time.Now(),
	}))

	// The event log is flushed when the run ends.
	events, err := os.ReadFile(filepath.Join(dir, "events.log"))
	require.NoError(t, err)
	for _, want := range []string{"run_start", "scenario_start", "step_start", "step_end", "step_error", "scenario_skip", "scenario_end", "run_end"} {
		assert.Contains(t, string(events), want)
	}

	summary, err := os.ReadFile(filepath.Join(dir, "summary.log"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "run run-42")
	assert.Contains(t, string(summary), "pass")
	assert.Contains(t, string(summary), "checkout")
	assert.Contains(t, string(summary), "window closed")

	failed, err := os.ReadDir(filepath.Join(dir, "failed"))
	require.NoError(t, err)
	require.Len(t, failed, 1, "one detail file per failed scenario")
	assert.Contains(t, failed[0].Name(), "inventory_sync")

	detail, err := os.ReadFile(filepath.Join(dir, "failed", failed[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(detail), "scenario: inventory sync")
	assert.Contains(t, string(detail), "attempts=3")
	assert.Contains(t, string(detail), "timed-out")
}

func TestFileReporterSeparateDirsPerRun(t *testing.T) {
	base := t.TempDir()
	rep, err := NewFileReporter(testLogger(), base)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, rep.OnRunStart(ctx, nil))
	first := rep.Dir()
	require.NoError(t, rep.OnRunEnd(ctx, &types.RunSummary{}))

	require.NoError(t, rep.OnRunStart(ctx, nil))
	second := rep.Dir()
	require.NoError(t, rep.OnRunEnd(ctx, &types.RunSummary{}))

	assert.NotEqual(t, first, second, "each run gets its own artifact directory")
}

func TestFileReporterRequiresBaseDir(t *testing.T) {
	_, err := NewFileReporter(testLogger(), "")
	require.Error(t, err)
}

func TestFileReporterEventBeforeRunStart(t *testing.T) {
	rep, err := NewFileReporter(testLogger(), t.TempDir())
	require.NoError(t, err)

	err = rep.OnScenarioStart(context.Background(), &types.ScenarioDef{Name: "early"})
	require.Error(t, err)
}
