package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/drover-run/drover/runner"
	"github.com/drover-run/drover/types"
)

// Event is one line of the JSON event stream. The shape follows the
// go test -json convention of one self-describing object per line so the
// stream can be fed to line-oriented tooling.
type Event struct {
	Time     time.Time `json:"Time"`
	Action   string    `json:"Action"`
	RunID    string    `json:"RunID,omitempty"`
	Scenario string    `json:"Scenario,omitempty"`
	Step     string    `json:"Step,omitempty"`
	Status   string    `json:"Status,omitempty"`
	Reason   string    `json:"Reason,omitempty"`
	Error    string    `json:"Error,omitempty"`
	Elapsed  float64   `json:"Elapsed,omitempty"`
	Attempts int       `json:"Attempts,omitempty"`
	Total    int       `json:"Total,omitempty"`
	Passed   int       `json:"Passed,omitempty"`
	Failed   int       `json:"Failed,omitempty"`
	Skipped  int       `json:"Skipped,omitempty"`
}

// JSONLReporter writes one JSON object per lifecycle event to a writer.
type JSONLReporter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

var _ runner.Reporter = (*JSONLReporter)(nil)

// NewJSONLReporter creates a reporter streaming events to w.
func NewJSONLReporter(w io.Writer) *JSONLReporter {
	return &JSONLReporter{enc: json.NewEncoder(w)}
}

func (j *JSONLReporter) write(ev Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	ev.Time = time.Now()
	if err := j.enc.Encode(ev); err != nil {
		return fmt.Errorf("writing %s event: %w", ev.Action, err)
	}
	return nil
}

func (j *JSONLReporter) OnRunStart(_ context.Context, scenarios []*types.ScenarioDef) error {
	return j.write(Event{Action: "run_start", Total: len(scenarios)})
}

func (j *JSONLReporter) OnScenarioStart(_ context.Context, scenario *types.ScenarioDef) error {
	return j.write(Event{Action: "scenario_start", Scenario: scenario.Name})
}

func (j *JSONLReporter) OnScenarioSkip(_ context.Context, scenario *types.ScenarioDef, reason string) error {
	return j.write(Event{
		Action:   "scenario_skip",
		Scenario: scenario.Name,
		Status:   string(types.StatusSkip),
		Reason:   reason,
	})
}

func (j *JSONLReporter) OnStepStart(_ context.Context, scenario *types.ScenarioDef, step *types.StepDef) error {
	return j.write(Event{Action: "step_start", Scenario: scenario.Name, Step: step.Name})
}

func (j *JSONLReporter) OnStepEnd(_ context.Context, scenario *types.ScenarioDef, step *types.StepDef, result *types.StepResult) error {
	return j.write(Event{
		Action:   "step_end",
		Scenario: scenario.Name,
		Step:     step.Name,
		Status:   string(result.Status),
		Elapsed:  result.Duration.Seconds(),
		Attempts: result.Attempts,
	})
}

func (j *JSONLReporter) OnStepError(_ context.Context, scenario *types.ScenarioDef, step *types.StepDef, stepErr error) error {
	ev := Event{
		Action:   "step_error",
		Scenario: scenario.Name,
		Step:     step.Name,
		Status:   string(types.StatusFail),
	}
	if stepErr != nil {
		ev.Error = stepErr.Error()
	}
	return j.write(ev)
}

func (j *JSONLReporter) OnScenarioEnd(_ context.Context, scenario *types.ScenarioDef, result *types.ScenarioResult) error {
	ev := Event{
		Action:   "scenario_end",
		Scenario: scenario.Name,
		Status:   string(result.Status),
		Elapsed:  result.Duration.Seconds(),
	}
	if result.Err != nil {
		ev.Error = result.Err.Error()
	}
	return j.write(ev)
}

func (j *JSONLReporter) OnRunEnd(_ context.Context, summary *types.RunSummary) error {
	return j.write(Event{
		Action:  "run_end",
		RunID:   summary.RunID,
		Status:  string(summary.Status()),
		Elapsed: summary.Duration.Seconds(),
		Total:   summary.Total,
		Passed:  summary.Passed,
		Failed:  summary.Failed,
		Skipped: summary.Skipped,
	})
}
