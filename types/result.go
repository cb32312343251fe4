package types

import (
	"fmt"
	"time"
)

// Status represents the possible outcomes of a scenario or step execution
type Status string

const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"
	StatusSkip  Status = "skip"
	StatusError Status = "error"
)

// StepResult captures the outcome of one step after all attempts were
// exhausted or the step passed.
type StepResult struct {
	Name     string
	Status   Status
	Value    any           // returned by Fn when the step passed
	Err      error         // terminal error when the step failed
	TimedOut bool          // terminal error was a timeout
	Attempts int           // attempts consumed, including the first
	Duration time.Duration // across all attempts, including backoff sleeps
}

// ScenarioResult captures the outcome of one scenario execution.
type ScenarioResult struct {
	Name        string
	Status      Status
	SkipReason  string
	Steps       []StepResult // steps actually attempted
	Err         error        // primary cause: setup error or first failed step
	TeardownErr error        // recorded separately, never masks Err
	Duration    time.Duration
}

// RunSummary aggregates the outcome of one engine invocation. Failed
// includes errored scenarios, so Passed+Failed+Skipped == Total holds for
// every scheduled scenario; scenarios dropped by the failure-budget cutoff
// before being scheduled contribute to no count.
type RunSummary struct {
	RunID    string
	Total    int
	Passed   int
	Failed   int
	Skipped  int
	Errored  int  // subset of Failed: scenarios that ended StatusError
	Cutoff   bool // the failure budget stopped scheduling early
	Start    time.Time
	Duration time.Duration // wall clock for the whole run
}

// Failures returns the number of scenarios that neither passed nor skipped.
func (s *RunSummary) Failures() int {
	return s.Failed
}

// Succeeded reports whether every scheduled scenario passed or was skipped.
func (s *RunSummary) Succeeded() bool {
	return s.Failed == 0
}

// Status derives the overall run status from the counts.
func (s *RunSummary) Status() Status {
	switch {
	case s.Failed > 0:
		return StatusFail
	case s.Passed > 0:
		return StatusPass
	default:
		return StatusSkip
	}
}

func (s *RunSummary) String() string {
	return fmt.Sprintf("RunSummary{RunID: %s, Total: %d, Passed: %d, Failed: %d, Skipped: %d, Errored: %d, Duration: %s}",
		s.RunID, s.Total, s.Passed, s.Failed, s.Skipped, s.Errored, s.Duration)
}
