package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunSummaryStatus(t *testing.T) {
	tests := []struct {
		name    string
		summary RunSummary
		want    Status
	}{
		{name: "all passed", summary: RunSummary{Total: 3, Passed: 3}, want: StatusPass},
		{name: "one failed", summary: RunSummary{Total: 3, Passed: 2, Failed: 1}, want: StatusFail},
		{name: "errored counts as failed", summary: RunSummary{Total: 2, Passed: 1, Failed: 1, Errored: 1}, want: StatusFail},
		{name: "all skipped", summary: RunSummary{Total: 2, Skipped: 2}, want: StatusSkip},
		{name: "empty run", summary: RunSummary{}, want: StatusSkip},
		{name: "passed and skipped", summary: RunSummary{Total: 2, Passed: 1, Skipped: 1}, want: StatusPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.summary.Status())
		})
	}
}

func TestRunSummarySucceeded(t *testing.T) {
	assert.True(t, (&RunSummary{Total: 2, Passed: 1, Skipped: 1}).Succeeded())
	assert.False(t, (&RunSummary{Total: 1, Failed: 1}).Succeeded())
}

func TestRunSummaryString(t *testing.T) {
	s := &RunSummary{RunID: "abc", Total: 2, Passed: 1, Failed: 1, Errored: 1}
	out := s.String()

	assert.Contains(t, out, "abc")
	assert.Contains(t, out, "Total: 2")
	assert.Contains(t, out, "Errored: 1")
}
