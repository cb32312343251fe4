package drover

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlanFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadPlan(t *testing.T) {
	path := writePlanFile(t, `
defaults:
  timeout: 30s
  retry:
    max_attempts: 3
    backoff: exponential
    base: 250ms
max_concurrency: 4
max_failures: 10
selectors:
  - tag:smoke
  - "!name:flaky"
reporter: json
log_dir: logs
run_interval: 1h
verbose: true
`)

	plan, err := LoadPlan(path)
	require.NoError(t, err)

	require.NotNil(t, plan.Defaults.Timeout)
	assert.Equal(t, 30*time.Second, *plan.Defaults.Timeout)
	require.NotNil(t, plan.Defaults.Retry)
	assert.Equal(t, 3, plan.Defaults.Retry.MaxAttempts)
	assert.Equal(t, "exponential", string(plan.Defaults.Retry.Backoff))
	require.NotNil(t, plan.Defaults.Retry.Base)
	assert.Equal(t, 250*time.Millisecond, *plan.Defaults.Retry.Base)

	assert.Equal(t, 4, plan.MaxConcurrency)
	assert.Equal(t, 10, plan.MaxFailures)
	assert.Equal(t, []string{"tag:smoke", "!name:flaky"}, plan.Selectors)
	assert.Equal(t, "json", plan.Reporter)
	assert.Equal(t, "logs", plan.LogDir)
	assert.Equal(t, time.Hour, plan.RunInterval)
	assert.False(t, plan.RunOnce)
	assert.True(t, plan.Verbose)
}

func TestLoadPlanMinimal(t *testing.T) {
	plan, err := LoadPlan(writePlanFile(t, "max_concurrency: 2\n"))
	require.NoError(t, err)

	assert.Equal(t, 2, plan.MaxConcurrency)
	assert.Nil(t, plan.Defaults.Timeout)
	assert.Nil(t, plan.Defaults.Retry)
	assert.Empty(t, plan.Selectors)
	assert.Zero(t, plan.RunInterval)
}

func TestLoadPlanMissingFile(t *testing.T) {
	_, err := LoadPlan(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading plan file")
}

func TestLoadPlanMalformedYAML(t *testing.T) {
	_, err := LoadPlan(writePlanFile(t, "defaults: [not: a: map\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing plan file")
}

func TestLoadPlanValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "negative max_concurrency",
			yaml:    "max_concurrency: -1\n",
			wantErr: "max_concurrency must not be negative",
		},
		{
			name:    "negative max_failures",
			yaml:    "max_failures: -3\n",
			wantErr: "max_failures must not be negative",
		},
		{
			name:    "negative run_interval",
			yaml:    "run_interval: -5s\n",
			wantErr: "run_interval must not be negative",
		},
		{
			name:    "unknown reporter",
			yaml:    "reporter: html\n",
			wantErr: `unknown reporter "html"`,
		},
		{
			name:    "unknown backoff kind",
			yaml:    "defaults:\n  retry:\n    backoff: fibonacci\n",
			wantErr: `unknown backoff kind "fibonacci"`,
		},
		{
			name:    "negative default timeout",
			yaml:    "defaults:\n  timeout: -1s\n",
			wantErr: "timeout must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPlan(writePlanFile(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid plan file")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
