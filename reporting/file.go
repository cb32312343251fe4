package reporting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"

	"github.com/drover-run/drover/runner"
	"github.com/drover-run/drover/types"
)

const (
	// RunDirPrefix names per-run artifact directories under the base dir.
	RunDirPrefix = "run-"

	eventsFileName  = "events.log"
	summaryFileName = "summary.log"
	failedDirName   = "failed"
)

// FileReporter writes per-run artifacts under a base directory: an event
// log streamed as the run progresses, a summary file, and one detail file
// per failed scenario. Each run gets its own timestamped directory; the
// run ID is recorded in the summary once known.
type FileReporter struct {
	log     log.Logger
	baseDir string

	mu      sync.Mutex
	dir     string
	events  *AsyncFile
	results []*types.ScenarioResult
}

var _ runner.Reporter = (*FileReporter)(nil)

// NewFileReporter creates a file reporter rooted at baseDir. The directory
// tree is created on OnRunStart.
func NewFileReporter(logger log.Logger, baseDir string) (*FileReporter, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if logger == nil {
		logger = log.Root()
	}
	return &FileReporter{log: logger, baseDir: baseDir}, nil
}

// Dir returns the current run's artifact directory, empty before the first
// OnRunStart.
func (f *FileReporter) Dir() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dir
}

func (f *FileReporter) OnRunStart(_ context.Context, scenarios []*types.ScenarioDef) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Join(f.baseDir, RunDirPrefix+time.Now().UTC().Format("20060102-150405.000000000"))
	for _, d := range []string{dir, filepath.Join(dir, failedDirName)} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("creating artifact directory %s: %w", d, err)
		}
	}

	events, err := NewAsyncFile(filepath.Join(dir, eventsFileName))
	if err != nil {
		return err
	}

	f.dir = dir
	f.events = events
	f.results = nil
	f.log.Debug("Writing run artifacts", "dir", dir)
	return f.appendEvent("run_start", fmt.Sprintf("%d scenarios", len(scenarios)))
}

func (f *FileReporter) OnScenarioStart(_ context.Context, scenario *types.ScenarioDef) error {
	return f.event("scenario_start", scenario.Name)
}

func (f *FileReporter) OnScenarioSkip(_ context.Context, scenario *types.ScenarioDef, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, &types.ScenarioResult{
		Name:       scenario.Name,
		Status:     types.StatusSkip,
		SkipReason: reason,
	})
	return f.appendEvent("scenario_skip", fmt.Sprintf("%s: %s", scenario.Name, reason))
}

func (f *FileReporter) OnStepStart(_ context.Context, scenario *types.ScenarioDef, step *types.StepDef) error {
	return f.event("step_start", fmt.Sprintf("%s/%s", scenario.Name, step.Name))
}

func (f *FileReporter) OnStepEnd(_ context.Context, scenario *types.ScenarioDef, step *types.StepDef, result *types.StepResult) error {
	return f.event("step_end", fmt.Sprintf("%s/%s attempts=%d duration=%s",
		scenario.Name, step.Name, result.Attempts, result.Duration))
}

func (f *FileReporter) OnStepError(_ context.Context, scenario *types.ScenarioDef, step *types.StepDef, stepErr error) error {
	return f.event("step_error", fmt.Sprintf("%s/%s: %v", scenario.Name, step.Name, stepErr))
}

func (f *FileReporter) OnScenarioEnd(_ context.Context, scenario *types.ScenarioDef, result *types.ScenarioResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.results = append(f.results, result)
	if err := f.appendEvent("scenario_end", fmt.Sprintf("%s status=%s duration=%s",
		result.Name, result.Status, result.Duration)); err != nil {
		return err
	}

	if result.Status == types.StatusFail || result.Status == types.StatusError {
		if err := f.writeFailureDetail(result); err != nil {
			return err
		}
	}
	return nil
}

func (f *FileReporter) OnRunEnd(_ context.Context, summary *types.RunSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.appendEvent("run_end", summary.String()); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "run %s\n", summary.RunID)
	fmt.Fprintf(&b, "started %s\n", summary.Start.Format(time.RFC3339))
	fmt.Fprintf(&b, "%s\n\n", summary.String())
	for _, res := range f.results {
		line := fmt.Sprintf("%-5s %s (%s)", res.Status, res.Name, res.Duration)
		if res.Status == types.StatusSkip && res.SkipReason != "" {
			line += " reason: " + res.SkipReason
		}
		if res.Err != nil {
			line += " err: " + stripansi.Strip(res.Err.Error())
		}
		b.WriteString(line + "\n")
	}

	if err := os.WriteFile(filepath.Join(f.dir, summaryFileName), []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing summary file: %w", err)
	}

	if f.events != nil {
		if err := f.events.Close(); err != nil {
			return fmt.Errorf("closing event log: %w", err)
		}
		f.events = nil
	}
	f.log.Info("Run artifacts written", "dir", f.dir)
	return nil
}

func (f *FileReporter) event(kind, detail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appendEvent(kind, detail)
}

// appendEvent writes one line to the event log. Callers hold f.mu.
func (f *FileReporter) appendEvent(kind, detail string) error {
	if f.events == nil {
		return fmt.Errorf("event before run start: %s %s", kind, detail)
	}
	line := fmt.Sprintf("%s %-14s %s\n", time.Now().UTC().Format("15:04:05.000"), kind, detail)
	return f.events.WriteString(line)
}

// writeFailureDetail writes one file per failed scenario with enough
// context to debug it without the console. Callers hold f.mu.
func (f *FileReporter) writeFailureDetail(result *types.ScenarioResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\nstatus: %s\nduration: %s\n", result.Name, result.Status, result.Duration)
	if result.Err != nil {
		fmt.Fprintf(&b, "error: %s\n", stripansi.Strip(result.Err.Error()))
	}
	if result.TeardownErr != nil {
		fmt.Fprintf(&b, "teardown error: %s\n", stripansi.Strip(result.TeardownErr.Error()))
	}
	b.WriteString("\nsteps:\n")
	for _, step := range result.Steps {
		fmt.Fprintf(&b, "  %-5s %s attempts=%d duration=%s", step.Status, step.Name, step.Attempts, step.Duration)
		if step.TimedOut {
			b.WriteString(" timed-out")
		}
		if step.Err != nil {
			fmt.Fprintf(&b, " err: %s", stripansi.Strip(step.Err.Error()))
		}
		b.WriteString("\n")
	}

	// Duplicate scenario names get distinct files via the result index.
	name := fmt.Sprintf("%03d-%s.log", len(f.results), safeFilename(result.Name))
	path := filepath.Join(f.dir, failedDirName, name)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing failure detail %s: %w", path, err)
	}
	return nil
}

// safeFilename replaces characters that are problematic in file names.
func safeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
}
