package pipeline

import (
	"time"

	"git.home.luguber.info/inful/cratecheck/internal/runner"
)

// StageResult is the recorded outcome of one executed stage. Stages skipped
// by fail-fast are not recorded at all.
type StageResult struct {
	Name     string
	Passed   bool
	ExitCode int
	Duration time.Duration
}

// Recorder is an Observer that accumulates stage results for the run
// history. Not safe for concurrent use; a run is single-threaded anyway.
type Recorder struct {
	stages   []StageResult
	duration time.Duration
	failed   bool
	exitCode int
}

func (r *Recorder) StageDone(stage string, d time.Duration, err error) {
	r.stages = append(r.stages, StageResult{
		Name:     stage,
		Passed:   err == nil,
		ExitCode: runner.ExitCode(err),
		Duration: d,
	})
}

func (r *Recorder) RunDone(d time.Duration, err error) {
	r.duration = d
	r.failed = err != nil
	r.exitCode = runner.ExitCode(err)
}

// Stages returns the executed stages in order.
func (r *Recorder) Stages() []StageResult { return r.stages }

// Duration returns the whole run's wall time, valid once the run finished.
func (r *Recorder) Duration() time.Duration { return r.duration }

// Failed reports whether the run ended in a stage failure.
func (r *Recorder) Failed() bool { return r.failed }

// ExitCode returns the run's final exit status.
func (r *Recorder) ExitCode() int { return r.exitCode }
