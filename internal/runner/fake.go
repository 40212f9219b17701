package runner

import (
	"context"
	"strings"
	"sync"
)

// Call records one invocation seen by a Fake.
type Call struct {
	Name string
	Args []string
}

// Line returns the invocation as a single space-joined string, convenient
// for matching in tests.
func (c Call) Line() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Fake is a Runner that records invocations instead of spawning processes.
// Failures are scripted per command substring; version-query output is
// scripted via VersionOutput.
type Fake struct {
	mu    sync.Mutex
	calls []Call

	// VersionOutput is returned by Output calls.
	VersionOutput string
	// OutputErr, when set, makes every Output call fail.
	OutputErr error
	// FailOn maps a substring of the joined command line to the error Run
	// returns when the line matches.
	FailOn map[string]error
}

// NewFake returns a Fake whose version query reports a modern toolchain.
func NewFake() *Fake {
	return &Fake{VersionOutput: "cargo 1.75.0 (1d8b05cdd 2023-11-20)\n"}
}

func (f *Fake) record(name string, args []string) Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := Call{Name: name, Args: args}
	f.calls = append(f.calls, c)
	return c
}

// Run records the call and returns the scripted error, if any.
func (f *Fake) Run(_ context.Context, name string, args ...string) error {
	c := f.record(name, args)
	for substr, err := range f.FailOn {
		if strings.Contains(c.Line(), substr) {
			return err
		}
	}
	return nil
}

// Output records the call and returns the scripted version output.
func (f *Fake) Output(_ context.Context, name string, args ...string) (string, error) {
	f.record(name, args)
	if f.OutputErr != nil {
		return "", f.OutputErr
	}
	return f.VersionOutput, nil
}

// Calls returns a copy of all recorded invocations in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Lines returns the joined command line of every recorded invocation.
func (f *Fake) Lines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.Line()
	}
	return lines
}
