// Package runner is the single abstraction for invoking the external
// toolchain. Every child process a run spawns goes through a Runner, which
// echoes the exact command line before executing it and propagates the
// child's exit status unchanged.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ExitError reports a child process that terminated unsuccessfully. Code is
// the child's exact exit status; callers propagate it as the process exit
// code without transformation.
type ExitError struct {
	Cmd  string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with status %d", e.Cmd, e.Code)
}

// ExitCode extracts the exit status a failed run should terminate with.
// nil means success (0); a child that exited keeps its exact status; a
// command that never started (binary not found) maps to 127, like a shell;
// anything else is a plain failure (1).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var xe *ExitError
	if errors.As(err, &xe) {
		return xe.Code
	}
	var ee *exec.Error
	if errors.As(err, &ee) {
		return 127
	}
	return 1
}

// Runner executes external commands. Run streams the child's output through
// unmodified; Output captures stdout (used for the toolchain version query).
// Both echo the command line before executing.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) (string, error)
}

var echoStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

// Exec is the production Runner. It writes echoes to Stdout and wires the
// child's streams straight to Stdout/Stderr, unbuffered and uncaptured, so
// toolchain output interleaves live with the orchestrator's own.
type Exec struct {
	Stdout io.Writer
	Stderr io.Writer
	// Dir is the working directory for children; empty means inherit.
	Dir string
}

// NewExec returns an Exec bound to the process's own streams.
func NewExec(dir string) *Exec {
	return &Exec{Stdout: os.Stdout, Stderr: os.Stderr, Dir: dir}
}

// Echo prints a command line in the distinguished style without executing
// anything. Used for the project-root chdir, which is announced like any
// other command.
func (e *Exec) Echo(words ...string) {
	fmt.Fprintln(e.Stdout, echoStyle.Render(JoinCommand(words)))
}

// Run executes the command, blocking until it exits. The child inherits the
// process environment plus CARGO_TERM_COLOR=always so the toolchain
// colorizes even when its output is piped.
func (e *Exec) Run(ctx context.Context, name string, args ...string) error {
	e.Echo(append([]string{name}, args...)...)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.Dir
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	cmd.Env = childEnv()
	return e.wait(cmd, name, args)
}

// Output executes the command and returns its captured standard output.
// Standard error still passes through.
func (e *Exec) Output(ctx context.Context, name string, args ...string) (string, error) {
	e.Echo(append([]string{name}, args...)...)

	var out strings.Builder
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.Dir
	cmd.Stdout = &out
	cmd.Stderr = e.Stderr
	cmd.Env = childEnv()
	if err := e.wait(cmd, name, args); err != nil {
		return out.String(), err
	}
	return out.String(), nil
}

func (e *Exec) wait(cmd *exec.Cmd, name string, args []string) error {
	err := cmd.Run()
	if err == nil {
		return nil
	}
	line := JoinCommand(append([]string{name}, args...))
	var xe *exec.ExitError
	if errors.As(err, &xe) {
		return &ExitError{Cmd: line, Code: xe.ExitCode()}
	}
	// Start failure: no child exit status exists.
	return fmt.Errorf("starting %q: %w", line, err)
}

func childEnv() []string {
	return append(os.Environ(), "CARGO_TERM_COLOR=always")
}

// JoinCommand renders a command and its arguments as a single shell-style
// line, quoting arguments that would otherwise be ambiguous (empty strings,
// embedded whitespace).
func JoinCommand(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		if w == "" || strings.ContainsAny(w, " \t\n'\"") {
			quoted[i] = "'" + strings.ReplaceAll(w, "'", `'\''`) + "'"
		} else {
			quoted[i] = w
		}
	}
	return strings.Join(quoted, " ")
}
