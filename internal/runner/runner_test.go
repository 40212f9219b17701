package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExitCode_Mapping(t *testing.T) {
	require.Equal(t, 0, ExitCode(nil))
	require.Equal(t, 101, ExitCode(&ExitError{Cmd: "cargo test", Code: 101}))
	require.Equal(t, 101, ExitCode(fmt.Errorf("stage test: %w", &ExitError{Code: 101})))
	require.Equal(t, 127, ExitCode(fmt.Errorf("starting %q: %w", "cargo --version", &exec.Error{Name: "cargo", Err: exec.ErrNotFound})))
	require.Equal(t, 1, ExitCode(errors.New("reading config: permission denied")))
}

func TestExitError_Message(t *testing.T) {
	err := &ExitError{Cmd: "cargo clippy", Code: 1}
	require.Contains(t, err.Error(), "cargo clippy")
	require.Contains(t, err.Error(), "status 1")
}

func TestJoinCommand_QuotesAmbiguousArgs(t *testing.T) {
	require.Equal(t, "cargo fmt -- --check", JoinCommand([]string{"cargo", "fmt", "--", "--check"}))
	// Empty feature lists stay visible in the echo.
	require.Equal(t, "cargo test --features ''", JoinCommand([]string{"cargo", "test", "--features", ""}))
	require.Equal(t, "echo 'a b'", JoinCommand([]string{"echo", "a b"}))
}

func TestFake_RecordsAndScriptsFailures(t *testing.T) {
	f := NewFake()
	f.FailOn = map[string]error{"clippy": &ExitError{Cmd: "cargo clippy", Code: 7}}

	require.NoError(t, f.Run(context.Background(), "cargo", "fmt", "--", "--check"))
	err := f.Run(context.Background(), "cargo", "clippy", "--all-targets")
	require.Equal(t, 7, ExitCode(err))

	require.Equal(t, []string{
		"cargo fmt -- --check",
		"cargo clippy --all-targets",
	}, f.Lines())
}

func TestFake_Output(t *testing.T) {
	f := NewFake()
	f.VersionOutput = "cargo 1.52.0 (69767412a 2021-04-21)\n"

	out, err := f.Output(context.Background(), "cargo", "--version")
	require.NoError(t, err)
	require.Contains(t, out, "1.52.0")
	require.Equal(t, []string{"cargo --version"}, f.Lines())
}
