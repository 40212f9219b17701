package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/cratecheck/internal/features"
	"git.home.luguber.info/inful/cratecheck/internal/runner"
	"git.home.luguber.info/inful/cratecheck/internal/toolchain"
)

func newPipeline(f *runner.Fake, tc string, feats features.Flags) *Pipeline {
	return &Pipeline{
		Cargo:     "cargo",
		Toolchain: toolchain.Resolve(tc),
		Features:  feats,
		Runner:    f,
	}
}

func TestRun_AllStagesPassInFixedOrder(t *testing.T) {
	f := runner.NewFake()
	p := newPipeline(f, "", features.Flags{"--all-features"})

	require.NoError(t, p.Run(context.Background()))
	require.Equal(t, []string{
		"cargo fmt -- --check",
		"cargo clippy --all-targets --all-features -- -D warnings",
		"cargo doc",
		"cargo test --doc",
		"cargo test --all-targets --all-features",
	}, f.Lines())
}

func TestRun_ToolchainPrefixOnEveryStage(t *testing.T) {
	f := runner.NewFake()
	p := newPipeline(f, "nightly", nil)

	require.NoError(t, p.Run(context.Background()))
	lines := f.Lines()
	require.Len(t, lines, 5)
	for _, line := range lines {
		require.True(t, strings.HasPrefix(line, "cargo +nightly "), "missing toolchain prefix: %s", line)
	}
}

func TestRun_FailFastStopsAtFirstFailure(t *testing.T) {
	f := runner.NewFake()
	f.FailOn = map[string]error{"clippy": &runner.ExitError{Cmd: "cargo clippy", Code: 101}}
	p := newPipeline(f, "", features.Flags{"--all-features"})

	err := p.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, 101, runner.ExitCode(err))

	// fmt ran once, clippy ran once, nothing after.
	lines := f.Lines()
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "fmt")
	require.Contains(t, lines[1], "clippy")
}

func TestRun_LastStageFailurePropagatesExactCode(t *testing.T) {
	f := runner.NewFake()
	f.FailOn = map[string]error{"test --all-targets": &runner.ExitError{Cmd: "cargo test", Code: 3}}
	p := newPipeline(f, "", features.Flags{"--all-features"})

	err := p.Run(context.Background())
	require.Equal(t, 3, runner.ExitCode(err))
	require.Len(t, f.Lines(), 5)
}

func TestRun_DocTestsUseDefaultFeaturesOnly(t *testing.T) {
	f := runner.NewFake()
	p := newPipeline(f, "", features.Flags{"--all-features"})

	require.NoError(t, p.Run(context.Background()))
	lines := f.Lines()

	// The doc-test invocation must not carry the run's feature selection;
	// the full test suite must.
	require.Equal(t, "cargo test --doc", lines[3])
	require.Contains(t, lines[4], "--all-features")
}

func TestRun_OverrideFeaturesReachFeatureStages(t *testing.T) {
	f := runner.NewFake()
	p := newPipeline(f, "", features.Select(strptr("vfio"), false))

	require.NoError(t, p.Run(context.Background()))
	lines := f.Lines()
	require.Equal(t, "cargo clippy --all-targets --no-default-features --features vfio -- -D warnings", lines[1])
	require.Equal(t, "cargo doc", lines[2])
	require.Equal(t, "cargo test --all-targets --no-default-features --features vfio", lines[4])
}

func TestRun_RecorderCapturesOutcomes(t *testing.T) {
	f := runner.NewFake()
	f.FailOn = map[string]error{"cargo test --doc": &runner.ExitError{Cmd: "cargo test --doc", Code: 4}}

	rec := &Recorder{}
	p := newPipeline(f, "", nil)
	p.Observers = []Observer{rec}

	err := p.Run(context.Background())
	require.Equal(t, 4, runner.ExitCode(err))

	stages := rec.Stages()
	require.Len(t, stages, 4) // fmt, clippy, doc, doc-test; test never ran
	require.True(t, stages[0].Passed)
	require.True(t, stages[2].Passed)
	require.False(t, stages[3].Passed)
	require.Equal(t, 4, stages[3].ExitCode)
	require.True(t, rec.Failed())
	require.Equal(t, 4, rec.ExitCode())
}

func strptr(s string) *string { return &s }
