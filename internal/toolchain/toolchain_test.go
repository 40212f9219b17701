package toolchain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeQuerier struct {
	output string
	err    error

	gotName string
	gotArgs []string
}

func (f *fakeQuerier) Output(_ context.Context, name string, args ...string) (string, error) {
	f.gotName = name
	f.gotArgs = args
	return f.output, f.err
}

func TestMeetsMinimum_ModernToolchain(t *testing.T) {
	q := &fakeQuerier{output: "cargo 1.52.0 (69767412a 2021-04-21)\n"}

	met, v, err := MeetsMinimum(context.Background(), q, "cargo", Resolve(""))
	require.NoError(t, err)
	require.True(t, met)
	require.Equal(t, "1.52.0", v.String())
	require.Equal(t, "cargo", q.gotName)
	require.Equal(t, []string{"--version"}, q.gotArgs)
}

func TestMeetsMinimum_OldToolchain(t *testing.T) {
	q := &fakeQuerier{output: "cargo 1.9.0 (abcdef123 2016-03-01)\n"}

	met, _, err := MeetsMinimum(context.Background(), q, "cargo", Resolve(""))
	require.NoError(t, err)
	require.False(t, met)
}

func TestMeetsMinimum_NamedToolchainPrefix(t *testing.T) {
	q := &fakeQuerier{output: "cargo 1.54.0-nightly (44456677b 2021-06-12)\n"}

	met, _, err := MeetsMinimum(context.Background(), q, "cargo", Resolve("nightly"))
	require.NoError(t, err)
	require.True(t, met)
	require.Equal(t, []string{"+nightly", "--version"}, q.gotArgs)
}

func TestMeetsMinimum_CommandFailureIsFatal(t *testing.T) {
	boom := errors.New("toolchain 'bogus' is not installed")
	q := &fakeQuerier{err: boom}

	met, _, err := MeetsMinimum(context.Background(), q, "cargo", Resolve("bogus"))
	require.ErrorIs(t, err, boom)
	require.False(t, met)
}

func TestMeetsMinimum_UnparseableOutputGatesClosed(t *testing.T) {
	q := &fakeQuerier{output: "something unexpected\n"}

	met, _, err := MeetsMinimum(context.Background(), q, "cargo", Resolve(""))
	require.NoError(t, err)
	require.False(t, met)
}
