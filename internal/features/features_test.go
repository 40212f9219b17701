package features

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestSelect_OverrideWins(t *testing.T) {
	got := Select(strptr("vfio,mock"), true)
	require.Equal(t, Flags{"--no-default-features", "--features", "vfio,mock"}, got)

	// Override beats the gate in both directions.
	got = Select(strptr("vfio,mock"), false)
	require.Equal(t, Flags{"--no-default-features", "--features", "vfio,mock"}, got)
}

func TestSelect_EmptyOverrideIsStillAnOverride(t *testing.T) {
	// Set-to-empty means "exactly zero optional features", not "unset".
	got := Select(strptr(""), true)
	require.Equal(t, Flags{"--no-default-features", "--features", ""}, got)
}

func TestSelect_GateMetEnablesAllFeatures(t *testing.T) {
	require.Equal(t, Flags{"--all-features"}, Select(nil, true))
}

func TestSelect_GateNotMetMeansDefaultFeatures(t *testing.T) {
	require.Empty(t, Select(nil, false))
}
