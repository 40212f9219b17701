package toolchain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVersion_Basic(t *testing.T) {
	v, err := ParseVersion("1.52.0")
	require.NoError(t, err)
	require.Equal(t, "1.52.0", v.String())
}

func TestParseVersion_StripsPreRelease(t *testing.T) {
	v, err := ParseVersion("1.54.0-nightly")
	require.NoError(t, err)
	require.Equal(t, "1.54.0", v.String())
}

func TestParseVersion_RejectsGarbage(t *testing.T) {
	_, err := ParseVersion("not.a.version")
	require.Error(t, err)

	_, err = ParseVersion("")
	require.Error(t, err)
}

func TestCompare_NumericNotLexicographic(t *testing.T) {
	// "9" > "5" as strings, but 9 < 52 as numbers. This is the whole point.
	older := MustParseVersion("1.9.0")
	newer := MustParseVersion("1.52.0")
	require.Equal(t, -1, older.Compare(newer))
	require.Equal(t, 1, newer.Compare(older))
}

func TestCompare_DifferingComponentCounts(t *testing.T) {
	require.Equal(t, 0, MustParseVersion("1.52").Compare(MustParseVersion("1.52.0")))
	require.Equal(t, -1, MustParseVersion("1.52").Compare(MustParseVersion("1.52.1")))
	require.Equal(t, 1, MustParseVersion("1.52.1").Compare(MustParseVersion("1.52")))
}

func TestAtLeast_Threshold(t *testing.T) {
	threshold := MustParseVersion(MinFeatureVersion)

	require.True(t, MustParseVersion("1.52.0").AtLeast(threshold))
	require.True(t, MustParseVersion("1.52").AtLeast(threshold))
	require.True(t, MustParseVersion("1.60.3").AtLeast(threshold))
	require.False(t, MustParseVersion("1.9.0").AtLeast(threshold))
	require.False(t, MustParseVersion("1.51.1").AtLeast(threshold))
}

func TestParseReportedVersion_CargoOutput(t *testing.T) {
	v, err := ParseReportedVersion("cargo 1.52.0 (69767412a 2021-04-21)\n")
	require.NoError(t, err)
	require.Equal(t, "1.52.0", v.String())
}

func TestParseReportedVersion_Nightly(t *testing.T) {
	v, err := ParseReportedVersion("cargo 1.54.0-nightly (44456677b 2021-06-12)")
	require.NoError(t, err)
	require.Equal(t, "1.54.0", v.String())
}

func TestParseReportedVersion_NotFooledByDatesOrHashes(t *testing.T) {
	// The commit date contains dotted-numeric-looking text; only the token
	// right after the binary name counts.
	v, err := ParseReportedVersion("cargo 1.49.0 (d00d64df9 2020-12-05)")
	require.NoError(t, err)
	require.Equal(t, "1.49.0", v.String())
	require.False(t, v.AtLeast(MustParseVersion(MinFeatureVersion)))
}

func TestParseReportedVersion_Garbage(t *testing.T) {
	_, err := ParseReportedVersion("error: no such command")
	require.Error(t, err)
}

func TestSelector_Prefix(t *testing.T) {
	require.Equal(t, []string{"fmt", "--", "--check"}, Resolve("").Prefix("fmt", "--", "--check"))
	require.Equal(t, []string{"+nightly", "fmt", "--", "--check"}, Resolve("nightly").Prefix("fmt", "--", "--check"))
}
