// Package toolchain resolves which cargo toolchain a run uses and gates
// feature selection on the toolchain's reported version.
package toolchain

import (
	"context"
	"log/slog"
)

// MinFeatureVersion is the oldest toolchain whose feature resolver supports
// building with every optional feature enabled at once. Older toolchains get
// default features only.
const MinFeatureVersion = "1.52"

// Selector identifies which installed toolchain variant executes all
// commands in a run. The zero value selects the ambient default toolchain.
// Immutable once resolved at process start.
type Selector struct {
	name string
}

// Resolve returns the selector for an optional toolchain name from the
// command line. An empty name selects the ambient default.
func Resolve(name string) Selector {
	return Selector{name: name}
}

// Name returns the toolchain variant name, or "" for the default.
func (s Selector) Name() string { return s.name }

// IsDefault reports whether the ambient default toolchain is selected.
func (s Selector) IsDefault() bool { return s.name == "" }

// Prefix returns the cargo argument list with the toolchain override
// prepended, e.g. Prefix("fmt", "--", "--check") -> ["+nightly", "fmt", "--", "--check"].
func (s Selector) Prefix(args ...string) []string {
	if s.name == "" {
		return args
	}
	return append([]string{"+" + s.name}, args...)
}

// VersionQuerier runs a command and returns its captured standard output.
// Satisfied by runner.Exec; tests inject a fake.
type VersionQuerier interface {
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// MeetsMinimum queries the selected toolchain's version and reports whether
// it satisfies MinFeatureVersion.
//
// A failing version command is fatal for the whole run: the error is
// returned unwrapped so the caller can surface the command's own exit
// status. Unparseable output is not fatal; the gate just reports not met.
func MeetsMinimum(ctx context.Context, q VersionQuerier, cargo string, sel Selector) (bool, Version, error) {
	out, err := q.Output(ctx, cargo, sel.Prefix("--version")...)
	if err != nil {
		return false, Version{}, err
	}
	v, err := ParseReportedVersion(out)
	if err != nil {
		slog.Warn("Could not parse toolchain version, assuming below minimum", "output", out, "error", err)
		return false, Version{}, nil
	}
	return v.AtLeast(MustParseVersion(MinFeatureVersion)), v, nil
}
