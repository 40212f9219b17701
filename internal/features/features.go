// Package features decides which optional compile-time feature flags a
// verification run passes to build and test invocations.
package features

// Flags is the ordered list of feature flags appended to cargo invocations.
// Computed once at startup and reused unchanged by every stage that accepts
// feature flags; a nil Flags means default features only.
type Flags []string

// Select produces the run's feature flags.
//
// Precedence:
//  1. An explicit override (the CRATECHECK_FEATURES environment variable,
//     surfaced here as a non-nil pointer) restricts the build to exactly the
//     named features, default features off. A pointer to the empty string is
//     a valid override meaning "no features at all" and is distinct from an
//     unset variable — callers must resolve the variable with os.LookupEnv,
//     not os.Getenv.
//  2. Otherwise, a toolchain meeting the minimum version gets every
//     optional feature.
//  3. Otherwise, default features only.
func Select(override *string, versionGateMet bool) Flags {
	if override != nil {
		return Flags{"--no-default-features", "--features", *override}
	}
	if versionGateMet {
		return Flags{"--all-features"}
	}
	return nil
}
