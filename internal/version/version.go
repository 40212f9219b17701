// Package version carries build identification for the cratecheck binary,
// surfaced by the --version flag.
package version

// Version is the release tag, injected at build time:
// go build -ldflags "-X git.home.luguber.info/inful/cratecheck/internal/version.Version=v1.0.0".
// Untagged builds report "unknown".
var Version = "unknown"

// BuildTime and GitCommit pin down the exact build, also set via ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)
