package toolchain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Version is a dotted-numeric toolchain version. Components are compared
// numerically, so 1.52 orders after 1.9 (unlike a plain string sort).
// Pre-release suffixes such as "-nightly" or "-beta.3" are ignored for
// ordering purposes, matching how the minimum-version gate is meant to work.
type Version struct {
	parts []int
}

// ParseVersion parses a dotted-numeric version string like "1.52" or "1.52.0".
func ParseVersion(s string) (Version, error) {
	core := s
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	if core == "" {
		return Version{}, fmt.Errorf("empty version string")
	}
	fields := strings.Split(core, ".")
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version component %q in %q", f, s)
		}
		parts = append(parts, n)
	}
	return Version{parts: parts}, nil
}

// MustParseVersion is ParseVersion for compile-time constants.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1. Missing trailing components compare as zero,
// so 1.52 equals 1.52.0.
func (v Version) Compare(o Version) int {
	n := len(v.parts)
	if len(o.parts) > n {
		n = len(o.parts)
	}
	for i := 0; i < n; i++ {
		a, b := 0, 0
		if i < len(v.parts) {
			a = v.parts[i]
		}
		if i < len(o.parts) {
			b = o.parts[i]
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v >= o.
func (v Version) AtLeast(o Version) bool {
	return v.Compare(o) >= 0
}

func (v Version) String() string {
	fields := make([]string, len(v.parts))
	for i, p := range v.parts {
		fields[i] = strconv.Itoa(p)
	}
	return strings.Join(fields, ".")
}

// cargo --version output looks like:
//
//	cargo 1.52.0 (69767412a 2021-04-21)
//	cargo 1.54.0-nightly (44456677b 2021-06-12)
//
// The version is the token following the binary name; matching it there keeps
// commit dates and hashes in the trailing parenthetical from being mistaken
// for a version.
var cargoVersionRe = regexp.MustCompile(`^\S+\s+v?(\d+(?:\.\d+)*(?:[-+][0-9A-Za-z.-]+)?)`)

// ParseReportedVersion extracts the structured version from a toolchain's
// self-reported identification line.
func ParseReportedVersion(output string) (Version, error) {
	line := strings.TrimSpace(output)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	m := cargoVersionRe.FindStringSubmatch(line)
	if m == nil {
		return Version{}, fmt.Errorf("no version found in toolchain output %q", line)
	}
	return ParseVersion(m[1])
}
