// Package version parses and compares Chrome-style version numbers
// (major.minor.build.patch, e.g. 120.0.6099.109).
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Version represents a Chrome version. Missing trailing components are zero.
type Version struct {
	Major int
	Minor int
	Build int
	Patch int
}

// String returns the version as a string.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Patch)
}

// versionRegex matches 1 to 4 dot-separated components like 120, 120.0 or 120.0.6099.109.
var versionRegex = regexp.MustCompile(`(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:\.(\d+))?`)

// Parse parses a version string into a Version.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("empty version string")
	}

	matches := versionRegex.FindStringSubmatch(s)
	// The entire string must be the version, no extra parts
	if matches == nil || matches[0] != s {
		return Version{}, fmt.Errorf("invalid version format: %q", s)
	}
	return fromMatches(matches), nil
}

// Extract finds and parses the first version number in a string,
// e.g. the output of `google-chrome --version`.
func Extract(s string) (Version, error) {
	matches := versionRegex.FindStringSubmatch(s)
	if matches == nil {
		return Version{}, fmt.Errorf("no version found in: %q", s)
	}
	return fromMatches(matches), nil
}

func fromMatches(matches []string) Version {
	parts := make([]int, 4)
	for i := range parts {
		if matches[i+1] != "" {
			parts[i], _ = strconv.Atoi(matches[i+1])
		}
	}
	return Version{Major: parts[0], Minor: parts[1], Build: parts[2], Patch: parts[3]}
}

// ParseOptional parses s, returning nil for an empty string.
func ParseOptional(s string) (*Version, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
