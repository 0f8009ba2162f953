// Package manifest extracts the declared version from a package manifest.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// ErrVersionNotFound indicates the manifest contains no declared-version
// line. Its message is the user-facing gate failure text.
var ErrVersionNotFound = errors.New("Could not parse version")

// versionLine matches a declared-version line of the exact shape
// `version = "<token>"`, anchored per line. The first match wins.
var versionLine = regexp.MustCompile(`(?m)^version = "(.*?)"$`)

// ParseVersion extracts the first declared version token from manifest
// text.
func ParseVersion(text string) (string, error) {
	m := versionLine.FindStringSubmatch(text)
	if m == nil {
		return "", ErrVersionNotFound
	}
	return m[1], nil
}

// ReadVersion reads the manifest file at path and extracts its version.
func ReadVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read manifest %s: %w", path, err)
	}
	return ParseVersion(string(data))
}

// CheckSemver reports whether the token is a valid semantic version.
// The declared-version pattern captures any quoted token, so a malformed
// version still parses; projects with strict_version set treat this as a
// manifest error, everyone else gets a warning.
func CheckSemver(version string) error {
	if _, err := semver.StrictNewVersion(version); err != nil {
		return fmt.Errorf("version %q is not valid semver: %w", version, err)
	}
	return nil
}
