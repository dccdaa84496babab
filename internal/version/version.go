package version

import (
	"errors"
	"fmt"

	goversion "github.com/hashicorp/go-version"
)

var (
	// Version is the full product version of the build in "major.minor.patch+build"
	// format. It can be overridden via ldflags.
	Version = "1.0.0+0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

var (
	// ErrMalformedVersion is returned when a version string cannot be parsed at all.
	ErrMalformedVersion = errors.New("malformed version string")
	// ErrNoBuildMetadata is returned when a version string lacks the "+build" component.
	ErrNoBuildMetadata = errors.New("version has no build metadata")
)

// Short returns only the product version string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit and build time.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}

// BuildNumber extracts the build number of the running binary, i.e. the part
// after "+" in the embedded product version.
func BuildNumber() (string, error) {
	return BuildNumberFrom(Version)
}

// BuildNumberFrom extracts the build number from a "major.minor.patch+build" string.
// It fails with ErrMalformedVersion when the string does not parse as a version
// and with ErrNoBuildMetadata when no "+" component is present.
func BuildNumberFrom(s string) (string, error) {
	parsed, err := goversion.NewVersion(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedVersion, s)
	}

	metadata := parsed.Metadata()
	if metadata == "" {
		return "", fmt.Errorf("%w: %q", ErrNoBuildMetadata, s)
	}

	return metadata, nil
}
