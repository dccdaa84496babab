// Package version exposes build metadata for the project.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags and default to sensible values for local builds. The Version
// string carries the build number after a "+" separator; BuildNumber extracts
// it for the current-version query.
package version
