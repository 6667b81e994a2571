// Package version exposes build metadata for the About dialog and the
// startup log line.
package version

// Populated at link time via -ldflags "-X circuit-designer/internal/version.Version=...".
var (
	// Version is the release version string.
	Version = "0.1.0"

	// BuildTime is when the binary was built, in UTC.
	BuildTime = "unknown"

	// GitCommit is the short hash of the commit the binary was built from.
	GitCommit = "unknown"
)
