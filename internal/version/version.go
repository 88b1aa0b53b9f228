// Package version holds the build identification of the ball perceptor tools.
package version

import "fmt"

// Set with -ldflags "-X ball-perceptor/internal/version.Version=...".
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the build identification for -version output.
func String(tool string) string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", tool, Version, GitCommit, BuildTime)
}
