// Package version exposes build metadata stamped via -ldflags.
package version

import "fmt"

var (
	// Version is the semantic release version, overridden at build time.
	Version = "dev"
	// Commit is the short VCS revision, overridden at build time.
	Commit = "unknown"
)

// String renders the version banner used by the version command.
func String() string {
	return fmt.Sprintf("submux %s (%s)", Version, Commit)
}
