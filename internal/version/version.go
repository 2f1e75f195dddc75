// Package version carries build metadata (version, commit, build date)
// set via -ldflags, so every mysqldiff subcommand reports the same build
// identity.
package version

import "fmt"

var (
	// Version is the mysqldiff release version, set via
	// -ldflags "-X github.com/rurban/mysqldiff/internal/version.Version=...".
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "unknown"
	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// String renders the build identity the way `mysqldiff version` prints it.
func String() string {
	return fmt.Sprintf("mysqldiff %s (commit: %s, built: %s)", Version, Commit, BuildDate)
}
