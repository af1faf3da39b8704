package mqpasswd

import "fmt"

// Version of the mqpasswd tool
const Version = "1.0.0"

// Build information (set by ldflags during build)
var (
	GitCommit string
	BuildDate string
)

// VersionInfo returns formatted version information
func VersionInfo() string {
	if GitCommit == "" {
		return fmt.Sprintf("mqpasswd v%s", Version)
	}
	commit := GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("mqpasswd v%s (commit: %s, built: %s)", Version, commit, BuildDate)
}
