// Package version holds build metadata injected with -ldflags
package version

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String is the one-line form printed by `apptcal version`
func String() string {
	return fmt.Sprintf("apptcal %s (commit %s, built %s)", Version, Commit, Date)
}

// IsDev reports whether this is an untagged development build
func IsDev() bool {
	return Version == "" || Version == "dev"
}
