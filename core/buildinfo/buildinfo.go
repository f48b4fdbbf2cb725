// Package buildinfo carries version metadata stamped at link time:
//
//	-X 'github.com/m3rciful/portfoliobot/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/m3rciful/portfoliobot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/portfoliobot/core/buildinfo.Date=2025-08-30T12:00:00Z'
package buildinfo

import "fmt"

// Defaults are used for local builds.
var (
	Version = "dev"
	Commit  = "local"
	Date    = ""
)

// String formats the metadata for the version command and startup logs.
func String() string {
	if Date == "" {
		return fmt.Sprintf("%s (%s)", Version, Commit)
	}
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}
