// Package buildinfo carries version metadata stamped in at link time:
//
//	go build -ldflags "-X github.com/1babii1/lessonsBot/core/buildinfo.Version=v0.3.0 \
//	  -X github.com/1babii1/lessonsBot/core/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/1babii1/lessonsBot/core/buildinfo.Date=$(date -u +%FT%TZ)" ./cmd/lessonbot
package buildinfo

import "fmt"

var (
	// Version is the release tag of the binary.
	Version = "dev"
	// Commit is the short source revision.
	Commit = "local"
	// Date is the build time in RFC3339.
	Date = ""
)

// String renders the version line printed by `lessonbot version`.
func String() string {
	date := Date
	if date == "" {
		date = "unknown"
	}
	return fmt.Sprintf("lessonbot %s (commit %s, built %s)", Version, Commit, date)
}
