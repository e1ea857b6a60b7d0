package app

import "fmt"

// Version, Commit and BuildTime are set via ldflags, e.g.
// go build -ldflags "-X github.com/heartmarshall/dreamjournal/internal/app.Version=1.0.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion returns the version string used in logs and the health probe.
func BuildVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)
}
