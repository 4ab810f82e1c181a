package version

import (
	"fmt"
	"runtime"
)

// Build metadata. Release builds set these with
// -ldflags "-X github.com/oshokin/craftstage/internal/version.Version=...".
var (
	Version   = "0.1.0"
	Commit    = "none"
	BuildTime = "unknown"
)

// Short returns the release number.
func Short() string {
	return Version
}

// Full renders the build on one line, for bug reports:
//
//	craftstage 0.1.0 (commit 1a2b3c4, built 2024-05-01T10:00:00Z, go1.25.0 linux/amd64)
func Full() string {
	return fmt.Sprintf("craftstage %s (commit %s, built %s, %s %s/%s)",
		Version, Commit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// UserAgent identifies craftstage to the catalog and download hosts.
func UserAgent() string {
	return fmt.Sprintf("craftstage/%s (%s; %s)", Version, runtime.GOOS, runtime.GOARCH)
}
