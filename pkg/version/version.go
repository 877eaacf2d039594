// Package version reports build information for cypherast binaries.
package version

import (
	"fmt"
	"runtime/debug"
)

const (
	unknown      = "unknown"
	develVersion = "(devel)"
	shortHashLen = 12
)

// Build information, overridden at link time:
//
//	go build -ldflags "-X github.com/Sumatoshi-tech/cypherast/pkg/version.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// InitBinaryVersion fills fields left at their defaults from the module
// build info embedded by the Go toolchain.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	fillFrom(info)
}

func fillFrom(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != develVersion {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == unknown && setting.Value != "" {
				Commit = shorten(setting.Value)
			}
		case "vcs.time":
			if Date == unknown && setting.Value != "" {
				Date = setting.Value
			}
		}
	}
}

func shorten(hash string) string {
	if len(hash) > shortHashLen {
		return hash[:shortHashLen]
	}

	return hash
}

// String returns "VERSION (commit: COMMIT, built: DATE)".
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
