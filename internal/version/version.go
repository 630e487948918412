package version

import (
	"fmt"
	"runtime/debug"
)

// These variables are set at build time via ldflags
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = "unknown"
)

// String returns the human-readable build string.
func String() string {
	commit := resolveCommit()
	if commit == "" {
		return fmt.Sprintf("blueprint %s (built: %s)", Version, BuildTime)
	}
	return fmt.Sprintf("blueprint %s (commit: %s, built: %s)", Version, shortCommit(commit), BuildTime)
}

// resolveCommit prefers the ldflags value and falls back to the VCS
// revision the go toolchain stamps into the binary.
func resolveCommit() string {
	if Commit != "" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}
	return ""
}

func shortCommit(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
