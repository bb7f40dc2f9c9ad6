package config

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags, for example:
//
//	go build -ldflags "-X sitewizard/internal/config.version=1.4.0 \
//	    -X sitewizard/internal/config.commit=$(git rev-parse --short HEAD)"
var (
	version   = "dev"
	commit    = ""
	buildTime = ""
)

// NewBuildInfo returns the linker-injected metadata. Without ldflags the
// commit and time fall back to the VCS stamp recorded by the Go toolchain.
func NewBuildInfo() BuildInfo {
	b := BuildInfo{Version: version, Commit: commit, BuildTime: buildTime}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && b.Commit == "":
				b.Commit = s.Value
			case s.Key == "vcs.time" && b.BuildTime == "":
				b.BuildTime = s.Value
			}
		}
	}
	if b.Commit == "" {
		b.Commit = "none"
	}
	if b.BuildTime == "" {
		b.BuildTime = "unknown"
	}
	return b
}

// String renders the metadata for startup logs and the health endpoint.
func (b BuildInfo) String() string {
	commit := b.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("%s (%s, %s)", b.Version, commit, b.BuildTime)
}
