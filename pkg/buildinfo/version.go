// Package buildinfo reports the version of the sectorlock binary.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/sectorlock/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/sectorlock/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/sectorlock/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries built with go install carry no ldflags; their module version and
// VCS stamp are read from the embedded build info instead.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Placeholders used when nothing else is known.
const (
	devVersion     = "dev"
	unknownCommit  = "none"
	unknownDate    = "unknown"
	develModuleVer = "(devel)"
)

var (
	Version = devVersion
	Commit  = unknownCommit
	Date    = unknownDate
)

var fillOnce sync.Once

// fill replaces placeholders with values from the embedded build info.
func fill() {
	fillOnce.Do(func() {
		if bi, ok := debug.ReadBuildInfo(); ok {
			apply(bi)
		}
	})
}

func apply(bi *debug.BuildInfo) {
	if Version == devVersion && bi.Main.Version != "" && bi.Main.Version != develModuleVer {
		Version = bi.Main.Version
	}
	var dirty bool
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == unknownCommit {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == unknownDate {
				Date = s.Value
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty && Commit != unknownCommit {
		Commit += "-dirty"
	}
}

// String returns the formatted build information.
func String() string {
	fill()
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	fill()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
