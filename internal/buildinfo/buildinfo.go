// Package buildinfo exposes the VCS metadata the Go toolchain stamps
// into the binary. The lobby greets authenticated users with the commit
// it was built from.
package buildinfo

import (
	"runtime/debug"
)

// Info describes the commit the binary was built from.
type Info struct {
	Revision string // full commit hash
	Short    string // first 8 characters of Revision
	Dirty    bool   // uncommitted changes at build time
}

// Read extracts the VCS settings from the build metadata. ok is false
// when the binary was built outside a checkout or without stamping.
func Read() (Info, bool) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return Info{}, false
	}
	return parse(bi.Settings)
}

func parse(settings []debug.BuildSetting) (Info, bool) {
	var info Info
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	if info.Revision == "" {
		return Info{}, false
	}
	info.Short = info.Revision
	if len(info.Short) > 8 {
		info.Short = info.Short[:8]
	}
	return info, true
}
