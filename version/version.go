// Package version reports which build of sfxgraph is running.
package version

import "runtime/debug"

// Version can be set at build time:
// go build -ldflags "-X github.com/sfxgraph/sfxgraph/version.Version=$(git describe --dirty)"
var Version string

// Info is the version of the running binary, read from the build info.
type Info struct {
	Version   string
	Revision  string
	Modified  bool
	GoVersion string
}

func Read() Info {
	info := Info{Version: Version}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	if info.Version == "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Revision = setting.Value
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}
	return info
}

// String is the version if there is one, otherwise the short revision hash,
// marked -dirty for builds from a modified tree.
func (i Info) String() string {
	if i.Version != "" {
		return i.Version
	}
	if i.Revision == "" {
		return "unknown"
	}
	hash := i.Revision
	if len(hash) > 7 {
		hash = hash[:7]
	}
	if i.Modified {
		return hash + "-dirty"
	}
	return hash
}
