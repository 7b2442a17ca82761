// Package misc carries application identity helpers.
package misc

import (
	"runtime/debug"
	"strings"
)

const appName = "xlc"

// GetAppName returns short program name used for logs and derived file names.
func GetAppName() string {
	return appName
}

// GetVersion returns module version recorded in build info, "devel" for
// uncooked builds.
func GetVersion() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return "devel"
}

// GetGitHash returns VCS revision recorded in build info, shortened to 12
// characters.
func GetGitHash() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	var rev, modified string
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				modified = "*"
			}
		}
	}
	if rev == "" {
		return "unknown"
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	return strings.ToLower(rev) + modified
}
