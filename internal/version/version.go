package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/vanthaita/Orca-CLI-sub000/internal/version.Version=..."
var (
	App       = "Orca"
	Version   string
	GitCommit string
	BuildTime string
)

// BuildInfo is the version data in machine-readable form.
type BuildInfo struct {
	App       string `json:"app"`
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit,omitempty"`
	BuildTime string `json:"buildTime,omitempty"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// GetBuildInfo returns the link-time values. When the binary was built
// without ldflags the commit and time come from the embedded VCS stamp.
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		App:       App,
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			}
		}
	}

	if info.Version == "" {
		info.Version = "dev"
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	return info
}

// PrintVersion writes the human-readable version block.
func PrintVersion(w io.Writer) {
	info := GetBuildInfo()
	_, _ = fmt.Fprintf(w, "%s version %s\n", info.App, info.Version)
	if info.GitCommit != "" {
		_, _ = fmt.Fprintf(w, "Git commit: %s\n", info.GitCommit)
	}
	if info.BuildTime != "" {
		_, _ = fmt.Fprintf(w, "Build time: %s\n", info.BuildTime)
	}
	_, _ = fmt.Fprintf(w, "Go version: %s\n", info.GoVersion)
	_, _ = fmt.Fprintf(w, "Built for: %s\n", info.Platform)
}
