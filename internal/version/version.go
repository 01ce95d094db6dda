// Package version reports the build's version, commit and toolchain.
package version

import (
	_ "embed"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var versionFile string

// Set with:
//
//	go build -ldflags "-X github.com/leefowlercu/restore2fa/internal/version.gitCommit=VALUE"
var (
	gitCommit string
	buildDate string
)

const unknown = "unknown"

// Info describes the running binary.
type Info struct {
	Version   string
	GitCommit string
	BuildDate string
	GoVersion string
	Platform  string
}

// String formats Info for the version command.
func (i Info) String() string {
	return fmt.Sprintf("Version:    %s\nGit Commit: %s\nBuild Date: %s\nGo Version: %s\nPlatform:   %s",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)
}

// Short returns "<version> (<commit>)", used by --version.
func (i Info) Short() string {
	return fmt.Sprintf("%s (%s)", i.Version, i.GitCommit)
}

// Get returns the Info for this binary.
func Get() Info {
	return Info{
		Version:   getVersion(),
		GitCommit: getGitCommit(),
		BuildDate: getBuildDate(),
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func getVersion() string {
	v := strings.TrimSpace(versionFile)
	if v == "" {
		return "0.0.0-dev"
	}
	return v
}

// getGitCommit prefers the linker value, then VCS build info.
func getGitCommit() string {
	if gitCommit != "" {
		return gitCommit
	}

	revision, dirty := readBuildInfo()
	if revision == "" {
		return unknown
	}
	if dirty {
		return revision + "-dirty"
	}
	return revision
}

// getBuildDate prefers the linker value, then the VCS commit time.
func getBuildDate() string {
	if buildDate != "" {
		return buildDate
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.time" && s.Value != "" {
				return s.Value
			}
		}
	}
	return unknown
}

// readBuildInfo returns the 7-character VCS revision and whether the tree
// was modified.
func readBuildInfo() (revision string, dirty bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}

	return revision, dirty
}
