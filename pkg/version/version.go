package version

import (
	"fmt"
	"runtime"
	"strings"
)

var (
	// Version is the semantic version (set at build time via ldflags)
	Version = "dev"
	// Commit is the git commit hash (set at build time via ldflags)
	Commit = "unknown"
	// BuildTime is the build timestamp (set at build time via ldflags)
	BuildTime = "unknown"
)

// Info contains version information
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"buildTime" yaml:"buildTime"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the version information
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns the multi-line banner printed by esadmin version
func (i Info) String() string {
	var b strings.Builder
	b.WriteString("esadmin\n")
	for _, f := range i.Fields() {
		fmt.Fprintf(&b, "  %-11s %s\n", f[0]+":", f[1])
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Fields returns the label/value pairs of the banner in display order
func (i Info) Fields() [][2]string {
	return [][2]string{
		{"Version", i.Version},
		{"Commit", i.Commit},
		{"Build Time", i.BuildTime},
		{"Go Version", i.GoVersion},
		{"Platform", i.Platform},
	}
}

// Short returns "<version> (<commit>)" for --version
func (i Info) Short() string {
	return fmt.Sprintf("%s (%s)", i.Version, shortCommit(i.Commit))
}

// OpaqueID identifies esadmin requests to the server, e.g. esadmin/v1.2.0-0123456
func (i Info) OpaqueID() string {
	if i.Commit == "" || i.Commit == "unknown" {
		return "esadmin/" + i.Version
	}
	return "esadmin/" + i.Version + "-" + shortCommit(i.Commit)
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
