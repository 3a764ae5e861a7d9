// Package version holds build information set through -ldflags.
package version

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Info returns all version information as a struct
func Info() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}
}

// VersionInfo is reported by /health and `leadctl version`.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

// String renders the info on one line.
func (v VersionInfo) String() string {
	return v.Version + " (" + v.GitCommit + ", built " + v.BuildTime + ")"
}
