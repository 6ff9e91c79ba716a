// Package settings provides build metadata, the default model config version,
// and per-run CLI settings shared across the modelconf CLI and library packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "modelconf"

// ConfigVersion is the version written into a newly constructed basic
// section. It is a var so builds can stamp it via ldflags.
var ConfigVersion = "0.2.0"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds configuration settings for a single execution of the application.
type Run struct {
	MinLogLevel int8
	Output      string
	NoColor     bool
}

// NewCliParams returns a Run with default CLI parameters: info level logging,
// table output and color enabled.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Output:      "table",
		NoColor:     false,
	}
}
