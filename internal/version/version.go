// Package version holds the XeWe OS build stamp. Values are injected with
// -ldflags "-X xeweos/internal/version.Version=...".
package version

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

var (
	Version   = "0.3.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RepositoryURL is printed in the boot banner.
const RepositoryURL = "https://github.com/maxdokukin/XeWe-OS"

const unknown = "unknown"

// ErrNoBuildDate is returned by BuildTime when no date was stamped.
var ErrNoBuildDate = errors.New("build date not available")

var buildDateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// Stamp is the parsed build stamp.
type Stamp struct {
	SemVer   *semver.Version
	Commit   string
	Date     string
	Platform string
}

// Current parses the stamped version.
func Current() (Stamp, error) {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return Stamp{}, fmt.Errorf("invalid semantic version %q: %w", Version, err)
	}
	return Stamp{
		SemVer:   sv,
		Commit:   GitCommit,
		Date:     BuildDate,
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}, nil
}

// Validate reports whether Version is a semantic version.
func Validate() error {
	_, err := Current()
	return err
}

// GetBaseVersion returns major.minor.patch, dropping prerelease and metadata.
func GetBaseVersion() string {
	s, err := Current()
	if err != nil {
		return Version
	}
	return fmt.Sprintf("%d.%d.%d", s.SemVer.Major(), s.SemVer.Minor(), s.SemVer.Patch())
}

// IsPrerelease reports whether Version carries a prerelease tag.
func IsPrerelease() bool {
	s, err := Current()
	return err == nil && s.SemVer.Prerelease() != ""
}

// GetFormattedVersion returns the one-line form printed by `xewe version`.
func GetFormattedVersion() string {
	s, err := Current()
	if err != nil {
		return "XeWe OS v" + Version + " (invalid version)"
	}
	out := "XeWe OS v" + s.SemVer.Original()
	if known(s.Commit) {
		out += ", commit " + shortCommit(s.Commit)
	}
	if known(s.Date) {
		out += ", built " + s.Date
	}
	return out
}

// GetDetailedVersion returns one fact per line for `$system info`.
func GetDetailedVersion() string {
	s, err := Current()
	if err != nil {
		return fmt.Sprintf("XeWe OS v%s (error: %v)", Version, err)
	}
	date := s.Date
	if t, err := BuildTime(); err == nil {
		date = t.UTC().Format("2006-01-02 15:04:05") + " UTC"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Version %s\n", s.SemVer.Original())
	fmt.Fprintf(&b, "Commit %s\n", s.Commit)
	fmt.Fprintf(&b, "Build %s\n", date)
	fmt.Fprintf(&b, "Go %s\n", runtime.Version())
	fmt.Fprintf(&b, "Platform %s", s.Platform)
	if s.SemVer.Prerelease() != "" {
		b.WriteString("\nPrerelease build")
	}
	return b.String()
}

// BuildTime parses BuildDate in any of the accepted layouts.
func BuildTime() (time.Time, error) {
	if !known(BuildDate) {
		return time.Time{}, ErrNoBuildDate
	}
	for _, layout := range buildDateLayouts {
		if t, err := time.Parse(layout, BuildDate); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse build date %q", BuildDate)
}

// SetBuildInfo overrides the stamp; tests use it.
func SetBuildInfo(version, gitCommit, buildDate string) {
	Version, GitCommit, BuildDate = version, gitCommit, buildDate
}

func known(s string) bool {
	return s != "" && s != unknown
}

func shortCommit(c string) string {
	if len(c) > 7 {
		return c[:7]
	}
	return c
}
