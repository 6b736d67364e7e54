package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withBuildInfo(t *testing.T, v, commit, date string) {
	t.Helper()
	origV, origC, origD := Version, GitCommit, BuildDate
	SetBuildInfo(v, commit, date)
	t.Cleanup(func() { SetBuildInfo(origV, origC, origD) })
}

func TestGetFormattedVersion(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		commit   string
		date     string
		expected string
	}{
		{"development build", "0.3.0", "unknown", "unknown", "XeWe OS v0.3.0"},
		{"release build", "1.2.3", "abcdef123456", "2025-10-22", "XeWe OS v1.2.3, commit abcdef1, built 2025-10-22"},
		{"invalid version", "not-a-version", "unknown", "unknown", "XeWe OS vnot-a-version (invalid version)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, tt.version, tt.commit, tt.date)
			assert.Equal(t, tt.expected, GetFormattedVersion())
		})
	}
}

func TestGetBaseVersion(t *testing.T) {
	withBuildInfo(t, "1.4.2-rc.1+77.deadbee", "unknown", "unknown")
	assert.Equal(t, "1.4.2", GetBaseVersion())
	assert.True(t, IsPrerelease())
	assert.Contains(t, GetDetailedVersion(), "Prerelease build")
}

func TestGetDetailedVersionNormalizesBuildDate(t *testing.T) {
	withBuildInfo(t, "0.3.0", "abc", "2025-10-22T12:34:56+02:00")

	detail := GetDetailedVersion()

	assert.Contains(t, detail, "Version 0.3.0\nCommit abc\nBuild 2025-10-22 10:34:56 UTC\n")
	assert.NotContains(t, detail, "Prerelease")
}

func TestBuildTime(t *testing.T) {
	withBuildInfo(t, "0.3.0", "unknown", "2025-10-22 12:34:56")
	bt, err := BuildTime()
	require.NoError(t, err)
	assert.Equal(t, 2025, bt.Year())

	withBuildInfo(t, "0.3.0", "unknown", "unknown")
	_, err = BuildTime()
	assert.ErrorIs(t, err, ErrNoBuildDate)

	withBuildInfo(t, "0.3.0", "unknown", "last tuesday")
	_, err = BuildTime()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate())

	withBuildInfo(t, "x.y", "unknown", "unknown")
	assert.Error(t, Validate())
}
