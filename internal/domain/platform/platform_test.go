package platform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRuntimeToken covers every OS/arch combination with a distinct token.
func TestRuntimeToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		goos, goarch, want string
	}{
		{"windows", "386", "windows-x86"},
		{"windows", "amd64", "windows-x64"},
		{"darwin", "arm64", "mac-os-arm64"},
		{"darwin", "amd64", "mac-os"},
		{"linux", "386", "linux-i386"},
		{"linux", "amd64", "linux"},
		{"linux", "arm64", "linux"},
		{"plan9", "amd64", ""},
	}

	for _, c := range cases {
		require.Equal(t, c.want, New(c.goos, c.goarch).RuntimeToken(), c.goos+"/"+c.goarch)
	}
}

// TestPathListSeparator checks POSIX and Windows separators.
func TestPathListSeparator(t *testing.T) {
	t.Parallel()

	require.Equal(t, ":", New("linux", "amd64").PathListSeparator())
	require.Equal(t, ":", New("darwin", "arm64").PathListSeparator())
	require.Equal(t, ";", New("windows", "amd64").PathListSeparator())
}

// TestParseRuleOS maps catalog tokens and tolerates unknown ones.
func TestParseRuleOS(t *testing.T) {
	t.Parallel()

	require.Equal(t, Windows, ParseRuleOS("windows"))
	require.Equal(t, Darwin, ParseRuleOS("osx"))
	require.Equal(t, Linux, ParseRuleOS(" Linux "))
	require.Equal(t, Unknown, ParseRuleOS("solaris"))
	require.Equal(t, "osx", Darwin.String())
}

// TestNativeLibraryEnv picks the loader variable per OS.
func TestNativeLibraryEnv(t *testing.T) {
	t.Parallel()

	require.Equal(t, "LD_LIBRARY_PATH", New("linux", "amd64").NativeLibraryEnv())
	require.Equal(t, "DYLD_LIBRARY_PATH", New("darwin", "arm64").NativeLibraryEnv())
	require.Equal(t, "PATH", New("windows", "amd64").NativeLibraryEnv())
	require.Equal(t, ".exe", New("windows", "amd64").ExecutableExt())
}
