package platform

import (
	"runtime"
	"strings"
)

// OS is an operating-system family.
type OS int

// Known operating-system families.
const (
	Unknown OS = iota
	Linux
	Windows
	Darwin
)

// Arch is a CPU architecture token in GOARCH spelling (amd64, 386, arm64, ...).
type Arch string

// Architectures that change the runtime token.
const (
	ArchAMD64 Arch = "amd64"
	Arch386   Arch = "386"
	ArchARM64 Arch = "arm64"
)

// Platform is the pair every rule and runtime lookup is evaluated against.
type Platform struct {
	OS   OS
	Arch Arch
}

// New builds a Platform from GOOS/GOARCH-style strings.
func New(goos, goarch string) Platform {
	return Platform{
		OS:   parseGOOS(goos),
		Arch: Arch(strings.ToLower(goarch)),
	}
}

// Current returns the platform of the running process.
func Current() Platform {
	return New(runtime.GOOS, runtime.GOARCH)
}

// ParseRuleOS maps a catalog rule token ("windows", "osx", "linux") to an OS.
// Unrecognised tokens map to Unknown.
func ParseRuleOS(token string) OS {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "linux":
		return Linux
	case "windows":
		return Windows
	case "osx", "macos":
		return Darwin
	default:
		return Unknown
	}
}

func parseGOOS(goos string) OS {
	switch strings.ToLower(goos) {
	case "linux":
		return Linux
	case "windows":
		return Windows
	case "darwin":
		return Darwin
	default:
		return Unknown
	}
}

// String returns the catalog rule token of the OS.
func (o OS) String() string {
	switch o {
	case Linux:
		return "linux"
	case Windows:
		return "windows"
	case Darwin:
		return "osx"
	default:
		return "unknown"
	}
}

// String renders the platform as os/arch.
func (p Platform) String() string {
	return p.OS.String() + "/" + string(p.Arch)
}

// RuntimeToken returns the runtime-manifest key of the platform, or "" when
// no runtime image is published for its OS family.
func (p Platform) RuntimeToken() string {
	switch p.OS {
	case Windows:
		if p.Arch == Arch386 {
			return "windows-x86"
		}

		return "windows-x64"
	case Darwin:
		if p.Arch == ArchARM64 {
			return "mac-os-arm64"
		}

		return "mac-os"
	case Linux:
		if p.Arch == Arch386 {
			return "linux-i386"
		}

		return "linux"
	default:
		return ""
	}
}

// PathListSeparator separates classpath entries on the platform.
func (p Platform) PathListSeparator() string {
	if p.OS == Windows {
		return ";"
	}

	return ":"
}

// ExecutableExt is appended to executable names on the platform.
func (p Platform) ExecutableExt() string {
	if p.OS == Windows {
		return ".exe"
	}

	return ""
}

// NativeLibraryEnv names the variable the dynamic loader searches for
// native libraries.
func (p Platform) NativeLibraryEnv() string {
	switch p.OS {
	case Windows:
		return "PATH"
	case Darwin:
		return "DYLD_LIBRARY_PATH"
	default:
		return "LD_LIBRARY_PATH"
	}
}
