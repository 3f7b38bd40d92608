package pathkit

import (
	"fmt"
	"runtime"
	"strings"
)

// Platform selects the volume rules and the native separator used when
// parsing and rendering paths. It is a runtime value so that both rule sets
// can be exercised from any build.
type Platform int

const (
	// NativePlatform resolves to Windows or Posix from runtime.GOOS.
	NativePlatform Platform = iota
	Posix
	Windows
)

// Resolve returns the concrete platform, replacing NativePlatform with the
// platform of the running program.
func (p Platform) Resolve() Platform {
	if p != NativePlatform {
		return p
	}
	if runtime.GOOS == "windows" {
		return Windows
	}
	return Posix
}

// Separator returns the native path separator of the platform.
func (p Platform) Separator() byte {
	if p.Resolve() == Windows {
		return '\\'
	}
	return '/'
}

// DriveLetters reports whether "X:" prefixes are volumes on this platform.
func (p Platform) DriveLetters() bool {
	return p.Resolve() == Windows
}

func (p Platform) String() string {
	switch p {
	case NativePlatform:
		return "native"
	case Posix:
		return "posix"
	case Windows:
		return "windows"
	default:
		return fmt.Sprintf("Platform(%d)", int(p))
	}
}

// ParsePlatform maps a configuration value to a Platform. The empty string
// means NativePlatform.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "native":
		return NativePlatform, nil
	case "posix", "unix", "linux", "darwin":
		return Posix, nil
	case "windows", "nt", "win":
		return Windows, nil
	}
	return NativePlatform, fmt.Errorf("%w: %q", ErrInvalidPlatform, s)
}
