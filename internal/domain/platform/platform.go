package platform

import "strings"

// Key identifies a target OS/architecture pair in the update manifest.
// The set of keys is closed: update clients match against these exact strings.
type Key string

const (
	// WindowsX64 covers MSI and NSIS installers.
	WindowsX64 Key = "windows-x86_64"
	// DarwinX64 covers Intel macOS disk images.
	DarwinX64 Key = "darwin-x86_64"
	// DarwinARM64 covers Apple silicon disk images and app archives.
	DarwinARM64 Key = "darwin-aarch64"
	// LinuxX64 covers AppImage bundles.
	LinuxX64 Key = "linux-x86_64"
)

// Keys returns every key a manifest may contain, in a stable order.
func Keys() []Key {
	return []Key{WindowsX64, DarwinX64, DarwinARM64, LinuxX64}
}

// IsValid reports whether k belongs to the closed key set.
func (k Key) IsValid() bool {
	switch k {
	case WindowsX64, DarwinX64, DarwinARM64, LinuxX64:
		return true
	default:
		return false
	}
}

// Classify maps an installer filename to its platform key.
// Rules are checked in order, first match wins; filenames that match no
// rule return ok=false and are simply left out of the manifest.
// The function never touches the filesystem.
func Classify(filename string) (key Key, ok bool) {
	switch {
	case strings.HasSuffix(filename, ".msi"), strings.HasSuffix(filename, ".exe"):
		return WindowsX64, true
	case strings.HasSuffix(filename, ".AppImage"):
		return LinuxX64, true
	case strings.HasSuffix(filename, ".dmg"):
		if hasARMMarker(filename) {
			return DarwinARM64, true
		}

		return DarwinX64, true
	case strings.HasSuffix(filename, ".tar.gz") && hasARMMarker(filename):
		return DarwinARM64, true
	default:
		return "", false
	}
}

// hasARMMarker reports whether the filename carries an Apple-silicon
// architecture marker.
func hasARMMarker(filename string) bool {
	lower := strings.ToLower(filename)

	return strings.Contains(lower, "aarch64") || strings.Contains(lower, "arm64")
}
