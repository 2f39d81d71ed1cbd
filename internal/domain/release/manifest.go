package release

import (
	"time"

	"github.com/updkit/latestgen/internal/domain/platform"
)

// PlatformEntry describes one installable artifact inside the manifest.
type PlatformEntry struct {
	// Signature is the base64-encoded minisign signature block of the artifact.
	Signature string `json:"signature"`
	// URL is the absolute download location of the artifact.
	URL string `json:"url"`
}

// Manifest is the update document consumed by the auto-update client.
type Manifest struct {
	// Version is the release version taken from the project metadata.
	Version string `json:"version"`
	// Notes holds caller-supplied release notes.
	Notes string `json:"notes"`
	// PubDate is the publication timestamp, RFC3339 UTC with second precision.
	PubDate string `json:"pub_date"`
	// Platforms maps platform keys to their signed artifacts.
	Platforms map[platform.Key]PlatformEntry `json:"platforms"`
}

// NewManifest creates an empty manifest for the given release.
// The timestamp is normalized to UTC and truncated to whole seconds so the
// emitted pub_date is stable regardless of the caller's clock resolution.
func NewManifest(version, notes string, publishedAt time.Time) *Manifest {
	return &Manifest{
		Version:   version,
		Notes:     notes,
		PubDate:   publishedAt.UTC().Truncate(time.Second).Format(time.RFC3339),
		Platforms: make(map[platform.Key]PlatformEntry, len(platform.Keys())),
	}
}

// HasPlatform reports whether an entry for the key is already present.
func (m *Manifest) HasPlatform(key platform.Key) bool {
	_, ok := m.Platforms[key]

	return ok
}

// SetPlatform inserts an entry for the key. Existing entries are never
// overwritten; the caller decides which artifact wins before inserting.
func (m *Manifest) SetPlatform(key platform.Key, entry PlatformEntry) {
	if m.HasPlatform(key) {
		return
	}

	m.Platforms[key] = entry
}
