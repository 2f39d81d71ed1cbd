package assembler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/updkit/latestgen/internal/bundle"
	"github.com/updkit/latestgen/internal/config"
	"github.com/updkit/latestgen/internal/domain/platform"
	"github.com/updkit/latestgen/internal/project"
)

// stubSigner signs everything with a canned value and records call order.
type stubSigner struct {
	signed []string
	fail   map[string]error
}

func (s *stubSigner) Sign(path string) (string, error) {
	name := filepath.Base(path)
	if err, ok := s.fail[name]; ok {
		return "", err
	}

	s.signed = append(s.signed, name)

	return "c2lnbmF0dXJlOg== " + name, nil
}

// testConfig builds a validated config over freshly created project and
// bundle directories.
func testConfig(t *testing.T, bundleFiles []string) *config.Config {
	t.Helper()

	projectRoot := t.TempDir()
	cargo := "[package]\nname = \"app\"\nversion = \"2.0.0\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(projectRoot, "Cargo.toml"), []byte(cargo), 0o600))

	bundleDir := t.TempDir()
	for _, name := range bundleFiles {
		require.NoError(t, os.WriteFile(filepath.Join(bundleDir, name), []byte(name), 0o600))
	}

	cfg := &config.Config{
		BundleDir:       bundleDir,
		DownloadBaseURL: "https://example.com/downloads",
		SecretKeyPath:   "unused.key",
		ProjectRoot:     projectRoot,
	}
	require.NoError(t, config.Validate(cfg))

	return cfg
}

// TestAssembleBuildsPlatformMap covers the happy path with all four platforms.
func TestAssembleBuildsPlatformMap(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, []string{
		"app_1.0.0_x64.dmg",
		"app_1.0.0_arm64.dmg",
		"app_1.0.0_x64-setup.exe",
		"app_1.0.0_amd64.AppImage",
		"README.txt",
	})

	signer := &stubSigner{}
	publishedAt := time.Date(2025, 8, 10, 14, 15, 22, 0, time.UTC)

	manifest, skipped, err := New(cfg, "Initial release", signer, WithClock(func() time.Time {
		return publishedAt
	})).Assemble(context.Background())
	require.NoError(t, err)

	require.Equal(t, "2.0.0", manifest.Version)
	require.Equal(t, "Initial release", manifest.Notes)
	require.Equal(t, "2025-08-10T14:15:22Z", manifest.PubDate)
	require.Len(t, manifest.Platforms, 4)

	require.Equal(t,
		"https://example.com/downloads/app_1.0.0_x64.dmg",
		manifest.Platforms[platform.DarwinX64].URL)
	require.Equal(t,
		"https://example.com/downloads/app_1.0.0_arm64.dmg",
		manifest.Platforms[platform.DarwinARM64].URL)

	// Only the text file is excluded.
	require.Len(t, skipped, 1)
	require.Equal(t, "README.txt", skipped[0].Name)
}

// TestAssembleDuplicatePlatformTieBreak ensures the lexicographically first
// filename wins when two artifacts map to one platform.
func TestAssembleDuplicatePlatformTieBreak(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, []string{"app.msi", "app.exe"})
	signer := &stubSigner{}

	manifest, skipped, err := New(cfg, "", signer).Assemble(context.Background())
	require.NoError(t, err)

	require.Len(t, manifest.Platforms, 1)
	require.Equal(t,
		"https://example.com/downloads/app.exe",
		manifest.Platforms[platform.WindowsX64].URL)

	// The loser never reaches the signer.
	require.Equal(t, []string{"app.exe"}, signer.signed)
	require.Len(t, skipped, 1)
	require.Equal(t, "app.msi", skipped[0].Name)
}

// TestAssembleSigningFailureIsRecovered keeps other platforms publishable.
func TestAssembleSigningFailureIsRecovered(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, []string{"app_x64.dmg", "app_amd64.AppImage"})
	signer := &stubSigner{
		fail: map[string]error{"app_x64.dmg": errors.New("disk error")},
	}

	manifest, skipped, err := New(cfg, "", signer).Assemble(context.Background())
	require.NoError(t, err)

	require.Len(t, manifest.Platforms, 1)
	require.Contains(t, manifest.Platforms, platform.LinuxX64)

	require.Len(t, skipped, 1)
	require.Equal(t, "app_x64.dmg", skipped[0].Name)
	require.Contains(t, skipped[0].Reason, "signing failed")
}

// TestAssembleNoPlatforms fails when nothing classifies or signs.
func TestAssembleNoPlatforms(t *testing.T) {
	t.Parallel()

	// Only unrecognized files.
	cfg := testConfig(t, []string{"README.txt", "app.deb"})

	_, skipped, err := New(cfg, "", &stubSigner{}).Assemble(context.Background())
	require.ErrorIs(t, err, ErrNoPlatforms)
	require.Len(t, skipped, 2)

	// All signings fail.
	cfg = testConfig(t, []string{"app.msi"})
	signer := &stubSigner{fail: map[string]error{"app.msi": errors.New("boom")}}

	_, _, err = New(cfg, "", signer).Assemble(context.Background())
	require.ErrorIs(t, err, ErrNoPlatforms)
}

// TestAssembleMissingBundleDir fails fast before any signing happens.
func TestAssembleMissingBundleDir(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, nil)
	cfg.BundleDir = filepath.Join(cfg.BundleDir, "missing")

	signer := &stubSigner{}

	_, _, err := New(cfg, "", signer).Assemble(context.Background())
	require.ErrorIs(t, err, bundle.ErrDirectoryNotFound)
	require.Empty(t, signer.signed)
}

// TestAssembleVersionFailureIsFatal stops the run before scanning.
func TestAssembleVersionFailureIsFatal(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, []string{"app.msi"})
	cfg.ProjectRoot = t.TempDir() // no descriptors

	_, _, err := New(cfg, "", &stubSigner{}).Assemble(context.Background())
	require.ErrorIs(t, err, project.ErrVersionNotFound)
}
