package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestScanListsOneLevel ensures files are listed and subdirectories skipped.
func TestScanListsOneLevel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, name := range []string{"app.msi", "app.dmg", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	nested := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(nested, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "inner.exe"), []byte("x"), 0o600))

	artifacts, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, artifacts, 3)

	names := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		names = append(names, artifact.Name)
		require.Equal(t, filepath.Join(dir, artifact.Name), artifact.Path)
	}

	require.ElementsMatch(t, []string{"app.msi", "app.dmg", "notes.txt"}, names)
}

// TestScanMissingDirectory surfaces ErrDirectoryNotFound.
func TestScanMissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	require.ErrorIs(t, err, ErrDirectoryNotFound)
}

// TestScanPathIsFile rejects non-directory paths.
func TestScanPathIsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := Scan(path)
	require.ErrorIs(t, err, ErrDirectoryNotFound)
}

// TestScanEmptyDirectory returns an empty slice, not an error.
func TestScanEmptyDirectory(t *testing.T) {
	t.Parallel()

	artifacts, err := Scan(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, artifacts)
}
