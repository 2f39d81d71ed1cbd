package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeProjectFiles lays out descriptor files in a temporary project root.
func writeProjectFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, contents := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o600))
	}

	return dir
}

// TestResolveVersionPrecedence ensures Cargo.toml wins over package.json by default.
func TestResolveVersionPrecedence(t *testing.T) {
	t.Parallel()

	dir := writeProjectFiles(t, map[string]string{
		CargoManifestFilename: "[package]\nname = \"app\"\nversion = \"2.0.0\"\n",
		NPMManifestFilename:   `{"name": "app", "version": "1.0.0"}`,
	})

	version, err := ResolveVersion(dir, SourceAuto)
	require.NoError(t, err)
	require.Equal(t, "2.0.0", version)
}

// TestResolveVersionSources covers explicit source selection and fallbacks.
func TestResolveVersionSources(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   map[string]string
		source  Source
		want    string
		wantErr bool
	}{
		{
			name:   "npm only via auto",
			files:  map[string]string{NPMManifestFilename: `{"version": "1.4.2"}`},
			source: SourceAuto,
			want:   "1.4.2",
		},
		{
			name: "explicit npm ignores cargo",
			files: map[string]string{
				CargoManifestFilename: "[package]\nversion = \"2.0.0\"\n",
				NPMManifestFilename:   `{"version": "1.0.0"}`,
			},
			source: SourceNPM,
			want:   "1.0.0",
		},
		{
			name:    "explicit cargo with missing file",
			files:   map[string]string{NPMManifestFilename: `{"version": "1.0.0"}`},
			source:  SourceCargo,
			wantErr: true,
		},
		{
			name: "malformed cargo falls back to npm",
			files: map[string]string{
				CargoManifestFilename: "[package\nversion=",
				NPMManifestFilename:   `{"version": "3.1.0"}`,
			},
			source: SourceAuto,
			want:   "3.1.0",
		},
		{
			name:    "empty version field is rejected",
			files:   map[string]string{NPMManifestFilename: `{"version": "  "}`},
			source:  SourceAuto,
			wantErr: true,
		},
		{
			name:    "no descriptors",
			files:   map[string]string{},
			source:  SourceAuto,
			wantErr: true,
		},
		{
			name:    "malformed json only",
			files:   map[string]string{NPMManifestFilename: `{"version": `},
			source:  SourceAuto,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := writeProjectFiles(t, tc.files)

			version, err := ResolveVersion(dir, tc.source)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrVersionNotFound)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, version)
		})
	}
}

// TestParseSource validates source parsing of user input.
func TestParseSource(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]Source{
		"":      SourceAuto,
		"auto":  SourceAuto,
		"Cargo": SourceCargo,
		" npm ": SourceNPM,
	} {
		got, ok := ParseSource(input)
		require.True(t, ok, "input %q", input)
		require.Equal(t, want, got)
	}

	_, ok := ParseSource("maven")
	require.False(t, ok)
}
