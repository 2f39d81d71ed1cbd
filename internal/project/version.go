package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Source selects which project descriptor provides the release version.
type Source string

const (
	// SourceAuto prefers Cargo.toml and falls back to package.json.
	SourceAuto Source = "auto"
	// SourceCargo reads the version from Cargo.toml only.
	SourceCargo Source = "cargo"
	// SourceNPM reads the version from package.json only.
	SourceNPM Source = "npm"
)

const (
	// CargoManifestFilename is the native project descriptor.
	CargoManifestFilename = "Cargo.toml"

	// NPMManifestFilename is the JavaScript project descriptor.
	NPMManifestFilename = "package.json"
)

// ErrVersionNotFound is returned when no usable version could be read from
// the project descriptors.
var ErrVersionNotFound = errors.New("version not found in project metadata")

// ParseSource converts user input to a Source.
func ParseSource(s string) (Source, bool) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceAuto, "":
		return SourceAuto, true
	case SourceCargo:
		return SourceCargo, true
	case SourceNPM:
		return SourceNPM, true
	default:
		return "", false
	}
}

// cargoManifest models the single field read from Cargo.toml.
type cargoManifest struct {
	Package struct {
		Version string `toml:"version"`
	} `toml:"package"`
}

// npmManifest models the single field read from package.json.
type npmManifest struct {
	Version string `json:"version"`
}

// ResolveVersion determines the release version from the project descriptors
// in the given root. With SourceAuto, Cargo.toml takes precedence so
// native-only projects do not need an unused package.json; package.json is
// the fallback for mixed-stack projects. An empty or whitespace version
// field counts as absent. The returned error wraps ErrVersionNotFound when
// no descriptor yields a usable version.
func ResolveVersion(projectRoot string, source Source) (string, error) {
	var probes []func(string) (string, error)

	switch source {
	case SourceCargo:
		probes = []func(string) (string, error){cargoVersion}
	case SourceNPM:
		probes = []func(string) (string, error){npmVersion}
	default:
		probes = []func(string) (string, error){cargoVersion, npmVersion}
	}

	var failures []error

	for _, probe := range probes {
		version, err := probe(projectRoot)
		if err != nil {
			failures = append(failures, err)

			continue
		}

		if version != "" {
			return version, nil
		}
	}

	if len(failures) > 0 {
		return "", fmt.Errorf("%w: %w", ErrVersionNotFound, errors.Join(failures...))
	}

	return "", ErrVersionNotFound
}

// cargoVersion reads [package].version from Cargo.toml.
// A missing file yields an empty version without error.
func cargoVersion(projectRoot string) (string, error) {
	path := filepath.Join(projectRoot, CargoManifestFilename)

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}

		return "", fmt.Errorf("read %s: %w", CargoManifestFilename, err)
	}

	var manifest cargoManifest
	if err := toml.Unmarshal(contents, &manifest); err != nil {
		return "", fmt.Errorf("parse %s: %w", CargoManifestFilename, err)
	}

	return strings.TrimSpace(manifest.Package.Version), nil
}

// npmVersion reads the top-level version field from package.json.
// A missing file yields an empty version without error.
func npmVersion(projectRoot string) (string, error) {
	path := filepath.Join(projectRoot, NPMManifestFilename)

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}

		return "", fmt.Errorf("read %s: %w", NPMManifestFilename, err)
	}

	var manifest npmManifest
	if err := json.Unmarshal(contents, &manifest); err != nil {
		return "", fmt.Errorf("parse %s: %w", NPMManifestFilename, err)
	}

	return strings.TrimSpace(manifest.Version), nil
}
