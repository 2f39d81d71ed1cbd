package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrDirectoryNotFound is returned when the bundle path is missing or is
// not a directory.
var ErrDirectoryNotFound = errors.New("bundle directory not found")

// Artifact is a candidate installer file discovered in the bundle directory.
type Artifact struct {
	// Name is the bare filename, used for classification and URLs.
	Name string
	// Path is the location on disk, used for signing.
	Path string
}

// Scan lists candidate files exactly one level deep in dir.
// Subdirectories are skipped, no extension filtering happens here, and the
// returned order carries no guarantee; callers sort before processing.
func Scan(dir string) ([]Artifact, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrDirectoryNotFound)
		}

		return nil, fmt.Errorf("stat bundle directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", dir, ErrDirectoryNotFound)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read bundle directory: %w", err)
	}

	artifacts := make([]Artifact, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		artifacts = append(artifacts, Artifact{
			Name: entry.Name(),
			Path: filepath.Join(dir, entry.Name()),
		})
	}

	return artifacts, nil
}
