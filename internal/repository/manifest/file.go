package manifest

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/updkit/latestgen/internal/domain/release"
)

// schemaText is the JSON Schema every emitted manifest must satisfy.
//
//go:embed latest.schema.json
var schemaText []byte

// manifestFileMode keeps the manifest world-readable; it is uploaded to a
// public download folder anyway.
const manifestFileMode os.FileMode = 0o644

// Repository defines persistence operations for the update manifest.
type Repository interface {
	Save(ctx context.Context, m *release.Manifest) error
}

// FileRepository writes the manifest as pretty-printed JSON on disk,
// validating it against the embedded schema first so a malformed document
// never reaches the download folder.
type FileRepository struct {
	// path is the filesystem location of the manifest file.
	path string
	// compileOnce guards lazy schema compilation.
	compileOnce sync.Once
	// schema is the compiled manifest schema.
	schema *jsonschema.Schema
	// compileErr records a failed compilation.
	compileErr error
}

// NewFileRepository creates a repository that writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the target location of the manifest file.
func (r *FileRepository) Path() string {
	return r.path
}

// Save validates and writes the manifest to disk.
func (r *FileRepository) Save(_ context.Context, m *release.Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if err := r.validate(data); err != nil {
		return err
	}

	if err := os.WriteFile(r.path, append(data, '\n'), manifestFileMode); err != nil {
		return fmt.Errorf("write manifest file: %w", err)
	}

	return nil
}

// validate checks the encoded document against the embedded schema.
func (r *FileRepository) validate(data []byte) error {
	r.compileOnce.Do(func() {
		r.schema, r.compileErr = compileSchema()
	})

	if r.compileErr != nil {
		return r.compileErr
	}

	document, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode manifest for validation: %w", err)
	}

	if err := r.schema.Validate(document); err != nil {
		return fmt.Errorf("manifest failed schema validation: %w", err)
	}

	return nil
}

// compileSchema compiles the embedded manifest schema.
func compileSchema() (*jsonschema.Schema, error) {
	document, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaText))
	if err != nil {
		return nil, fmt.Errorf("decode embedded schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("latest.schema.json", document); err != nil {
		return nil, fmt.Errorf("register embedded schema: %w", err)
	}

	schema, err := compiler.Compile("latest.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile embedded schema: %w", err)
	}

	return schema, nil
}
