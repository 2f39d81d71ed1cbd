// Package manifest implements persistence for the update manifest.
//
// The FileRepository validates the document against an embedded JSON Schema
// and writes it as pretty-printed JSON, exposing a Repository interface the
// assembler service depends on.
package manifest
