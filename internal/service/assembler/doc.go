// Package assembler orchestrates manifest generation: it resolves the
// release version, scans the bundle directory, classifies and signs each
// installer, and assembles the final update manifest with a deterministic
// duplicate-platform tie-break.
package assembler
