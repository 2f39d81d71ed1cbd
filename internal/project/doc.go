// Package project resolves the release version from project metadata.
//
// Two descriptors are understood: Cargo.toml ([package].version) and
// package.json (version). The precedence between them is configurable,
// defaulting to Cargo.toml first.
package project
