// Package version exposes build metadata for the project.
//
// Version, Commit and BuildTime are injected at build time via ldflags and
// surfaced through the `version` subcommand.
package version
