// Package release contains the domain types of the update manifest: the
// Manifest document itself and the per-platform entries it carries.
package release
