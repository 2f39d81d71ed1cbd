// Package platform defines the closed set of platform keys used in the
// update manifest and the filename-based classifier that maps installer
// artifacts onto them.
package platform
