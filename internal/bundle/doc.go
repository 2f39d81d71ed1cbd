// Package bundle discovers installer artifacts in a build-output directory.
package bundle
