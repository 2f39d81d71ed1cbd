// Package minisign implements the signing half of the minisign scheme used
// by auto-update clients: key pair generation, scrypt-protected secret key
// decoding, and prehashed ed25519 signatures with trusted comments.
//
// Only signing lives here; verification is done with the jedisct1/go-minisign
// package, which this implementation stays wire-compatible with.
package minisign
