// Package signing wraps the minisign primitive into the artifact signer
// used during manifest assembly, isolating its failure modes behind a typed
// per-artifact error.
package signing
