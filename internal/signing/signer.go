package signing

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/updkit/latestgen/internal/minisign"
)

// Error describes a failed signing attempt for a single artifact.
// It keeps the artifact name so callers can report which file was dropped.
type Error struct {
	// Artifact is the filename of the artifact that failed to sign.
	Artifact string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("sign %s: %v", e.Artifact, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Signer signs installer artifacts with a minisign secret key.
// The signature string it produces is the base64 encoding of the full
// minisign signature block, the representation update clients expect in the
// manifest's signature field.
type Signer struct {
	// key is the decrypted signing key; owned by the signer until Close.
	key *minisign.SecretKey
	// now supplies the timestamp recorded in trusted comments.
	now func() time.Time
}

// NewSigner loads and decrypts the secret key at keyPath.
// The caller must Close the signer to release the key material.
func NewSigner(keyPath, password string) (*Signer, error) {
	key, err := minisign.LoadSecretKey(keyPath, password)
	if err != nil {
		return nil, fmt.Errorf("load signing key: %w", err)
	}

	return &Signer{
		key: key,
		now: time.Now,
	}, nil
}

// Close wipes the key material. The signer is unusable afterwards.
func (s *Signer) Close() {
	s.key.Wipe()
}

// Sign reads the artifact and returns its base64-encoded signature block.
// Failures are wrapped in *Error carrying the artifact name.
func (s *Signer) Sign(path string) (string, error) {
	name := filepath.Base(path)

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", &Error{Artifact: name, Err: fmt.Errorf("read artifact: %w", err)}
	}

	block, err := s.key.Sign(contents, name, s.now())
	if err != nil {
		return "", &Error{Artifact: name, Err: err}
	}

	return base64.StdEncoding.EncodeToString([]byte(block)), nil
}
