package minisign

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/scrypt"
)

const (
	// untrustedCommentPrefix starts the first line of every minisign file.
	untrustedCommentPrefix = "untrusted comment: "

	// keyIDSize is the length of the random key identifier.
	keyIDSize = 8

	// checksumSize is the length of the blake2b-256 key checksum.
	checksumSize = 32

	// saltSize is the length of the scrypt salt stored in the secret key.
	saltSize = 32

	// keynumSKSize is keyID + ed25519 secret key + checksum, the portion of
	// the secret key blob that is XOR-encrypted with the scrypt stream.
	keynumSKSize = keyIDSize + ed25519.PrivateKeySize + checksumSize

	// secretKeyBlobSize is the full decoded length of the secret key payload:
	// three 2-byte algorithm tags, the salt, two 8-byte KDF limits and the
	// encrypted keynum/secret-key/checksum block.
	secretKeyBlobSize = 2 + 2 + 2 + saltSize + 8 + 8 + keynumSKSize
)

var (
	// sigAlgEd25519 tags raw ed25519 material.
	sigAlgEd25519 = [2]byte{'E', 'd'}
	// sigAlgPrehashed tags signatures over the blake2b-512 digest of the file.
	sigAlgPrehashed = [2]byte{'E', 'D'}
	// kdfAlgScrypt tags scrypt-protected secret keys.
	kdfAlgScrypt = [2]byte{'S', 'c'}
	// chkAlgBlake2b tags the blake2b-256 key checksum.
	chkAlgBlake2b = [2]byte{'B', '2'}
)

var (
	// ErrInvalidKeyFormat is returned when the key material cannot be decoded.
	ErrInvalidKeyFormat = errors.New("malformed minisign secret key")

	// ErrWrongPassword is returned when the decrypted key fails its checksum,
	// which means the password is wrong or the key file is corrupt.
	ErrWrongPassword = errors.New("secret key checksum mismatch (wrong password or corrupt key file)")
)

// SecretKey holds decrypted ed25519 signing material.
type SecretKey struct {
	// keyID identifies the key pair; it is embedded in every signature.
	keyID [keyIDSize]byte
	// key is the raw ed25519 private key.
	key ed25519.PrivateKey
}

// KeyID returns the key identifier embedded in signatures.
func (sk *SecretKey) KeyID() [keyIDSize]byte {
	return sk.keyID
}

// Wipe zeroes the private key material. The key is unusable afterwards.
func (sk *SecretKey) Wipe() {
	for i := range sk.key {
		sk.key[i] = 0
	}

	sk.keyID = [keyIDSize]byte{}
}

// LoadSecretKey reads and decrypts a secret key file.
// Both the plain two-line minisign format and its base64-wrapped form (the
// convention used for keys carried in environment variables) are accepted.
func LoadSecretKey(path, password string) (*SecretKey, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read secret key: %w", err)
	}

	return DecodeSecretKey(contents, password)
}

// DecodeSecretKey decrypts secret key material with the given password.
func DecodeSecretKey(contents []byte, password string) (*SecretKey, error) {
	text := strings.TrimSpace(string(contents))

	if !strings.Contains(text, untrustedCommentPrefix) {
		// Possibly the base64-wrapped form; unwrap and retry.
		unwrapped, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("%w: neither minisign nor base64 layout", ErrInvalidKeyFormat)
		}

		text = strings.TrimSpace(string(unwrapped))
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[0], untrustedCommentPrefix) {
		return nil, fmt.Errorf("%w: expected untrusted comment and payload lines", ErrInvalidKeyFormat)
	}

	blob, err := base64.StdEncoding.DecodeString(strings.TrimSpace(lines[1]))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeyFormat, err)
	}

	if len(blob) != secretKeyBlobSize {
		return nil, fmt.Errorf("%w: payload is %d bytes, want %d", ErrInvalidKeyFormat, len(blob), secretKeyBlobSize)
	}

	if !bytes.Equal(blob[0:2], sigAlgEd25519[:]) {
		return nil, fmt.Errorf("%w: unsupported signature algorithm %q", ErrInvalidKeyFormat, blob[0:2])
	}

	if !bytes.Equal(blob[2:4], kdfAlgScrypt[:]) {
		return nil, fmt.Errorf("%w: unsupported KDF algorithm %q", ErrInvalidKeyFormat, blob[2:4])
	}

	if !bytes.Equal(blob[4:6], chkAlgBlake2b[:]) {
		return nil, fmt.Errorf("%w: unsupported checksum algorithm %q", ErrInvalidKeyFormat, blob[4:6])
	}

	var (
		salt     = blob[6 : 6+saltSize]
		opsLimit = binary.LittleEndian.Uint64(blob[6+saltSize:])
		memLimit = binary.LittleEndian.Uint64(blob[6+saltSize+8:])
		keynumSK = blob[6+saltSize+16:]
	)

	stream, err := kdfStream(password, salt, opsLimit, memLimit)
	if err != nil {
		return nil, err
	}

	decrypted := make([]byte, keynumSKSize)
	for i := range decrypted {
		decrypted[i] = keynumSK[i] ^ stream[i]
	}

	sk := &SecretKey{
		key: ed25519.PrivateKey(decrypted[keyIDSize : keyIDSize+ed25519.PrivateKeySize]),
	}
	copy(sk.keyID[:], decrypted[:keyIDSize])

	if !bytes.Equal(decrypted[keyIDSize+ed25519.PrivateKeySize:], keyChecksum(sk.keyID, sk.key)) {
		return nil, ErrWrongPassword
	}

	return sk, nil
}

// keyChecksum computes blake2b-256 over the algorithm tag, key ID and
// private key, the integrity check stored inside the encrypted blob.
func keyChecksum(keyID [keyIDSize]byte, key ed25519.PrivateKey) []byte {
	h, _ := blake2b.New256(nil)
	h.Write(sigAlgEd25519[:])
	h.Write(keyID[:])
	h.Write(key)

	return h.Sum(nil)
}

// kdfStream derives the XOR keystream protecting the secret key blob.
func kdfStream(password string, salt []byte, opsLimit, memLimit uint64) ([]byte, error) {
	n, r, p := scryptParams(opsLimit, memLimit)

	stream, err := scrypt.Key([]byte(password), salt, n, r, p, keynumSKSize)
	if err != nil {
		return nil, fmt.Errorf("derive key encryption stream: %w", err)
	}

	return stream, nil
}

// scryptParams converts libsodium-style opslimit/memlimit values into
// scrypt N/r/p parameters, mirroring the derivation used by minisign so
// keys produced by other tools decrypt identically.
func scryptParams(opsLimit, memLimit uint64) (n, r, p int) {
	const minOpsLimit = 32768

	if opsLimit < minOpsLimit {
		opsLimit = minOpsLimit
	}

	r = 8

	var nLog2 uint64

	if opsLimit < memLimit/32 {
		p = 1
		maxN := opsLimit / (uint64(r) * 4)

		for nLog2 = 1; nLog2 < 63; nLog2++ {
			if uint64(1)<<nLog2 > maxN/2 {
				break
			}
		}
	} else {
		maxN := memLimit / (uint64(r) * 128)

		for nLog2 = 1; nLog2 < 63; nLog2++ {
			if uint64(1)<<nLog2 > maxN/2 {
				break
			}
		}

		maxRP := (opsLimit / 4) / (uint64(1) << nLog2)
		if maxRP > 0x3fffffff {
			maxRP = 0x3fffffff
		}

		p = int(maxRP / uint64(r))
		if p < 1 {
			p = 1
		}
	}

	return 1 << nLog2, r, p
}
