package minisign

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// KDF limits written into generated secret keys. They match libsodium's
// interactive profile (scrypt N=2^14, r=8, p=1), which decrypts in tens of
// milliseconds while still requiring 16 MiB of memory per guess.
const (
	defaultOpsLimit uint64 = 524288
	defaultMemLimit uint64 = 16777216
)

// KeyPair holds the textual contents of a freshly generated key pair.
type KeyPair struct {
	// KeyID is the hex form of the random key identifier.
	KeyID string
	// Public is the public key file contents.
	Public string
	// Secret is the password-protected secret key file contents.
	Secret string
}

// GenerateKeyPair creates a new ed25519 minisign key pair.
// The secret key is encrypted with the scrypt stream derived from password;
// an empty password is allowed and still goes through the KDF, matching the
// behavior of other minisign implementations.
func GenerateKeyPair(password string) (*KeyPair, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}

	var keyID [keyIDSize]byte
	if _, err := rand.Read(keyID[:]); err != nil {
		return nil, fmt.Errorf("generate key identifier: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate KDF salt: %w", err)
	}

	stream, err := kdfStream(password, salt, defaultOpsLimit, defaultMemLimit)
	if err != nil {
		return nil, err
	}

	var keynumSK []byte
	keynumSK = append(keynumSK, keyID[:]...)
	keynumSK = append(keynumSK, privateKey...)
	keynumSK = append(keynumSK, keyChecksum(keyID, privateKey)...)

	for i := range keynumSK {
		keynumSK[i] ^= stream[i]
	}

	blob := make([]byte, 0, secretKeyBlobSize)
	blob = append(blob, sigAlgEd25519[:]...)
	blob = append(blob, kdfAlgScrypt[:]...)
	blob = append(blob, chkAlgBlake2b[:]...)
	blob = append(blob, salt...)
	blob = binary.LittleEndian.AppendUint64(blob, defaultOpsLimit)
	blob = binary.LittleEndian.AppendUint64(blob, defaultMemLimit)
	blob = append(blob, keynumSK...)

	keyIDHex := strings.ToUpper(hex.EncodeToString(keyID[:]))

	var secret strings.Builder
	secret.WriteString(untrustedCommentPrefix)
	secret.WriteString("minisign encrypted secret key\n")
	secret.WriteString(base64.StdEncoding.EncodeToString(blob))
	secret.WriteString("\n")

	var publicPayload []byte
	publicPayload = append(publicPayload, sigAlgEd25519[:]...)
	publicPayload = append(publicPayload, keyID[:]...)
	publicPayload = append(publicPayload, publicKey...)

	var public strings.Builder
	public.WriteString(untrustedCommentPrefix)
	public.WriteString("minisign public key " + keyIDHex + "\n")
	public.WriteString(base64.StdEncoding.EncodeToString(publicPayload))
	public.WriteString("\n")

	return &KeyPair{
		KeyID:  keyIDHex,
		Public: public.String(),
		Secret: secret.String(),
	}, nil
}
