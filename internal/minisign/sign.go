package minisign

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// ErrKeyWiped is returned when signing is attempted after Wipe.
var ErrKeyWiped = errors.New("secret key has been wiped")

// Sign produces a minisign signature block over the message.
// The message is prehashed with blake2b-512 before signing ("ED" mode), the
// scheme update clients verify. The trusted comment records the signing time
// and the file name, and is itself covered by the global signature, so the
// block differs between runs even for identical input.
func (sk *SecretKey) Sign(message []byte, filename string, signedAt time.Time) (string, error) {
	if len(sk.key) != ed25519.PrivateKeySize || allZero(sk.key) {
		return "", ErrKeyWiped
	}

	digest := blake2b.Sum512(message)
	signature := ed25519.Sign(sk.key, digest[:])

	trustedComment := fmt.Sprintf("timestamp:%d\tfile:%s", signedAt.UTC().Unix(), filename)
	globalSignature := ed25519.Sign(sk.key, append(signature, []byte(trustedComment)...))

	var payload []byte
	payload = append(payload, sigAlgPrehashed[:]...)
	payload = append(payload, sk.keyID[:]...)
	payload = append(payload, signature...)

	var block strings.Builder
	block.WriteString(untrustedCommentPrefix)
	block.WriteString("signature from latestgen secret key\n")
	block.WriteString(base64.StdEncoding.EncodeToString(payload))
	block.WriteString("\ntrusted comment: ")
	block.WriteString(trustedComment)
	block.WriteString("\n")
	block.WriteString(base64.StdEncoding.EncodeToString(globalSignature))
	block.WriteString("\n")

	return block.String(), nil
}

// allZero reports whether every byte of b is zero.
func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}

	return true
}
