package minisign

import (
	"encoding/base64"
	"testing"
	"time"

	verifier "github.com/jedisct1/go-minisign"
	"github.com/stretchr/testify/require"
)

// generatePair creates a key pair and decodes its secret half.
func generatePair(t *testing.T, password string) (*KeyPair, *SecretKey) {
	t.Helper()

	pair, err := GenerateKeyPair(password)
	require.NoError(t, err)

	sk, err := DecodeSecretKey([]byte(pair.Secret), password)
	require.NoError(t, err)

	return pair, sk
}

// TestSignVerifyRoundTrip signs a message and verifies it with an
// independent minisign implementation.
func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	pair, sk := generatePair(t, "")
	message := []byte("installer bytes")

	block, err := sk.Sign(message, "app_1.0.0_x64.dmg", time.Now())
	require.NoError(t, err)
	require.Contains(t, block, "untrusted comment:")
	require.Contains(t, block, "file:app_1.0.0_x64.dmg")

	signature, err := verifier.DecodeSignature(block)
	require.NoError(t, err)

	publicKey, err := verifier.DecodePublicKey(pair.Public)
	require.NoError(t, err)

	valid, err := publicKey.Verify(message, signature)
	require.NoError(t, err)
	require.True(t, valid)

	// A different message must not verify.
	valid, _ = publicKey.Verify([]byte("tampered"), signature)
	require.False(t, valid)
}

// TestDecodeSecretKeyPassword covers password protection and the checksum guard.
func TestDecodeSecretKeyPassword(t *testing.T) {
	t.Parallel()

	pair, sk := generatePair(t, "correct horse")
	require.NotNil(t, sk)

	_, err := DecodeSecretKey([]byte(pair.Secret), "battery staple")
	require.ErrorIs(t, err, ErrWrongPassword)
}

// TestDecodeSecretKeyBase64Wrapped accepts the base64-of-file convention.
func TestDecodeSecretKeyBase64Wrapped(t *testing.T) {
	t.Parallel()

	pair, _ := generatePair(t, "")
	wrapped := base64.StdEncoding.EncodeToString([]byte(pair.Secret))

	sk, err := DecodeSecretKey([]byte(wrapped), "")
	require.NoError(t, err)
	require.NotNil(t, sk)
}

// TestDecodeSecretKeyMalformed rejects garbage input.
func TestDecodeSecretKeyMalformed(t *testing.T) {
	t.Parallel()

	for _, contents := range []string{
		"",
		"not a key",
		"untrusted comment: lonely header",
		"untrusted comment: k\nAAAA\n",
	} {
		_, err := DecodeSecretKey([]byte(contents), "")
		require.ErrorIs(t, err, ErrInvalidKeyFormat, "contents %q", contents)
	}
}

// TestWipePreventsSigning ensures wiped keys refuse to sign.
func TestWipePreventsSigning(t *testing.T) {
	t.Parallel()

	_, sk := generatePair(t, "")
	sk.Wipe()

	_, err := sk.Sign([]byte("data"), "file", time.Now())
	require.ErrorIs(t, err, ErrKeyWiped)
}

// TestSignaturesDifferAcrossRuns checks the trusted comment makes blocks unique.
func TestSignaturesDifferAcrossRuns(t *testing.T) {
	t.Parallel()

	_, sk := generatePair(t, "")

	first, err := sk.Sign([]byte("data"), "file", time.Unix(1700000000, 0))
	require.NoError(t, err)

	second, err := sk.Sign([]byte("data"), "file", time.Unix(1700000001, 0))
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

// TestScryptParams checks the libsodium parameter derivation for the
// profiles commonly found in existing key files.
func TestScryptParams(t *testing.T) {
	t.Parallel()

	n, r, p := scryptParams(defaultOpsLimit, defaultMemLimit)
	require.Equal(t, 1<<14, n)
	require.Equal(t, 8, r)
	require.Equal(t, 1, p)

	// Sensitive profile used by the minisign CLI.
	n, r, p = scryptParams(33554432, 1073741824)
	require.Equal(t, 1<<20, n)
	require.Equal(t, 8, r)
	require.Equal(t, 1, p)
}
