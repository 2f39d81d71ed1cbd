package verify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedisct1/go-minisign"

	"github.com/updkit/latestgen/internal/domain/platform"
	"github.com/updkit/latestgen/internal/domain/release"
	"github.com/updkit/latestgen/internal/logger"
)

// TauriConfFilename is the app configuration carrying the updater public key.
const TauriConfFilename = "tauri.conf.json"

var (
	// ErrNoPublicKey is returned when no public key could be located.
	ErrNoPublicKey = errors.New("no updater public key found")

	// ErrVerificationFailed is returned when at least one platform entry
	// does not verify against the public key.
	ErrVerificationFailed = errors.New("manifest signature verification failed")
)

// Options contains inputs for the manifest verification entry point.
type Options struct {
	// ManifestPath is the manifest document to check.
	ManifestPath string
	// BundleDir holds the artifacts referenced by the manifest.
	BundleDir string
	// PublicKey is the updater public key: raw base64, a key file path, or
	// empty to read it from tauri.conf.json in the current directory.
	PublicKey string
	// TauriConfPath overrides the tauri.conf.json location.
	TauriConfPath string
}

// Run verifies every platform entry of a manifest against the public key.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "verify")

	publicKey, err := ResolvePublicKey(opts.PublicKey, opts.TauriConfPath)
	if err != nil {
		return err
	}

	contents, err := os.ReadFile(filepath.Clean(opts.ManifestPath))
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var manifest release.Manifest
	if err := json.Unmarshal(contents, &manifest); err != nil {
		return fmt.Errorf("decode manifest: %w", err)
	}

	keys := make([]string, 0, len(manifest.Platforms))
	for key := range manifest.Platforms {
		keys = append(keys, string(key))
	}

	sort.Strings(keys)

	var failures []error

	for _, key := range keys {
		entry := manifest.Platforms[platform.Key(key)]

		if err := verifyEntry(opts.BundleDir, entry, publicKey); err != nil {
			logger.ErrorKV(ctx, "Platform entry failed verification",
				"platform", key,
				"error", err)

			failures = append(failures, fmt.Errorf("%s: %w", key, err))

			continue
		}

		logger.InfoKV(ctx, "Platform entry verified", "platform", key)
	}

	if len(failures) > 0 {
		return fmt.Errorf("%w: %w", ErrVerificationFailed, errors.Join(failures...))
	}

	logger.InfoKV(ctx, "Manifest verified", "platforms", len(keys))

	return nil
}

// verifyEntry checks one platform entry: the artifact named by the entry URL
// must exist in the bundle directory and its signature must verify.
func verifyEntry(bundleDir string, entry release.PlatformEntry, publicKey minisign.PublicKey) error {
	block, err := base64.StdEncoding.DecodeString(entry.Signature)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}

	signature, err := minisign.DecodeSignature(string(block))
	if err != nil {
		return fmt.Errorf("parse signature block: %w", err)
	}

	name := entry.URL[strings.LastIndex(entry.URL, "/")+1:]

	artifact, err := os.ReadFile(filepath.Clean(filepath.Join(bundleDir, name)))
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}

	valid, err := publicKey.Verify(artifact, signature)
	if err != nil {
		return err
	}

	if !valid {
		return errors.New("signature does not match artifact")
	}

	return nil
}

// ResolvePublicKey locates and decodes the updater public key.
// The input may be the raw base64 key, the base64 of a whole public key
// file, or a path to a public key file. When empty, the key is read from
// the updater plugin section of tauri.conf.json.
func ResolvePublicKey(input, tauriConfPath string) (minisign.PublicKey, error) {
	if input == "" {
		var err error

		input, err = tauriPubkey(tauriConfPath)
		if err != nil {
			return minisign.PublicKey{}, err
		}
	}

	if _, err := os.Stat(input); err == nil {
		return minisign.NewPublicKeyFromFile(input)
	}

	return DecodePublicKey(input)
}

// DecodePublicKey parses a public key given either as the raw base64 key
// line or as base64 of an entire public key file.
func DecodePublicKey(input string) (minisign.PublicKey, error) {
	input = strings.TrimSpace(input)

	if key, err := minisign.NewPublicKey(input); err == nil {
		return key, nil
	}

	unwrapped, err := base64.StdEncoding.DecodeString(input)
	if err != nil {
		return minisign.PublicKey{}, fmt.Errorf("%w: not a minisign key or base64 wrapper", ErrNoPublicKey)
	}

	key, err := minisign.DecodePublicKey(string(unwrapped))
	if err != nil {
		return minisign.PublicKey{}, fmt.Errorf("%w: %w", ErrNoPublicKey, err)
	}

	return key, nil
}

// tauriConf models the single field read from tauri.conf.json.
type tauriConf struct {
	Plugins struct {
		Updater struct {
			Pubkey string `json:"pubkey"`
		} `json:"updater"`
	} `json:"plugins"`
}

// tauriPubkey reads the updater public key from tauri.conf.json.
func tauriPubkey(path string) (string, error) {
	if path == "" {
		path = TauriConfFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrNoPublicKey, path, err)
	}

	var conf tauriConf
	if err := json.Unmarshal(contents, &conf); err != nil {
		return "", fmt.Errorf("%w: parse %s: %w", ErrNoPublicKey, path, err)
	}

	if conf.Plugins.Updater.Pubkey == "" {
		return "", fmt.Errorf("%w: %s has no plugins.updater.pubkey", ErrNoPublicKey, path)
	}

	return conf.Plugins.Updater.Pubkey, nil
}
