package assembler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/updkit/latestgen/internal/bundle"
	"github.com/updkit/latestgen/internal/config"
	"github.com/updkit/latestgen/internal/domain/platform"
	"github.com/updkit/latestgen/internal/domain/release"
	"github.com/updkit/latestgen/internal/logger"
	"github.com/updkit/latestgen/internal/project"
)

// ErrNoPlatforms is returned when no artifact classified and signed
// successfully: a manifest with an empty platforms map is useless to update
// clients, so the condition surfaces as a failure instead.
var ErrNoPlatforms = errors.New("no platforms resolved from bundle directory")

// ArtifactSigner signs one artifact and returns its manifest signature string.
type ArtifactSigner interface {
	Sign(path string) (string, error)
}

// SkippedArtifact records an artifact excluded from the manifest and why.
type SkippedArtifact struct {
	// Name is the artifact filename.
	Name string
	// Reason explains the exclusion in human-readable form.
	Reason string
}

// Assembler builds the update manifest from a bundle directory.
type Assembler struct {
	// cfg carries bundle location, URL prefix and version settings.
	cfg *config.Config
	// notes are the caller-supplied release notes for this run.
	notes string
	// signer signs each recognized artifact.
	signer ArtifactSigner
	// now supplies the publication timestamp; replaceable in tests.
	now func() time.Time
}

// Option customizes an Assembler.
type Option func(*Assembler)

// WithClock overrides the clock used for the pub_date field.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

// New creates an Assembler for one generation run.
func New(cfg *config.Config, notes string, signer ArtifactSigner, opts ...Option) *Assembler {
	a := &Assembler{
		cfg:    cfg,
		notes:  notes,
		signer: signer,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Assemble produces the manifest for the configured bundle directory.
//
// Version resolution and directory scanning fail the whole run. Individual
// artifacts are dropped (and reported in the returned slice) when they do
// not classify, lose a duplicate-platform tie, or fail to sign; one bad
// artifact never blocks the remaining platforms. Artifacts are processed in
// lexicographic filename order, which makes the duplicate tie-break
// deterministic: the first name in sorted order wins.
func (a *Assembler) Assemble(ctx context.Context) (*release.Manifest, []SkippedArtifact, error) {
	version, err := project.ResolveVersion(a.cfg.ProjectRoot, project.Source(a.cfg.VersionSource))
	if err != nil {
		return nil, nil, fmt.Errorf("resolve release version: %w", err)
	}

	logger.InfoKV(ctx, "Resolved release version", "version", version)

	artifacts, err := bundle.Scan(a.cfg.BundleDir)
	if err != nil {
		return nil, nil, err
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Name < artifacts[j].Name
	})

	var (
		manifest = release.NewManifest(version, a.notes, a.now())
		skipped  []SkippedArtifact
	)

	for _, artifact := range artifacts {
		key, ok := platform.Classify(artifact.Name)
		if !ok {
			logger.DebugKV(ctx, "Skipping unrecognized file", "file", artifact.Name)

			skipped = append(skipped, SkippedArtifact{
				Name:   artifact.Name,
				Reason: "unrecognized installer type",
			})

			continue
		}

		if manifest.HasPlatform(key) {
			logger.WarnKV(ctx, "Skipping duplicate artifact for platform",
				"file", artifact.Name,
				"platform", string(key))

			skipped = append(skipped, SkippedArtifact{
				Name:   artifact.Name,
				Reason: fmt.Sprintf("platform %s already taken by an earlier artifact", key),
			})

			continue
		}

		signature, err := a.signer.Sign(artifact.Path)
		if err != nil {
			logger.ErrorKV(ctx, "Failed to sign artifact",
				"file", artifact.Name,
				"error", err)

			skipped = append(skipped, SkippedArtifact{
				Name:   artifact.Name,
				Reason: fmt.Sprintf("signing failed: %v", err),
			})

			continue
		}

		manifest.SetPlatform(key, release.PlatformEntry{
			Signature: signature,
			URL:       a.cfg.DownloadBaseURL + "/" + artifact.Name,
		})

		logger.InfoKV(ctx, "Signed artifact",
			"file", artifact.Name,
			"platform", string(key))
	}

	if len(manifest.Platforms) == 0 {
		return nil, skipped, ErrNoPlatforms
	}

	return manifest, skipped, nil
}
