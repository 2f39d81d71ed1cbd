package assembler

import (
	"context"
	"fmt"

	"github.com/updkit/latestgen/internal/config"
	"github.com/updkit/latestgen/internal/logger"
	manifestrepo "github.com/updkit/latestgen/internal/repository/manifest"
	"github.com/updkit/latestgen/internal/signing"
)

// Options contains inputs for the manifest generation entry point.
type Options struct {
	// ConfigPath is an optional path to persist generation settings (defaults to latestgen.yaml).
	ConfigPath string
	// BundleDir is the directory holding the freshly built installers.
	BundleDir string
	// DownloadBaseURL is the absolute URL prefix artifacts will be served from.
	DownloadBaseURL string
	// Notes holds the release notes embedded in the manifest.
	Notes string
	// SecretKeyPath points at the minisign secret key.
	SecretKeyPath string
	// KeyPassword protects the secret key; may be empty.
	KeyPassword string
	// ProjectRoot is where Cargo.toml / package.json live.
	ProjectRoot string
	// VersionSource selects descriptor precedence: auto, cargo or npm.
	VersionSource string
	// OutputPath is where the manifest is written.
	OutputPath string
}

// Run executes the manifest generation workflow.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "latestgen")

	cfg := &config.Config{
		BundleDir:       opts.BundleDir,
		DownloadBaseURL: opts.DownloadBaseURL,
		SecretKeyPath:   opts.SecretKeyPath,
		ProjectRoot:     opts.ProjectRoot,
		VersionSource:   opts.VersionSource,
		OutputPath:      opts.OutputPath,
		KeyPassword:     opts.KeyPassword,
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if err := config.Save(opts.ConfigPath, cfg); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	signer, err := signing.NewSigner(cfg.SecretKeyPath, cfg.KeyPassword)
	if err != nil {
		return err
	}

	// Release key material as soon as the run is over.
	defer signer.Close()

	manifest, skipped, err := New(cfg, opts.Notes, signer).Assemble(ctx)

	reportSkipped(ctx, skipped)

	if err != nil {
		return fmt.Errorf("assemble manifest: %w", err)
	}

	repo := manifestrepo.NewFileRepository(cfg.OutputPath)
	if err := repo.Save(ctx, manifest); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Manifest generated",
		"path", repo.Path(),
		"version", manifest.Version,
		"platforms", len(manifest.Platforms))

	logger.Infof(ctx, "Upload %s together with the installers to %s", repo.Path(), cfg.DownloadBaseURL)

	return nil
}

// reportSkipped logs every artifact that was left out of the manifest.
func reportSkipped(ctx context.Context, skipped []SkippedArtifact) {
	for _, artifact := range skipped {
		logger.WarnKV(ctx, "Artifact excluded from manifest",
			"file", artifact.Name,
			"reason", artifact.Reason)
	}
}
