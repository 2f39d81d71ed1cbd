package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/updkit/latestgen/internal/config"
	"github.com/updkit/latestgen/internal/verify"
)

var (
	// verifyManifestPath is the manifest document to check.
	verifyManifestPath string
	// verifyPublicKey is the updater public key (base64 or file path).
	verifyPublicKey string
	// verifyTauriConf overrides the tauri.conf.json location.
	verifyTauriConf string

	// verifyCmd checks a generated manifest against the updater public key.
	verifyCmd = &cobra.Command{
		Use:   "verify [bundle-dir]",
		Short: "Verify a generated manifest against the updater public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			applyLogLevel()

			return verify.Run(ctx, &verify.Options{
				ManifestPath:  verifyManifestPath,
				BundleDir:     args[0],
				PublicKey:     verifyPublicKey,
				TauriConfPath: verifyTauriConf,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	verifyCmd.Flags().StringVarP(&verifyManifestPath, "manifest", "m", config.DefaultOutputFilename, "path to the manifest document")
	verifyCmd.Flags().StringVarP(&verifyPublicKey, "pubkey", "p", "", "updater public key: base64 value or key file path")
	verifyCmd.Flags().StringVar(&verifyTauriConf, "tauri-conf", "", "read the public key from this tauri.conf.json")
}
