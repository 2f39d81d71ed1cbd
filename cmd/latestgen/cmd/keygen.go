package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/updkit/latestgen/internal/config"
	"github.com/updkit/latestgen/internal/minisign"
)

var (
	// secretKeyOut is the destination of the generated secret key.
	secretKeyOut string
	// publicKeyOut is the destination of the generated public key.
	publicKeyOut string
	// keygenPassword protects the generated secret key.
	keygenPassword string
	// forceKeygen allows overwriting existing key files.
	forceKeygen bool

	// errKeyExists prevents silently clobbering an existing key pair.
	errKeyExists = errors.New("key file already exists (use --force to overwrite)")

	// keygenCmd generates a minisign key pair for signing releases.
	keygenCmd = &cobra.Command{
		Use:   "keygen",
		Short: "Generate a minisign key pair for signing releases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !forceKeygen {
				for _, path := range []string{secretKeyOut, publicKeyOut} {
					if _, err := os.Stat(path); err == nil {
						return fmt.Errorf("%s: %w", path, errKeyExists)
					}
				}
			}

			pair, err := minisign.GenerateKeyPair(keygenPassword)
			if err != nil {
				return err
			}

			if err := os.WriteFile(secretKeyOut, []byte(pair.Secret), config.DefaultFilePermissions); err != nil {
				return fmt.Errorf("write secret key: %w", err)
			}

			if err := os.WriteFile(publicKeyOut, []byte(pair.Public), 0o644); err != nil { //nolint:gosec // Public key is public.
				return fmt.Errorf("write public key: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Key pair %s generated.\n", pair.KeyID)
			_, _ = fmt.Fprintf(out, "Secret key: %s (keep it private)\n", secretKeyOut)
			_, _ = fmt.Fprintf(out, "Public key: %s (embed it in the updater configuration)\n", publicKeyOut)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	keygenCmd.Flags().StringVar(&secretKeyOut, "secret-key", "latestgen.key", "path of the generated secret key")
	keygenCmd.Flags().StringVar(&publicKeyOut, "public-key", "latestgen.pub", "path of the generated public key")
	keygenCmd.Flags().StringVar(&keygenPassword, "password", "", "password protecting the secret key (may be empty)")
	keygenCmd.Flags().BoolVarP(&forceKeygen, "force", "f", false, "overwrite existing key files")
}
