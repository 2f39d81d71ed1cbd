package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/updkit/latestgen/internal/config"
	"github.com/updkit/latestgen/internal/logger"
	"github.com/updkit/latestgen/internal/service/assembler"
	"github.com/updkit/latestgen/internal/version"
)

// keyPasswordEnv supplies the secret key password when the flag is unset.
const keyPasswordEnv = "LATESTGEN_KEY_PASSWORD"

var (
	// configPath to the configuration YAML file.
	configPath string
	// secretKeyPath to the minisign secret key.
	secretKeyPath string
	// keyPassword protecting the secret key.
	keyPassword string
	// notes are the release notes placed into the manifest.
	notes string
	// projectRoot containing Cargo.toml / package.json.
	projectRoot string
	// versionSource selects descriptor precedence.
	versionSource string
	// outputPath of the generated manifest.
	outputPath string
	// logLevel for the run.
	logLevel string

	// rootCmd represents the base command that generates the update manifest.
	rootCmd = &cobra.Command{
		Use:   "latestgen [bundle-dir] [download-base-url]",
		Short: "Generate a signed update manifest from a directory of installers",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			applyLogLevel()

			password := keyPassword
			if password == "" {
				password = os.Getenv(keyPasswordEnv)
			}

			options := &assembler.Options{
				ConfigPath:      configPath,
				BundleDir:       args[0],
				DownloadBaseURL: args[1],
				Notes:           notes,
				SecretKeyPath:   secretKeyPath,
				KeyPassword:     password,
				ProjectRoot:     projectRoot,
				VersionSource:   versionSource,
				OutputPath:      outputPath,
			}

			return assembler.Run(ctx, options)
		},
	}
)

// Execute runs the latestgen CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(keygenCmd, verifyCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyLogLevel configures the global logger from the --log-level flag.
func applyLogLevel() {
	if level, ok := logger.ParseLogLevel(logLevel); ok {
		logger.SetLevel(level)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&secretKeyPath, "key", "k", "latestgen.key", "path to minisign secret key")
	rootCmd.Flags().StringVar(&keyPassword, "key-password", "", "secret key password (or "+keyPasswordEnv+")")
	rootCmd.Flags().StringVarP(&notes, "notes", "n", "", "release notes placed into the manifest")
	rootCmd.Flags().StringVar(&projectRoot, "project-root", ".", "directory with Cargo.toml / package.json")
	rootCmd.Flags().StringVar(&versionSource, "version-source", "auto", "version descriptor precedence: auto, cargo or npm")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", config.DefaultOutputFilename, "path of the generated manifest")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error or fatal")
}
