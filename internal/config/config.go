package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/updkit/latestgen/internal/project"
)

// Config holds the settings driving manifest generation.
type Config struct {
	// BundleDir is the directory holding freshly built installers.
	BundleDir string `yaml:"bundle_dir"`
	// DownloadBaseURL is the absolute URL prefix under which artifacts are hosted.
	DownloadBaseURL string `yaml:"download_base_url"`
	// SecretKeyPath points at the minisign secret key used for signing.
	SecretKeyPath string `yaml:"secret_key_path"`
	// ProjectRoot is where the version descriptors (Cargo.toml, package.json) live.
	ProjectRoot string `yaml:"project_root"`
	// VersionSource selects the descriptor precedence: auto, cargo or npm.
	VersionSource string `yaml:"version_source"`
	// OutputPath is where the generated manifest is written.
	OutputPath string `yaml:"output_path"`
	// KeyPassword protects the secret key. It is never persisted to YAML.
	KeyPassword string `yaml:"-"`
}

const (
	// DefaultConfigFilename is the default filename for persisted settings.
	DefaultConfigFilename = "latestgen.yaml"

	// DefaultOutputFilename is the manifest filename update clients poll.
	DefaultOutputFilename = "latest.json"

	// DefaultFilePermissions is the file permission for settings and key files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBundleDirRequired is returned when the bundle directory is missing.
	errBundleDirRequired = errors.New("bundle directory must be provided")
	// errBaseURLRequired is returned when the download base URL is missing.
	errBaseURLRequired = errors.New("download base URL must be provided")
	// errSecretKeyRequired is returned when no signing key path is configured.
	errSecretKeyRequired = errors.New("secret key path must be provided")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting,
// filling in defaults for the optional ones.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.BundleDir == "" {
		return errBundleDirRequired
	}

	if cfg.DownloadBaseURL == "" {
		return errBaseURLRequired
	}

	parsed, err := url.ParseRequestURI(cfg.DownloadBaseURL)
	if err != nil {
		return fmt.Errorf("invalid download base URL: %w", err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("download base URL %q must be absolute", cfg.DownloadBaseURL)
	}

	// The URL join during assembly is a plain concatenation;
	// a trailing slash here would produce double slashes.
	cfg.DownloadBaseURL = strings.TrimRight(cfg.DownloadBaseURL, "/")

	if cfg.SecretKeyPath == "" {
		return errSecretKeyRequired
	}

	source, ok := project.ParseSource(cfg.VersionSource)
	if !ok {
		return fmt.Errorf("unknown version source %q (want auto, cargo or npm)", cfg.VersionSource)
	}

	cfg.VersionSource = string(source)

	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = "."
	}

	if cfg.OutputPath == "" {
		cfg.OutputPath = DefaultOutputFilename
	}

	return nil
}
