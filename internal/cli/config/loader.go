package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yndnr/respkv/internal/infra/confloader"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "RESPKV_CLI_"

func configDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".respkv"
	}
	return filepath.Join(homeDir, ".respkv")
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "cli.yaml")
}

// Load loads CLI configuration from defaults, the file at path and the
// environment. A missing file is not an error.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	opts := []confloader.Option{confloader.WithEnvPrefix(EnvPrefix)}
	if _, err := os.Stat(path); err == nil {
		opts = append(opts, confloader.WithConfigFile(path))
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	cfg := Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
