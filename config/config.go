package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dynastyops/valuekeeper/ledger"
	"github.com/dynastyops/valuekeeper/logging"
	"github.com/dynastyops/valuekeeper/metrics"
	"github.com/dynastyops/valuekeeper/rollback"
	"github.com/dynastyops/valuekeeper/snapshot"
	"github.com/dynastyops/valuekeeper/sqlstore"
	"github.com/dynastyops/valuekeeper/verify"

	"github.com/BurntSushi/toml"
)

const configFileName = "config.toml"

// Config ties together all other application configuration types.
type Config struct {
	Logging  logging.Config  `group:"Logging" namespace:"logging"`
	Ledger   ledger.Config   `group:"Ledger" namespace:"ledger"`
	Snapshot snapshot.Config `group:"Snapshot" namespace:"snapshot"`
	Verify   verify.Config   `group:"Verify" namespace:"verify"`
	Rollback rollback.Config `group:"Rollback" namespace:"rollback"`
	SQLStore sqlstore.Config `group:"SQLStore" namespace:"sqlstore"`
	Metrics  metrics.Config  `group:"Metrics" namespace:"metrics"`
}

// NewDefaultConfig returns the default configuration for every package, as
// specified at the per package config level.
func NewDefaultConfig() Config {
	return Config{
		Logging:  logging.NewDefaultConfig(),
		Ledger:   ledger.NewDefaultConfig(),
		Snapshot: snapshot.NewDefaultConfig(),
		Verify:   verify.NewDefaultConfig(),
		Rollback: rollback.NewDefaultConfig(),
		SQLStore: sqlstore.NewDefaultConfig(),
		Metrics:  metrics.NewDefaultConfig(),
	}
}

// Read loads the configuration file from the given root path, on top of the
// defaults so a partial file is fine.
func Read(rootPath string) (*Config, error) {
	path := filepath.Join(rootPath, configFileName)
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := NewDefaultConfig()
	if _, err := toml.Decode(string(buf), &cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &cfg, nil
}

// Remove deletes the configuration file if present.
func Remove(rootPath string) error {
	return os.Remove(filepath.Join(rootPath, configFileName))
}

// Write saves the configuration under the given root path, refusing to
// clobber an existing file.
func Write(rootPath string, cfg Config) (string, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(rootPath, configFileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("configuration file already exists at %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return "", fmt.Errorf("encoding configuration: %w", err)
	}
	return path, nil
}
