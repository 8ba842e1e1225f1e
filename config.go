package localbase

import (
	"fmt"
	"os"

	"github.com/researchhub/localbase/docstore"
	"gopkg.in/yaml.v3"
)

// Backend names accepted by Config.Backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config controls how a Client is opened. The zero value is usable: a
// file-backed store under ./data seeded with the default fixture set.
type Config struct {
	// DataDir is where the backing storage lives. Defaults to "./data".
	DataDir string `yaml:"data_dir"`
	// Backend selects the storage technology, "file" or "sqlite".
	Backend string `yaml:"backend"`
	// LogLevel is consumed by the CLI (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// SkipSeed leaves absent collections empty instead of seeding them.
	SkipSeed bool `yaml:"skip_seed"`

	// Seeds overrides the default seed set. Not configurable from YAML;
	// tests use it to build fixtures.
	Seeds map[string][]docstore.Record `yaml:"-"`
}

func (c *Config) setDefaults() {
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.Backend == "" {
		c.Backend = BackendFile
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// LoadConfig reads a YAML config file. A missing file is not an error: it
// yields the zero Config, mirroring how the server treats its optional
// dotfiles.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
