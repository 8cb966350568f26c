// Package config provides configuration management for skillmirror.
// It supports YAML configuration files, environment variable overrides, and
// sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/klauern/skillmirror/internal/model"
	"github.com/klauern/skillmirror/internal/util"
)

// EnvConfigPath overrides the configuration file location when set.
const EnvConfigPath = "SKILLMIRROR_CONFIG"

// Config represents the complete skillmirror configuration.
type Config struct {
	// Library configures the canonical skill library.
	Library LibraryConfig `yaml:"library"`

	// Locations lists the configured tool locations replicas can be
	// exported to.
	Locations []model.Location `yaml:"locations"`

	// Output configures display preferences.
	Output OutputConfig `yaml:"output"`
}

// LibraryConfig holds canonical library settings.
type LibraryConfig struct {
	// Path is the canonical library root directory.
	Path string `yaml:"path"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Color controls color output (auto, always, never).
	Color string `yaml:"color"`
	// Verbose enables verbose output.
	Verbose bool `yaml:"verbose"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Library: LibraryConfig{Path: util.DefaultLibraryPath()},
		Output:  OutputConfig{Color: "auto"},
	}
}

// Path returns the configuration file path, honoring the environment
// override.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return util.ExpandPath(p)
	}
	return util.DefaultConfigFile()
}

// Load reads the configuration from the given path, or from Path() when path
// is empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}

	// #nosec G304 - path comes from the user's own configuration
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}

	cfg.expand()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the given path, or to Path() when path is
// empty, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = Path()
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config %q: %w", path, err)
	}
	return nil
}

// Validate checks structural invariants: non-empty location ids, no
// duplicates, and roots present for every location.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Locations))
	for _, loc := range c.Locations {
		if loc.ID == "" {
			return fmt.Errorf("location with empty id")
		}
		if _, dup := seen[loc.ID]; dup {
			return fmt.Errorf("duplicate location id %q", loc.ID)
		}
		seen[loc.ID] = struct{}{}

		if loc.ActiveRoot == "" || loc.DisabledRoot == "" {
			return fmt.Errorf("location %q is missing a root path", loc.ID)
		}
	}
	return nil
}

// Location returns the descriptor for the given id.
func (c *Config) Location(id string) (model.Location, bool) {
	for _, loc := range c.Locations {
		if loc.ID == id {
			return loc, true
		}
	}
	return model.Location{}, false
}

// LocationMap returns the locations keyed by id.
func (c *Config) LocationMap() map[string]model.Location {
	m := make(map[string]model.Location, len(c.Locations))
	for _, loc := range c.Locations {
		m[loc.ID] = loc
	}
	return m
}

// expand resolves ~ in every configured path.
func (c *Config) expand() {
	c.Library.Path = util.ExpandPath(c.Library.Path)
	for i := range c.Locations {
		c.Locations[i].ActiveRoot = util.ExpandPath(c.Locations[i].ActiveRoot)
		c.Locations[i].DisabledRoot = util.ExpandPath(c.Locations[i].DisabledRoot)
	}
}
