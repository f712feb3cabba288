// Package config reads the repository's display-only configuration file.
// Nothing here is ever hashed into an object: user identity and
// presentation preferences have no bearing on content addressing, which
// is why they live outside the object store entirely.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const fileName = "config"

// User holds the [user] identity table of the config file. It is never
// written into a commit object, and `log`/`show` do not display it.
type User struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// Core holds repository-level presentation settings.
type Core struct {
	Bare          bool   `toml:"bare"`
	DefaultBranch string `toml:"default_branch"`
}

// Config is the parsed form of <repo>/config.
type Config struct {
	User User `toml:"user"`
	Core Core `toml:"core"`
}

// Default returns the configuration a freshly initialized repository
// starts with.
func Default() Config {
	return Config{Core: Core{DefaultBranch: "master"}}
}

// Load reads and parses the config file under repoDir. A missing file is
// not an error: it yields Default().
func Load(repoDir string) (Config, error) {
	data, err := os.ReadFile(filepath.Join(repoDir, fileName)) //nolint:gosec // repoDir is the local repository directory
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: load: %w", err)
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: load: parsing %s: %w", fileName, err)
	}
	return cfg, nil
}

// Save writes cfg to the config file under repoDir.
func Save(repoDir string, cfg Config) error {
	f, err := os.Create(filepath.Join(repoDir, fileName)) //nolint:gosec // repoDir is the local repository directory
	if err != nil {
		return fmt.Errorf("config: save: %w", err)
	}
	defer f.Close() //nolint:errcheck // encoding error below is authoritative

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("config: save: encoding: %w", err)
	}
	return nil
}
