// Package config loads the optional ots.toml project configuration:
// library search directories and netlist export defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file searched for from the working
// directory upward.
const FileName = "ots.toml"

// Config is the full ots.toml contents.
type Config struct {
	Library LibraryConfig `toml:"library"`
	Netlist NetlistConfig `toml:"netlist"`
}

// LibraryConfig configures symbol resolution.
type LibraryConfig struct {
	Dirs    []string `toml:"dirs"`
	Catalog string   `toml:"catalog"`
}

// NetlistConfig carries netlist export defaults.
type NetlistConfig struct {
	Format string `toml:"format"`
	Name   string `toml:"name"`
}

// Default returns the configuration used when no ots.toml exists.
func Default() Config {
	return Config{
		Netlist: NetlistConfig{Format: "json", Name: "netlist"},
	}
}

// Find walks from startDir upward looking for an ots.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses one configuration file. Fields left out keep their
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if meta.IsDefined("netlist", "format") {
		switch cfg.Netlist.Format {
		case "json", "spice", "tedax":
		default:
			return Config{}, fmt.Errorf("%s: [netlist].format must be json, spice or tedax", path)
		}
	}
	return cfg, nil
}

// LoadOrDefault finds and loads the nearest ots.toml, falling back to
// defaults when none exists. The second result is the path of the file
// used, empty for defaults.
func LoadOrDefault(startDir string) (Config, string, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Default(), "", err
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, path, err
	}
	return cfg, path, nil
}

// CatalogPath returns the configured catalog location, or the standard
// per-user cache location when unset.
func (c Config) CatalogPath() (string, error) {
	if c.Library.Catalog != "" {
		return c.Library.Catalog, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "ots", "catalog.db"), nil
}
