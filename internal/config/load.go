package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvConfig names a config file when no -config flag is given.
const EnvConfig = "PMTOOL_CONFIG"

// Load builds the effective configuration. Later sources win: built-in
// defaults, then one YAML file, then command line flags.
func Load() (*Config, error) {
	cfg := Default()

	if path := findConfigFile(); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// findConfigFile resolves the config file: the -config flag, then
// $PMTOOL_CONFIG, then the first of pmtool.yaml and config.yaml in the
// working directory, then config.yaml in ConfigDir. Explicit paths are
// returned even when missing so that Load reports them.
func findConfigFile() string {
	if p := ConfigPath(); p != "" {
		return p
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	for _, p := range []string{
		"./pmtool.yaml",
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// ConfigDir returns the per-user pmtool config directory.
func ConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "rainbow-cow")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".rainbow-cow")
}

// loadFromFile merges the YAML file at path into cfg. Keys that do not map
// to a setting are rejected so misspelled options do not pass silently. An
// empty file leaves cfg untouched.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
