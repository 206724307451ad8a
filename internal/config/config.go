// Package config loads and saves the optional operational settings file,
// .gitlet/config.toml. Nothing in this file can change mandated output,
// error text, or identity hashing — only retry and concurrency knobs for
// internal/fsio.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// IOConfig tunes internal/fsio's retry behavior.
type IOConfig struct {
	RetryAttempts  int `toml:"retry_attempts"`
	RetryBackoffMS int `toml:"retry_backoff_ms"`
}

// StatusConfig tunes the concurrency of working-tree scans.
type StatusConfig struct {
	ScanConcurrency int `toml:"scan_concurrency"`
}

// Config is the full set of operational settings.
type Config struct {
	IO     IOConfig     `toml:"io"`
	Status StatusConfig `toml:"status"`
}

// Default returns the settings used when no config.toml is present.
func Default() Config {
	return Config{
		IO: IOConfig{
			RetryAttempts:  3,
			RetryBackoffMS: 10,
		},
		Status: StatusConfig{
			ScanConcurrency: 8,
		},
	}
}

// FileName is the config file's name within the metadata directory.
const FileName = "config.toml"

// Load reads gitDir/config.toml. A missing file is not an error: it
// yields Default(). A present but malformed file is an error.
func Load(gitDir string) (Config, error) {
	path := filepath.Join(gitDir, FileName)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: statting %s: %w", path, err)
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to gitDir/config.toml, creating gitDir if needed.
func Save(gitDir string, cfg Config) error {
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		return fmt.Errorf("config: creating %s: %w", gitDir, err)
	}

	path := filepath.Join(gitDir, FileName)
	f, err := os.Create(path) //nolint:gosec // path is derived from the repo's own metadata dir
	if err != nil {
		return fmt.Errorf("config: creating %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("config: encoding %s: %w", path, err)
	}
	return nil
}
