// Package config holds all tagsync job configuration, loaded from a YAML
// file with defaults applied for anything unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all tagsync configuration.
type Config struct {
	// Remote store and external tool settings
	Remote RemoteConfig `yaml:"remote"`

	// Synchronization settings
	Sync SyncConfig `yaml:"sync"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// RemoteConfig identifies the remote project and the external sync tool.
type RemoteConfig struct {
	Group   string `yaml:"group"`
	Project string `yaml:"project"`

	// ToolPath is the sync tool binary. Empty means look it up on PATH.
	ToolPath string `yaml:"tool_path"`

	// APIKey authenticates the tool's login step. Usually injected via
	// TAGSYNC_API_KEY rather than written to disk.
	APIKey string `yaml:"api_key"`
}

// SyncConfig controls how the external tool is driven.
type SyncConfig struct {
	// WorkDir receives synced files, audit logs and the manifest.
	WorkDir string `yaml:"work_dir"`

	// Includes are file-type include flags passed to the tool.
	Includes []string `yaml:"includes"`

	// SuffixFilter keeps only synced paths with this suffix in the
	// final mapping. Empty disables the filter.
	SuffixFilter string `yaml:"suffix_filter"`

	// AllowEmptyFiltered permits a field to end up with zero paths
	// after the suffix filter instead of failing the job.
	AllowEmptyFiltered bool `yaml:"allow_empty_filtered"`

	// Parallelism bounds concurrent tool invocations.
	Parallelism int `yaml:"parallelism"`

	// Timeout is the per-invocation deadline, e.g. "10m".
	Timeout string `yaml:"timeout"`
}

// LoggingConfig controls the categorized file logger.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Dir     string `yaml:"dir"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Sync: SyncConfig{
			WorkDir:      "work",
			Includes:     []string{"nifti", "source code"},
			SuffixFilter: ".nii.gz",
			Parallelism:  1,
			Timeout:      "10m",
		},
		Logging: LoggingConfig{
			Enabled: false,
			Level:   "info",
			Dir:     filepath.Join("work", "logs"),
		},
	}
}

// Load reads a config file and fills unset values with defaults. An
// empty path returns DefaultConfig. TAGSYNC_API_KEY overrides the file's
// api_key.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if key := os.Getenv("TAGSYNC_API_KEY"); key != "" {
		cfg.Remote.APIKey = key
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Sync.WorkDir == "" {
		c.Sync.WorkDir = def.Sync.WorkDir
	}
	if c.Sync.Parallelism <= 0 {
		c.Sync.Parallelism = def.Sync.Parallelism
	}
	if c.Sync.Timeout == "" {
		c.Sync.Timeout = def.Sync.Timeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = filepath.Join(c.Sync.WorkDir, "logs")
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if _, err := c.SyncTimeout(); err != nil {
		return err
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	return nil
}

// RemotePath returns the "<group>/<project>" path the tool syncs from.
func (c *Config) RemotePath() string {
	return c.Remote.Group + "/" + c.Remote.Project
}

// SyncTimeout parses the per-invocation timeout.
func (c *Config) SyncTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Sync.Timeout)
	if err != nil {
		return 0, fmt.Errorf("sync.timeout: %w", err)
	}
	return d, nil
}

// Save writes the config back to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
