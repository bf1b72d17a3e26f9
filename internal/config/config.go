package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up when none is given.
const DefaultFile = "tabgen.yaml"

// Config is the CLI configuration.
type Config struct {
	Version string `yaml:"version"`
	// Inputs are CSV files or directories searched for them.
	Inputs []string `yaml:"inputs"`
	// OutDir receives every written file.
	OutDir string `yaml:"out_dir"`
	// Formats name the writers to run, see export.Registry.
	Formats []string `yaml:"formats"`
	// Directives apply to every sheet unless the sheet overrides them
	// (type_dialect, array_delim, strict, ...).
	Directives map[string]string `yaml:"directives,omitempty"`
	// HideKVColumns blanks the type and comment columns of KV tables in
	// written rows.
	HideKVColumns bool `yaml:"hide_kv_columns"`
	// Jobs bounds concurrent sheet builds; 0 means one per CPU.
	Jobs int `yaml:"jobs"`
	// Database is the SQLite file name, relative to OutDir.
	Database string        `yaml:"database"`
	Logging  LoggingConfig `yaml:"logging"`
	Watch    WatchConfig   `yaml:"watch"`
}

// LoggingConfig configures the console logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	// Format is "console" or "json".
	Format string `yaml:"format"`
}

// WatchConfig configures rebuilds on input changes.
type WatchConfig struct {
	// Debounce collapses bursts of file events, e.g. "300ms".
	Debounce string `yaml:"debounce"`
}

// DebounceDuration parses Debounce.
func (w WatchConfig) DebounceDuration() (time.Duration, error) {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil {
		return 0, fmt.Errorf("watch debounce %q: %w", w.Debounce, err)
	}

	return d, nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)

	return cfg
}

// LoadFile loads and parses a YAML config file from the given path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Load loads path, falling back to DefaultConfig when path is the default
// file name and does not exist.
func Load(path string) (*Config, error) {
	if path == DefaultFile {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
	}

	return LoadFile(path)
}

// Parse parses YAML data into a Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = "1"
	}

	if len(cfg.Inputs) == 0 {
		cfg.Inputs = []string{"."}
	}

	if cfg.OutDir == "" {
		cfg.OutDir = "out"
	}

	if len(cfg.Formats) == 0 {
		cfg.Formats = []string{"json"}
	}

	if cfg.Database == "" {
		cfg.Database = "tabgen.db"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = "300ms"
	}
}

// Validate checks values that defaults cannot repair.
func (cfg *Config) Validate() error {
	if cfg.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", cfg.Jobs)
	}

	switch cfg.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging format must be console or json, got %q", cfg.Logging.Format)
	}

	if _, err := cfg.Watch.DebounceDuration(); err != nil {
		return err
	}

	return nil
}

// Marshal serializes a Config to YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// WriteFile writes a Config to the given path.
func WriteFile(cfg *Config, path string) error {
	data, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}
