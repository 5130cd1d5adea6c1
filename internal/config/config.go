package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/wxslice/wxslice/internal/sources"
	"github.com/wxslice/wxslice/internal/vars"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server    ServerConfig                `toml:"server"`    // HTTP server settings
	Logging   LoggingConfig               `toml:"logging"`   // Application logging settings
	Storage   StorageConfig               `toml:"storage"`   // Data persistence settings
	Fetch     FetchConfig                 `toml:"fetch"`     // Remote GRIB fetching settings
	Decode    DecodeConfig                `toml:"decode"`    // GRIB decoding settings
	Sources   map[string]sources.Source   `toml:"sources"`   // Data source overrides (merged over the built-in registry)
	Variables map[string]VariableOverride `toml:"variables"` // Variable descriptor overrides
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port             int    `toml:"port"`                  // HTTP port for the server
	Host             string `toml:"host"`                  // Host address to bind to
	ReadTimeoutSecs  int    `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request
	WriteTimeoutSecs int    `toml:"write_timeout_seconds"` // Maximum duration for writing the response
	IdleTimeoutSecs  int    `toml:"idle_timeout_seconds"`  // Keep-alive idle timeout
	StaticFilesDir   string `toml:"static_files_dir"`      // Directory to serve static files from (empty = disabled)
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// StorageConfig contains data persistence configuration
type StorageConfig struct {
	Enabled    bool   `toml:"enabled"`     // Whether to persist snapshots and samples
	SQLitePath string `toml:"sqlite_path"` // Path to the SQLite database file
}

// FetchConfig contains settings for fetching inventories and GRIB
// subsets from the remote datasets.
type FetchConfig struct {
	TimeoutSeconds int    `toml:"timeout_seconds"` // HTTP timeout for inventory and range requests
	DefaultSource  string `toml:"default_source"`  // Source ID used when a request names none
}

// DecodeConfig contains settings for the external GRIB decoder.
type DecodeConfig struct {
	Wgrib2Path string `toml:"wgrib2_path"` // Path to the wgrib2 executable
}

// VariableOverride lets a deployment adjust a variable descriptor
// without rebuilding.
type VariableOverride = vars.Descriptor

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	var config Config

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	searchPaths := []string{
		preferredPath,
		"configs/config.toml",
		"config.toml",
	}

	uniquePaths := make([]string, 0, len(searchPaths))
	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path != "" && !seen[path] {
			uniquePaths = append(uniquePaths, path)
			seen[path] = true
		}
	}

	var lastErr error
	for _, path := range uniquePaths {
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
				continue
			}
			return config, nil
		}
		lastErr = fmt.Errorf("config file not found: %s", path)
	}

	return nil, fmt.Errorf("config file not found in any of the expected locations: %v. Last error: %w", uniquePaths, lastErr)
}

// Default returns a configuration with sensible defaults, used when no
// config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Server.Host = "0.0.0.0"
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"
	cfg.Fetch.TimeoutSeconds = 60
	cfg.Fetch.DefaultSource = sources.DefaultSourceID
	cfg.Decode.Wgrib2Path = "wgrib2"
	return cfg
}

// Validate validates the configuration and fills in defaults for
// omitted fields.
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Storage.Enabled && c.Storage.SQLitePath == "" {
		return fmt.Errorf("sqlite_path is required when storage is enabled")
	}

	if c.Fetch.TimeoutSeconds == 0 {
		c.Fetch.TimeoutSeconds = 60
	}
	if c.Fetch.TimeoutSeconds < 0 {
		return fmt.Errorf("invalid fetch timeout: %d", c.Fetch.TimeoutSeconds)
	}
	if c.Fetch.DefaultSource == "" {
		c.Fetch.DefaultSource = sources.DefaultSourceID
	}

	if c.Decode.Wgrib2Path == "" {
		c.Decode.Wgrib2Path = "wgrib2"
	}

	for id, src := range c.Sources {
		if src.BaseURL == "" || src.GribPattern == "" || src.IdxPattern == "" {
			return fmt.Errorf("source %s: base_url, grib_pattern and idx_pattern are required", id)
		}
	}

	return nil
}

// Registry merges configured source overrides over the built-in
// registry and verifies the default source exists.
func (c *Config) Registry() (sources.Registry, error) {
	reg := sources.DefaultRegistry()
	for id, src := range c.Sources {
		reg[id] = src
	}
	if _, ok := reg[c.Fetch.DefaultSource]; !ok {
		return nil, fmt.Errorf("default source %s is not configured", c.Fetch.DefaultSource)
	}
	return reg, nil
}

// VariableTable merges configured variable overrides over the built-in
// descriptor table.
func (c *Config) VariableTable() vars.Table {
	table := vars.DefaultTable()
	for code, d := range c.Variables {
		if d.Code == "" {
			d.Code = code
		}
		if d.Multiplier == 0 {
			d.Multiplier = 1
		}
		table[code] = d
	}
	return table
}
