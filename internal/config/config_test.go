package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wxslice/wxslice/internal/sources"
)

func TestValidateFillsDefaults(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: want 8080, have %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("default logging: have %+v", cfg.Logging)
	}
	if cfg.Fetch.TimeoutSeconds != 60 {
		t.Errorf("default fetch timeout: want 60, have %d", cfg.Fetch.TimeoutSeconds)
	}
	if cfg.Fetch.DefaultSource != "RTMA" {
		t.Errorf("default source: want RTMA, have %s", cfg.Fetch.DefaultSource)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"storage without path", func(c *Config) { c.Storage.Enabled = true }},
		{"incomplete source override", func(c *Config) {
			c.Sources = map[string]sources.Source{"X": {Name: "X"}}
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("want validation error")
			}
		})
	}
}

func TestLoadFromTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[server]
port = 9090
host = "127.0.0.1"

[logging]
level = "debug"
format = "json"

[storage]
enabled = true
sqlite_path = "wxslice.db"

[fetch]
timeout_seconds = 30
default_source = "3DRTMA"

[sources.TEST]
name = "Test Source"
base_url = "http://example.com"
grib_pattern = "{base_url}/{date}/{hour:02d}.grb2"
idx_pattern = "{base_url}/{date}/{hour:02d}.grb2.idx"
has_pressure_levels = true

[variables.FOO]
name = "Foo"
units = "x"
multiplier = 2.0
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	if cfg.Server.Port != 9090 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server config: have %+v", cfg.Server)
	}
	if cfg.Fetch.DefaultSource != "3DRTMA" {
		t.Errorf("default source: want 3DRTMA, have %s", cfg.Fetch.DefaultSource)
	}

	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("unexpected registry error: %v", err)
	}
	src, ok := reg["TEST"]
	if !ok {
		t.Fatal("override source missing from registry")
	}
	gribURL, _ := src.URLs("20240115", 6)
	if gribURL != "http://example.com/20240115/06.grb2" {
		t.Errorf("override URL expansion: have %s", gribURL)
	}
	if _, ok := reg["RTMA"]; !ok {
		t.Error("built-in sources must survive the merge")
	}

	table := cfg.VariableTable()
	d := table.Lookup("FOO")
	if d.Code != "FOO" || d.Multiplier != 2.0 {
		t.Errorf("variable override: have %+v", d)
	}
	if !table.Known("TMP") {
		t.Error("built-in variables must survive the merge")
	}
}

func TestRegistryRejectsUnknownDefault(t *testing.T) {
	cfg := Default()
	cfg.Fetch.DefaultSource = "NOPE"
	if _, err := cfg.Registry(); err == nil {
		t.Error("want error for unknown default source")
	}
}
