package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test default values
	if cfg.Mode != "server" {
		t.Errorf("Expected default mode to be 'server', got '%s'", cfg.Mode)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}

	if cfg.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Port)
	}

	if cfg.Version != "1.0.0" {
		t.Errorf("Expected default version to be '1.0.0', got '%s'", cfg.Version)
	}

	if cfg.ServerName != "valvoline-pds-api" {
		t.Errorf("Expected default server name to be 'valvoline-pds-api', got '%s'", cfg.ServerName)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.DefaultLocale != "no" {
		t.Errorf("Expected default locale to be 'no', got '%s'", cfg.DefaultLocale)
	}

	if cfg.MaxFileSize != 50*1024*1024 {
		t.Errorf("Expected default max file size to be 50MB, got %d", cfg.MaxFileSize)
	}

	if cfg.DataDir != "data" {
		t.Errorf("Expected default data directory to be 'data', got '%s'", cfg.DataDir)
	}

	if cfg.ParsedDir != filepath.Join("data", "parsed") {
		t.Errorf("Expected default parsed directory to be 'data/parsed', got '%s'", cfg.ParsedDir)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func(mutate func(*Config)) *Config {
		cfg := DefaultConfig()
		mutate(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid config - server mode",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "valid config - stdio mode",
			config:  valid(func(c *Config) { c.Mode = ModeStdio }),
			wantErr: false,
		},
		{
			name:    "invalid mode",
			config:  valid(func(c *Config) { c.Mode = "daemon" }),
			wantErr: true,
		},
		{
			name:    "invalid port - too low",
			config:  valid(func(c *Config) { c.Port = 0 }),
			wantErr: true,
		},
		{
			name:    "invalid port - too high",
			config:  valid(func(c *Config) { c.Port = 70000 }),
			wantErr: true,
		},
		{
			name:    "port ignored in stdio mode",
			config:  valid(func(c *Config) { c.Mode = ModeStdio; c.Port = 0 }),
			wantErr: false,
		},
		{
			name:    "empty data directory",
			config:  valid(func(c *Config) { c.DataDir = "" }),
			wantErr: true,
		},
		{
			name:    "empty parsed directory",
			config:  valid(func(c *Config) { c.ParsedDir = "" }),
			wantErr: true,
		},
		{
			name:    "empty default locale",
			config:  valid(func(c *Config) { c.DefaultLocale = "" }),
			wantErr: true,
		},
		{
			name:    "drive folder without credentials",
			config:  valid(func(c *Config) { c.DriveFolderID = "folder123" }),
			wantErr: true,
		},
		{
			name: "drive folder with credentials",
			config: valid(func(c *Config) {
				c.DriveFolderID = "folder123"
				c.GoogleCredentials = "/etc/creds.json"
			}),
			wantErr: false,
		},
		{
			name:    "zero max file size",
			config:  valid(func(c *Config) { c.MaxFileSize = 0 }),
			wantErr: true,
		},
		{
			name:    "invalid log level",
			config:  valid(func(c *Config) { c.LogLevel = "verbose" }),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "0.0.0.0"
	cfg.Port = 9000

	if got := cfg.Address(); got != "0.0.0.0:9000" {
		t.Errorf("Address() = %v, want 0.0.0.0:9000", got)
	}
}

func TestConfigModeHelpers(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.IsServerMode() || cfg.IsStdioMode() {
		t.Error("default config should be in server mode")
	}

	cfg.Mode = ModeStdio
	if cfg.IsServerMode() || !cfg.IsStdioMode() {
		t.Error("stdio config should be in stdio mode")
	}
}

func TestConfigIsDebug(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.IsDebug() {
		t.Error("default config should not be in debug mode")
	}
	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Error("debug log level should enable debug mode")
	}
}

func TestConfigDriveSyncEnabled(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DriveSyncEnabled() {
		t.Error("drive sync should be disabled by default")
	}
	cfg.DriveFolderID = "folder123"
	if !cfg.DriveSyncEnabled() {
		t.Error("drive sync should be enabled when a folder is set")
	}
}
