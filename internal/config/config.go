package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultLocale      = "no"
	DefaultMaxFileSize = 50 * 1024 * 1024 // 50MB

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the PDS service
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Storage configuration
	DataDir   string
	ParsedDir string

	// Rendering configuration
	LocaleFile    string
	DefaultLocale string

	// Google Drive sync (optional)
	DriveFolderID     string
	GoogleCredentials string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:          ModeServer,
		Host:          DefaultHost,
		Port:          DefaultPort,
		DataDir:       "data",
		ParsedDir:     filepath.Join("data", "parsed"),
		DefaultLocale: DefaultLocale,
		Version:       "1.0.0",
		ServerName:    "valvoline-pds-api",
		LogLevel:      DefaultLogLevel,
		MaxFileSize:   DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.DataDir != "" {
		if expandedPath, err := filepath.Abs(cfg.DataDir); err == nil {
			cfg.DataDir = expandedPath
		}
	}
	if cfg.ParsedDir != "" {
		if expandedPath, err := filepath.Abs(cfg.ParsedDir); err == nil {
			cfg.ParsedDir = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("PDS")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("datadir", cfg.DataDir)
	viper.SetDefault("parseddir", cfg.ParsedDir)
	viper.SetDefault("localefile", cfg.LocaleFile)
	viper.SetDefault("locale", cfg.DefaultLocale)
	viper.SetDefault("drivefolder", cfg.DriveFolderID)
	viper.SetDefault("credentials", cfg.GoogleCredentials)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'server' for the HTTP API, 'stdio' for the MCP tool interface")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("datadir", cfg.DataDir, "Directory for uploaded and synced PDF files")
	pflag.String("parseddir", cfg.ParsedDir, "Directory for cached parsed records and the product index")
	pflag.String("localefile", cfg.LocaleFile, "Optional YAML file with locale label overrides and extra property synonyms")
	pflag.String("locale", cfg.DefaultLocale, "Default output locale")
	pflag.String("drivefolder", cfg.DriveFolderID, "Google Drive folder ID to sync PDS documents from")
	pflag.String("credentials", cfg.GoogleCredentials, "Path to Google service account credentials JSON")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("datadir", pflag.Lookup("datadir"))
	_ = viper.BindPFlag("parseddir", pflag.Lookup("parseddir"))
	_ = viper.BindPFlag("localefile", pflag.Lookup("localefile"))
	_ = viper.BindPFlag("locale", pflag.Lookup("locale"))
	_ = viper.BindPFlag("drivefolder", pflag.Lookup("drivefolder"))
	_ = viper.BindPFlag("credentials", pflag.Lookup("credentials"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nValvoline PDS API - extract and compare lubricant product data sheets\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          # HTTP API on 127.0.0.1:8080 (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --port=9000 --datadir=/var/pds           # API with custom storage\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio                             # MCP tool interface over stdio\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PDS_MODE         Run mode\n")
		fmt.Fprintf(os.Stderr, "  PDS_HOST         Server host\n")
		fmt.Fprintf(os.Stderr, "  PDS_PORT         Server port\n")
		fmt.Fprintf(os.Stderr, "  PDS_DATADIR      PDF storage directory\n")
		fmt.Fprintf(os.Stderr, "  PDS_PARSEDDIR    Parsed record cache directory\n")
		fmt.Fprintf(os.Stderr, "  PDS_LOCALEFILE   Locale override file\n")
		fmt.Fprintf(os.Stderr, "  PDS_LOCALE       Default output locale\n")
		fmt.Fprintf(os.Stderr, "  PDS_DRIVEFOLDER  Google Drive folder ID\n")
		fmt.Fprintf(os.Stderr, "  PDS_CREDENTIALS  Google credentials path\n")
		fmt.Fprintf(os.Stderr, "  PDS_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  PDS_MAXFILESIZE  Maximum file size\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.DataDir = viper.GetString("datadir")
	cfg.ParsedDir = viper.GetString("parseddir")
	cfg.LocaleFile = viper.GetString("localefile")
	cfg.DefaultLocale = viper.GetString("locale")
	cfg.DriveFolderID = viper.GetString("drivefolder")
	cfg.GoogleCredentials = viper.GetString("credentials")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate storage directories
	if c.DataDir == "" {
		return errors.New("data directory cannot be empty")
	}
	if c.ParsedDir == "" {
		return errors.New("parsed directory cannot be empty")
	}

	if c.DefaultLocale == "" {
		return errors.New("default locale cannot be empty")
	}

	// Drive sync needs both the folder and the credentials
	if c.DriveFolderID != "" && c.GoogleCredentials == "" {
		return errors.New("drive folder configured without Google credentials")
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, DataDir: %s, Locale: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.DataDir, c.DefaultLocale, c.LogLevel, c.MaxFileSize)
}

// DriveSyncEnabled reports whether a Drive folder is configured
func (c *Config) DriveSyncEnabled() bool {
	return c.DriveFolderID != ""
}

// IsServerMode returns true if the service runs the HTTP API
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the service runs the MCP tool interface
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
