package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort          = 8080
	DefaultHost          = "127.0.0.1"
	DefaultLogLevel      = "info"
	DefaultMaxFileSize   = 20 * 1024 * 1024 // 20MB
	DefaultTesseract     = "tesseract"
	DefaultTesseractLang = "eng"
	DefaultSnippetLength = 200

	// Directory permissions
	DefaultDirPerm = 0o750

	// EnvPrefix prefixes every environment variable, e.g. DOCINTEL_LOG_LEVEL
	EnvPrefix = "DOCINTEL"
)

// Config holds all configuration for the document intelligence server
type Config struct {
	// Server configuration
	Mode        string // "server" or "stdio"
	Host        string
	Port        int
	CORSOrigins []string

	// Document acquisition
	DocumentDirectory string
	MaxFileSize       int64 // Maximum document size in bytes
	TesseractPath     string
	TesseractLang     string
	TessdataDir       string
	OCRRate           float64 // tesseract runs per second, 0 = unlimited

	// Extraction
	LabelTablesPath string // optional YAML overriding the label lookup tables
	SnippetLength   int

	// Persistence; an empty path disables profile storage
	DatabasePath string

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:              ModeStdio, // Default to stdio mode for MCP compatibility
		Host:              DefaultHost,
		Port:              DefaultPort,
		CORSOrigins:       []string{"*"},
		DocumentDirectory: currentDir,
		MaxFileSize:       DefaultMaxFileSize,
		TesseractPath:     DefaultTesseract,
		TesseractLang:     DefaultTesseractLang,
		SnippetLength:     DefaultSnippetLength,
		Version:           "1.0.0",
		ServerName:        "mcp-docintel",
		LogLevel:          DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	for _, p := range []*string{&cfg.DocumentDirectory, &cfg.DatabasePath, &cfg.LabelTablesPath} {
		if *p == "" {
			continue
		}
		if expandedPath, err := filepath.Abs(*p); err == nil {
			*p = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("cors-origins", cfg.CORSOrigins)
	viper.SetDefault("dir", cfg.DocumentDirectory)
	viper.SetDefault("max-file-size", cfg.MaxFileSize)
	viper.SetDefault("tesseract", cfg.TesseractPath)
	viper.SetDefault("tesseract-lang", cfg.TesseractLang)
	viper.SetDefault("tessdata-dir", cfg.TessdataDir)
	viper.SetDefault("ocr-rate", cfg.OCRRate)
	viper.SetDefault("label-tables", cfg.LabelTablesPath)
	viper.SetDefault("snippet-length", cfg.SnippetLength)
	viper.SetDefault("db", cfg.DatabasePath)
	viper.SetDefault("log-level", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP API")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.StringSlice("cors-origins", cfg.CORSOrigins, "Allowed CORS origins (server mode only)")
	pflag.String("dir", cfg.DocumentDirectory, "Directory containing documents readable by file tools")
	pflag.Int64("max-file-size", cfg.MaxFileSize, "Maximum document size in bytes")
	pflag.String("tesseract", cfg.TesseractPath, "Tesseract binary used for image OCR")
	pflag.String("tesseract-lang", cfg.TesseractLang, "Tesseract language(s), e.g. eng or eng+tam")
	pflag.String("tessdata-dir", cfg.TessdataDir, "Tesseract tessdata directory")
	pflag.Float64("ocr-rate", cfg.OCRRate, "Maximum OCR runs per second (0 = unlimited)")
	pflag.String("label-tables", cfg.LabelTablesPath, "YAML file overriding label extraction tables")
	pflag.Int("snippet-length", cfg.SnippetLength, "Characters of normalized text echoed in results")
	pflag.String("db", cfg.DatabasePath, "SQLite database for user profiles (empty disables profiles)")
	pflag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "host", "port", "cors-origins",
		"dir", "max-file-size", "tesseract", "tesseract-lang", "tessdata-dir", "ocr-rate",
		"label-tables", "snippet-length", "db", "log-level",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP DocIntel - classification and field extraction for OCR'd identity documents\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          # stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/srv/uploads --db=/var/lib/docintel.db\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081  # HTTP API on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %s_<FLAG> with dashes as underscores, e.g. %s_LOG_LEVEL, %s_MAX_FILE_SIZE\n",
			EnvPrefix, EnvPrefix, EnvPrefix)
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.CORSOrigins = splitList(viper.GetStringSlice("cors-origins"))
	cfg.DocumentDirectory = viper.GetString("dir")
	cfg.MaxFileSize = viper.GetInt64("max-file-size")
	cfg.TesseractPath = viper.GetString("tesseract")
	cfg.TesseractLang = viper.GetString("tesseract-lang")
	cfg.TessdataDir = viper.GetString("tessdata-dir")
	cfg.OCRRate = viper.GetFloat64("ocr-rate")
	cfg.LabelTablesPath = viper.GetString("label-tables")
	cfg.SnippetLength = viper.GetInt("snippet-length")
	cfg.DatabasePath = viper.GetString("db")
	cfg.LogLevel = strings.ToLower(viper.GetString("log-level"))
}

// splitList flattens comma separated entries, as environment variables
// arrive as a single string
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.DocumentDirectory == "" {
		return errors.New("document directory cannot be empty")
	}

	// Check if the document directory exists, create if it doesn't
	if _, err := os.Stat(c.DocumentDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.DocumentDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create document directory %s: %w", c.DocumentDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access document directory %s: %w", c.DocumentDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.TesseractPath == "" {
		return errors.New("tesseract path cannot be empty")
	}

	if c.OCRRate < 0 {
		return errors.New("ocr rate cannot be negative")
	}

	if c.SnippetLength <= 0 {
		return errors.New("snippet length must be positive")
	}

	if c.LabelTablesPath != "" {
		if _, err := os.Stat(c.LabelTablesPath); err != nil {
			return fmt.Errorf("cannot access label tables %s: %w", c.LabelTablesPath, err)
		}
	}

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

// SlogLevel maps LogLevel to a slog level
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ProfilesEnabled reports whether a profile database is configured
func (c *Config) ProfilesEnabled() bool {
	return c.DatabasePath != ""
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, DocumentDirectory: %s, DatabasePath: %s, "+
		"Tesseract: %s (%s), OCRRate: %g, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.DocumentDirectory, c.DatabasePath,
		c.TesseractPath, c.TesseractLang, c.OCRRate, c.LogLevel, c.MaxFileSize)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
