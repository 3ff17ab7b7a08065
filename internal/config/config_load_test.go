package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Helper function to reset pflag.CommandLine for testing
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

// Helper function to set os.Args for testing
func setArgs(args []string) {
	os.Args = args
}

var envVars = []string{
	"DOCINTEL_MODE",
	"DOCINTEL_HOST",
	"DOCINTEL_PORT",
	"DOCINTEL_DIR",
	"DOCINTEL_LOG_LEVEL",
	"DOCINTEL_MAX_FILE_SIZE",
	"DOCINTEL_DB",
	"DOCINTEL_OCR_RATE",
	"DOCINTEL_TESSERACT_LANG",
	"DOCINTEL_CORS_ORIGINS",
	"DOCINTEL_SNIPPET_LENGTH",
}

// Helper function to clear environment variables
func clearEnvVars() {
	for _, name := range envVars {
		os.Unsetenv(name)
	}
}

// withCleanState restores os.Args, flags and environment after the test
func withCleanState(t *testing.T) {
	t.Helper()
	originalArgs := os.Args
	resetFlags()
	clearEnvVars()
	t.Cleanup(func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	})
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	withCleanState(t)
	setArgs([]string{"mcp-docintel"})

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "stdio" {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, "stdio")
	}
	if cfg.Port != 8080 {
		t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, 8080)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "info")
	}
	if cfg.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, DefaultMaxFileSize)
	}
	if cfg.DocumentDirectory == "" {
		t.Error("LoadFromFlags() DocumentDirectory should not be empty")
	}
	if cfg.DatabasePath != "" {
		t.Errorf("LoadFromFlags() DatabasePath = %v, want empty", cfg.DatabasePath)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("LoadFromFlags() CORSOrigins = %v, want [*]", cfg.CORSOrigins)
	}
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	withCleanState(t)
	tempDir := t.TempDir()
	tables := filepath.Join(tempDir, "tables.yaml")
	if err := os.WriteFile(tables, []byte("id_hints: [roll]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	setArgs([]string{
		"mcp-docintel",
		"--mode=server",
		"--host=0.0.0.0",
		"--port=9090",
		"--dir=" + tempDir,
		"--log-level=DEBUG",
		"--max-file-size=1024",
		"--tesseract=/opt/bin/tesseract",
		"--tesseract-lang=eng+tam",
		"--ocr-rate=2.5",
		"--snippet-length=80",
		"--label-tables=" + tables,
		"--db=" + filepath.Join(tempDir, "profiles.db"),
		"--cors-origins=https://a.example,https://b.example",
	})

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "server" || cfg.Host != "0.0.0.0" || cfg.Port != 9090 {
		t.Errorf("LoadFromFlags() server = %s %s:%d", cfg.Mode, cfg.Host, cfg.Port)
	}
	if cfg.DocumentDirectory != tempDir {
		t.Errorf("LoadFromFlags() DocumentDirectory = %v, want %v", cfg.DocumentDirectory, tempDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.MaxFileSize != 1024 {
		t.Errorf("LoadFromFlags() MaxFileSize = %v, want 1024", cfg.MaxFileSize)
	}
	if cfg.TesseractPath != "/opt/bin/tesseract" || cfg.TesseractLang != "eng+tam" {
		t.Errorf("LoadFromFlags() tesseract = %s %s", cfg.TesseractPath, cfg.TesseractLang)
	}
	if cfg.OCRRate != 2.5 {
		t.Errorf("LoadFromFlags() OCRRate = %v, want 2.5", cfg.OCRRate)
	}
	if cfg.SnippetLength != 80 {
		t.Errorf("LoadFromFlags() SnippetLength = %v, want 80", cfg.SnippetLength)
	}
	if cfg.LabelTablesPath != tables {
		t.Errorf("LoadFromFlags() LabelTablesPath = %v, want %v", cfg.LabelTablesPath, tables)
	}
	if !cfg.ProfilesEnabled() {
		t.Error("LoadFromFlags() expected profiles to be enabled")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("LoadFromFlags() CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadFromFlags_RelativePathsAreExpanded(t *testing.T) {
	withCleanState(t)
	tempDir := t.TempDir()
	t.Chdir(tempDir)

	setArgs([]string{"mcp-docintel", "--dir=docs", "--db=data/profiles.db"})

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if !filepath.IsAbs(cfg.DocumentDirectory) || filepath.Base(cfg.DocumentDirectory) != "docs" {
		t.Errorf("LoadFromFlags() DocumentDirectory = %v, want absolute .../docs", cfg.DocumentDirectory)
	}
	if !filepath.IsAbs(cfg.DatabasePath) {
		t.Errorf("LoadFromFlags() DatabasePath = %v, want absolute", cfg.DatabasePath)
	}
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	withCleanState(t)
	tempDir := t.TempDir()

	os.Setenv("DOCINTEL_MODE", "server")
	os.Setenv("DOCINTEL_HOST", "192.168.1.100")
	os.Setenv("DOCINTEL_PORT", "3000")
	os.Setenv("DOCINTEL_DIR", tempDir)
	os.Setenv("DOCINTEL_LOG_LEVEL", "warn")
	os.Setenv("DOCINTEL_MAX_FILE_SIZE", "2048")
	os.Setenv("DOCINTEL_OCR_RATE", "4")
	os.Setenv("DOCINTEL_TESSERACT_LANG", "eng+hin")
	os.Setenv("DOCINTEL_CORS_ORIGINS", "https://a.example,https://b.example")

	setArgs([]string{"mcp-docintel"})

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "server" {
		t.Errorf("LoadFromFlags() Mode = %v, want server", cfg.Mode)
	}
	if cfg.Host != "192.168.1.100" {
		t.Errorf("LoadFromFlags() Host = %v, want 192.168.1.100", cfg.Host)
	}
	if cfg.Port != 3000 {
		t.Errorf("LoadFromFlags() Port = %v, want 3000", cfg.Port)
	}
	if cfg.DocumentDirectory != tempDir {
		t.Errorf("LoadFromFlags() DocumentDirectory = %v, want %v", cfg.DocumentDirectory, tempDir)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want warn", cfg.LogLevel)
	}
	if cfg.MaxFileSize != 2048 {
		t.Errorf("LoadFromFlags() MaxFileSize = %v, want 2048", cfg.MaxFileSize)
	}
	if cfg.OCRRate != 4 {
		t.Errorf("LoadFromFlags() OCRRate = %v, want 4", cfg.OCRRate)
	}
	if cfg.TesseractLang != "eng+hin" {
		t.Errorf("LoadFromFlags() TesseractLang = %v, want eng+hin", cfg.TesseractLang)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "https://a.example" {
		t.Errorf("LoadFromFlags() CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	withCleanState(t)

	os.Setenv("DOCINTEL_MODE", "server")
	os.Setenv("DOCINTEL_HOST", "192.168.1.1")
	os.Setenv("DOCINTEL_PORT", "3000")

	setArgs([]string{"mcp-docintel", "--mode=stdio", "--host=localhost", "--port=8888"})

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "stdio" {
		t.Errorf("LoadFromFlags() Mode = %v, want stdio (should override env)", cfg.Mode)
	}
	if cfg.Host != "localhost" {
		t.Errorf("LoadFromFlags() Host = %v, want localhost (should override env)", cfg.Host)
	}
	if cfg.Port != 8888 {
		t.Errorf("LoadFromFlags() Port = %v, want 8888 (should override env)", cfg.Port)
	}
}

func TestLoadFromFlags_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"invalid mode", []string{"--mode=invalid"}, "mode must be either 'stdio' or 'server'"},
		{"invalid port", []string{"--mode=server", "--port=99999"}, "port must be between 1 and 65535"},
		{"invalid log level", []string{"--log-level=invalid"}, "invalid log level"},
		{"negative ocr rate", []string{"--ocr-rate=-1"}, "ocr rate cannot be negative"},
		{"missing label tables", []string{"--label-tables=/nonexistent/tables.yaml"}, "label tables"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withCleanState(t)
			args := append([]string{"mcp-docintel", "--dir=" + t.TempDir()}, tt.args...)
			setArgs(args)

			_, err := LoadFromFlags()
			if err == nil {
				t.Fatalf("LoadFromFlags() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadFromFlags() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFlags_VersionFlag(t *testing.T) {
	withCleanState(t)
	setArgs([]string{"mcp-docintel", "--version"})

	_, err := LoadFromFlags()
	if err == nil {
		t.Fatal("LoadFromFlags() expected version error")
	}
	if err.Error() != "version requested" {
		t.Errorf("LoadFromFlags() error = %v, want 'version requested'", err)
	}
}
