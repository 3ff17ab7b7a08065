package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/mcp-docintel/internal/api"
	"github.com/a3tai/mcp-docintel/internal/config"
	"github.com/a3tai/mcp-docintel/internal/docintel"
	"github.com/a3tai/mcp-docintel/internal/intelligence"
	"github.com/a3tai/mcp-docintel/internal/mcp"
	"github.com/a3tai/mcp-docintel/internal/profile"
	"github.com/a3tai/mcp-docintel/internal/source"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// newLogger builds the process logger. In stdio mode stdout carries the
// MCP protocol, so logs go to w only when debug is enabled.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if cfg.IsStdioMode() && !cfg.IsDebug() {
		w = io.Discard
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.SlogLevel(),
		AddSource: cfg.IsDebug(),
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// buildService wires the engine, document source and optional profile
// store. The returned cleanup closes the store.
func buildService(cfg *config.Config, logger *slog.Logger) (*docintel.Service, func(), error) {
	engineConfig := intelligence.DefaultEngineConfig()
	engineConfig.SnippetLength = cfg.SnippetLength

	if cfg.LabelTablesPath != "" {
		tables, err := intelligence.LoadLabelTables(cfg.LabelTablesPath)
		if err != nil {
			return nil, nil, err
		}
		engineConfig.LabelTables = tables
	}

	src, err := source.NewService(source.Config{
		DocumentDirectory: cfg.DocumentDirectory,
		MaxFileSize:       cfg.MaxFileSize,
		TesseractPath:     cfg.TesseractPath,
		TesseractLang:     cfg.TesseractLang,
		TessdataDir:       cfg.TessdataDir,
		OCRRate:           cfg.OCRRate,
	}, source.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create document source: %w", err)
	}

	cleanup := func() {}
	opts := []docintel.Option{docintel.WithLogger(logger)}

	if cfg.ProfilesEnabled() {
		storeLevel := "silent"
		if cfg.IsDebug() {
			storeLevel = "warn"
		}

		store, err := profile.Open(profile.Options{Path: cfg.DatabasePath, LogLevel: storeLevel})
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close profile store", "error", err)
			}
		}
		opts = append(opts, docintel.WithProfiles(store))
	}

	svc, err := docintel.NewService(intelligence.NewEngineWithConfig(engineConfig), src, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

// runServerMode serves the HTTP API until ctx is cancelled
func runServerMode(ctx context.Context, cfg *config.Config, svc *docintel.Service, logger *slog.Logger) error {
	handler, err := api.New(svc, cfg.ServerName, cfg.Version, logger)
	if err != nil {
		return err
	}

	logger.Info("HTTP API listening", "address", cfg.Address(), "profiles", cfg.ProfilesEnabled())
	if err := api.Run(ctx, cfg.Address(), handler.Router(cfg.CORSOrigins)); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

// runStdioMode serves MCP over stdin/stdout; the parent process controls our lifecycle
func runStdioMode(ctx context.Context, cfg *config.Config, svc *docintel.Service, logger *slog.Logger) error {
	server, err := mcp.NewServer(cfg, svc, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server.Run(ctx)
}

func main() {
	// Check for version flag before parsing other flags
	if hasVersionFlag(os.Args[1:]) {
		printVersion()
		return
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)
	logger.Debug("starting", "config", cfg.String())

	svc, cleanup, err := buildService(cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	if cfg.IsServerMode() {
		err = runServerMode(ctx, cfg, svc, logger)
	} else {
		err = runStdioMode(ctx, cfg, svc, logger)
	}

	stop()
	cleanup()

	if err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func hasVersionFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return true
		}
	}
	return false
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("MCP DocIntel\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
