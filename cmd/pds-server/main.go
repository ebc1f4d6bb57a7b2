package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/TheCodeHarbor/valvoline-pds-api/internal/config"
	"github.com/TheCodeHarbor/valvoline-pds-api/internal/drive"
	"github.com/TheCodeHarbor/valvoline-pds-api/internal/locale"
	"github.com/TheCodeHarbor/valvoline-pds-api/internal/mcp"
	"github.com/TheCodeHarbor/valvoline-pds-api/internal/pds"
	"github.com/TheCodeHarbor/valvoline-pds-api/internal/server"
	"github.com/TheCodeHarbor/valvoline-pds-api/internal/storage"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging builds the process logger. In stdio mode everything goes to
// stderr so the MCP protocol owns stdout.
func setupLogging(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	out := os.Stdout
	if cfg.IsStdioMode() {
		out = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// runServerMode handles HTTP mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, srv *server.Server, logger *slog.Logger) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
		cancel()
		if err := <-serverErrCh; err != nil {
			logger.Error("server shutdown with error", "error", err)
			os.Exit(1)
		}
	case err := <-serverErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogging(cfg)

	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && cfg.IsServerMode() {
		logger.Debug("starting", "config", cfg.String())
	}

	// Label tables and optional overlay
	labelStore := locale.NewStore()
	if cfg.LocaleFile != "" {
		labelStore, err = locale.LoadStore(cfg.LocaleFile)
		if err != nil {
			logger.Error("failed to load locale file", "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewStore(cfg.DataDir, cfg.MaxFileSize)
	if err != nil {
		logger.Error("failed to create storage", "error", err)
		os.Exit(1)
	}

	pdsService := pds.NewService(pds.ServiceConfig{
		MaxFileSize:   cfg.MaxFileSize,
		Labels:        labelStore,
		ExtraSynonyms: labelStore.Synonyms(),
		Logger:        logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var syncer *drive.Syncer
	if cfg.DriveSyncEnabled() {
		syncer, err = drive.NewSyncer(ctx, cfg.GoogleCredentials, store, pdsService, cfg.ParsedDir, logger)
		if err != nil {
			logger.Error("failed to create drive syncer", "error", err)
			os.Exit(1)
		}
	}

	if cfg.IsServerMode() {
		srv := server.New(server.Config{
			Addr:          cfg.Address(),
			Service:       pdsService,
			Store:         store,
			Syncer:        syncer,
			DriveFolderID: cfg.DriveFolderID,
			DefaultLocale: cfg.DefaultLocale,
			Logger:        logger,
		})
		runServerMode(ctx, cancel, srv, logger)
		return
	}

	mcpServer, err := mcp.NewServer(cfg, pdsService, store)
	if err != nil {
		logger.Error("failed to create MCP server", "error", err)
		os.Exit(1)
	}
	if err := mcpServer.ServeStdio(); err != nil {
		logger.Error("MCP server error", "error", err)
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Valvoline PDS API\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
