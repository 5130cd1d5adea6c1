package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/wxslice/wxslice/internal/api"
	"github.com/wxslice/wxslice/internal/config"
	"github.com/wxslice/wxslice/internal/decode/wgrib2"
	"github.com/wxslice/wxslice/internal/grib"
	"github.com/wxslice/wxslice/internal/storage/sqlite"
	"github.com/wxslice/wxslice/internal/wx"
	"github.com/wxslice/wxslice/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	// Load configuration; fall back to defaults when no file exists
	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting wxslice server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	registry, err := cfg.Registry()
	if err != nil {
		log.Error("Invalid source configuration", logger.Error(err))
		os.Exit(1)
	}

	// Optional SQLite persistence for snapshots and point samples
	var (
		snapshotStorage *sqlite.SnapshotStorage
		sampleStorage   *sqlite.SampleStorage
	)
	if cfg.Storage.Enabled {
		if dir := filepath.Dir(cfg.Storage.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				log.Error("Failed to create database directory", logger.Error(err), logger.String("path", dir))
				os.Exit(1)
			}
		}
		db, err := sqlite.Open(cfg.Storage.SQLitePath, log)
		if err != nil {
			log.Error("Failed to open SQLite storage", logger.Error(err))
			os.Exit(1)
		}
		defer db.Close()

		snapshotStorage, err = sqlite.NewSnapshotStorage(db, log)
		if err != nil {
			log.Error("Failed to initialize snapshot storage", logger.Error(err))
			os.Exit(1)
		}
		sampleStorage, err = sqlite.NewSampleStorage(db, log)
		if err != nil {
			log.Error("Failed to initialize sample storage", logger.Error(err))
			os.Exit(1)
		}
		log.Info("Using SQLite storage", logger.String("path", cfg.Storage.SQLitePath))
	}

	// Wire the fetch/decode pipeline
	client := grib.NewClient(time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second, log)
	decoder := wgrib2.New(cfg.Decode.Wgrib2Path, log)
	table := cfg.VariableTable()
	loader := grib.NewLoader(client, decoder, table, log)

	wxService := wx.NewService(registry, client, loader, table, snapshotStorage, sampleStorage, log)

	handler := api.NewHandler(wxService, registry, cfg, log, snapshotStorage, sampleStorage)
	router := api.NewRouter(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", logger.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", logger.Error(err))
	}

	log.Info("Server fully stopped")
}
