package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/api"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/config"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/database"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/logger"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/scheduler"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/service"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	var log zerolog.Logger
	if cfg.Log.JSON {
		log = logger.NewJSON(os.Stdout, cfg.Log.Level)
	} else {
		log = logger.New(cfg.Log.Level)
	}
	zlog.Logger = log

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	log.Info().Str("path", cfg.Database.Path).Str("version", version.Version).Msg("Connected to database")

	archive, err := service.NewArchive(cfg.Import.ArchiveKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid IMPORT_ARCHIVE_KEY")
	}
	if !archive.Enabled() {
		log.Warn().Msg("IMPORT_ARCHIVE_KEY not set, submitted statements will not be archived")
	}
	cache := service.NewValuationCache(cfg.Cache.ValuationTTL)

	services := service.NewServices(db, archive, cache)

	// Nightly snapshot of the previous day
	sched, err := scheduler.New(cfg.Snapshot.Cron, services.Snapshot, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule snapshots")
	}
	sched.Start()

	// Create router
	router := api.NewRouter(services, cfg, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sched.Stop(ctx)
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
