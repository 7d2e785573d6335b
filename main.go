package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-api/internal/config"
	"catalog-api/internal/db"
	"catalog-api/internal/logger"
	"catalog-api/internal/router"
	"catalog-api/internal/services"
	"catalog-api/internal/storage"
)

func main() {
	cfg := config.LoadConfig()

	log := logger.InitLogger(cfg.LogLevel)
	log.Info().Str("db_driver", cfg.DBDriver).Str("storage", cfg.StorageDriver).Msg("Starting catalog API")

	if cfg.UsesDefaultSecret() {
		log.Warn().Msg("JWT_SECRET not set, using default key")
	}

	database := db.InitDB(cfg.DBDriver, cfg.DBUrl)
	defer database.Close()

	db.RunMigrations(database, cfg.DBDriver)

	store, err := storage.New(context.Background(), storage.Options{
		Driver:    cfg.StorageDriver,
		UploadDir: cfg.UploadDir,
		S3Bucket:  cfg.S3Bucket,
		S3Region:  cfg.S3Region,
		S3Prefix:  cfg.S3Prefix,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize file storage")
	}

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	err = services.NewUserService(database, log).EnsureAdmin(seedCtx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
	cancelSeed()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed administrator")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.SetupRouter(cfg, database, store, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Msgf("Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Server stopped")
}
