package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"forms-service/internal/config"
	"forms-service/internal/database"
	"forms-service/internal/services"
	"forms-service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	slog.SetDefault(logger.New(cfg.Log.Level, cfg.Log.Format))

	slog.Info("Starting database migration...", "store", cfg.Store.Driver)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Tables for gorm drivers, indexes for MongoDB
	if _, err := database.OpenStore(ctx, cfg.Store, true); err != nil {
		log.Fatal("Failed to migrate store:", err)
	}

	if cfg.Redis.URI != "" {
		redisClient, err := database.NewRedisConnection(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		defer redisClient.Close()

		redisService := services.NewRedisService(redisClient)
		if previous, err := redisService.GetMigrationState(ctx); err != nil {
			slog.Warn("Failed to read previous migration state", "error", err)
		} else if len(previous) > 0 {
			slog.Info("Previous migration state", "version", previous["version"], "status", previous["status"])
		}

		if err := redisService.SetMigrationState(ctx, database.SchemaVersion, "migrated"); err != nil {
			slog.Error("Failed to record migration state", "error", err)
		}
	}

	slog.Info("Database migration completed successfully!", "version", database.SchemaVersion)
}
