// Package bootstrap handles application initialization and lifecycle
// management for the producer service.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/JustAGhosT/content-creation-sub001/internal/logger"
)

// Start initializes and runs the producer service.
func Start() error {
	cfg, configErr := LoadConfig()
	if configErr != nil {
		return fmt.Errorf("config: %w", configErr)
	}

	log, logErr := CreateLogger(cfg)
	if logErr != nil {
		return fmt.Errorf("logger: %w", logErr)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting Producer Service",
		logger.Int("port", cfg.Server.Port),
		logger.Bool("debug", cfg.Debug),
	)

	redisClient, redisErr := SetupRedis(cfg)
	if redisErr != nil {
		return fmt.Errorf("redis: %w", redisErr)
	}
	if redisClient != nil {
		defer func() {
			if closeErr := redisClient.Close(); closeErr != nil {
				log.Error("Failed to close redis client", logger.Error(closeErr))
			}
		}()
		log.Info("Redis connection established")
	} else {
		log.Warn("Redis not configured, flag persistence and audit trail disabled")
	}

	db, dbErr := SetupDatabase(cfg)
	if dbErr != nil {
		return fmt.Errorf("database: %w", dbErr)
	}
	if db != nil {
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				log.Error("Failed to close database", logger.Error(closeErr))
			}
		}()
		log.Info("Database connection established")
	} else {
		log.Warn("Postgres not configured, publish history disabled")
	}

	app := SetupApp(cfg, redisClient, db, log)

	ctx := context.Background()
	app.Sessions.Start(ctx)
	defer app.Sessions.Stop()

	if runErr := app.Server.RunWithGracefulShutdown(ctx); runErr != nil {
		log.Error("Server error", logger.Error(runErr))
		return fmt.Errorf("server: %w", runErr)
	}

	log.Info("Producer Service stopped")
	return nil
}
