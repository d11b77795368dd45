package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/JustAGhosT/content-creation-sub001/internal/config"
	"github.com/JustAGhosT/content-creation-sub001/internal/store"
)

const redisPingTimeout = 5 * time.Second

// SetupRedis connects to Redis when configured. Returns nil when the
// config carries no Redis address; flag persistence and the audit trail
// then run memory-only.
func SetupRedis(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled() {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		return nil, fmt.Errorf("redis ping: %w", pingErr)
	}

	return client, nil
}

// SetupDatabase connects to Postgres when configured. Returns nil when the
// config carries no host; publish history is then unavailable.
func SetupDatabase(cfg *config.Config) (*sqlx.DB, error) {
	if !cfg.Postgres.Enabled() {
		return nil, nil
	}

	db, connErr := store.NewPostgresConnection(store.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		DBName:   cfg.Postgres.DBName,
		SSLMode:  cfg.Postgres.SSLMode,
	})
	if connErr != nil {
		return nil, fmt.Errorf("database connection: %w", connErr)
	}

	return db, nil
}
