package flags

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/JustAGhosT/content-creation-sub001/internal/logger"
)

// registryKey is the Redis key holding the serialized flag snapshot.
const registryKey = "producer:flags:registry"

// RedisStore persists flag snapshots in Redis.
type RedisStore struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisStore creates a Redis-backed flag store.
func NewRedisStore(client *redis.Client, log logger.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: log,
	}
}

// Load returns the last saved snapshot, or nil if none has been saved.
func (s *RedisStore) Load(ctx context.Context) (map[string]Flag, error) {
	raw, getErr := s.client.Get(ctx, registryKey).Bytes()
	if getErr != nil {
		if errors.Is(getErr, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load flag snapshot: %w", getErr)
	}

	var snapshot map[string]Flag
	if unmarshalErr := json.Unmarshal(raw, &snapshot); unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal flag snapshot: %w", unmarshalErr)
	}

	s.logger.Debug("loaded flag snapshot",
		logger.Int("flags", len(snapshot)),
		logger.String("redis_key", registryKey),
	)
	return snapshot, nil
}

// Save durably writes the snapshot. The key has no TTL; the snapshot lives
// until the next save overwrites it.
func (s *RedisStore) Save(ctx context.Context, snapshot map[string]Flag) error {
	raw, marshalErr := json.Marshal(snapshot)
	if marshalErr != nil {
		return fmt.Errorf("marshal flag snapshot: %w", marshalErr)
	}

	if setErr := s.client.Set(ctx, registryKey, raw, 0).Err(); setErr != nil {
		return fmt.Errorf("save flag snapshot: %w", setErr)
	}

	s.logger.Debug("saved flag snapshot",
		logger.Int("flags", len(snapshot)),
		logger.String("redis_key", registryKey),
	)
	return nil
}
