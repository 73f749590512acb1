package settings

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "settings:"

// RedisStore keeps each user's settings in one hash.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, userID string) (Settings, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return Settings{}, err
	}

	raw, err := s.rdb.HGetAll(ctx, keyPrefix+userID).Result()
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return apply(raw), nil
}

func (s *RedisStore) Set(ctx context.Context, userID, key, value string) (Settings, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return Settings{}, err
	}
	canonical, err := Validate(key, value)
	if err != nil {
		return Settings{}, err
	}

	if err := s.rdb.HSet(ctx, keyPrefix+userID, key, canonical).Err(); err != nil {
		return Settings{}, fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return s.Get(ctx, userID)
}
