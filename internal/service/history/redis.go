package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "history:"

// RedisStore appends entries to a capped Redis list per user.
type RedisStore struct {
	rdb   *redis.Client
	ttl   time.Duration
	limit int
	now   func() time.Time
}

// NewRedisStore trims each list to limit entries and refreshes ttl on every write.
func NewRedisStore(rdb *redis.Client, ttl time.Duration, limit int) *RedisStore {
	return &RedisStore{
		rdb:   rdb,
		ttl:   ttl,
		limit: limit,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *RedisStore) AppendMessage(ctx context.Context, userID, text string, fromUser bool) error {
	userID, err := requireUser(userID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(Entry{Timestamp: s.now(), Message: text, FromUser: fromUser})
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	key := keyPrefix + userID
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, data)
	if s.limit > 0 {
		pipe.LTrim(ctx, key, int64(-s.limit), -1)
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

func (s *RedisStore) ListMessages(ctx context.Context, userID string) ([]Entry, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}

	raw, err := s.rdb.LRange(ctx, keyPrefix+userID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	out := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var entry Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history entry: %w", err)
		}
		out = append(out, entry)
	}
	return out, nil
}
