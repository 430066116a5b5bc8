package webhooks

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupePrefix = "webhook:processed:"

// RedisDeduper remembers processed message ids for a bounded time.
// A nil client disables it: nothing is ever reported as processed.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDeduper{client: client, ttl: ttl}
}

// Processed reports whether id was already applied successfully.
func (d *RedisDeduper) Processed(ctx context.Context, id string) (bool, error) {
	if d == nil || d.client == nil || id == "" {
		return false, nil
	}
	n, err := d.client.Exists(ctx, dedupePrefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *RedisDeduper) MarkProcessed(ctx context.Context, id string) error {
	if d == nil || d.client == nil || id == "" {
		return nil
	}
	return d.client.Set(ctx, dedupePrefix+id, "1", d.ttl).Err()
}
