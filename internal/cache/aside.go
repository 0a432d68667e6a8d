package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Aside implements the cache-aside pattern: dest is filled from Redis
// when the key exists, otherwise fill is called and its result cached.
// A nil or unreachable client degrades to calling fill directly.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, fill func() error) error {
	if client == nil {
		return fill()
	}

	raw, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			return nil
		}
		// Corrupt entry, drop it and refill
		client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		// Redis down, serve from the source
		return fill()
	}

	if err := fill(); err != nil {
		return err
	}

	if raw, err := json.Marshal(dest); err == nil {
		client.Set(ctx, key, raw, ttl)
	}
	return nil
}
