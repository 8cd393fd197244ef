package rate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds cooldown gate tuning parameters.
type Config struct {
	// Cooldown is the fixed interval that must elapse between two recorded
	// actions for the same identifier.
	Cooldown time.Duration
	// Prefix namespaces the Redis keys of one gate instance, e.g. "cool:sms".
	Prefix string
}

// Gate is a fixed-cooldown rate limiter: one timestamped entry per
// identifier, no sliding window, no history. The entry's TTL is the
// cooldown itself, so expiry doubles as "cooldown elapsed".
type Gate struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a cooldown [Gate] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Gate {
	if cfg.Prefix == "" {
		cfg.Prefix = "cool"
	}
	return &Gate{
		redis:  redisClient,
		config: cfg,
	}
}

func (g *Gate) key(identifier string) string {
	return g.config.Prefix + ":" + identifier
}

// CanProceed reports whether no action was recorded for the identifier
// within the cooldown. Store errors fail closed.
func (g *Gate) CanProceed(ctx context.Context, identifier string) (bool, error) {
	n, err := g.redis.Exists(ctx, g.key(identifier)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n == 0, nil
}

// RecordAction overwrites the last-action timestamp with now. A single
// SET with PX keeps the update to one round trip; the value itself is only
// informational, expiry carries the semantics.
func (g *Gate) RecordAction(ctx context.Context, identifier string) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := g.redis.Set(ctx, g.key(identifier), now, g.config.Cooldown).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// RemainingSeconds returns max(0, cooldown-elapsed), rounded up, for
// building retry-after responses.
func (g *Gate) RemainingSeconds(ctx context.Context, identifier string) (int, error) {
	ttl, err := g.redis.PTTL(ctx, g.key(identifier)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if ttl <= 0 {
		return 0, nil
	}
	secs := int((ttl + time.Second - 1) / time.Second)
	return secs, nil
}
