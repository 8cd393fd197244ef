package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptConfig bounds code-guess failures per (subject, target) pair.
type AttemptConfig struct {
	MaxAttempts int
	Window      time.Duration
}

var (
	// ErrAttemptsExceeded indicates the failure budget for the pair is spent.
	ErrAttemptsExceeded = errors.New("verification attempts exceeded")
	// ErrAttemptBackendUnavailable wraps Redis transport failures.
	ErrAttemptBackendUnavailable = errors.New("attempt backend unavailable")
)

// AttemptTracker counts failed code checks per (subject, target) pair with
// a self-expiring window. It is independent of the send-side cooldown gate:
// sending and guessing are separate abuse vectors.
type AttemptTracker struct {
	redis  redis.UniversalClient
	config AttemptConfig
}

// NewAttemptTracker creates a tracker backed by the given Redis client.
func NewAttemptTracker(redisClient redis.UniversalClient, cfg AttemptConfig) *AttemptTracker {
	return &AttemptTracker{redis: redisClient, config: cfg}
}

func (t *AttemptTracker) key(subjectID, target string) string {
	return "va:" + subjectID + ":" + target
}

// CanVerify reports whether the pair is still within its failure budget.
// Store errors fail closed.
func (t *AttemptTracker) CanVerify(ctx context.Context, subjectID, target string) (bool, error) {
	count, err := t.count(ctx, subjectID, target)
	if err != nil {
		return false, err
	}
	return count < t.config.MaxAttempts, nil
}

// RecordFailure increments the failure counter, starting the window on the
// first failure so state self-expires.
func (t *AttemptTracker) RecordFailure(ctx context.Context, subjectID, target string) error {
	count, err := t.redis.Incr(ctx, t.key(subjectID, target)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAttemptBackendUnavailable, err)
	}

	// Window starts with the first failure in it.
	if count == 1 {
		if err := t.redis.Expire(ctx, t.key(subjectID, target), t.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrAttemptBackendUnavailable, err)
		}
	}

	if count >= int64(t.config.MaxAttempts) {
		return ErrAttemptsExceeded
	}
	return nil
}

// Remaining returns max(0, max-count).
func (t *AttemptTracker) Remaining(ctx context.Context, subjectID, target string) (int, error) {
	count, err := t.count(ctx, subjectID, target)
	if err != nil {
		return 0, err
	}
	remaining := t.config.MaxAttempts - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Reset clears the pair's counter. Called after successful verification.
func (t *AttemptTracker) Reset(ctx context.Context, subjectID, target string) error {
	if err := t.redis.Del(ctx, t.key(subjectID, target)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrAttemptBackendUnavailable, err)
	}
	return nil
}

func (t *AttemptTracker) count(ctx context.Context, subjectID, target string) (int, error) {
	count, err := t.redis.Get(ctx, t.key(subjectID, target)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrAttemptBackendUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}
