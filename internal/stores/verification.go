package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCodeNotFound is returned when no code is pending for the pair.
	ErrCodeNotFound = errors.New("verification code not found")
	// ErrCodeMismatch is returned when the submitted code differs from the
	// pending one. The record stays in place; the attempt tracker owns the
	// failure budget.
	ErrCodeMismatch = errors.New("verification code mismatch")
	// ErrCodeStoreUnavailable wraps Redis transport failures.
	ErrCodeStoreUnavailable = errors.New("verification code store unavailable")
)

// consumeCodeLua atomically performs GET, compare, and DEL-on-match so two
// concurrent correct submissions cannot both consume the same code.
// KEYS[1] = record key, ARGV[1] = provided hash (32 raw bytes).
var consumeCodeLua = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return 'not_found'
end
if data ~= ARGV[1] then
  return 'mismatch'
end
redis.call('DEL', KEYS[1])
return 'ok'
`)

// CodeStore keeps the SHA-256 hash of each pending one-time code in Redis
// under the code's TTL. Plaintext codes are never persisted.
type CodeStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewCodeStore creates a pending-code store. prefix defaults to "vc".
func NewCodeStore(redisClient redis.UniversalClient, prefix string) *CodeStore {
	if prefix == "" {
		prefix = "vc"
	}
	return &CodeStore{redis: redisClient, prefix: prefix}
}

func (s *CodeStore) key(subjectID, target string) string {
	return s.prefix + ":" + subjectID + ":" + target
}

// Save overwrites any pending code for the pair with the new hash. Resending
// invalidates the previous code by design.
func (s *CodeStore) Save(ctx context.Context, subjectID, target string, codeHash [32]byte, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(subjectID, target), string(codeHash[:]), ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCodeStoreUnavailable, err)
	}
	return nil
}

// Consume deletes the pending code iff the provided hash matches it.
func (s *CodeStore) Consume(ctx context.Context, subjectID, target string, providedHash [32]byte) error {
	result, err := consumeCodeLua.Run(ctx, s.redis, []string{s.key(subjectID, target)}, string(providedHash[:])).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCodeStoreUnavailable, err)
	}

	status, ok := result.(string)
	if !ok {
		return fmt.Errorf("%w: unexpected lua result type", ErrCodeStoreUnavailable)
	}
	switch status {
	case "ok":
		return nil
	case "not_found":
		return ErrCodeNotFound
	case "mismatch":
		return ErrCodeMismatch
	default:
		return fmt.Errorf("%w: unexpected lua status %q", ErrCodeStoreUnavailable, status)
	}
}
