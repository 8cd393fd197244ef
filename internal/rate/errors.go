package rate

import "errors"

var (
	// ErrRateLimited signals that the cooldown for an identifier has not
	// elapsed.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps Redis transport failures. Callers must treat
	// it as a denial, never as a pass.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
