// Package limiters provides domain-specific abuse counters built on Redis.
//
// # Limiters
//
//   - [AttemptTracker] counts failed code checks per (subject, target)
//     pair inside a self-expiring window.
//   - [LoginLimiter] counts failed password attempts per identifier and
//     per client IP.
//
// # Architecture boundaries
//
// Each limiter owns its own Redis key namespace and error values. Policy
// thresholds come from Config structs supplied at construction time.
//
// # What this package must NOT do
//
//   - Import the root package or any sibling internal package except
//     internal/rate.
//   - Make policy decisions beyond counting; flow functions decide
//     consequences.
package limiters
