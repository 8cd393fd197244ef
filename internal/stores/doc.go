// Package stores provides the Redis-backed, short-lived record store for
// pending one-time verification codes.
//
// # Design
//
// Each pending code is persisted as its SHA-256 hash with a TTL. Consume is
// a single Lua script (GET, compare, DEL on match) so a code is usable at
// most once even under concurrent submissions.
//
// # What this package must NOT do
//
//   - Import the root package or any sibling internal package.
//   - Log or expose plaintext codes.
//   - Enforce attempt budgets or cooldowns; those live in internal/limiters
//     and internal/rate.
package stores
