// Package tokenstore persists refresh-token records in Redis and implements
// single-use rotation with family-wide theft revocation.
//
// # Data model
//
// One Redis hash per record, keyed by the SHA-256 digest of the opaque
// token. A set per family holds the digests of every record descended from
// one login, so cascade revocation is a set sweep rather than a
// replaced-by chain walk. Records are flagged revoked, never deleted;
// Redis TTL (refresh TTL plus retention grace) purges them.
//
// # Concurrency
//
// Every mutation is one Lua script. Rotation is therefore linearizable per
// record: of two concurrent Rotate calls with the same token, exactly one
// observes revoked == 0 and wins; the other gets ErrTokenRevoked after the
// script has revoked the whole family.
//
// # What this package must NOT do
//
//   - See raw refresh tokens in storage (digests only).
//   - Issue tokens or make authentication decisions.
//   - Import the root package.
package tokenstore
