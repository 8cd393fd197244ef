// Package rate provides the Redis-backed fixed-cooldown gate used for
// send-side throttling of sensitive actions.
//
// # Window semantics
//
// One key per identifier holding the last-action timestamp with the
// cooldown as TTL. An identifier may proceed iff its key is absent; key
// expiry is the cooldown elapsing. This is a cooldown gate, not a counter:
// no per-window attempt budget lives here (see internal/limiters).
//
// # What this package must NOT do
//
//   - Implement domain-specific policies (those live in internal/limiters
//     and internal/flows).
//   - Be imported outside the authcore module.
package rate
