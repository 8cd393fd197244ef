// Package authcore is the access-control core of the café platform: JWT
// access tokens, single-use rotating refresh tokens with theft detection,
// role-based permission resolution, and Redis-backed abuse controls for
// sensitive actions (code sending, code checking, login attempts).
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// the collaborator interfaces ([SubjectStore], [CaptchaVerifier],
// [CodeSender]), and value types. All internal coordination (flow
// orchestration, refresh rotation scripts, rate limiting, audit dispatch)
// lives under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or key layouts in its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//   - Carry HTTP, gRPC, or persistence-adapter concerns; transports wrap the
//     Engine, they never live inside it.
//
// # Performance contract
//
// ValidateAccess is the hot path: signature plus expiry check only, no Redis
// round-trips. Login, Refresh, and the verification operations are allowed a
// small constant number of Redis round-trips per call.
package authcore
