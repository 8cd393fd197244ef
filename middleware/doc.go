// Package middleware exposes HTTP adapters for access-token and
// permission enforcement built on top of authcore.Engine.
//
// # Guards
//
//   - [Guard] reads the Authorization bearer token, validates it, and
//     injects the claims into the request context.
//   - [RequirePermission] layers a capability check over Guard using the
//     subject id carried in the validated claims.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication or authorization logic itself.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to the Engine).
//   - Access Redis.
//   - Make authorization decisions beyond pass/reject from the Engine.
package middleware
