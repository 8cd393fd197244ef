// Package jwt wraps golang-jwt/v5 behind the narrow Manager API the engine
// needs: mint an access token, validate an access token.
//
// Access tokens are the standard three base64url segments and carry the
// subject id, role, a uuid jti, iat, exp, and optional iss/aud. They are
// intentionally short-lived; revocation lives entirely in the refresh
// layer.
//
// # What this package must NOT do
//
//   - Touch Redis or any store (validation is pure).
//   - Accept tokens signed with an algorithm other than the configured one.
package jwt
