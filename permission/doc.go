// Package permission provides the platform's closed permission
// enumeration, 64-bit permission sets, and the static role table used by
// authorization checks.
//
// # Design
//
// Permissions are bits in a [Mask64]; roles are named masks in an
// immutable [Table] built once at process start. Resolution is pure:
// union the masks of a subject's roles and test membership. Protected
// operations declare a [Requirement] value checked by one generic gate in
// the engine, not per-operation authorization types.
//
// # What this package must NOT do
//
//   - Access Redis, databases, or the network.
//   - Import the root package, jwt, or tokenstore.
//   - Mutate the role table after construction.
package permission
