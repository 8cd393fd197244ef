// Package password provides argon2id hashing and verification in PHC
// string format, with parameter floors enforced at construction.
//
// # What this package must NOT do
//
//   - Log or retain plaintext passwords.
//   - Use non-constant-time comparisons.
package password
