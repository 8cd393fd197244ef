// Package internal holds small shared primitives: opaque token generation,
// digests, and one-time-code generation. Everything here is pure and
// allocation-light; no I/O.
package internal
