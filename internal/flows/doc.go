// Package flows holds the orchestration logic of the engine's multi-step
// operations as plain functions over explicit dependency structs.
//
// # Design
//
// Each flow function takes a Deps struct of closures and narrow interfaces
// and returns a Result with a failure-kind enum. The root package maps
// kinds to its sentinel errors, emits audit events, and bumps metrics;
// flows stay free of those concerns and are trivially testable with fakes.
//
// # What this package must NOT do
//
//   - Import the root package.
//   - Talk to Redis directly (stores and limiters are injected).
package flows
