// Package audit provides the internal audit event model and the
// asynchronous dispatcher used by the engine.
//
// # Architecture boundaries
//
// This package owns event buffering and sink fan-out. It must not import
// the root package or any sibling; the root package re-exports the sink
// types it needs.
package audit
