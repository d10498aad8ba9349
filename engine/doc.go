// Package engine implements the Corvel virtual machine core.
//
// This package contains:
//   - Per-thread value stacks with index-addressed access
//   - The native (Go) function calling convention
//   - Protected calls and the error-raise unwind path
//   - Coroutines with explicit yield/resume
//   - The chunk assembler, executor, and CBOR dump format
//
// The engine exposes only raw, untyped stack primitives. Typed marshalling
// between Go values and stack slots lives in package bind.
package engine
