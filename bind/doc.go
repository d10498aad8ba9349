// Package bind is the typed marshalling layer between Go and the Corvel
// engine's untyped value stacks.
//
// This package contains:
//   - The Value tagged union and absolute-index references
//   - The type coercion engine (Push, To, Pop)
//   - The Check argument-validation family for native functions
//   - Func, the adapter from ordinary Go functions to engine.GoFunction
//   - The bridge between engine status codes and Go error values
//   - The userdata type-name registry
//
// Coercion is query-like: To and Pop report a miss as a false second
// result and never unwind. Check is assertion-like: a mismatch raises a
// VM argument error that only the nearest protected call observes. Native
// function bodies use Check; everything else uses To.
//
// A non-local exit raised below a Go frame skips that frame's normal
// return path. Deferred cleanup still runs, but code holding resources
// that need ordering beyond defer must not call into the VM while holding
// them.
package bind
