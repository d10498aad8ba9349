// Package wrapgen introspects Go packages and generates Corvel binding
// registrations. Every emitted function goes through bind.Func, so the
// generated code inherits argument validation and error bridging without
// per-function glue.
package wrapgen

import "go/types"

// PackageModel is the in-memory representation of a Go package's
// adaptable API surface.
type PackageModel struct {
	ImportPath string
	Name       string // short package name (e.g., "strings")
	Functions  []FunctionModel
	Skipped    []string // exported functions rejected by the adaptability rules
}

// FunctionModel represents one adaptable exported function.
type FunctionModel struct {
	Name       string
	Params     []ParamModel
	Results    []ParamModel
	ReturnsErr bool // true if the last result is error
}

// ParamModel represents a function parameter or result.
type ParamModel struct {
	Name    string
	GoType  types.Type
	TypeStr string // human-readable type string (e.g., "string", "[]byte")
}
