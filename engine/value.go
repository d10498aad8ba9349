package engine

import (
	"strconv"
	"strings"
)

// Type identifies the dynamic kind of a stack slot.
type Type int

const (
	// TypeNone is the pseudo-kind of an index that addresses no slot.
	TypeNone Type = iota - 1

	TypeNil
	TypeBoolean
	TypeLightUserData
	TypeNumber
	TypeString
	TypeTable
	TypeFunction
	TypeUserData
	TypeThread
)

var typeNames = [...]string{
	TypeNil + 1:           "nil",
	TypeBoolean + 1:       "boolean",
	TypeLightUserData + 1: "userdata",
	TypeNumber + 1:        "number",
	TypeString + 1:        "string",
	TypeTable + 1:         "table",
	TypeFunction + 1:      "function",
	TypeUserData + 1:      "userdata",
	TypeThread + 1:        "thread",
}

// String returns the VM-visible name of the type, "no value" for TypeNone.
func (t Type) String() string {
	if t == TypeNone {
		return "no value"
	}
	if int(t+1) < len(typeNames) {
		return typeNames[t+1]
	}
	return "unknown"
}

// Status reports the outcome of a call, load, or resume.
type Status int

const (
	StatusOK Status = iota
	StatusYield
	StatusRuntimeError
	StatusSyntaxError
	StatusMemoryError
	StatusHandlerError
	StatusFileError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusYield:
		return "yield"
	case StatusRuntimeError:
		return "runtime error"
	case StatusSyntaxError:
		return "syntax error"
	case StatusMemoryError:
		return "not enough memory"
	case StatusHandlerError:
		return "error in error handling"
	case StatusFileError:
		return "file error"
	}
	return "unknown status"
}

// GoFunction is the native calling convention: arguments arrive on the
// state's stack (1..Top), the return value is the number of results left
// on top of the stack.
type GoFunction func(l *State) int

// function is the internal representation of a callable slot. Exactly one
// of gofn and chunk is set.
type function struct {
	name  string
	gofn  GoFunction
	chunk *Chunk
}

// lightUserData is a raw host pointer carried through the stack untouched.
type lightUserData uintptr

// UserData is a VM-managed block of host memory. The metatable, when set,
// doubles as the type tag checked by the binding layer.
type UserData struct {
	Data any
	meta *Table
}

// Stack slot values are one of: nil, bool, float64, string, lightUserData,
// *Table, *function, *UserData, *State.

func typeOf(v any) Type {
	switch v.(type) {
	case nil:
		return TypeNil
	case bool:
		return TypeBoolean
	case lightUserData:
		return TypeLightUserData
	case float64:
		return TypeNumber
	case string:
		return TypeString
	case *Table:
		return TypeTable
	case *function:
		return TypeFunction
	case *UserData:
		return TypeUserData
	case *State:
		return TypeThread
	}
	return TypeNone
}

// numberToString formats a number the way the VM's string conversions do.
// Mirrors C's %.14g.
func numberToString(f float64) string {
	return strconv.FormatFloat(f, 'g', 14, 64)
}

// stringToNumber parses a string the way the VM's number conversions do:
// optional surrounding space, decimal or 0x-prefixed hex.
func stringToNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	body := s
	if body[0] == '+' || body[0] == '-' {
		neg = body[0] == '-'
		body = body[1:]
	}
	if len(body) > 2 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		u, err := strconv.ParseUint(body[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		f := float64(u)
		if neg {
			f = -f
		}
		return f, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// isTruthy applies the VM's truth rule: everything except nil and false.
func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}
