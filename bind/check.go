package bind

import (
	"encoding"
	"fmt"
	"reflect"
	"sync"

	"github.com/chazu/corvel/engine"
)

// ArgumentError raises a VM error blaming argument arg of the running
// function, in the standard diagnostic format. It does not return.
func ArgumentError(l *engine.State, arg int, msg string) {
	l.RaiseError("bad argument #%d to '%s' (%s)", arg, l.CallerName(), msg)
}

// typeError raises the mismatch form of ArgumentError. A missing argument
// reports "no value".
func typeError(l *engine.State, arg int, expected string) {
	ArgumentError(l, arg, fmt.Sprintf("%s expected, got %s", expected, l.TypeOf(arg)))
}

// CheckAny raises unless argument arg is present (nil counts as present).
func CheckAny(l *engine.State, arg int) {
	if l.IsNone(arg) {
		ArgumentError(l, arg, "value expected")
	}
}

// CheckNumber validates argument arg as a number, accepting number-shaped
// strings per the VM's coercion rules.
func CheckNumber(l *engine.State, arg int) float64 {
	f, ok := l.ToNumber(arg)
	if !ok {
		typeError(l, arg, "number")
	}
	return f
}

// CheckInteger validates argument arg as a number and truncates it toward
// zero.
func CheckInteger(l *engine.State, arg int) int64 {
	return int64(CheckNumber(l, arg))
}

// CheckString validates argument arg as a string, accepting number slots
// per the VM's coercion rules.
func CheckString(l *engine.State, arg int) string {
	s, ok := l.ToString(arg)
	if !ok {
		typeError(l, arg, "string")
	}
	return s
}

// OptNumber is CheckNumber with a default for an absent or nil argument.
func OptNumber(l *engine.State, arg int, def float64) float64 {
	if l.IsNone(arg) || l.IsNil(arg) {
		return def
	}
	return CheckNumber(l, arg)
}

// OptString is CheckString with a default for an absent or nil argument.
func OptString(l *engine.State, arg int, def string) string {
	if l.IsNone(arg) || l.IsNil(arg) {
		return def
	}
	return CheckString(l, arg)
}

// Check validates and extracts argument arg as T. Where To is a query,
// Check is an assertion: a mismatch raises the standard argument error
// and never returns a sentinel. Unsupported target types panic at the
// call site; they are a programming error, not a VM error.
func Check[T any](l *engine.State, arg int) T {
	var zero T
	ck, err := checkerFor(reflect.TypeOf(&zero).Elem())
	if err != nil {
		panic(err)
	}
	return ck(l, arg).Interface().(T)
}

// checkFn validates one argument position, raising on mismatch.
type checkFn func(l *engine.State, arg int) reflect.Value

var checkerCache sync.Map // reflect.Type -> checkFn

// checkerFor builds (and caches) the validation rule for a host type.
// Returning an error here is the adaptation layer's registration-time
// rejection of unsupported parameter types.
func checkerFor(t reflect.Type) (checkFn, error) {
	if ck, ok := checkerCache.Load(t); ok {
		return ck.(checkFn), nil
	}
	ck, err := buildChecker(t)
	if err != nil {
		return nil, err
	}
	checkerCache.Store(t, ck)
	return ck, nil
}

func buildChecker(t reflect.Type) (checkFn, error) {
	switch t {
	case valueType:
		return func(l *engine.State, arg int) reflect.Value {
			CheckAny(l, arg)
			return reflect.ValueOf(ToValue(l, arg))
		}, nil
	case stateType:
		return kindChecker(t, engine.TypeThread, "thread"), nil
	case tableRefType, funcRefType, userDataRefType, threadRefType, lightPtrType:
		return kindChecker(t, refKind(t), refKind(t).String()), nil
	}

	if reflect.PointerTo(t).Implements(unmarshalerType) {
		return func(l *engine.State, arg int) reflect.Value {
			rv, ok := toReflect(l, arg, t)
			if !ok {
				typeError(l, arg, t.String())
			}
			return rv
		}, nil
	}
	if reflect.PointerTo(t).Implements(textUnmarshType) {
		return enumChecker(t), nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return func(l *engine.State, arg int) reflect.Value {
			if l.TypeOf(arg) != engine.TypeBoolean {
				typeError(l, arg, "boolean")
			}
			rv := reflect.New(t).Elem()
			rv.SetBool(l.ToBoolean(arg))
			return rv
		}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(l *engine.State, arg int) reflect.Value {
			rv := reflect.New(t).Elem()
			rv.SetInt(int64(CheckNumber(l, arg)))
			return rv
		}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(l *engine.State, arg int) reflect.Value {
			rv := reflect.New(t).Elem()
			rv.SetUint(uint64(CheckNumber(l, arg)))
			return rv
		}, nil
	case reflect.Float32, reflect.Float64:
		return func(l *engine.State, arg int) reflect.Value {
			rv := reflect.New(t).Elem()
			rv.SetFloat(CheckNumber(l, arg))
			return rv
		}, nil
	case reflect.String:
		return func(l *engine.State, arg int) reflect.Value {
			rv := reflect.New(t).Elem()
			rv.SetString(CheckString(l, arg))
			return rv
		}, nil
	case reflect.Slice:
		if t.Elem().Kind() != reflect.Uint8 {
			return nil, &UnsupportedTypeError{Type: t}
		}
		return func(l *engine.State, arg int) reflect.Value {
			rv := reflect.New(t).Elem()
			rv.SetBytes([]byte(CheckString(l, arg)))
			return rv
		}, nil
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Pointer {
			return nil, &UnsupportedTypeError{Type: t}
		}
		if t.Elem().Kind() == reflect.Struct {
			// Opaque host type carried as userdata. A registered type
			// tag makes the metatable the boundary check; assignability
			// covers untagged payloads.
			return func(l *engine.State, arg int) reflect.Value {
				if tname, ok := typeTag(t); ok {
					data, ok := TestUserData(l, arg, tname)
					if !ok {
						typeError(l, arg, tname)
					}
					dv := reflect.ValueOf(data)
					if !dv.Type().AssignableTo(t) {
						typeError(l, arg, tname)
					}
					rv := reflect.New(t).Elem()
					rv.Set(dv)
					return rv
				}
				rv, ok := userDataAs(l, arg, t)
				if !ok {
					typeError(l, arg, "userdata")
				}
				return rv
			}, nil
		}
		inner, err := buildChecker(t.Elem())
		if err != nil {
			return nil, err
		}
		// Optional rule: nil (or absent) satisfies a pointer parameter.
		return func(l *engine.State, arg int) reflect.Value {
			if l.IsNone(arg) || l.IsNil(arg) {
				return reflect.Zero(t)
			}
			pv := reflect.New(t.Elem())
			pv.Elem().Set(inner(l, arg))
			return pv
		}, nil
	case reflect.Interface:
		return func(l *engine.State, arg int) reflect.Value {
			rv, ok := toReflect(l, arg, t)
			if !ok {
				typeError(l, arg, t.String())
			}
			return rv
		}, nil
	}
	return nil, &UnsupportedTypeError{Type: t}
}

// enumChecker matches a string slot against the enum's names. A non-string
// slot is a type error; an unmatched name reports the offending option.
func enumChecker(t reflect.Type) checkFn {
	return func(l *engine.State, arg int) reflect.Value {
		if l.TypeOf(arg) != engine.TypeString {
			typeError(l, arg, "string")
		}
		s, _ := l.ToString(arg)
		pv := reflect.New(t)
		if err := pv.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			ArgumentError(l, arg, fmt.Sprintf("invalid option '%s'", s))
		}
		return pv.Elem()
	}
}

func kindChecker(t reflect.Type, kind engine.Type, expected string) checkFn {
	return func(l *engine.State, arg int) reflect.Value {
		rv, ok := toReflect(l, arg, t)
		if !ok || l.TypeOf(arg) != kind {
			typeError(l, arg, expected)
		}
		return rv
	}
}

func refKind(t reflect.Type) engine.Type {
	switch t {
	case tableRefType:
		return engine.TypeTable
	case funcRefType:
		return engine.TypeFunction
	case userDataRefType:
		return engine.TypeUserData
	case threadRefType:
		return engine.TypeThread
	case lightPtrType:
		return engine.TypeLightUserData
	}
	return engine.TypeNone
}
