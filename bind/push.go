package bind

import (
	"encoding"
	"fmt"
	"reflect"

	"github.com/chazu/corvel/engine"
)

// Marshaler is the capability interface for host types that define their
// own push rule. Implementations must leave exactly one value on the
// stack.
type Marshaler interface {
	MarshalStack(l *engine.State)
}

// Unmarshaler is the extraction-side capability interface, implemented on
// a pointer receiver. Implementations read the slot at idx without
// removing it and report whether the slot's kind was acceptable.
type Unmarshaler interface {
	UnmarshalStack(l *engine.State, idx int) bool
}

// UnsupportedTypeError reports a host type the coercion engine has no
// rule for. It surfaces at registration/wrap time, never mid-call.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("bind: unsupported host type %s", e.Type)
}

// Push places one value of a supported host type on top of the stack.
//
// Rules, in order: nil; Value variants; Marshaler; thread handles; the Go
// scalar kinds (bool, all int/uint widths, float32/64, string, []byte);
// enum types via encoding.TextMarshaler; native functions; one level of
// pointer indirection (nil pointer pushes nil, otherwise the pointee's
// rule applies). Any other type panics with UnsupportedTypeError.
func Push(l *engine.State, v any) {
	switch x := v.(type) {
	case nil:
		l.PushNil()
		return
	case Value:
		x.pushOn(l)
		return
	case Marshaler:
		x.MarshalStack(l)
		return
	case *engine.State:
		pushThread(l, x)
		return
	case engine.GoFunction:
		l.PushGoFunction(x)
		return
	case bool:
		l.PushBoolean(x)
		return
	case int:
		l.PushNumber(float64(x))
		return
	case int8:
		l.PushNumber(float64(x))
		return
	case int16:
		l.PushNumber(float64(x))
		return
	case int32:
		l.PushNumber(float64(x))
		return
	case int64:
		l.PushNumber(float64(x))
		return
	case uint:
		l.PushNumber(float64(x))
		return
	case uint8:
		l.PushNumber(float64(x))
		return
	case uint16:
		l.PushNumber(float64(x))
		return
	case uint32:
		l.PushNumber(float64(x))
		return
	case uint64:
		l.PushNumber(float64(x))
		return
	case float32:
		l.PushNumber(float64(x))
		return
	case float64:
		l.PushNumber(x)
		return
	case string:
		l.PushString(x)
		return
	case []byte:
		l.PushBytes(x)
		return
	}
	if tm, ok := v.(encoding.TextMarshaler); ok {
		pushText(l, tm)
		return
	}
	pushReflect(l, reflect.ValueOf(v))
}

func pushText(l *engine.State, tm encoding.TextMarshaler) {
	b, err := tm.MarshalText()
	if err != nil {
		l.RaiseError("cannot marshal %T: %s", tm, err)
	}
	l.PushBytes(b)
}

// pushReflect handles named scalar types and single-level pointers.
func pushReflect(l *engine.State, rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Bool:
		l.PushBoolean(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		l.PushNumber(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		l.PushNumber(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		l.PushNumber(rv.Float())
	case reflect.String:
		l.PushString(rv.String())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			l.PushBytes(rv.Bytes())
			return
		}
		panic(&UnsupportedTypeError{Type: rv.Type()})
	case reflect.Pointer:
		if rv.Type().Elem().Kind() == reflect.Pointer {
			panic(&UnsupportedTypeError{Type: rv.Type()})
		}
		if rv.IsNil() {
			l.PushNil()
			return
		}
		Push(l, rv.Elem().Interface())
	case reflect.Interface:
		if rv.IsNil() {
			l.PushNil()
			return
		}
		Push(l, rv.Elem().Interface())
	default:
		panic(&UnsupportedTypeError{Type: rv.Type()})
	}
}

// pushSupported reports whether values of type t can go through Push,
// for registration-time rejection in Func.
func pushSupported(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Implements(valueType) || t.Implements(marshalerType) || t.Implements(textMarshalerType) {
		return true
	}
	if t == stateType || t == goFuncType {
		return true
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String, reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	case reflect.Slice:
		return t.Elem().Kind() == reflect.Uint8
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Pointer {
			return false
		}
		return pushSupported(t.Elem())
	case reflect.Interface:
		return true
	}
	return false
}

var (
	valueType         = reflect.TypeOf((*Value)(nil)).Elem()
	marshalerType     = reflect.TypeOf((*Marshaler)(nil)).Elem()
	unmarshalerType   = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshType   = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	stateType         = reflect.TypeOf((*engine.State)(nil))
	goFuncType        = reflect.TypeOf(engine.GoFunction(nil))
	errorType         = reflect.TypeOf((*error)(nil)).Elem()
)
