package bind

import (
	"encoding"
	"reflect"

	"github.com/chazu/corvel/engine"
)

// To reads, without removing, the slot at idx coerced to T, reporting
// false when the slot's dynamic kind is incompatible. To never unwinds;
// native-function bodies that want enforcement use Check instead.
//
// Coercions follow the VM's own rules: numeric targets accept number
// slots and number-shaped strings, string targets accept number slots
// (rewriting the slot in place, see engine.ToString), booleans are
// strict-kind, enum types implementing encoding.TextUnmarshaler match
// string slots by name, and a pointer target turns a nil slot into a nil
// pointer.
func To[T any](l *engine.State, idx int) (T, bool) {
	var zero T
	rv, ok := toReflect(l, idx, reflect.TypeOf(&zero).Elem())
	if !ok {
		return zero, false
	}
	return rv.Interface().(T), true
}

// Pop is To at the top slot followed by a pop of exactly one slot. The
// slot is removed only when extraction succeeds, so a miss leaves the
// stack unchanged.
func Pop[T any](l *engine.State) (T, bool) {
	v, ok := To[T](l, -1)
	if ok {
		l.Pop(1)
	}
	return v, ok
}

// toReflect is the kind dispatch shared by To and the Check family.
func toReflect(l *engine.State, idx int, t reflect.Type) (reflect.Value, bool) {
	switch t {
	case valueType:
		v := ToValue(l, idx)
		if v == nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(v), true
	case stateType:
		co := l.ToThread(idx)
		if co == nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(co), true
	case tableRefType:
		if l.TypeOf(idx) != engine.TypeTable {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(TableRef{L: l, Index: l.AbsIndex(idx)}), true
	case funcRefType:
		if l.TypeOf(idx) != engine.TypeFunction {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(FuncRef{L: l, Index: l.AbsIndex(idx)}), true
	case userDataRefType:
		if l.TypeOf(idx) != engine.TypeUserData {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(UserDataRef{L: l, Index: l.AbsIndex(idx)}), true
	case threadRefType:
		co := l.ToThread(idx)
		if co == nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(ThreadRef{Thread: co}), true
	case lightPtrType:
		p, ok := l.ToLightUserData(idx)
		if !ok {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(LightPointer(p)), true
	}

	if pt := reflect.PointerTo(t); pt.Implements(unmarshalerType) {
		pv := reflect.New(t)
		if !pv.Interface().(Unmarshaler).UnmarshalStack(l, idx) {
			return reflect.Value{}, false
		}
		return pv.Elem(), true
	}
	if pt := reflect.PointerTo(t); pt.Implements(textUnmarshType) {
		// Enum rule: exact name match against a string-kind slot.
		if l.TypeOf(idx) != engine.TypeString {
			return reflect.Value{}, false
		}
		s, _ := l.ToString(idx)
		pv := reflect.New(t)
		if err := pv.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return reflect.Value{}, false
		}
		return pv.Elem(), true
	}

	switch t.Kind() {
	case reflect.Bool:
		// Strict kind check; the truthy rule belongs to ToValue and
		// engine.ToBoolean.
		if l.TypeOf(idx) != engine.TypeBoolean {
			return reflect.Value{}, false
		}
		rv := reflect.New(t).Elem()
		rv.SetBool(l.ToBoolean(idx))
		return rv, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, ok := l.ToNumber(idx)
		if !ok {
			return reflect.Value{}, false
		}
		rv := reflect.New(t).Elem()
		rv.SetInt(int64(f))
		return rv, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f, ok := l.ToNumber(idx)
		if !ok {
			return reflect.Value{}, false
		}
		rv := reflect.New(t).Elem()
		rv.SetUint(uint64(f))
		return rv, true
	case reflect.Float32, reflect.Float64:
		f, ok := l.ToNumber(idx)
		if !ok {
			return reflect.Value{}, false
		}
		rv := reflect.New(t).Elem()
		rv.SetFloat(f)
		return rv, true
	case reflect.String:
		s, ok := l.ToString(idx)
		if !ok {
			return reflect.Value{}, false
		}
		rv := reflect.New(t).Elem()
		rv.SetString(s)
		return rv, true
	case reflect.Slice:
		if t.Elem().Kind() != reflect.Uint8 {
			break
		}
		s, ok := l.ToString(idx)
		if !ok {
			return reflect.Value{}, false
		}
		rv := reflect.New(t).Elem()
		rv.SetBytes([]byte(s))
		return rv, true
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Pointer {
			break
		}
		if l.IsNil(idx) {
			return reflect.Zero(t), true
		}
		if ud, ok := userDataAs(l, idx, t); ok {
			return ud, true
		}
		ev, ok := toReflect(l, idx, t.Elem())
		if !ok {
			return reflect.Value{}, false
		}
		pv := reflect.New(t.Elem())
		pv.Elem().Set(ev)
		return pv, true
	case reflect.Interface:
		if t.NumMethod() == 0 {
			v := ToValue(l, idx)
			if v == nil {
				return reflect.Value{}, false
			}
			rv := reflect.New(t).Elem()
			rv.Set(reflect.ValueOf(v))
			return rv, true
		}
		if ud, ok := userDataAs(l, idx, t); ok {
			return ud, true
		}
	}

	// Last resort for opaque host types: a userdata slot whose payload is
	// assignable to the target.
	if ud, ok := userDataAs(l, idx, t); ok {
		return ud, true
	}
	return reflect.Value{}, false
}

// userDataAs extracts a userdata slot whose host payload is assignable to
// the target type.
func userDataAs(l *engine.State, idx int, t reflect.Type) (reflect.Value, bool) {
	if l.TypeOf(idx) != engine.TypeUserData {
		return reflect.Value{}, false
	}
	data := l.ToUserData(idx)
	if data == nil {
		return reflect.Value{}, false
	}
	dv := reflect.ValueOf(data)
	if !dv.Type().AssignableTo(t) {
		return reflect.Value{}, false
	}
	rv := reflect.New(t).Elem()
	rv.Set(dv)
	return rv, true
}

var (
	tableRefType    = reflect.TypeOf(TableRef{})
	funcRefType     = reflect.TypeOf(FuncRef{})
	userDataRefType = reflect.TypeOf(UserDataRef{})
	threadRefType   = reflect.TypeOf(ThreadRef{})
	lightPtrType    = reflect.TypeOf(LightPointer(0))
)
