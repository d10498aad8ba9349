package bind

import (
	"reflect"
	"sync"

	"github.com/chazu/corvel/engine"
)

var typeTags sync.Map // reflect.Type -> tname

// RegisterType installs a metatable in the registry under tname, the type
// tag for userdata of that host type. The metatable is left on the stack
// either way; the return value reports whether it was newly created, so
// callers can populate a fresh one with methods.
func RegisterType(l *engine.State, tname string) bool {
	l.Field(engine.RegistryIndex, tname)
	if !l.IsNil(-1) {
		return false
	}
	l.Pop(1)
	l.NewTable()
	l.PushValueAt(-1)
	l.SetField(engine.RegistryIndex, tname)
	return true
}

// RegisterTypeFor is RegisterType plus a host-type association: parameters
// of type T validated through Check or Func are matched against tname's
// metatable and report tname on mismatch.
func RegisterTypeFor[T any](l *engine.State, tname string) bool {
	typeTags.LoadOrStore(reflect.TypeOf((*T)(nil)).Elem(), tname)
	return RegisterType(l, tname)
}

// typeTag reports the tname associated with a host type, if any.
func typeTag(t reflect.Type) (string, bool) {
	v, ok := typeTags.Load(t)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// NewUserData allocates a userdata slot holding data, tagged with the
// registered type tname. Using an unregistered name is a runtime error.
func NewUserData(l *engine.State, tname string, data any) {
	l.NewUserData(data)
	l.Field(engine.RegistryIndex, tname)
	if l.IsNil(-1) {
		l.Pop(2)
		l.RaiseError("unregistered userdata type '%s'", tname)
	}
	l.SetMetaTable(-2)
}

// TestUserData returns the host payload of the userdata at idx if its
// type tag matches tname, query-style: a wrong kind or a different tag
// reports false instead of raising.
func TestUserData(l *engine.State, idx int, tname string) (any, bool) {
	u := l.ToUserDataBlock(idx)
	if u == nil {
		return nil, false
	}
	idx = l.AbsIndex(idx)
	if !l.MetaTable(idx) {
		return nil, false
	}
	l.Field(engine.RegistryIndex, tname)
	same := l.RawEqual(-1, -2)
	l.Pop(2)
	if !same {
		return nil, false
	}
	return u.Data, true
}

// CheckUserData is the assertion form of TestUserData: it validates
// argument arg as a tname-tagged userdata whose payload is a T, raising
// the standard argument error otherwise.
func CheckUserData[T any](l *engine.State, arg int, tname string) T {
	data, ok := TestUserData(l, arg, tname)
	if !ok {
		typeError(l, arg, tname)
	}
	v, ok := data.(T)
	if !ok {
		typeError(l, arg, tname)
	}
	return v
}
