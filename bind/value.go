package bind

import "github.com/chazu/corvel/engine"

// Value is the closed tagged union over the engine's value kinds: exactly
// one concrete type per kind. A Value is a snapshot taken at extraction
// time; reference kinds alias live stack slots instead of copying.
type Value interface {
	Kind() engine.Type
	pushOn(l *engine.State)
}

// Nil is the nil value.
type Nil struct{}

// Boolean is the boolean kind.
type Boolean bool

// Number is the number kind.
type Number float64

// String is the string kind. The bytes are borrowed from VM-owned
// storage: they stay valid only until the originating slot is next
// overwritten or collected. Copy before retaining.
type String []byte

// LightPointer is the raw host-pointer kind.
type LightPointer uintptr

// TableRef aliases a table slot. The index is absolute, computed at
// construction, so the reference survives later pushes and pops. The
// referenced value is owned by the VM, not by the reference.
type TableRef struct {
	L     *engine.State
	Index int
}

// FuncRef aliases a function slot; same aliasing rules as TableRef.
type FuncRef struct {
	L     *engine.State
	Index int
}

// UserDataRef aliases a full-userdata slot; same aliasing rules as
// TableRef.
type UserDataRef struct {
	L     *engine.State
	Index int
}

// ThreadRef holds a coroutine handle. Thread handles are stable, so no
// index is needed.
type ThreadRef struct {
	Thread *engine.State
}

func (Nil) Kind() engine.Type          { return engine.TypeNil }
func (Boolean) Kind() engine.Type      { return engine.TypeBoolean }
func (Number) Kind() engine.Type       { return engine.TypeNumber }
func (String) Kind() engine.Type       { return engine.TypeString }
func (LightPointer) Kind() engine.Type { return engine.TypeLightUserData }
func (TableRef) Kind() engine.Type     { return engine.TypeTable }
func (FuncRef) Kind() engine.Type      { return engine.TypeFunction }
func (UserDataRef) Kind() engine.Type  { return engine.TypeUserData }
func (ThreadRef) Kind() engine.Type    { return engine.TypeThread }

func (Nil) pushOn(l *engine.State)            { l.PushNil() }
func (v Boolean) pushOn(l *engine.State)      { l.PushBoolean(bool(v)) }
func (v Number) pushOn(l *engine.State)       { l.PushNumber(float64(v)) }
func (v String) pushOn(l *engine.State)       { l.PushBytes(v) }
func (v LightPointer) pushOn(l *engine.State) { l.PushLightUserData(uintptr(v)) }
func (r TableRef) pushOn(l *engine.State)     { pushRef(l, r.L, r.Index) }
func (r FuncRef) pushOn(l *engine.State)      { pushRef(l, r.L, r.Index) }
func (r UserDataRef) pushOn(l *engine.State)  { pushRef(l, r.L, r.Index) }
func (r ThreadRef) pushOn(l *engine.State)    { pushThread(l, r.Thread) }

// pushRef copies the referenced slot onto l, crossing stacks with a
// single-slot transfer when the reference lives on another thread.
func pushRef(l, src *engine.State, index int) {
	if src == l {
		l.PushValueAt(index)
		return
	}
	src.PushValueAt(index)
	src.XMove(l, 1)
}

// pushThread pushes a thread handle. Pushing the currently executing
// thread needs no transfer; any other handle is pushed on its own stack
// and moved across.
func pushThread(l, co *engine.State) {
	if co == l {
		l.PushThread(co)
		return
	}
	co.PushThread(co)
	co.XMove(l, 1)
}

// Name returns the registered name of the referenced function, "?" when
// anonymous.
func (r FuncRef) Name() string {
	return r.L.FunctionName(r.Index)
}

// Length returns the border length of the referenced table.
func (r TableRef) Length() int {
	return r.L.RawLength(r.Index)
}

// ToValue materializes the slot at idx as a Value, dispatching on its
// dynamic kind. Reference kinds capture the absolute index. Reading a
// slot that holds no value yields nil (the Go nil, not bind.Nil).
func ToValue(l *engine.State, idx int) Value {
	switch l.TypeOf(idx) {
	case engine.TypeNil:
		return Nil{}
	case engine.TypeBoolean:
		return Boolean(l.ToBoolean(idx))
	case engine.TypeNumber:
		n, _ := l.ToNumber(idx)
		return Number(n)
	case engine.TypeString:
		s, _ := l.ToString(idx)
		return String(s)
	case engine.TypeLightUserData:
		p, _ := l.ToLightUserData(idx)
		return LightPointer(p)
	case engine.TypeTable:
		return TableRef{L: l, Index: l.AbsIndex(idx)}
	case engine.TypeFunction:
		return FuncRef{L: l, Index: l.AbsIndex(idx)}
	case engine.TypeUserData:
		return UserDataRef{L: l, Index: l.AbsIndex(idx)}
	case engine.TypeThread:
		return ThreadRef{Thread: l.ToThread(idx)}
	}
	return nil
}

// PushValue pushes a Value, re-dispatching on its active variant.
func PushValue(l *engine.State, v Value) {
	if v == nil {
		l.PushNil()
		return
	}
	v.pushOn(l)
}
