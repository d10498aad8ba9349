package engine

// RegistryIndex is a pseudo-index addressing the registry, a table shared
// by all threads of one VM instance and reserved for host code.
const RegistryIndex = -1001000

// MultRet requests all results from Call and ProtectedCall.
const MultRet = -1

// Coarse allocation costs, in budget units, for the memory accounting of
// Config.MemLimit. The budget is a high-water mark: it grows with every
// allocation the engine performs and is not refunded, which keeps the
// out-of-memory path deterministic for a given workload.
const (
	slotCost  = 16
	tableCost = 64
	entryCost = 32
	udataCost = 48
)

// Config carries VM-wide limits. The zero value means no limits.
type Config struct {
	// MemLimit bounds the allocation budget in units (see the cost
	// constants). Exceeding it raises through the non-local-exit channel
	// with StatusMemoryError.
	MemLimit int64
	// StackLimit bounds the slot count of any one thread's stack.
	StackLimit int
}

// Hook observes call events when installed via SetHook. event is "call" or
// "return"; name is the callee's registered name, "?" when unknown.
type Hook func(event, name string)

// global is the state shared by every thread of one VM instance.
type global struct {
	cfg      Config
	registry *Table
	globals  *Table
	mem      int64
	hook     Hook
	main     *State
}

// frame is one native or chunk activation. base is the absolute stack
// position of the frame's first argument slot.
type frame struct {
	base   int
	fnName string
}

// State is a handle to one thread of execution: its value stack plus the
// VM-shared environment. A State is not safe for concurrent use; see the
// package documentation.
type State struct {
	g      *global
	stack  []any
	frames []frame

	co     *coState // nil for the main thread
	status Status
}

// NewState creates a VM instance with default limits and returns its main
// thread.
func NewState() *State {
	return NewStateWith(Config{})
}

// NewStateWith creates a VM instance with the given limits.
func NewStateWith(cfg Config) *State {
	g := &global{
		cfg:      cfg,
		registry: newTable(),
		globals:  newTable(),
	}
	l := &State{
		g:      g,
		frames: []frame{{base: 0, fnName: "?"}},
	}
	g.main = l
	g.registry.set("_G", g.globals)
	return l
}

// SetHook installs (or, with nil, removes) the call hook for the whole VM
// instance.
func (l *State) SetHook(h Hook) {
	l.g.hook = h
}

// ---------------------------------------------------------------------------
// Index resolution
// ---------------------------------------------------------------------------

// curBase returns the absolute stack position of the running frame's base.
func (l *State) curBase() int {
	return l.frames[len(l.frames)-1].base
}

// Top returns the index of the topmost slot of the current frame; 0 means
// the frame's stack is empty.
func (l *State) Top() int {
	return len(l.stack) - l.curBase()
}

// AbsIndex converts a possibly-relative index into an absolute one that
// survives subsequent pushes and pops. Pseudo-indices pass through.
func (l *State) AbsIndex(idx int) int {
	if idx > 0 || idx == RegistryIndex {
		return idx
	}
	return l.Top() + idx + 1
}

// slotPos resolves idx to an absolute position in the backing stack, or -1
// when the index addresses no slot.
func (l *State) slotPos(idx int) int {
	base := l.curBase()
	var pos int
	if idx > 0 {
		pos = base + idx - 1
	} else if idx < 0 && idx != RegistryIndex {
		pos = len(l.stack) + idx
	} else {
		return -1
	}
	if pos < base || pos >= len(l.stack) {
		return -1
	}
	return pos
}

// at returns the value at idx, nil for empty or out-of-range slots.
func (l *State) at(idx int) any {
	pos := l.slotPos(idx)
	if pos < 0 {
		return nil
	}
	return l.stack[pos]
}

// setAt overwrites the slot at idx.
func (l *State) setAt(idx int, v any) {
	pos := l.slotPos(idx)
	if pos >= 0 {
		l.stack[pos] = v
	}
}

// TypeOf returns the dynamic kind of the slot at idx, TypeNone if the
// index addresses no slot.
func (l *State) TypeOf(idx int) Type {
	if idx == RegistryIndex {
		return TypeTable
	}
	if l.slotPos(idx) < 0 {
		return TypeNone
	}
	return typeOf(l.at(idx))
}

// IsNone reports whether idx addresses no slot.
func (l *State) IsNone(idx int) bool { return l.TypeOf(idx) == TypeNone }

// IsNil reports whether the slot at idx holds nil.
func (l *State) IsNil(idx int) bool { return l.TypeOf(idx) == TypeNil }

// ---------------------------------------------------------------------------
// Raw push primitives
// ---------------------------------------------------------------------------

func (l *State) push(v any) {
	if lim := l.g.cfg.StackLimit; lim > 0 && len(l.stack) >= lim {
		l.raiseStatus(StatusMemoryError, "stack overflow")
	}
	l.charge(slotCost)
	l.stack = append(l.stack, v)
}

// charge debits the allocation budget, raising out-of-memory when the
// budget is exhausted.
func (l *State) charge(n int64) {
	if l.g.cfg.MemLimit == 0 {
		return
	}
	l.g.mem += n
	if l.g.mem > l.g.cfg.MemLimit {
		l.raiseStatus(StatusMemoryError, "not enough memory")
	}
}

// PushNil pushes the nil value.
func (l *State) PushNil() { l.push(nil) }

// PushBoolean pushes a boolean.
func (l *State) PushBoolean(b bool) { l.push(b) }

// PushNumber pushes a number.
func (l *State) PushNumber(f float64) { l.push(f) }

// PushString pushes a string. The bytes are copied into VM-owned storage
// by Go string semantics; the caller may reuse its buffer.
func (l *State) PushString(s string) {
	l.charge(int64(len(s)))
	l.push(s)
}

// PushBytes pushes a byte slice as a string slot. Embedded NUL bytes are
// preserved.
func (l *State) PushBytes(b []byte) { l.PushString(string(b)) }

// PushLightUserData pushes a raw host pointer value.
func (l *State) PushLightUserData(p uintptr) { l.push(lightUserData(p)) }

// PushGoFunction pushes a native function with no registered name.
func (l *State) PushGoFunction(fn GoFunction) {
	l.push(&function{name: "?", gofn: fn})
}

// PushNamedGoFunction pushes a native function whose name appears in
// argument-error diagnostics and hook events.
func (l *State) PushNamedGoFunction(name string, fn GoFunction) {
	l.push(&function{name: name, gofn: fn})
}

// PushThread pushes the thread handle co onto l's stack.
func (l *State) PushThread(co *State) { l.push(co) }

// NewUserData allocates a userdata block holding data and pushes it.
func (l *State) NewUserData(data any) *UserData {
	l.charge(udataCost)
	u := &UserData{Data: data}
	l.push(u)
	return u
}

// PushValueAt pushes a copy of the slot at idx.
func (l *State) PushValueAt(idx int) {
	if idx == RegistryIndex {
		l.push(l.g.registry)
		return
	}
	l.push(l.at(idx))
}

// ---------------------------------------------------------------------------
// Stack shape
// ---------------------------------------------------------------------------

// Pop removes the top n slots.
func (l *State) Pop(n int) {
	l.SetTop(l.Top() - n)
}

func (l *State) pop() any {
	if l.Top() < 1 {
		l.RaiseError("stack underflow")
	}
	v := l.stack[len(l.stack)-1]
	l.stack = l.stack[:len(l.stack)-1]
	return v
}

// SetTop grows (with nils) or shrinks the current frame's stack to top
// slots.
func (l *State) SetTop(top int) {
	if top < 0 {
		top = 0
	}
	want := l.curBase() + top
	for len(l.stack) < want {
		l.push(nil)
	}
	l.stack = l.stack[:want]
}

// Remove deletes the slot at idx, shifting slots above it down.
func (l *State) Remove(idx int) {
	pos := l.slotPos(idx)
	if pos < 0 {
		return
	}
	l.stack = append(l.stack[:pos], l.stack[pos+1:]...)
}

// Insert moves the top slot into position idx, shifting slots up.
func (l *State) Insert(idx int) {
	pos := l.slotPos(idx)
	if pos < 0 || l.Top() == 0 {
		return
	}
	v := l.stack[len(l.stack)-1]
	copy(l.stack[pos+1:], l.stack[pos:len(l.stack)-1])
	l.stack[pos] = v
}

// ---------------------------------------------------------------------------
// Raw accessors
// ---------------------------------------------------------------------------

// ToBoolean reads the slot at idx under the VM truth rule: everything but
// nil and false is true.
func (l *State) ToBoolean(idx int) bool {
	return l.slotPos(idx) >= 0 && isTruthy(l.at(idx))
}

// IsBoolean reports whether the slot holds the boolean kind.
func (l *State) IsBoolean(idx int) bool { return l.TypeOf(idx) == TypeBoolean }

// ToNumber reads the slot at idx as a number. String slots holding a
// parseable number convert; everything else reports false.
func (l *State) ToNumber(idx int) (float64, bool) {
	switch v := l.at(idx).(type) {
	case float64:
		return v, true
	case string:
		return stringToNumber(v)
	}
	return 0, false
}

// ToString reads the slot at idx as a string. Number slots convert using
// the VM's native formatting, and the conversion rewrites the slot in
// place: its kind observably changes from number to string.
func (l *State) ToString(idx int) (string, bool) {
	switch v := l.at(idx).(type) {
	case string:
		return v, true
	case float64:
		s := numberToString(v)
		l.setAt(idx, s)
		return s, true
	}
	return "", false
}

// ToLightUserData reads a raw pointer slot.
func (l *State) ToLightUserData(idx int) (uintptr, bool) {
	if p, ok := l.at(idx).(lightUserData); ok {
		return uintptr(p), true
	}
	return 0, false
}

// ToUserData returns the host data of the userdata at idx, or nil.
func (l *State) ToUserData(idx int) any {
	if u, ok := l.at(idx).(*UserData); ok {
		return u.Data
	}
	return nil
}

// ToUserDataBlock returns the userdata block itself, for metatable checks.
func (l *State) ToUserDataBlock(idx int) *UserData {
	u, _ := l.at(idx).(*UserData)
	return u
}

// ToThread returns the thread handle at idx, or nil.
func (l *State) ToThread(idx int) *State {
	t, _ := l.at(idx).(*State)
	return t
}

// RawEqual compares the slots at a and b by primitive identity: scalar
// equality for scalars, referential identity for tables, functions,
// userdata, and threads. No metamethods are consulted.
func (l *State) RawEqual(a, b int) bool {
	if l.slotPos(a) < 0 || l.slotPos(b) < 0 {
		return false
	}
	return l.at(a) == l.at(b)
}

// FunctionName returns the registered name of the function at idx, "?" for
// anonymous functions, "" when the slot is not a function.
func (l *State) FunctionName(idx int) string {
	if f, ok := l.at(idx).(*function); ok {
		return f.name
	}
	return ""
}

// CallerName returns the registered name of the currently running
// function, "?" at the base frame.
func (l *State) CallerName() string {
	return l.frames[len(l.frames)-1].fnName
}

// ---------------------------------------------------------------------------
// Globals
// ---------------------------------------------------------------------------

// Global pushes the global named name.
func (l *State) Global(name string) {
	l.push(l.g.globals.get(name))
}

// SetGlobal pops the top value and stores it as the global named name.
func (l *State) SetGlobal(name string) {
	v := l.pop()
	l.charge(entryCost)
	l.g.globals.set(name, v)
}

// Register binds a named native function as a global.
func (l *State) Register(name string, fn GoFunction) {
	l.PushNamedGoFunction(name, fn)
	l.SetGlobal(name)
}
