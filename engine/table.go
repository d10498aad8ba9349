package engine

// Table is the VM's associative container. Keys are any non-nil scalar
// value; numeric keys use the number representation, so t[1] and t[1.0]
// address the same entry. Insertion order is retained so that host-side
// iteration is stable across calls.
type Table struct {
	m    map[any]any
	keys []any
	meta *Table
}

func newTable() *Table {
	return &Table{m: make(map[any]any)}
}

func (t *Table) get(k any) any {
	if k == nil {
		return nil
	}
	return t.m[k]
}

func (t *Table) set(k, v any) {
	if k == nil {
		return
	}
	_, exists := t.m[k]
	if v == nil {
		if exists {
			delete(t.m, k)
			for i, kk := range t.keys {
				if kk == k {
					t.keys = append(t.keys[:i], t.keys[i+1:]...)
					break
				}
			}
		}
		return
	}
	if !exists {
		t.keys = append(t.keys, k)
	}
	t.m[k] = v
}

// length returns the border length: the count of consecutive integer keys
// starting at 1.
func (t *Table) length() int {
	n := 0
	for {
		if _, ok := t.m[float64(n+1)]; !ok {
			return n
		}
		n++
	}
}

// NewTable creates an empty table and pushes it.
func (l *State) NewTable() {
	l.charge(tableCost)
	l.push(newTable())
}

// Field pushes t[name] where t is the table at idx.
func (l *State) Field(idx int, name string) {
	t := l.tableAt(idx, "index")
	l.push(t.get(name))
}

// SetField pops the top value and stores it as t[name].
func (l *State) SetField(idx int, name string) {
	t := l.tableAt(idx, "index")
	v := l.pop()
	l.charge(entryCost)
	t.set(name, v)
}

// RawGet pops a key and pushes t[key].
func (l *State) RawGet(idx int) {
	t := l.tableAt(idx, "index")
	k := l.pop()
	l.push(t.get(k))
}

// RawSet pops a value then a key and stores t[key] = value.
func (l *State) RawSet(idx int) {
	t := l.tableAt(idx, "index")
	v := l.pop()
	k := l.pop()
	if k == nil {
		l.RaiseError("table index is nil")
	}
	l.charge(entryCost)
	t.set(k, v)
}

// RawGetInt pushes t[n].
func (l *State) RawGetInt(idx, n int) {
	t := l.tableAt(idx, "index")
	l.push(t.get(float64(n)))
}

// RawSetInt pops the top value and stores it as t[n].
func (l *State) RawSetInt(idx, n int) {
	t := l.tableAt(idx, "index")
	v := l.pop()
	l.charge(entryCost)
	t.set(float64(n), v)
}

// RawLength returns the border length of the table at idx, or the byte
// length of a string slot.
func (l *State) RawLength(idx int) int {
	switch v := l.at(idx).(type) {
	case *Table:
		return v.length()
	case string:
		return len(v)
	}
	return 0
}

// Next pops a key and pushes the next key/value pair of the table at idx,
// returning false (pushing nothing) when iteration is exhausted. Push nil
// to start.
func (l *State) Next(idx int) bool {
	t := l.tableAt(idx, "iterate")
	prev := l.pop()
	pos := 0
	if prev != nil {
		pos = -1
		for i, k := range t.keys {
			if k == prev {
				pos = i + 1
				break
			}
		}
		if pos < 0 {
			l.RaiseError("invalid key to 'next'")
		}
	}
	if pos >= len(t.keys) {
		return false
	}
	k := t.keys[pos]
	l.push(k)
	l.push(t.m[k])
	return true
}

// MetaTable pushes the metatable of the value at idx and returns true, or
// pushes nothing and returns false if the value has none.
func (l *State) MetaTable(idx int) bool {
	var mt *Table
	switch v := l.at(idx).(type) {
	case *Table:
		mt = v.meta
	case *UserData:
		mt = v.meta
	}
	if mt == nil {
		return false
	}
	l.push(mt)
	return true
}

// SetMetaTable pops a table (or nil) and installs it as the metatable of
// the table or userdata at idx.
func (l *State) SetMetaTable(idx int) {
	target := l.at(idx)
	m := l.pop()
	var mt *Table
	if m != nil {
		t, ok := m.(*Table)
		if !ok {
			l.RaiseError("metatable must be a table or nil")
		}
		mt = t
	}
	switch v := target.(type) {
	case *Table:
		v.meta = mt
	case *UserData:
		v.meta = mt
	default:
		l.RaiseError("cannot set metatable on a %s value", typeOf(target))
	}
}

// tableAt resolves idx (including RegistryIndex) to a table, raising a
// runtime error if the slot does not hold one.
func (l *State) tableAt(idx int, op string) *Table {
	if idx == RegistryIndex {
		return l.g.registry
	}
	if t, ok := l.at(idx).(*Table); ok {
		return t
	}
	l.RaiseError("attempt to %s a %s value", op, l.TypeOf(idx))
	return nil
}
