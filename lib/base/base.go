// Package base installs the baseline global functions every Corvel host
// is expected to open: printing, type inspection, conversions, assertions,
// and protected execution.
package base

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chazu/corvel/bind"
	"github.com/chazu/corvel/engine"
)

// Writer receives print output. Overridable for tests and embedding
// hosts.
var Writer io.Writer = os.Stdout

// Open installs the base globals on l.
func Open(l *engine.State) {
	l.Register("print", printFn)
	l.Register("type", typeFn)
	l.Register("tostring", tostringFn)
	l.Register("tonumber", tonumberFn)
	l.Register("assert", assertFn)
	l.Register("error", errorFn)
	l.Register("pcall", pcallFn)
}

func printFn(l *engine.State) int {
	parts := make([]string, l.Top())
	for i := 1; i <= l.Top(); i++ {
		parts[i-1] = display(l, i)
	}
	fmt.Fprintln(Writer, strings.Join(parts, "\t"))
	return 0
}

func typeFn(l *engine.State) int {
	bind.CheckAny(l, 1)
	l.PushString(l.TypeOf(1).String())
	return 1
}

func tostringFn(l *engine.State) int {
	bind.CheckAny(l, 1)
	l.PushString(display(l, 1))
	return 1
}

func tonumberFn(l *engine.State) int {
	bind.CheckAny(l, 1)
	if f, ok := l.ToNumber(1); ok {
		l.PushNumber(f)
	} else {
		l.PushNil()
	}
	return 1
}

func assertFn(l *engine.State) int {
	if !l.ToBoolean(1) {
		msg := bind.OptString(l, 2, "assertion failed!")
		l.RaiseError("%s", msg)
	}
	return l.Top()
}

func errorFn(l *engine.State) int {
	bind.CheckAny(l, 1)
	l.PushValueAt(1)
	l.Error()
	return 0
}

// pcall runs its first argument with the remaining arguments under a
// protected call, returning a success boolean followed by the results or
// the error payload.
func pcallFn(l *engine.State) int {
	bind.CheckAny(l, 1)
	st := l.ProtectedCall(l.Top()-1, engine.MultRet, 0)
	l.PushBoolean(st == engine.StatusOK)
	l.Insert(1)
	return l.Top()
}

// display renders a value for print and tostring without mutating the
// slot it reads.
func display(l *engine.State, idx int) string {
	switch v := bind.ToValue(l, idx).(type) {
	case bind.Nil:
		return "nil"
	case bind.Boolean:
		if v {
			return "true"
		}
		return "false"
	case bind.Number:
		l.PushValueAt(idx)
		s, _ := l.ToString(-1)
		l.Pop(1)
		return s
	case bind.String:
		return string(v)
	case bind.TableRef:
		return fmt.Sprintf("table: %d", v.Index)
	case bind.FuncRef:
		return fmt.Sprintf("function: %s", v.Name())
	case bind.UserDataRef:
		return "userdata"
	case bind.ThreadRef:
		return "thread"
	case bind.LightPointer:
		return fmt.Sprintf("userdata: %#x", uintptr(v))
	}
	return "?"
}
