package bind

import (
	"fmt"
	"reflect"

	"github.com/chazu/corvel/engine"
)

// Func adapts an ordinary Go function into the native calling convention.
// name appears in diagnostics when the adapted function is pushed via
// Register.
//
// The parameter list drives extraction: a leading *engine.State parameter
// binds to the calling context without consuming an argument; every other
// parameter is validated and extracted with the Check rules for its type,
// so the Go signature both documents and enforces the argument contract.
// A *engine.State anywhere but first is an ordinary checked thread
// argument, for functions that receive a different coroutine's context
// than the one they execute on.
//
// Results: a trailing error, when non-nil, is converted to a VM error
// carrying err.Error() and raised; remaining results are pushed in order.
// Unsupported parameter or result types panic here, at wrap time.
func Func(name string, fn any) engine.GoFunction {
	rv := reflect.ValueOf(fn)
	t := rv.Type()
	if t.Kind() != reflect.Func {
		panic(fmt.Sprintf("bind: Func(%q): not a function: %T", name, fn))
	}
	if t.IsVariadic() {
		panic(fmt.Sprintf("bind: Func(%q): variadic functions are not adaptable", name))
	}

	// Parameter plan, derived once.
	type param struct {
		context bool
		check   checkFn
	}
	params := make([]param, t.NumIn())
	for i := range params {
		pt := t.In(i)
		if i == 0 && pt == stateType {
			params[i].context = true
			continue
		}
		ck, err := checkerFor(pt)
		if err != nil {
			panic(fmt.Sprintf("bind: Func(%q): parameter %d: %s", name, i+1, err))
		}
		params[i].check = ck
	}

	nOut := t.NumOut()
	errLast := nOut > 0 && t.Out(nOut-1) == errorType
	nPush := nOut
	if errLast {
		nPush--
	}
	for i := 0; i < nPush; i++ {
		if t.Out(i) == errorType {
			panic(fmt.Sprintf("bind: Func(%q): result %d: error must be the last result", name, i+1))
		}
		if !pushSupported(t.Out(i)) {
			panic(fmt.Sprintf("bind: Func(%q): result %d: unsupported type %s", name, i+1, t.Out(i)))
		}
	}

	return func(l *engine.State) int {
		args := make([]reflect.Value, len(params))
		pos := 0
		for i, p := range params {
			if p.context {
				args[i] = reflect.ValueOf(l)
				continue
			}
			pos++
			args[i] = p.check(l, pos)
		}

		out := rv.Call(args)

		if errLast {
			if ev := out[nOut-1]; !ev.IsNil() {
				l.PushString(ev.Interface().(error).Error())
				l.Error()
			}
			out = out[:nPush]
		}
		for _, o := range out {
			Push(l, o.Interface())
		}
		return len(out)
	}
}

// Register adapts fn with Func and binds it as the global name.
func Register(l *engine.State, name string, fn any) {
	l.PushNamedGoFunction(name, Func(name, fn))
	l.SetGlobal(name)
}

// SetFuncs adapts every function in fns and stores it into the table at
// idx under its map key, the usual shape of a library-opening helper.
func SetFuncs(l *engine.State, idx int, fns map[string]any) {
	idx = l.AbsIndex(idx)
	for name, fn := range fns {
		switch raw := fn.(type) {
		case engine.GoFunction:
			l.PushNamedGoFunction(name, raw)
		case func(l *engine.State) int:
			l.PushNamedGoFunction(name, raw)
		default:
			l.PushNamedGoFunction(name, Func(name, fn))
		}
		l.SetField(idx, name)
	}
}
