package engine

import "fmt"

// raisedError is the panic payload of the VM's non-local exit. It is
// caught only by ProtectedCall (or Resume); any other panic passes
// through untouched.
type raisedError struct {
	status Status
	value  any
}

// RaiseError formats a message, pushes nothing, and performs a non-local
// exit carrying the message as a runtime error. It does not return.
func (l *State) RaiseError(format string, args ...any) {
	l.raiseStatus(StatusRuntimeError, fmt.Sprintf(format, args...))
}

func (l *State) raiseStatus(st Status, msg string) {
	panic(&raisedError{status: st, value: msg})
}

// Error pops the top value and performs a non-local exit carrying it as
// the error payload. It does not return.
func (l *State) Error() {
	v := l.pop()
	panic(&raisedError{status: StatusRuntimeError, value: v})
}

// Call invokes the value at -(nargs+1) with the nargs values above it as
// arguments. Function and arguments are consumed; nresults results (all of
// them for MultRet) replace them. Errors propagate by non-local exit.
func (l *State) Call(nargs, nresults int) {
	fnPos := len(l.stack) - nargs - 1
	if fnPos < l.curBase() {
		l.RaiseError("not enough values for call")
	}
	fv, ok := l.stack[fnPos].(*function)
	if !ok {
		l.RaiseError("attempt to call a %s value", typeOf(l.stack[fnPos]))
	}

	if h := l.g.hook; h != nil {
		h("call", fv.name)
	}

	l.frames = append(l.frames, frame{base: fnPos + 1, fnName: fv.name})
	var n int
	if fv.gofn != nil {
		n = fv.gofn(l)
	} else {
		n = l.execChunk(fv.chunk)
	}
	if n < 0 || n > l.Top() {
		n = l.Top()
	}
	// Move the top n results down over the function slot.
	resStart := len(l.stack) - n
	copy(l.stack[fnPos:], l.stack[resStart:])
	l.stack = l.stack[:fnPos+n]
	l.frames = l.frames[:len(l.frames)-1]

	if h := l.g.hook; h != nil {
		h("return", fv.name)
	}

	if nresults != MultRet {
		for n < nresults {
			l.push(nil)
			n++
		}
		if n > nresults {
			l.stack = l.stack[:len(l.stack)-(n-nresults)]
		}
	}
}

// ProtectedCall is Call with a recovery boundary: a non-local exit raised
// anywhere below it is converted into a status code, with the error
// payload left on top of the stack for the caller to pop. msgh, when
// nonzero, indexes a message handler that is applied to the payload of
// runtime errors; an error inside the handler yields StatusHandlerError.
func (l *State) ProtectedCall(nargs, nresults, msgh int) (st Status) {
	fnPos := len(l.stack) - nargs - 1
	if fnPos < l.curBase() {
		// No recovery is armed yet, so report the failure directly
		// instead of raising.
		l.push("not enough values for call")
		return StatusRuntimeError
	}
	var handler *function
	if msgh != 0 {
		handler, _ = l.at(msgh).(*function)
	}
	savedFrames := len(l.frames)

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		re, ok := r.(*raisedError)
		if !ok {
			panic(r)
		}
		l.frames = l.frames[:savedFrames]
		l.stack = l.stack[:fnPos]
		st = re.status
		payload := re.value
		if handler != nil && st == StatusRuntimeError {
			payload, st = l.applyHandler(handler, payload)
		}
		l.stack = append(l.stack[:fnPos], payload)
	}()

	l.Call(nargs, nresults)
	return StatusOK
}

// applyHandler runs the message handler over an error payload, itself
// under a recovery boundary.
func (l *State) applyHandler(h *function, payload any) (out any, st Status) {
	out, st = payload, StatusRuntimeError
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*raisedError); !ok {
				panic(r)
			}
			out, st = "error in error handling", StatusHandlerError
		}
	}()
	l.push(h)
	l.push(payload)
	l.Call(1, 1)
	out = l.pop()
	return out, st
}
