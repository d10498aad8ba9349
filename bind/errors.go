package bind

import (
	"errors"
	"fmt"

	"github.com/chazu/corvel/engine"
)

// Sentinels for the engine's distinguished failure statuses. CallError
// and LoadError wrap them, so callers classify with errors.Is.
var (
	ErrRuntime     = errors.New("runtime error")
	ErrOutOfMemory = errors.New("not enough memory")
	ErrHandler     = errors.New("error in error handling")
	ErrSyntax      = errors.New("syntax error")
	ErrFile        = errors.New("file error")
)

// CallError is the host-side image of a failed protected call. Message is
// a copy of the error payload; the payload value itself stays on the
// stack for the caller to pop or inspect.
type CallError struct {
	Status  engine.Status
	Message string
}

func (e *CallError) Error() string {
	return e.Message
}

func (e *CallError) Unwrap() error {
	return statusSentinel(e.Status)
}

func statusSentinel(st engine.Status) error {
	switch st {
	case engine.StatusRuntimeError:
		return ErrRuntime
	case engine.StatusMemoryError:
		return ErrOutOfMemory
	case engine.StatusHandlerError:
		return ErrHandler
	case engine.StatusSyntaxError:
		return ErrSyntax
	case engine.StatusFileError:
		return ErrFile
	}
	return nil
}

// ProtectedCall runs the call at the top of the stack (function plus
// nargs arguments) under the protected-call primitive and maps the
// outcome to a result: nil on success, a *CallError otherwise. On failure
// the error payload remains on the stack.
func ProtectedCall(l *engine.State, nargs, nresults int) error {
	st := l.ProtectedCall(nargs, nresults, 0)
	if st == engine.StatusOK {
		return nil
	}
	return &CallError{Status: st, Message: payloadMessage(l)}
}

// Resume continues (or starts) a coroutine and classifies the outcome.
// StatusYield is a suspension, not an error: the thread may be resumed
// again. An error status means the thread is dead; the payload stays on
// its stack.
func Resume(co *engine.State, nargs int) (engine.Status, error) {
	st := co.Resume(nargs)
	switch st {
	case engine.StatusOK, engine.StatusYield:
		return st, nil
	}
	return st, &CallError{Status: st, Message: payloadMessage(co)}
}

// payloadMessage copies the error payload on top of the stack into a Go
// string without popping it. Non-string payloads are formatted.
func payloadMessage(l *engine.State) string {
	switch l.TypeOf(-1) {
	case engine.TypeString:
		s, _ := l.ToString(-1)
		return s
	case engine.TypeNumber:
		n, _ := l.ToNumber(-1)
		return fmt.Sprintf("%v", n)
	default:
		return fmt.Sprintf("(error object is a %s value)", l.TypeOf(-1))
	}
}
