package bind

import (
	"github.com/chazu/corvel/engine"
)

// LoadString loads chunk source under the given name, leaving the loaded
// function on the stack on success. On failure the pushed error message
// is popped into the returned error, classified as ErrSyntax or
// ErrOutOfMemory.
func LoadString(l *engine.State, src, name string) error {
	return loadResult(l, l.LoadString(src, name))
}

// LoadFile is LoadString for a file path; an open or read failure
// classifies as ErrFile.
func LoadFile(l *engine.State, path string) error {
	return loadResult(l, l.LoadFile(path))
}

func loadResult(l *engine.State, st engine.Status) error {
	if st == engine.StatusOK {
		return nil
	}
	msg := payloadMessage(l)
	l.Pop(1)
	return &CallError{Status: st, Message: msg}
}

// DoString loads and runs chunk source in one step. All chunk results are
// left on the stack; on failure the error payload is left on the stack
// per the protected-call contract.
func DoString(l *engine.State, src, name string) error {
	if err := LoadString(l, src, name); err != nil {
		return err
	}
	return ProtectedCall(l, 0, engine.MultRet)
}

// DoFile loads and runs a chunk file in one step.
func DoFile(l *engine.State, path string) error {
	if err := LoadFile(l, path); err != nil {
		return err
	}
	return ProtectedCall(l, 0, engine.MultRet)
}
