// Package uuidlib installs a small uuid table for chunks that need
// unique identifiers.
package uuidlib

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/chazu/corvel/bind"
	"github.com/chazu/corvel/engine"
)

// Open installs the global 'uuid' table.
func Open(l *engine.State) {
	l.NewTable()
	bind.SetFuncs(l, -1, map[string]any{
		"new":   uuid.NewString,
		"parse": parse,
	})
	l.SetGlobal("uuid")
}

// parse normalizes a uuid string, erroring on malformed input.
func parse(s string) (string, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("uuid: parse %q: %w", s, err)
	}
	return u.String(), nil
}
