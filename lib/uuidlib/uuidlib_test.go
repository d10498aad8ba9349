package uuidlib

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/chazu/corvel/bind"
	"github.com/chazu/corvel/engine"
)

func TestNew(t *testing.T) {
	l := engine.NewState()
	Open(l)

	l.Global("uuid")
	l.Field(-1, "new")
	if err := bind.ProtectedCall(l, 0, 1); err != nil {
		t.Fatalf("uuid.new: %v", err)
	}
	s, _ := l.ToString(-1)
	if _, err := uuid.Parse(s); err != nil {
		t.Errorf("uuid.new returned %q: %v", s, err)
	}
}

func TestParseNormalizes(t *testing.T) {
	l := engine.NewState()
	Open(l)

	l.Global("uuid")
	l.Field(-1, "parse")
	l.PushString("URN:UUID:6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	if err := bind.ProtectedCall(l, 1, 1); err != nil {
		t.Fatalf("uuid.parse: %v", err)
	}
	if s, _ := l.ToString(-1); s != "6ba7b810-9dad-11d1-80b4-00c04fd430c8" {
		t.Errorf("normalized = %q", s)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	l := engine.NewState()
	Open(l)

	l.Global("uuid")
	l.Field(-1, "parse")
	l.PushString("not-a-uuid")
	err := bind.ProtectedCall(l, 1, 1)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), `uuid: parse "not-a-uuid"`) {
		t.Errorf("message = %q", err.Error())
	}
}
