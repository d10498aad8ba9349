package bind

import (
	"fmt"
	"math"
	"testing"

	"github.com/chazu/corvel/engine"
)

// season is the enum fixture: string-named via the text capability
// interfaces.
type season int

const (
	winter season = iota
	spring
	summer
	autumn
)

var seasonNames = [...]string{"winter", "spring", "summer", "autumn"}

func (s season) MarshalText() ([]byte, error) {
	if s < winter || s > autumn {
		return nil, fmt.Errorf("unknown season %d", int(s))
	}
	return []byte(seasonNames[s]), nil
}

func (s *season) UnmarshalText(b []byte) error {
	for i, name := range seasonNames {
		if name == string(b) {
			*s = season(i)
			return nil
		}
	}
	return fmt.Errorf("unknown season %q", b)
}

// ---------------------------------------------------------------------------
// Scalar round trips
// ---------------------------------------------------------------------------

func TestNumberRoundTrip(t *testing.T) {
	l := engine.NewState()

	values := []float64{0, 1, -1, 0.5, 1e17, -2.25, math.MaxFloat64}
	for _, v := range values {
		Push(l, v)
		got, ok := Pop[float64](l)
		if !ok || got != v {
			t.Errorf("round trip %v = %v, %v", v, got, ok)
		}
	}
	if l.Top() != 0 {
		t.Errorf("stack depth = %d after balanced round trips", l.Top())
	}
}

func TestIntegerWidths(t *testing.T) {
	l := engine.NewState()

	Push(l, int32(-7))
	if got, ok := Pop[int64](l); !ok || got != -7 {
		t.Errorf("int32->int64 = %v, %v", got, ok)
	}
	Push(l, uint16(65535))
	if got, ok := Pop[uint32](l); !ok || got != 65535 {
		t.Errorf("uint16->uint32 = %v, %v", got, ok)
	}
	Push(l, 3.9)
	if got, ok := Pop[int](l); !ok || got != 3 {
		t.Errorf("3.9 as int = %v, %v; truncation toward zero expected", got, ok)
	}
}

func TestFloatNarrowing(t *testing.T) {
	l := engine.NewState()
	Push(l, float32(1.5))
	if got, ok := Pop[float64](l); !ok || got != 1.5 {
		t.Errorf("float32->float64 = %v, %v", got, ok)
	}
	Push(l, 2.5)
	if got, ok := Pop[float32](l); !ok || got != 2.5 {
		t.Errorf("float64->float32 = %v, %v", got, ok)
	}
}

func TestBooleanStrictKind(t *testing.T) {
	l := engine.NewState()

	Push(l, true)
	if got, ok := Pop[bool](l); !ok || !got {
		t.Errorf("bool round trip = %v, %v", got, ok)
	}

	// Truthiness does not apply to the typed query: a number slot is not
	// a boolean.
	Push(l, 1.0)
	if _, ok := To[bool](l, -1); ok {
		t.Error("To[bool] of a number slot should miss")
	}
	l.Pop(1)
}

func TestStringAndBytes(t *testing.T) {
	l := engine.NewState()

	Push(l, "hello")
	if got, ok := Pop[string](l); !ok || got != "hello" {
		t.Errorf("string round trip = %q, %v", got, ok)
	}

	raw := []byte("a\x00b")
	Push(l, raw)
	got, ok := Pop[[]byte](l)
	if !ok || string(got) != "a\x00b" {
		t.Errorf("bytes round trip = %q, %v", got, ok)
	}
}

func TestNumberReadableAsString(t *testing.T) {
	l := engine.NewState()
	Push(l, 42.0)
	got, ok := To[string](l, -1)
	if !ok || got != "42" {
		t.Fatalf("To[string] of number = %q, %v", got, ok)
	}
	// Content round-trips; the dynamic kind does not (documented slot
	// mutation).
	if l.TypeOf(-1) != engine.TypeString {
		t.Errorf("slot kind = %v, want string", l.TypeOf(-1))
	}
}

func TestStringReadableAsNumber(t *testing.T) {
	l := engine.NewState()
	Push(l, "3.5")
	if got, ok := To[float64](l, -1); !ok || got != 3.5 {
		t.Errorf("To[float64] of %q = %v, %v", "3.5", got, ok)
	}
	l.Pop(1)
	Push(l, "pear")
	if _, ok := To[float64](l, -1); ok {
		t.Error("To[float64] of a non-numeric string should miss")
	}
}

// ---------------------------------------------------------------------------
// Enum coercion
// ---------------------------------------------------------------------------

func TestEnumRoundTrip(t *testing.T) {
	l := engine.NewState()

	Push(l, summer)
	if l.TypeOf(-1) != engine.TypeString {
		t.Fatalf("enum pushed as %v, want string", l.TypeOf(-1))
	}
	if s, _ := l.ToString(-1); s != "summer" {
		t.Fatalf("enum slot = %q, want %q", s, "summer")
	}
	got, ok := Pop[season](l)
	if !ok || got != summer {
		t.Errorf("enum round trip = %v, %v", got, ok)
	}
}

func TestEnumMisses(t *testing.T) {
	l := engine.NewState()

	Push(l, "monsoon")
	if _, ok := To[season](l, -1); ok {
		t.Error("unrelated string should not coerce to the enum")
	}
	l.Pop(1)

	Push(l, 2.0)
	if _, ok := To[season](l, -1); ok {
		t.Error("number slot should not coerce to the enum")
	}
	l.Pop(1)
}

// ---------------------------------------------------------------------------
// Optionals and pointers
// ---------------------------------------------------------------------------

func TestPointerPushDereferences(t *testing.T) {
	l := engine.NewState()
	n := 9.5
	Push(l, &n)
	if l.TypeOf(-1) != engine.TypeNumber {
		t.Fatalf("pushed *float64 as %v, want number", l.TypeOf(-1))
	}
	if got, ok := Pop[float64](l); !ok || got != 9.5 {
		t.Errorf("value = %v, %v", got, ok)
	}
}

func TestNilPointerPushesNil(t *testing.T) {
	l := engine.NewState()
	var p *string
	Push(l, p)
	if l.TypeOf(-1) != engine.TypeNil {
		t.Errorf("nil pointer pushed as %v, want nil", l.TypeOf(-1))
	}
}

func TestOptionalExtraction(t *testing.T) {
	l := engine.NewState()

	l.PushNil()
	p, ok := To[*float64](l, -1)
	if !ok || p != nil {
		t.Errorf("To[*float64] of nil = %v, %v; want nil, true", p, ok)
	}
	l.Pop(1)

	Push(l, 4.0)
	p, ok = To[*float64](l, -1)
	if !ok || p == nil || *p != 4 {
		t.Errorf("To[*float64] of 4 = %v, %v", p, ok)
	}
}

// ---------------------------------------------------------------------------
// Pop discipline
// ---------------------------------------------------------------------------

func TestPopKeepsSlotOnMiss(t *testing.T) {
	l := engine.NewState()
	Push(l, "not a boolean")
	if _, ok := Pop[bool](l); ok {
		t.Fatal("Pop[bool] of a string should miss")
	}
	if l.Top() != 1 {
		t.Errorf("failed pop removed the slot; depth = %d, want 1", l.Top())
	}
}

// ---------------------------------------------------------------------------
// References and the tagged union
// ---------------------------------------------------------------------------

func TestTableRefAbsoluteIndex(t *testing.T) {
	l := engine.NewState()
	l.NewTable()
	ref, ok := To[TableRef](l, -1)
	if !ok {
		t.Fatal("To[TableRef] missed a table slot")
	}

	// Bury the table; the reference must still address it.
	Push(l, 1.0)
	Push(l, 2.0)
	PushValue(l, ref)
	if !l.RawEqual(-1, ref.Index) {
		t.Error("reference no longer addresses its slot after pushes")
	}
}

func TestToValueDispatch(t *testing.T) {
	l := engine.NewState()

	l.PushNil()
	Push(l, false)
	Push(l, 8.0)
	Push(l, "s")
	l.NewTable()
	l.PushGoFunction(func(*engine.State) int { return 0 })
	l.NewThread()

	wants := []engine.Type{
		engine.TypeNil, engine.TypeBoolean, engine.TypeNumber,
		engine.TypeString, engine.TypeTable, engine.TypeFunction,
		engine.TypeThread,
	}
	for i, want := range wants {
		v := ToValue(l, i+1)
		if v == nil || v.Kind() != want {
			t.Errorf("slot %d: ToValue kind = %v, want %v", i+1, v, want)
		}
	}
	if v := ToValue(l, 99); v != nil {
		t.Errorf("ToValue of missing slot = %v, want nil", v)
	}
}

func TestPushValueRedispatch(t *testing.T) {
	l := engine.NewState()
	PushValue(l, Number(6))
	PushValue(l, String("text"))
	PushValue(l, Boolean(true))
	PushValue(l, Nil{})

	if l.TypeOf(1) != engine.TypeNumber || l.TypeOf(2) != engine.TypeString ||
		l.TypeOf(3) != engine.TypeBoolean || l.TypeOf(4) != engine.TypeNil {
		t.Error("PushValue did not re-dispatch on the active variant")
	}
}

func TestToAnyMaterializesValue(t *testing.T) {
	l := engine.NewState()
	Push(l, 3.0)
	v, ok := To[any](l, -1)
	if !ok {
		t.Fatal("To[any] missed")
	}
	n, isNum := v.(Number)
	if !isNum || n != 3 {
		t.Errorf("To[any] = %#v, want Number(3)", v)
	}
}

// ---------------------------------------------------------------------------
// Threads
// ---------------------------------------------------------------------------

func TestPushCurrentThread(t *testing.T) {
	l := engine.NewState()
	Push(l, l)
	if l.TypeOf(-1) != engine.TypeThread {
		t.Fatalf("pushed thread as %v", l.TypeOf(-1))
	}
	co, ok := To[*engine.State](l, -1)
	if !ok || co != l {
		t.Errorf("thread identity lost: %p vs %p", co, l)
	}
}

func TestPushOtherThreadCrossesStacks(t *testing.T) {
	l := engine.NewState()
	co := l.NewThread()
	l.Pop(1)

	Push(l, co)
	ref, ok := To[ThreadRef](l, -1)
	if !ok || ref.Thread != co {
		t.Errorf("cross-thread push lost identity")
	}
}

// ---------------------------------------------------------------------------
// Marshaler capability
// ---------------------------------------------------------------------------

type pair struct{ a, b float64 }

func (p pair) MarshalStack(l *engine.State) {
	l.PushNumber(p.a + p.b)
}

func TestMarshalerCapability(t *testing.T) {
	l := engine.NewState()
	Push(l, pair{a: 2, b: 3})
	if got, ok := Pop[float64](l); !ok || got != 5 {
		t.Errorf("Marshaler push = %v, %v", got, ok)
	}
}

func TestUnsupportedTypePanicsAtPush(t *testing.T) {
	l := engine.NewState()
	defer func() {
		if _, ok := recover().(*UnsupportedTypeError); !ok {
			t.Error("expected UnsupportedTypeError")
		}
	}()
	Push(l, make(chan int))
}
