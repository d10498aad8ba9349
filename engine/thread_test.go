package engine

import "testing"

func TestCoroutineYieldLifecycle(t *testing.T) {
	l := NewState()
	co := l.NewThread()

	co.PushGoFunction(func(l *State) int {
		n := l.Yield(0)
		if n != 0 {
			t.Errorf("resume handed %d values, want 0", n)
		}
		l.PushString("done")
		return 1
	})

	if st := co.Resume(0); st != StatusYield {
		t.Fatalf("first resume status = %v, want yield", st)
	}
	if co.Top() != 0 {
		t.Errorf("thread stack depth after suspension = %d, want 0", co.Top())
	}
	if !co.Resumable() {
		t.Fatal("suspended coroutine should be resumable")
	}

	if st := co.Resume(0); st != StatusOK {
		t.Fatalf("second resume status = %v, want ok", st)
	}
	if s, _ := co.ToString(-1); s != "done" {
		t.Errorf("final result = %q, want %q", s, "done")
	}
	if co.Resumable() {
		t.Error("finished coroutine should not be resumable")
	}
}

func TestCoroutineYieldValues(t *testing.T) {
	l := NewState()
	co := l.NewThread()

	co.PushGoFunction(func(l *State) int {
		l.PushNumber(10)
		l.PushNumber(20)
		n := l.Yield(2)
		// One value handed back by the second resume.
		if n != 1 {
			t.Errorf("resume handed %d values, want 1", n)
		}
		f, _ := l.ToNumber(-1)
		l.PushNumber(f * 2)
		return 1
	})

	if st := co.Resume(0); st != StatusYield {
		t.Fatalf("status = %v, want yield", st)
	}
	if co.Top() != 2 {
		t.Fatalf("yielded %d values, want 2", co.Top())
	}
	a, _ := co.ToNumber(1)
	b, _ := co.ToNumber(2)
	if a != 10 || b != 20 {
		t.Errorf("yield values = %v, %v; want 10, 20", a, b)
	}
	co.Pop(2)

	co.PushNumber(7)
	if st := co.Resume(1); st != StatusOK {
		t.Fatalf("status = %v, want ok", st)
	}
	if f, _ := co.ToNumber(-1); f != 14 {
		t.Errorf("result = %v, want 14", f)
	}
}

func TestYieldWithArgumentsOnFrame(t *testing.T) {
	l := NewState()
	co := l.NewThread()

	co.PushGoFunction(func(l *State) int {
		// The argument stays below; only the pushed value is yielded.
		l.PushNumber(99)
		l.Yield(1)
		return 0
	})
	co.PushNumber(7)

	if st := co.Resume(1); st != StatusYield {
		t.Fatalf("status = %v, want yield", st)
	}
	if co.Top() != 1 {
		t.Fatalf("yielded %d values, want 1", co.Top())
	}
	if f, _ := co.ToNumber(-1); f != 99 {
		t.Errorf("yield value = %v, want 99", f)
	}
}

func TestCoroutineErrorKillsThread(t *testing.T) {
	l := NewState()
	co := l.NewThread()
	co.PushGoFunction(func(l *State) int {
		l.RaiseError("dead inside")
		return 0
	})

	if st := co.Resume(0); st != StatusRuntimeError {
		t.Fatalf("status = %v, want runtime error", st)
	}
	if msg, _ := co.ToString(-1); msg != "dead inside" {
		t.Errorf("payload = %q", msg)
	}
	// A dead coroutine refuses further resumes.
	if st := co.Resume(0); st != StatusRuntimeError {
		t.Fatalf("dead resume status = %v, want runtime error", st)
	}
	if msg, _ := co.ToString(-1); msg != "cannot resume dead coroutine" {
		t.Errorf("dead resume payload = %q", msg)
	}
}

func TestResumeMainThreadFails(t *testing.T) {
	l := NewState()
	if st := l.Resume(0); st != StatusRuntimeError {
		t.Fatalf("status = %v, want runtime error", st)
	}
	if msg, _ := l.ToString(-1); msg != "cannot resume the main thread" {
		t.Errorf("payload = %q", msg)
	}
}

func TestYieldOutsideCoroutine(t *testing.T) {
	l := NewState()
	l.PushGoFunction(func(l *State) int {
		l.Yield(0)
		return 0
	})
	if st := l.ProtectedCall(0, 0, 0); st != StatusRuntimeError {
		t.Fatalf("status = %v, want runtime error", st)
	}
	msg, _ := l.ToString(-1)
	if msg != "attempt to yield from outside a coroutine" {
		t.Errorf("payload = %q", msg)
	}
}

func TestXMovePreservesOrder(t *testing.T) {
	l := NewState()
	co := l.NewThread()
	l.Pop(1) // drop the thread handle; co stays alive on the Go side

	l.PushString("first")
	l.PushString("second")
	l.XMove(co, 2)

	if l.Top() != 0 {
		t.Errorf("source depth = %d, want 0", l.Top())
	}
	if co.Top() != 2 {
		t.Fatalf("target depth = %d, want 2", co.Top())
	}
	a, _ := co.ToString(1)
	b, _ := co.ToString(2)
	if a != "first" || b != "second" {
		t.Errorf("moved values = %q, %q", a, b)
	}
}

func TestThreadsShareGlobals(t *testing.T) {
	l := NewState()
	co := l.NewThread()

	l.PushNumber(5)
	l.SetGlobal("shared")

	co.Global("shared")
	if f, _ := co.ToNumber(-1); f != 5 {
		t.Errorf("coroutine view of global = %v, want 5", f)
	}
}
