package engine

// coState carries the resume/yield handshake of one coroutine. The body
// runs on its own goroutine, but execution is strictly alternating: the
// resumer blocks until the coroutine yields or finishes, the coroutine
// blocks until resumed. At no point do both sides run concurrently.
type coState struct {
	resume  chan int    // resumer -> body: count of resume values
	outcome chan Status // body -> resumer: yield or final status
	started bool
}

// NewThread creates a coroutine sharing l's global environment but owning
// an independent stack. The thread handle is pushed onto l's stack and
// returned.
func (l *State) NewThread() *State {
	co := &State{
		g:      l.g,
		frames: []frame{{base: 0, fnName: "?"}},
		co: &coState{
			resume:  make(chan int),
			outcome: make(chan Status),
		},
	}
	l.charge(tableCost)
	l.push(co)
	return co
}

// IsMain reports whether l is the VM instance's main thread.
func (l *State) IsMain() bool { return l.co == nil }

// Status returns the thread's last observed status: StatusOK for a thread
// that has not run or has finished normally, StatusYield while suspended,
// an error status once dead.
func (l *State) Status() Status { return l.status }

// Resumable reports whether the thread may be resumed: it never started,
// or it is suspended in a yield.
func (co *State) Resumable() bool {
	if co.co == nil {
		return false
	}
	return !co.co.started || co.status == StatusYield
}

// Resume starts or continues the coroutine. Before the first resume the
// caller must have pushed the body function and nargs arguments onto co's
// stack; on later resumes the nargs values are handed to the pending
// Yield. Returns StatusYield when co suspended, StatusOK when its body
// returned, or an error status (the payload is then on co's stack, and co
// must not be resumed again).
func (co *State) Resume(nargs int) Status {
	if co.co == nil {
		co.push("cannot resume the main thread")
		return StatusRuntimeError
	}
	if !co.Resumable() {
		co.push("cannot resume dead coroutine")
		return StatusRuntimeError
	}
	if !co.co.started {
		co.co.started = true
		go func() {
			st := co.ProtectedCall(nargs, MultRet, 0)
			co.status = st
			co.co.outcome <- st
		}()
	} else {
		co.status = StatusOK
		co.co.resume <- nargs
	}
	st := <-co.co.outcome
	co.status = st
	return st
}

// Yield suspends the running coroutine, leaving the top nresults slots on
// its stack as the yield values. It blocks until the next Resume and then
// returns the count of values that resume pushed. Yielding from the main
// thread is a runtime error.
func (l *State) Yield(nresults int) int {
	if l.co == nil {
		l.RaiseError("attempt to yield from outside a coroutine")
	}
	if nresults < 0 {
		nresults = 0
	}
	// Slide the yield values down over the frame's arguments so the
	// resumer sees exactly the top nresults slots.
	if l.Top() > nresults {
		base := l.curBase()
		copy(l.stack[base:base+nresults], l.stack[len(l.stack)-nresults:])
	}
	l.SetTop(nresults)
	l.co.outcome <- StatusYield
	return <-l.co.resume
}

// XMove pops n values from l and pushes them onto to, preserving order.
// Both stacks must be externally serialized around the transfer.
func (l *State) XMove(to *State, n int) {
	if l == to || n <= 0 {
		return
	}
	if l.Top() < n {
		l.RaiseError("not enough values to move")
	}
	moved := make([]any, n)
	copy(moved, l.stack[len(l.stack)-n:])
	l.stack = l.stack[:len(l.stack)-n]
	for _, v := range moved {
		to.push(v)
	}
}
