package trig

import (
	"context"
	"log/slog"
	"sync"
)

// Reaction is a callback invoked when a guard's predicate rises to
// true. It receives the instance it is bound to and the Change that
// produced the rising edge.
type Reaction func(st *Instance, change Change)

// Dispatch describes one queued reaction invocation. It is the unit
// the Executor schedules and the unit observers see.
type Dispatch struct {
	// Seq is the logical clock stamp assigned at submission.
	// Dispatches execute in strictly increasing Seq order.
	Seq int64

	// Reaction is the qualified reaction name ("model.guard").
	Reaction string

	// Change is the field change that produced the rising edge. For
	// an initial evaluation at Start, Old equals New.
	Change Change
}

type task struct {
	d  Dispatch
	fn Reaction
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithObserver registers a hook invoked synchronously by the dispatch
// loop immediately before each reaction runs. Used for tracing.
func WithObserver(fn func(Dispatch)) ExecutorOption {
	return func(e *Executor) {
		e.observe = fn
	}
}

// WithErrorHook replaces the default panic handler. The hook receives
// the dispatch whose reaction panicked and the recovered value. The
// loop continues with the next queued reaction either way.
func WithErrorHook(fn func(Dispatch, any)) ExecutorOption {
	return func(e *Executor) {
		e.onError = fn
	}
}

// Executor is the serialized, FIFO, single-consumer reaction
// dispatcher.
//
// Reactions are submitted from rising-edge detection (which happens
// inline with Field mutation) and executed later, one at a time, in
// exact submission order, by the single goroutine running Run. A
// reaction that mutates Fields enqueues further work at the tail; it
// is never executed inline.
//
// Thread-safety model:
//   - Submit(), Stop(), Settle(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//
// The queue is unbounded so cascading reactions can enqueue
// arbitrarily many dispatches without blocking the mutation path.
type Executor struct {
	clock   *Clock
	observe func(Dispatch)
	onError func(Dispatch, any)

	mu       sync.Mutex
	tasks    []task
	stopping bool // Stop requested; drain remaining, then close
	closed   bool // fully drained or aborted; Submit rejected
	running  bool // a reaction body is executing
	wake     chan struct{} // signals task availability (buffered, size 1)
	idlers   []chan struct{}
}

// NewExecutor creates an Executor. It does nothing until Run is
// called; submissions before Run simply queue.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		clock: NewClock(),
		tasks: make([]task, 0, 64),
		wake:  make(chan struct{}, 1),
	}
	e.onError = func(d Dispatch, v any) {
		err := &ReactionPanicError{
			Seq:      d.Seq,
			Reaction: d.Reaction,
			Instance: d.Change.Instance.ID(),
			Value:    v,
		}
		slog.Error("reaction panicked", "error", err)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Clock returns the executor's logical clock. Field mutations on
// instances bound to this executor stamp their changes from it.
func (e *Executor) Clock() *Clock {
	return e.clock
}

// Submit appends a reaction invocation to the tail of the queue.
// Never blocks; safe to call from within an executing reaction (the
// new dispatch lands after everything already queued).
//
// Returns ErrStopped once the executor has fully drained after Stop
// (or was aborted by context cancellation). Submissions made while a
// stop is still draining are accepted - they are part of in-flight
// cascades and run before the loop halts.
func (e *Executor) Submit(reaction string, fn Reaction, change Change) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrStopped
	}
	d := Dispatch{Seq: e.clock.Next(), Reaction: reaction, Change: change}
	e.tasks = append(e.tasks, task{d: d, fn: fn})
	e.mu.Unlock()

	// Non-blocking signal; buffer of 1 coalesces multiple submissions.
	select {
	case e.wake <- struct{}{}:
	default:
	}

	slog.Debug("reaction scheduled",
		"seq", d.Seq,
		"reaction", reaction,
		"field", fieldName(change.Field),
	)
	return nil
}

// Run starts the dispatch loop. Blocks until the context is cancelled
// or Stop has been called and the queue has drained.
//
// Must be called from exactly ONE goroutine. All reaction bodies, and
// therefore all steady-state Field mutations, execute on it.
//
// On context cancellation the loop halts immediately without draining
// and returns ctx.Err(). Stop drains first and Run returns nil.
func (e *Executor) Run(ctx context.Context) error {
	slog.Info("executor starting")

	for {
		t, ok := e.next()
		if ok {
			e.invoke(t)
			e.finish()
			continue
		}

		// Queue empty - halt if a stop has been requested.
		if e.closeIfDrained() {
			slog.Info("executor stopped: queue drained")
			return nil
		}

		select {
		case <-ctx.Done():
			e.abort()
			slog.Info("executor stopping: context cancelled")
			return ctx.Err()
		case <-e.wake:
		}
	}
}

// Stop signals the loop to drain remaining queued reactions and then
// halt. Safe from any goroutine, including from inside a reaction.
// Idempotent.
func (e *Executor) Stop() {
	e.mu.Lock()
	if e.stopping {
		e.mu.Unlock()
		return
	}
	e.stopping = true
	// Nothing queued or running: close immediately so Submit rejects
	// even if Run was never started.
	if len(e.tasks) == 0 && !e.running {
		e.closed = true
		e.notifyIdleLocked()
	}
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
	slog.Info("executor stop requested")
}

// Settle blocks until the queue is empty and no reaction is in
// flight, or the context is cancelled. It reports the instant the
// executor went idle; later submissions start a new busy period.
//
// Settle must not be called from inside a reaction: the loop cannot
// go idle while a reaction blocks on it, so the call would deadlock.
func (e *Executor) Settle(ctx context.Context) error {
	e.mu.Lock()
	if e.closed || (len(e.tasks) == 0 && !e.running) {
		e.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	e.idlers = append(e.idlers, ch)
	e.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}

// Pending returns the number of queued, not-yet-executed dispatches.
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

// next pops the head of the queue, marking a reaction as in flight.
func (e *Executor) next() (task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.tasks) == 0 {
		e.notifyIdleLocked()
		return task{}, false
	}

	t := e.tasks[0]
	// Nil out the slot so the dispatch's instance/change pointers do
	// not outlive their execution in the backing array.
	e.tasks[0] = task{}
	if len(e.tasks) == 1 {
		e.tasks = e.tasks[:0]
	} else {
		e.tasks = e.tasks[1:]
	}
	e.running = true
	return t, true
}

// invoke runs one reaction to completion, isolating panics.
func (e *Executor) invoke(t task) {
	if e.observe != nil {
		e.observe(t.d)
	}

	defer func() {
		if r := recover(); r != nil {
			e.onError(t.d, r)
		}
	}()

	slog.Debug("dispatching reaction",
		"seq", t.d.Seq,
		"reaction", t.d.Reaction,
		"instance", t.d.Change.Instance.ID(),
	)
	t.fn(t.d.Change.Instance, t.d.Change)
}

// finish clears the in-flight flag after a reaction returns.
func (e *Executor) finish() {
	e.mu.Lock()
	e.running = false
	if len(e.tasks) == 0 {
		e.notifyIdleLocked()
	}
	e.mu.Unlock()
}

// closeIfDrained closes the executor if a stop was requested and all
// work has run. Returns true once closed.
func (e *Executor) closeIfDrained() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.stopping || len(e.tasks) > 0 || e.running {
		return false
	}
	e.closed = true
	e.notifyIdleLocked()
	return true
}

// abort closes the executor without draining. Queued dispatches are
// discarded; idle waiters are released so nothing deadlocks.
func (e *Executor) abort() {
	e.mu.Lock()
	e.stopping = true
	e.closed = true
	e.tasks = nil
	e.notifyIdleLocked()
	e.mu.Unlock()
}

// notifyIdleLocked releases all Settle waiters. Caller holds e.mu.
func (e *Executor) notifyIdleLocked() {
	for _, ch := range e.idlers {
		close(ch)
	}
	e.idlers = nil
}

func fieldName(f FieldRef) string {
	if f == nil {
		return ""
	}
	return f.Name()
}
