package coro

import (
	"log/slog"
	"time"
)

// TaskFunc is the body of a Task: the coroutine function of spec.md §4.2.
// It runs on its own goroutine, which is started only when the Task is
// first driven by Wait/WaitFor/WaitUntil/Get or by Await.
type TaskFunc[T any] func(h *TaskHandle) T

// TaskHandle is passed to a TaskFunc and exposes the suspension
// primitives available from within a task body: Progress (the "yield
// progress" checkpoint of spec.md §4.1) and, as a package-level generic
// function since Go methods cannot carry their own type parameters,
// Await.
type TaskHandle struct {
	fr *frame
}

// Progress gives the outermost WaitUntil call a chance to pause a
// long-running computation once its deadline has passed. It is a no-op
// under a plain Wait or under WaitFor/WaitUntil before the deadline.
func (h *TaskHandle) Progress() {
	if h.fr.mustSuspendNow() {
		logTrace(h.fr.logger, "coro: progress checkpoint suspending")
		h.fr.suspendSelf()
	}
}

// TaskOption configures a Task at construction time, the functional
// options style used throughout _examples/petrijr-fluxo's builder.go.
type TaskOption func(*taskConfig)

type taskConfig struct {
	logger *slog.Logger
}

// WithLogger scopes structured tracing to one Task instead of whatever
// SetLogger installed package-wide.
func WithLogger(l *slog.Logger) TaskOption {
	return func(c *taskConfig) { c.logger = l }
}

// Task is a suspendable computation that eventually produces one value
// of type T: C4 of spec.md. A Task is move-only; Move and Close leave
// the receiver valueless.
type Task[T any] struct {
	fr *frame
}

// NewTask constructs a Task from fn, which begins suspended at its
// initial point; fn does not run at all until the Task's first
// Wait/WaitFor/WaitUntil/Get call, or until the Task is passed to Await.
func NewTask[T any](fn TaskFunc[T], opts ...TaskOption) *Task[T] {
	cfg := taskConfig{logger: defaultLogger}
	for _, opt := range opts {
		opt(&cfg)
	}

	f := newFrame(cfg.logger)
	h := &TaskHandle{fr: f}
	f.spawn(func() any {
		return fn(h)
	})
	return &Task[T]{fr: f}
}

// Valueless reports whether t has an underlying frame. Operating on a
// valueless Task is a contract violation (spec.md §7.3) and every method
// below except Close panics accordingly rather than silently doing
// nothing; Close on a valueless Task returns without effect.
func (t *Task[T]) Valueless() bool {
	return t == nil || t.fr == nil
}

func (t *Task[T]) mustNotBeValueless(op string) {
	if t.Valueless() {
		panic("coro: " + op + " called on a valueless Task")
	}
}

// Move transfers ownership of t's underlying frame to a new Task handle
// and leaves t valueless, the Go analogue of a move constructor.
func (t *Task[T]) Move() *Task[T] {
	t.mustNotBeValueless("Move")
	out := &Task[T]{fr: t.fr}
	t.fr = nil
	return out
}

// Close destroys a still-suspended Task's frame without running any more
// of its body beyond already-registered deferred statements, and leaves
// t valueless. On a done Task it releases the frame and its result; on an
// already-valueless Task it is a no-op, so Close is idempotent. Close
// must not be called while a Wait/WaitFor/WaitUntil/Get call for this
// same Task is in flight on another goroutine — like every other
// operation in this package, a single Task is not safe for concurrent
// use from two goroutines (spec.md §5).
func (t *Task[T]) Close() {
	if t.Valueless() {
		return
	}
	t.fr.cancel()
	t.fr = nil
}

// Wait drives t to completion, installing no Suspend policy: every
// Progress checkpoint anywhere under t evaluates to "do not suspend", so
// the call returns only once t is fully done.
func (t *Task[T]) Wait() error {
	t.mustNotBeValueless("Wait")
	if t.fr.done {
		return nil
	}
	ev := t.fr.resume()
	for ev.kind == eventProgress {
		ev = t.fr.resume()
	}
	return t.finishWait(ev)
}

// WaitFor is WaitUntil with a deadline of time.Now().Add(timeout).
func (t *Task[T]) WaitFor(timeout time.Duration) (done bool, err error) {
	return t.WaitUntil(time.Now().Add(timeout))
}

// WaitUntil drives t until it is done or until a Progress checkpoint
// observes that deadline has passed, whichever happens first. A task
// that never calls Progress runs to completion regardless of deadline,
// since suspension is always cooperative (spec.md §4.2).
func (t *Task[T]) WaitUntil(deadline time.Time) (done bool, err error) {
	t.mustNotBeValueless("WaitUntil")
	if t.fr.done {
		return true, nil
	}

	fr := t.fr
	fr.suspend = &SuspendPolicy{
		ctx:  deadline,
		pred: func(ctx any) bool { return !time.Now().Before(ctx.(time.Time)) },
	}
	defer func() { fr.suspend = nil }()

	ev := t.fr.resume()
	if ev.kind == eventProgress {
		return false, nil
	}
	err = t.finishWait(ev)
	return true, err
}

// Get returns t's result, driving t to completion first if necessary.
func (t *Task[T]) Get() (T, error) {
	t.mustNotBeValueless("Get")
	if !t.fr.done {
		if err := t.Wait(); err != nil {
			var zero T
			return zero, err
		}
	}
	v, _ := t.fr.result.(T)
	return v, nil
}

// finishWait extracts a root frame's terminal event: nil on a clean
// done, or the wrapped panic on a thrown one, in which case t becomes
// valueless per spec.md §4.2 ("rethrows; self becomes valueless").
func (t *Task[T]) finishWait(ev frameEvent) error {
	if ev.value != nil {
		err := ev.value.(error)
		t.fr = nil
		return err
	}
	return nil
}

// Await suspends the calling task until t completes, splicing t onto the
// awaiter's implicit stack per spec.md §4.1. Ownership of t moves into
// the awaiter: t is valueless once Await returns, whether by returning a
// value or by panicking with t's wrapped exception.
//
// Await is a package-level function, not a method on TaskHandle, because
// Go does not allow a method to introduce its own type parameter.
func Await[T any](h *TaskHandle, t *Task[T]) T {
	t.mustNotBeValueless("Await")
	callee := t.fr
	t.fr = nil

	if callee.done {
		v, _ := callee.result.(T)
		return v
	}

	root := h.fr.root
	ni := &nestedInfo{parent: h.fr, root: root}
	callee.nested = ni
	callee.root = root
	root.top = callee

	for {
		ev := callee.resume()
		switch ev.kind {
		case eventDone:
			root.top = h.fr
			if ni.err != nil {
				panic(ni.err)
			}
			v, _ := callee.result.(T)
			return v
		default: // eventProgress: the callee (or something nested under it) is merely paused.
			h.fr.suspendSelf()
			// The next resume wakes h.fr here, and the loop resumes callee again.
		}
	}
}
