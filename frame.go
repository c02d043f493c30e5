package coro

import (
	"log/slog"
)

// SuspendPolicy is a stateless predicate, queried at every progress
// checkpoint, that decides whether a progress point should return control
// to the outer Wait/WaitFor/WaitUntil call instead of continuing.
//
// A SuspendPolicy is installed on the root frame of a stack only for the
// duration of a bounded wait; the referenced context must outlive that
// call, which holds trivially here since the context is the deadline
// value captured by WaitUntil's own stack frame.
type SuspendPolicy struct {
	ctx  any
	pred func(ctx any) bool
}

func (p *SuspendPolicy) mustSuspend() bool {
	if p == nil {
		return false
	}
	return p.pred(p.ctx)
}

// nestedInfo is installed on a callee frame by the Task that awaits it
// (Delegate uses the callee's delegationDone channel instead). Await
// allocates one per await edge and only the callee frame refers to it;
// the runtime keeps no global registry of these nodes.
type nestedInfo struct {
	parent *frame // the frame that installed this edge
	root   *frame // the bottom of the combined stack
	err    any    // staged here by the callee's recover(), observed by the caller on resume
}

type frameEventKind int

const (
	eventProgress frameEventKind = iota // suspended at a progress checkpoint
	eventYield                          // a generator produced a value
	eventDone                           // the frame reached its final suspend
)

type frameEvent struct {
	kind  frameEventKind
	value any // populated only for eventYield; holds a panic value for a root's eventDone
}

// frame is one suspendable computation: the Frame of spec.md §3. Each
// frame owns exactly one goroutine, parked on resumeC whenever it is not
// actively running. Suspension is the channel handshake in resume and
// suspendSelf; nothing here is safe to touch from two goroutines at once,
// by design (spec.md §5: no locking, exclusive access assumed).
type frame struct {
	resumeC chan struct{}
	outC    chan frameEvent

	root *frame // self if this frame is itself a root
	top  *frame // meaningful only when root == self; current leaf of the stack, for bookkeeping

	nested  *nestedInfo
	suspend *SuspendPolicy

	delegationDone chan any // non-nil while this frame is a generator delegatee
	canceled       *bool    // shared across a delegation chain so cancellation reaches whichever frame is active

	done   bool
	result any

	body    func() any
	started bool

	logger *slog.Logger
}

func newFrame(logger *slog.Logger) *frame {
	canceled := false
	f := &frame{
		resumeC:  make(chan struct{}),
		outC:     make(chan frameEvent),
		canceled: &canceled,
		logger:   logger,
	}
	f.root = f
	f.top = f
	return f
}

// spawn registers body as the frame's coroutine function; it does not
// start the goroutine. Starting is deferred to ensureStarted so that a
// Generator handed to Delegate can have its channels aliased onto its
// new parent's before its goroutine ever exists to race that mutation.
func (f *frame) spawn(body func() any) {
	f.body = body
}

// ensureStarted starts f's goroutine the first time f is actually
// driven, whether directly by resume or indirectly by Delegate. body
// runs the user's coroutine function and returns the final result (nil
// for void tasks and for generators, which never populate frame.result).
// body must itself call suspendSelf, yield, or drive another frame for
// every suspension point; once body returns, the frame is done.
func (f *frame) ensureStarted() {
	if f.started {
		return
	}
	f.started = true

	go func() {
		var result any
		defer func() {
			p := recover()
			f.finish(result, p)
		}()

		<-f.resumeC
		if *f.canceled {
			return
		}
		result = f.body()
	}()
}

// finish runs when a frame's body returns normally, panics, or is
// unwound by a cancellation. It routes the outcome to whichever
// mechanism the caller installed: a private delegationDone channel for a
// generator delegatee, NestedInfo.err plus a plain eventDone for any
// other nested frame, or a terminal eventDone carrying the panic for a
// true root.
func (f *frame) finish(result any, panicVal any) {
	if _, ok := panicVal.(canceledPanic); ok {
		panicVal = nil
	} else if panicVal != nil {
		panicVal = newPanicError(panicVal)
	}

	f.done = true
	f.result = result

	if f.delegationDone != nil {
		f.delegationDone <- panicVal
		close(f.delegationDone)
		return
	}

	if f.nested != nil {
		if panicVal != nil {
			f.nested.err = panicVal
		}
		f.outC <- frameEvent{kind: eventDone}
		return
	}

	f.outC <- frameEvent{kind: eventDone, value: panicVal}
}

// resume hands control to f and blocks until f suspends or finishes. It
// is called either directly by the Wait/WaitFor/WaitUntil driver (when f
// is a root) or by a frame that is actively driving an awaited Task or an
// in-progress generator iteration.
func (f *frame) resume() frameEvent {
	f.ensureStarted()
	f.resumeC <- struct{}{}
	return <-f.outC
}

// suspendSelf is the primitive behind every suspension point that is not
// a plain value handoff: it parks f's goroutine and returns only once
// something sends on resumeC again.
func (f *frame) suspendSelf() {
	f.outC <- frameEvent{kind: eventProgress}
	<-f.resumeC
	if *f.canceled {
		panicCanceled()
	}
}

// mustSuspendNow answers the "yield progress" checkpoint of spec.md §4.1:
// it always consults the root's policy, never the frame's own, per the
// canonical resolution of spec.md §9's first ambiguity.
func (f *frame) mustSuspendNow() bool {
	return f.root.suspend.mustSuspend()
}

// cancel destroys a suspended frame without running any more of its
// body, save for deferred cleanups already registered: the Go analogue
// of spec.md's "owner being dropped while still suspended" lifecycle
// rule. Valid only when nothing is actively resuming f (between
// Wait-family calls, or between Advance calls on an owned Iterator); it
// is a no-op on an already-done frame.
func (f *frame) cancel() {
	if f.done {
		return
	}
	f.ensureStarted()
	*f.canceled = true
	f.resumeC <- struct{}{}
	<-f.outC
}

type canceledPanic struct{}

// panicCanceled unwinds the current frame's goroutine by panicking with a
// private sentinel that ensureStarted's deferred recover() recognizes and
// swallows, running every deferred statement on the way out exactly as a
// real exception unwind would, without ever resuming the user body past
// this point.
func panicCanceled() {
	panic(canceledPanic{})
}
