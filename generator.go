package coro

import (
	"iter"
	"log/slog"
)

// GeneratorFunc is the body of a Generator: a coroutine that lazily
// produces a sequence of values of type T instead of a single result.
type GeneratorFunc[T any] func(h *GeneratorHandle[T])

// GeneratorHandle is passed to a GeneratorFunc and exposes Yield,
// Progress and, as package-level generic functions, Delegate and
// DelegateSeq.
type GeneratorHandle[T any] struct {
	fr *frame
}

// Yield suspends the generator, handing v to whichever Advance call is
// currently driving it, and resumes only when that iterator advances
// again. Yield is the "co_yield value" point of spec.md §4.3.
func (h *GeneratorHandle[T]) Yield(v T) {
	f := h.fr
	f.outC <- frameEvent{kind: eventYield, value: v}
	<-f.resumeC
	if *f.canceled {
		panicCanceled()
	}
}

// Progress is the generator analogue of TaskHandle.Progress. A
// generator's frame is the root of its own stack and nothing installs a
// Suspend policy on it, so Progress inside a generator body never
// suspends: Advance always runs the body to its next Yield or to its end.
func (h *GeneratorHandle[T]) Progress() {
	if h.fr.mustSuspendNow() {
		h.fr.suspendSelf()
	}
}

// GeneratorOption configures a Generator at construction time.
type GeneratorOption func(*generatorConfig)

type generatorConfig struct {
	logger *slog.Logger
}

// Generator is a suspendable computation that lazily yields a sequence
// of values of type T: C5 of spec.md. A Generator is move-only, exactly
// like Task.
type Generator[T any] struct {
	fr *frame
}

// NewGenerator constructs a Generator from fn. fn does not run until
// Begin, which advances the new Iterator to fn's first Yield.
func NewGenerator[T any](fn GeneratorFunc[T], opts ...GeneratorOption) *Generator[T] {
	cfg := generatorConfig{logger: defaultLogger}
	for _, opt := range opts {
		opt(&cfg)
	}

	f := newFrame(cfg.logger)
	h := &GeneratorHandle[T]{fr: f}
	f.spawn(func() any {
		fn(h)
		return nil
	})
	return &Generator[T]{fr: f}
}

// WithGeneratorLogger stores l on one Generator's frame in place of the
// package default. No Generator operation writes a trace entry, so the
// logger receives nothing from a Generator.
func WithGeneratorLogger(l *slog.Logger) GeneratorOption {
	return func(c *generatorConfig) { c.logger = l }
}

func (g *Generator[T]) Valueless() bool {
	return g == nil || g.fr == nil
}

func (g *Generator[T]) mustNotBeValueless(op string) {
	if g.Valueless() {
		panic("coro: " + op + " called on a valueless Generator")
	}
}

// Close destroys a still-suspended Generator without producing any more
// values; deferred statements already registered in its body still run.
// Close must not race a live Iterator's Advance call on the same
// Generator.
func (g *Generator[T]) Close() {
	if g.Valueless() {
		return
	}
	g.fr.cancel()
	g.fr = nil
}

// Begin creates an Iterator that owns g, moving g's frame out of the
// receiver exactly like Task.Move.
func (g *Generator[T]) Begin() *Iterator[T] {
	g.mustNotBeValueless("Begin")
	f := g.fr
	g.fr = nil
	it := &Iterator[T]{fr: f}
	it.Advance()
	return it
}

// Iterator drives a Generator one value at a time: Value/More/Advance
// mirror the begin()/operator*/operator++ triad of spec.md §4.3's C++
// model, adapted to a method set Go can express without overloading.
type Iterator[T any] struct {
	fr     *frame
	value  T
	done   bool
	err    error
	closed bool
}

// Begin drives a top-level Generator to its first yielded value (or to
// completion, if it yields nothing), the package-level equivalent of
// Generator.Begin provided for symmetry with Await.
func Begin[T any](g *Generator[T]) *Iterator[T] {
	return g.Begin()
}

// More reports whether Value holds a real element. It is false once the
// generator has run to completion or was exhausted by cancellation.
func (it *Iterator[T]) More() bool {
	return !it.done
}

// Value returns the element produced by the most recent Advance call.
// Calling Value after More reports false is a contract violation.
func (it *Iterator[T]) Value() T {
	if it.done {
		panic("coro: Value called past the end of a Generator")
	}
	return it.value
}

// Err returns the error, if any, that ended the underlying generator.
// A generator that simply runs out of values reports a nil Err.
func (it *Iterator[T]) Err() error {
	return it.err
}

// Advance resumes the generator until its next Yield or its completion.
// Calling Advance once More reports false is a contract violation,
// matching spec.md's ++ on an end iterator.
func (it *Iterator[T]) Advance() {
	if it.closed {
		panic("coro: Advance called on a closed Generator iterator")
	}
	ev := it.fr.resume()
	for ev.kind == eventProgress {
		ev = it.fr.resume()
	}
	switch ev.kind {
	case eventYield:
		it.value = ev.value.(T)
	case eventDone:
		it.done = true
		it.closed = true
		if ev.value != nil {
			it.err = ev.value.(error)
		}
	}
}

// Close releases the Iterator's underlying frame without running it to
// completion. It is idempotent.
func (it *Iterator[T]) Close() {
	if it.closed {
		return
	}
	it.fr.cancel()
	it.closed = true
	it.done = true
}

// Seq adapts it to a standard iter.Seq, the idiomatic entry point for
// range-over-func consumption of a Generator's remaining values. Seq
// stops early, without leaking the generator's goroutine, if the range
// body breaks: it closes the frame via a deferred cancel.
func (it *Iterator[T]) Seq() iter.Seq[T] {
	return func(yield func(T) bool) {
		defer it.Close()
		for it.More() {
			if !yield(it.Value()) {
				return
			}
			it.Advance()
		}
	}
}

// Delegate splices callee onto h's generator, making every value callee
// yields appear as though h itself yielded it, at O(1) cost per value
// regardless of delegation depth: the hard requirement of spec.md §4.3's
// "yield elements_of(otherGenerator)". This works by aliasing callee's
// resumeC/outC/canceled fields onto whichever channels and flag are
// currently driving h's own stack, rather than by h's goroutine relaying
// every value through itself.
//
// Ownership of callee moves into h; callee is valueless once Delegate
// returns.
func Delegate[T any](h *GeneratorHandle[T], callee *Generator[T]) {
	callee.mustNotBeValueless("Delegate")
	cf := callee.fr
	callee.fr = nil

	hf := h.fr
	done := make(chan any)
	cf.delegationDone = done
	cf.resumeC = hf.resumeC
	cf.outC = hf.outC
	cf.canceled = hf.canceled

	// cf's goroutine does not exist yet: ensureStarted only runs after
	// the aliasing above, so its first resumeC read already observes
	// hf's channels. From here on cf talks directly to whichever driver
	// is resuming h's stack, with no further involvement from h's own
	// goroutine, which simply waits for cf to finish.
	cf.ensureStarted()
	cf.resumeC <- struct{}{}
	err := <-done
	if err != nil {
		panic(err)
	}
	// A cancel that reached cf through the shared flag unwinds h as well,
	// instead of letting h's body continue past the delegation.
	if *hf.canceled {
		panicCanceled()
	}
}

// DelegateSeq delegates to an arbitrary Go sequence rather than to
// another Generator, the one point where this runtime touches
// non-coroutine iteration: spec.md's "yield elements_of(arbitraryRange)".
func DelegateSeq[T any](h *GeneratorHandle[T], seq iter.Seq[T]) {
	for v := range seq {
		h.Yield(v)
	}
}
