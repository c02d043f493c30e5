package coro

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WaitAll waits on every task in tasks, stopping at the first error but
// still waiting for every goroutine it started to return before
// reporting it, the fan-out pattern the teacher's compiler/vendor.go
// pulls golang.org/x/sync/errgroup in for. Each task runs to completion
// on its own goroutine; WaitAll itself adds no parallelism a caller
// could not get by calling Wait on each task from its own goroutine, but
// it collapses the bookkeeping into one call.
//
// Valueless tasks are skipped. Every other task is waited on in place and
// stays owned by the caller: one that completes keeps its result for Get,
// and one whose body panicked becomes valueless, as after Wait.
func WaitAll[T any](tasks ...*Task[T]) error {
	return WaitAllContext(context.Background(), tasks...)
}

// WaitAllContext is WaitAll with early abort: once ctx is done, no new
// Wait calls start, though any already in flight still run to
// completion, since a Task's underlying frame is cooperative and cannot
// be preempted mid-step.
func WaitAllContext[T any](ctx context.Context, tasks ...*Task[T]) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range tasks {
		t := t
		if t.Valueless() {
			continue
		}
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return t.Wait()
		})
	}
	return g.Wait()
}
