package coro

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// ErrCanceled names cancellation as an error value. No function in this
// package returns it: Close leaves a Task or Generator valueless, so a
// later Wait/Get panics as on any valueless Task, and the canceled body
// is unwound by a private panic sentinel that its own frame swallows.
var ErrCanceled = errors.New("coro: coroutine was canceled")

// panicError wraps a value recovered from a coroutine body panic with the
// stack captured at the moment of the panic, so that Wait/WaitFor/
// WaitUntil/Get can return (and Await can re-panic with) a value that
// still carries useful
// diagnostics after crossing however many nested Await/Begin/Advance
// hops it travelled through on the way out.
type panicError struct {
	value any
	stack []byte
}

func (p *panicError) Error() string {
	return fmt.Sprintf("%v", p.value)
}

// ErrorWithStack formats the wrapped value together with the stack
// captured where it was first recovered.
func (p *panicError) ErrorWithStack() string {
	return fmt.Sprintf("%v\n\n%s", p.value, p.stack)
}

func (p *panicError) Unwrap() error {
	err, ok := p.value.(error)
	if !ok {
		return nil
	}
	return err
}

func newPanicError(v any) *panicError {
	if existing, ok := v.(*panicError); ok {
		return existing
	}
	return &panicError{value: v, stack: debug.Stack()}
}
