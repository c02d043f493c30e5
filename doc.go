// Package coro provides a synchronous, single-threaded, cooperative
// coroutine runtime built around two abstractions: a Task, a suspendable
// computation that eventually produces one value, and a Generator, a
// suspendable computation that lazily yields a sequence of values.
//
// Tasks can await other tasks, and generators can delegate to other
// generators, without any of this composition allocating a heap-tracked
// continuation chain: the callee is spliced onto an implicit coroutine
// stack rooted at whichever Task is ultimately being driven by Wait,
// WaitFor or WaitUntil. See the package's source comments for the
// routing rules, the hard part of this runtime.
//
// There is no parallelism here: a computation only progresses while its
// owning Wait/WaitFor/WaitUntil call is on the goroutine stack, and a
// single Task or Generator must never be driven from two goroutines at
// once. Two independent root Tasks own nothing in common and may be
// waited on concurrently from separate goroutines.
package coro
