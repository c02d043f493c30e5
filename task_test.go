package coro

import (
	"errors"
	"testing"
	"time"
)

func TestTaskTrivial(t *testing.T) {
	task := NewTask(func(h *TaskHandle) int {
		return 42
	})

	v, err := task.Get()
	if err != nil {
		t.Fatal(err)
	}
	if v != 42 {
		t.Errorf("got %d, expected 42", v)
	}
}

func TestTaskDoesNotRunUntilWaited(t *testing.T) {
	ran := false
	task := NewTask(func(h *TaskHandle) int {
		ran = true
		return 0
	})

	if ran {
		t.Fatal("task body ran before Wait/Get")
	}
	if _, err := task.Get(); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("task body never ran")
	}
}

func TestTaskThrows(t *testing.T) {
	boom := errors.New("boom")
	task := NewTask(func(h *TaskHandle) int {
		panic(boom)
	})

	_, err := task.Get()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, boom) {
		t.Errorf("got %v, expected to unwrap to %v", err, boom)
	}
	if !task.Valueless() {
		t.Error("task should be valueless after an exception")
	}
}

func TestAwaitNested(t *testing.T) {
	inner := func(n int) *Task[int] {
		return NewTask(func(h *TaskHandle) int {
			return n * 2
		})
	}

	outer := NewTask(func(h *TaskHandle) int {
		a := Await(h, inner(3))
		b := Await(h, inner(4))
		return a + b
	})

	v, err := outer.Get()
	if err != nil {
		t.Fatal(err)
	}
	if v != 14 {
		t.Errorf("got %d, expected 14", v)
	}
}

func TestAwaitPropagatesException(t *testing.T) {
	boom := errors.New("inner boom")
	inner := NewTask(func(h *TaskHandle) int {
		panic(boom)
	})

	outer := NewTask(func(h *TaskHandle) int {
		return Await(h, inner)
	})

	_, err := outer.Get()
	if !errors.Is(err, boom) {
		t.Errorf("got %v, expected to unwrap to %v", err, boom)
	}
}

func TestTaskWaitFor(t *testing.T) {
	task := NewTask(func(h *TaskHandle) int {
		for i := 0; i < 3; i++ {
			h.Progress()
		}
		return 7
	})

	if done, err := task.WaitFor(0); done {
		t.Fatal("expected a zero timeout to observe the deadline as already passed")
	} else if err != nil {
		t.Fatal(err)
	}

	v, err := task.Get()
	if err != nil {
		t.Fatal(err)
	}
	if v != 7 {
		t.Errorf("got %d, expected 7", v)
	}
}

func TestTaskWaitUntilFuture(t *testing.T) {
	task := NewTask(func(h *TaskHandle) int {
		return 1
	})

	done, err := task.WaitUntil(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if !done {
		t.Error("expected the task to finish well before a one hour deadline")
	}
}

func TestTaskMoveLeavesSourceValueless(t *testing.T) {
	task := NewTask(func(h *TaskHandle) int { return 1 })
	moved := task.Move()

	if !task.Valueless() {
		t.Error("source task should be valueless after Move")
	}
	if _, err := moved.Get(); err != nil {
		t.Fatal(err)
	}
}

func TestTaskCloseBeforeRun(t *testing.T) {
	ran := false
	task := NewTask(func(h *TaskHandle) int {
		ran = true
		return 0
	})
	task.Close()
	if ran {
		t.Error("closed task should never run its body")
	}
}
