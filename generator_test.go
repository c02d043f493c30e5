package coro

import (
	"reflect"
	"testing"
)

func TestGeneratorBasic(t *testing.T) {
	gen := NewGenerator(func(h *GeneratorHandle[int]) {
		h.Yield(1)
		h.Yield(2)
		h.Yield(3)
	})

	var got []int
	it := gen.Begin()
	for it.More() {
		got = append(got, it.Value())
		it.Advance()
	}

	want := []int{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, expected %v", got, want)
	}
}

func TestGeneratorDoesNotRunUntilBegin(t *testing.T) {
	ran := false
	gen := NewGenerator(func(h *GeneratorHandle[int]) {
		ran = true
	})
	if ran {
		t.Fatal("generator body ran before Begin")
	}
	gen.Begin()
	if !ran {
		t.Error("generator body never ran")
	}
}

func TestGeneratorSeq(t *testing.T) {
	gen := NewGenerator(func(h *GeneratorHandle[string]) {
		h.Yield("a")
		h.Yield("b")
	})

	var got []string
	for v := range gen.Begin().Seq() {
		got = append(got, v)
	}

	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, expected %v", got, want)
	}
}

func fibonacci(limit int) *Generator[int] {
	return NewGenerator(func(h *GeneratorHandle[int]) {
		a, b := 0, 1
		for a < limit {
			h.Yield(a)
			a, b = b, a+b
		}
	})
}

func TestGeneratorDelegate(t *testing.T) {
	gen := NewGenerator(func(h *GeneratorHandle[int]) {
		h.Yield(-1)
		Delegate(h, fibonacci(10))
		h.Yield(-2)
	})

	var got []int
	for v := range gen.Begin().Seq() {
		got = append(got, v)
	}

	want := []int{-1, 0, 1, 1, 2, 3, 5, 8, -2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, expected %v", got, want)
	}
}

func TestGeneratorNestedDelegation(t *testing.T) {
	innermost := func() *Generator[int] {
		return NewGenerator(func(h *GeneratorHandle[int]) {
			h.Yield(100)
			h.Yield(200)
		})
	}
	middle := func() *Generator[int] {
		return NewGenerator(func(h *GeneratorHandle[int]) {
			Delegate(h, innermost())
			h.Yield(300)
		})
	}
	outer := NewGenerator(func(h *GeneratorHandle[int]) {
		h.Yield(1)
		Delegate(h, middle())
		h.Yield(2)
	})

	var got []int
	for v := range outer.Begin().Seq() {
		got = append(got, v)
	}

	want := []int{1, 100, 200, 300, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, expected %v", got, want)
	}
}

func TestGeneratorDelegateSeq(t *testing.T) {
	gen := NewGenerator(func(h *GeneratorHandle[int]) {
		DelegateSeq(h, func(yield func(int) bool) {
			for _, v := range []int{7, 8, 9} {
				if !yield(v) {
					return
				}
			}
		})
	})

	var got []int
	for v := range gen.Begin().Seq() {
		got = append(got, v)
	}

	want := []int{7, 8, 9}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, expected %v", got, want)
	}
}

func TestGeneratorCloseStopsEarly(t *testing.T) {
	reachedEnd := false
	gen := NewGenerator(func(h *GeneratorHandle[int]) {
		h.Yield(1)
		h.Yield(2)
		reachedEnd = true
	})

	it := gen.Begin()
	it.Close()

	if reachedEnd {
		t.Error("generator should not have reached its end after Close")
	}
}

func TestGeneratorTaskInterleaving(t *testing.T) {
	double := func(n int) *Task[int] {
		return NewTask(func(h *TaskHandle) int { return n * 2 })
	}

	gen := NewGenerator(func(h *GeneratorHandle[int]) {
		task := NewTask(func(th *TaskHandle) int {
			return Await(th, double(21))
		})
		v, err := task.Get()
		if err != nil {
			panic(err)
		}
		h.Yield(v)
	})

	it := gen.Begin()
	if it.Value() != 42 {
		t.Errorf("got %d, expected 42", it.Value())
	}
}
