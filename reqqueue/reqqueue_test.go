package reqqueue

import (
	"context"
	"testing"
	"time"
)

func TestPushPopFIFO(t *testing.T) {
	q := New[int](4)
	q.Push(1)
	q.Push(2)
	q.Push(3)

	for _, want := range []int{1, 2, 3} {
		got, ok := q.TryPop()
		if !ok {
			t.Fatalf("expected item, got none")
		}
		if got != want {
			t.Errorf("TryPop: got %d, want %d", got, want)
		}
	}
}

func TestPushFrontJumpsQueue(t *testing.T) {
	q := New[string](4)
	q.Push("a")
	q.Push("b")
	q.PushFront("jump")

	got, ok := q.TryPop()
	if !ok || got != "jump" {
		t.Fatalf("expected 'jump' at head, got %q ok=%v", got, ok)
	}
}

func TestPopBlocksUntilPush(t *testing.T) {
	q := New[int](1)
	done := make(chan int, 1)
	go func() {
		v, ok := q.Pop(context.Background())
		if ok {
			done <- v
		}
	}()

	time.Sleep(20 * time.Millisecond)
	q.Push(42)

	select {
	case v := <-done:
		if v != 42 {
			t.Errorf("Pop: got %d, want 42", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not return after Push")
	}
}

func TestPopRespectsContextCancellation(t *testing.T) {
	q := New[int](1)
	ctx, cancel := context.WithCancel(context.Background())

	result := make(chan bool, 1)
	go func() {
		_, ok := q.Pop(ctx)
		result <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case ok := <-result:
		if ok {
			t.Error("expected Pop to return ok=false after cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not return after context cancellation")
	}
}

func TestLenAndCapacity(t *testing.T) {
	q := New[int](8)
	if q.Capacity() != 8 {
		t.Errorf("Capacity: got %d, want 8", q.Capacity())
	}
	q.Push(1)
	q.Push(2)
	if q.Len() != 2 {
		t.Errorf("Len: got %d, want 2", q.Len())
	}
}
