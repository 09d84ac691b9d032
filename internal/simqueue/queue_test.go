package simqueue

import "testing"

func TestFIFOWithinTimestamp(t *testing.T) {
	q := New[string]()
	q.Push(100, "a")
	q.Push(100, "b")
	q.Push(100, "c")

	for _, want := range []string{"a", "b", "c"} {
		tm, item, ok := q.Pop()
		if !ok {
			t.Fatalf("expected item, queue empty")
		}
		if tm != 100 {
			t.Fatalf("time = %d, want 100", tm)
		}
		if item != want {
			t.Fatalf("item = %q, want %q", item, want)
		}
	}
	if _, _, ok := q.Pop(); ok {
		t.Fatalf("expected empty queue")
	}
}

func TestAscendingTimeOrder(t *testing.T) {
	q := New[int]()
	times := []uint32{50, 10, 30, 10, 0, 999}
	for i, tm := range times {
		q.Push(tm, i)
	}

	var last uint32
	count := 0
	for {
		tm, _, ok := q.Pop()
		if !ok {
			break
		}
		if tm < last {
			t.Fatalf("time regressed: %d after %d", tm, last)
		}
		last = tm
		count++
	}
	if count != len(times) {
		t.Fatalf("popped %d items, want %d", count, len(times))
	}
}

func TestPeekTimeDoesNotDequeue(t *testing.T) {
	q := New[int]()
	q.Push(5, 1)

	tm, ok := q.PeekTime()
	if !ok || tm != 5 {
		t.Fatalf("PeekTime() = (%d, %v), want (5, true)", tm, ok)
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after peek", q.Len())
	}
}

func TestLenTracksPushPop(t *testing.T) {
	q := New[int]()
	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", q.Len())
	}
	q.Push(1, 10)
	q.Push(1, 20)
	q.Push(2, 30)
	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
	q.Pop()
	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}
}

func TestEmptyQueuePop(t *testing.T) {
	q := New[int]()
	if _, _, ok := q.Pop(); ok {
		t.Fatalf("expected ok=false on empty queue")
	}
	if _, ok := q.PeekTime(); ok {
		t.Fatalf("expected ok=false on empty queue peek")
	}
}
