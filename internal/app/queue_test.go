package app

import (
	"testing"

	"github.com/nide-gg/mapsync/internal/domain"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue()
	for _, id := range []string{"a", "b", "c"} {
		q.Enqueue(domain.NewWorkItem(id))
	}
	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}

	for _, want := range []string{"a", "b", "c"} {
		item, ok := q.Dequeue()
		if !ok || item.Identifier != want {
			t.Fatalf("Dequeue() = %q, %v; want %q, true", item.Identifier, ok, want)
		}
	}

	if _, ok := q.Dequeue(); ok {
		t.Error("Dequeue() on empty queue returned ok")
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d after drain, want 0", q.Len())
	}
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue()
	q.Enqueue(domain.NewWorkItem("a"))
	q.Enqueue(domain.NewWorkItem("b"))

	if n := q.Clear(); n != 2 {
		t.Errorf("Clear() = %d, want 2", n)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", q.Len())
	}
	if n := q.Clear(); n != 0 {
		t.Errorf("second Clear() = %d, want 0", n)
	}

	q.Enqueue(domain.NewWorkItem("c"))
	if item, ok := q.Dequeue(); !ok || item.Identifier != "c" {
		t.Errorf("Dequeue() after Clear = %q, %v", item.Identifier, ok)
	}
}

func TestQueue_SeedMatchesDelta(t *testing.T) {
	items := Delta(domain.NewInventory("a"), []string{"a.bsp.bz2", "b.bsp.bz2", "B.bsp.bz2", "c.bsp.bz2"})

	q := NewQueue()
	for _, it := range items {
		q.Enqueue(it)
	}
	if q.Len() != len(items) {
		t.Errorf("Len() = %d, want %d", q.Len(), len(items))
	}
}
