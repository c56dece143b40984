package app

import (
	"sync"

	"github.com/nide-gg/mapsync/internal/domain"
)

// Queue is the FIFO of work items for a run. A single goroutine drains it;
// the mutex exists so Stop can clear it from another goroutine.
type Queue struct {
	mu    sync.Mutex
	items []domain.WorkItem
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends an item.
func (q *Queue) Enqueue(item domain.WorkItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, item)
}

// Dequeue removes and returns the head. ok is false when the queue is empty.
func (q *Queue) Dequeue() (item domain.WorkItem, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return domain.WorkItem{}, false
	}
	item = q.items[0]
	q.items[0] = domain.WorkItem{}
	q.items = q.items[1:]
	return item, true
}

// Clear drops all pending items and returns how many were dropped.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	q.items = nil
	return n
}

// Len returns the number of pending items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
