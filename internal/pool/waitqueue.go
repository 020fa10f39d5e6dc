package pool

import (
	"container/heap"
	"time"
)

// waiter is a pending acquisition request held in the wait queue.
type waiter[T any] struct {
	notifier[T]
	priority   int
	seq        uint64 // arrival order, tie-break within a priority class
	enqueuedAt time.Time
	index      int
}

// waitQueue orders waiters by priority (lower value served first), stable
// FIFO within the same priority. It implements heap.Interface; callers go
// through push/pop.
type waitQueue[T any] struct {
	items []*waiter[T]
}

func (q *waitQueue[T]) Len() int { return len(q.items) }

func (q *waitQueue[T]) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.seq < b.seq
}

func (q *waitQueue[T]) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *waitQueue[T]) Push(x any) {
	w := x.(*waiter[T])
	w.index = len(q.items)
	q.items = append(q.items, w)
}

func (q *waitQueue[T]) Pop() any {
	old := q.items
	n := len(old)
	w := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	return w
}

func (q *waitQueue[T]) push(w *waiter[T]) {
	heap.Push(q, w)
}

// pop removes and returns the highest-priority waiter, or nil if empty.
func (q *waitQueue[T]) pop() *waiter[T] {
	if len(q.items) == 0 {
		return nil
	}
	return heap.Pop(q).(*waiter[T])
}

// popOldest removes and returns the earliest-enqueued waiter regardless of
// priority, or nil if empty.
func (q *waitQueue[T]) popOldest() *waiter[T] {
	if len(q.items) == 0 {
		return nil
	}
	oldest := 0
	for i, w := range q.items {
		if w.seq < q.items[oldest].seq {
			oldest = i
		}
	}
	return heap.Remove(q, oldest).(*waiter[T])
}
