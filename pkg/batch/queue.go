package batch

import (
	"context"
	"sync"
)

// Queue is a FIFO with blocking Put/Get and a join signal.
//
// A capacity of zero makes the queue unbounded. Every Put increments the
// unfinished count and every TaskDone decrements it; Join returns once the
// count reaches zero. Blocking operations return ctx.Err() when ctx is done.
type Queue[E any] struct {
	mu         sync.Mutex
	items      []E
	head       int
	capacity   int
	unfinished int
	// changed is closed and replaced on every state change to wake waiters.
	changed chan struct{}
}

// NewQueue creates a queue holding at most capacity entries (0 = unbounded).
func NewQueue[E any](capacity int) *Queue[E] {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue[E]{
		capacity: capacity,
		changed:  make(chan struct{}),
	}
}

// Put appends e, blocking while the queue is full.
func (q *Queue[E]) Put(ctx context.Context, e E) error {
	for {
		q.mu.Lock()
		if q.capacity == 0 || q.lenLocked() < q.capacity {
			q.items = append(q.items, e)
			q.unfinished++
			q.broadcastLocked()
			q.mu.Unlock()
			return nil
		}
		wait := q.changed
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wait:
		}
	}
}

// Get removes and returns the oldest entry, blocking while the queue is empty.
func (q *Queue[E]) Get(ctx context.Context) (E, error) {
	for {
		q.mu.Lock()
		if q.lenLocked() > 0 {
			e := q.items[q.head]
			var zero E
			q.items[q.head] = zero
			q.head++
			if q.head == len(q.items) {
				q.items = q.items[:0]
				q.head = 0
			} else if q.head > 64 && q.head*2 >= len(q.items) {
				q.items = append(q.items[:0], q.items[q.head:]...)
				q.head = 0
			}
			q.broadcastLocked()
			q.mu.Unlock()
			return e, nil
		}
		wait := q.changed
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			var zero E
			return zero, ctx.Err()
		case <-wait:
		}
	}
}

// TaskDone marks one previously dequeued entry as processed.
func (q *Queue[E]) TaskDone() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.unfinished <= 0 {
		panic("batch: TaskDone called more times than Put")
	}
	q.unfinished--
	if q.unfinished == 0 {
		q.broadcastLocked()
	}
}

// Join blocks until every entry ever put has been marked done.
func (q *Queue[E]) Join(ctx context.Context) error {
	for {
		q.mu.Lock()
		if q.unfinished == 0 {
			q.mu.Unlock()
			return nil
		}
		wait := q.changed
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wait:
		}
	}
}

// Len returns the number of entries waiting in the queue.
func (q *Queue[E]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}

// Unfinished returns the number of entries put but not yet marked done.
func (q *Queue[E]) Unfinished() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.unfinished
}

// Cap returns the capacity; 0 means unbounded.
func (q *Queue[E]) Cap() int {
	return q.capacity
}

func (q *Queue[E]) lenLocked() int {
	return len(q.items) - q.head
}

func (q *Queue[E]) broadcastLocked() {
	close(q.changed)
	q.changed = make(chan struct{})
}
