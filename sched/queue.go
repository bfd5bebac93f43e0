package sched

import (
	"container/list"
	"sync"

	"github.com/fiberhost/ctxrt/fiber"
)

// Queue is a thread-safe FIFO of *fiber.Context, used for this
// package's own ready queue. fsync's per-primitive wait queues are not
// built on Queue: a wait-queue entry there may be a genuine native
// goroutine blocked on a channel rather than a *fiber.Context, a shape
// Queue doesn't hold, so fsync keeps its own mutex-guarded waiter
// slices instead (see fsync's package doc). Queue still enforces
// invariant I2 (a Context is linked into at most one queue at a time)
// for the ready queue by delegating all linkage bookkeeping to
// fiber.Context.LinkTo/Unlink.
type Queue struct {
	mu sync.Mutex
	l  list.List
}

// PushBack enqueues c at the tail.
func (q *Queue) PushBack(c *fiber.Context) {
	q.mu.Lock()
	e := q.l.PushBack(c)
	c.LinkTo(&q.l, e)
	q.mu.Unlock()
}

// PushFront enqueues c at the head, used for ModeDispatch submission.
func (q *Queue) PushFront(c *fiber.Context) {
	q.mu.Lock()
	e := q.l.PushFront(c)
	c.LinkTo(&q.l, e)
	q.mu.Unlock()
}

// PopFront removes and returns the head of the queue, if any.
func (q *Queue) PopFront() (*fiber.Context, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e := q.l.Front()
	if e == nil {
		return nil, false
	}
	c := e.Value.(*fiber.Context)
	c.Unlink()
	return c, true
}

// Remove unlinks c from this queue if it is currently linked into it. A
// no-op if c is linked elsewhere or not linked at all.
func (q *Queue) Remove(c *fiber.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if c.Linked() {
		c.Unlink()
	}
}

// Len reports the number of contexts currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.l.Len()
}
