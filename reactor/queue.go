package reactor

import (
	"container/list"
	"sync"
)

// taskQueue is a thread-safe FIFO of callbacks, grounded on the
// teacher's external/internal task queues (eventloop/ingress.go),
// simplified to a mutex-guarded container/list: a cooperative fiber host
// submits orders of magnitude fewer tasks per second than the teacher's
// target (general-purpose JS event loop under load), so the teacher's
// lock-free MPSC ring is more machinery than this module needs.
type taskQueue struct {
	mu sync.Mutex
	l  list.List
}

func (q *taskQueue) push(fn func()) {
	q.mu.Lock()
	q.l.PushBack(fn)
	q.mu.Unlock()
}

// popAll drains every task currently queued, in FIFO order, without
// holding the lock while running them.
func (q *taskQueue) popAll() []func() {
	q.mu.Lock()
	if q.l.Len() == 0 {
		q.mu.Unlock()
		return nil
	}
	out := make([]func(), 0, q.l.Len())
	for e := q.l.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(func()))
	}
	q.l.Init()
	q.mu.Unlock()
	return out
}

func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.l.Len()
}
