package fsync

import (
	"sync"
	"time"
)

// WaitOutcome is the result of [Cond.WaitUntil].
type WaitOutcome int

const (
	// Notified means a notification arrived before the deadline.
	Notified WaitOutcome = iota
	// TimedOut means the deadline passed with no notification.
	TimedOut
)

// Cond is a condition variable: Wait atomically releases an associated
// [Mutex] and blocks until notified, then reacquires it before
// returning, exactly like a POSIX condition variable. Grounded on
// spec.md §4.5.
type Cond struct {
	sched Scheduler

	mu      sync.Mutex
	waiters []*muWaiter
}

// NewCond constructs a Cond driven by sched.
func NewCond(sched Scheduler) *Cond {
	return &Cond{sched: sched}
}

// Wait releases m, blocks until Notify or NotifyAll wakes this caller,
// then reacquires m before returning.
func (c *Cond) Wait(m *Mutex) error {
	cur, inFiber := c.sched.Current()

	w := newWaiter(cur, inFiber)
	c.mu.Lock()
	c.waiters = append(c.waiters, w)
	c.mu.Unlock()

	if err := m.Unlock(); err != nil {
		return err
	}

	block(c.sched, cur, inFiber, w)

	return m.Lock()
}

// WaitUntil is Wait with a deadline. It returns [TimedOut] (with a nil
// error) if deadline passes with no notification, after reacquiring m.
func (c *Cond) WaitUntil(m *Mutex, deadline time.Time) (WaitOutcome, error) {
	cur, inFiber := c.sched.Current()

	w := newWaiter(cur, inFiber)
	c.mu.Lock()
	c.waiters = append(c.waiters, w)
	c.mu.Unlock()

	if err := m.Unlock(); err != nil {
		return TimedOut, err
	}

	timedOut := make(chan struct{})
	timer := time.AfterFunc(time.Until(deadline), func() {
		c.mu.Lock()
		idx := indexOf(c.waiters, w)
		if idx >= 0 {
			c.waiters = append(c.waiters[:idx], c.waiters[idx+1:]...)
			close(timedOut)
		}
		c.mu.Unlock()
		if idx >= 0 {
			w.wake(c.sched)
		}
	})

	block(c.sched, cur, inFiber, w)
	timer.Stop()

	outcome := Notified
	select {
	case <-timedOut:
		outcome = TimedOut
	default:
	}

	if err := m.Lock(); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// Notify wakes at most one waiter, in FIFO order.
func (c *Cond) Notify() {
	c.mu.Lock()
	if len(c.waiters) == 0 {
		c.mu.Unlock()
		return
	}
	w := c.waiters[0]
	c.waiters = c.waiters[1:]
	c.mu.Unlock()
	w.wake(c.sched)
}

// NotifyAll wakes every current waiter.
func (c *Cond) NotifyAll() {
	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()
	for _, w := range waiters {
		w.wake(c.sched)
	}
}

// Empty reports whether the condition variable currently has no
// waiters, used by the POSIX bridge's cond_destroy EBUSY check.
func (c *Cond) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters) == 0
}

func indexOf(waiters []*muWaiter, target *muWaiter) int {
	for i, w := range waiters {
		if w == target {
			return i
		}
	}
	return -1
}
