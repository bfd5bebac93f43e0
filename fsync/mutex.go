package fsync

import (
	"sync"

	"github.com/fiberhost/ctxrt/fiber"
)

// muWaiter is a single blocked caller: either a fiber parked via the
// scheduler's baton protocol, or a genuine OS-thread goroutine blocked
// on a real channel (the POSIX bridge's native passthrough path).
type muWaiter struct {
	fiberCtx *fiber.Context
	nativeCh chan struct{}
}

func (w *muWaiter) wake(s Scheduler) {
	if w.fiberCtx != nil {
		s.EnqueueReady(w.fiberCtx)
		return
	}
	close(w.nativeCh)
}

// Mutex is a non-reentrant lock (with deadlock checking enabled, a
// fiber relocking a mutex it owns gets [ErrDeadlock]) usable both
// from fibers, where contention parks the calling fiber's carrier
// goroutine via the scheduler's baton protocol, and from genuine OS
// threads making native calls through the POSIX bridge, where
// contention blocks the real goroutine on a channel. Grounded on
// spec.md §4.3.
type Mutex struct {
	sched         Scheduler
	deadlockCheck bool

	mu          sync.Mutex
	ownerFiber  *fiber.Context
	ownerNative bool
	waiters     []*muWaiter
}

// NewMutex constructs a Mutex driven by sched.
func NewMutex(sched Scheduler, opts ...MutexOption) *Mutex {
	cfg := resolveMutexOptions(opts)
	return &Mutex{sched: sched, deadlockCheck: cfg.deadlockCheck}
}

// Lock acquires the mutex, blocking the caller (cooperatively if it is
// a fiber, natively otherwise) until it is free. If deadlock checking
// is enabled and the calling fiber already owns the mutex, returns
// [ErrDeadlock] instead of blocking forever.
func (m *Mutex) Lock() error {
	cur, inFiber := m.sched.Current()

	m.mu.Lock()
	if m.ownerFiber == nil && !m.ownerNative {
		m.claim(cur, inFiber)
		m.mu.Unlock()
		return nil
	}
	if inFiber && m.deadlockCheck && m.ownerFiber == cur {
		m.mu.Unlock()
		return ErrDeadlock
	}

	w := &muWaiter{}
	if inFiber {
		w.fiberCtx = cur
	} else {
		w.nativeCh = make(chan struct{})
	}
	m.waiters = append(m.waiters, w)
	m.mu.Unlock()

	if inFiber {
		m.sched.Suspend(cur)
	} else {
		<-w.nativeCh
	}
	return nil
}

// TryLock acquires the mutex only if it is immediately free, without
// blocking.
func (m *Mutex) TryLock() bool {
	cur, inFiber := m.sched.Current()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ownerFiber != nil || m.ownerNative {
		return false
	}
	m.claim(cur, inFiber)
	return true
}

func (m *Mutex) claim(cur *fiber.Context, inFiber bool) {
	if inFiber {
		m.ownerFiber = cur
	} else {
		m.ownerNative = true
	}
}

// Unlock releases the mutex, handing ownership directly to the next
// waiter (if any) before waking it, so the waiter's Lock call returns
// already owning the mutex. Returns [ErrPermission] if the caller does
// not currently own it. A fiber caller must be the owning fiber; native
// (non-fiber) callers are not told apart, so any native caller may
// unlock a mutex locked by another native caller.
func (m *Mutex) Unlock() error {
	cur, inFiber := m.sched.Current()

	m.mu.Lock()
	if inFiber {
		if m.ownerNative || m.ownerFiber != cur {
			m.mu.Unlock()
			return ErrPermission
		}
	} else if !m.ownerNative {
		m.mu.Unlock()
		return ErrPermission
	}

	m.ownerFiber = nil
	m.ownerNative = false

	if len(m.waiters) == 0 {
		m.mu.Unlock()
		return nil
	}
	next := m.waiters[0]
	m.waiters = m.waiters[1:]
	m.claim(next.fiberCtx, next.fiberCtx != nil)
	m.mu.Unlock()

	next.wake(m.sched)
	return nil
}

// Locked reports whether the mutex is currently held by anyone.
func (m *Mutex) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ownerFiber != nil || m.ownerNative
}
