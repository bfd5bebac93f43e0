package fsync

import (
	"sync"

	"github.com/fiberhost/ctxrt/fiber"
)

// SharedMutex is a readers-writer lock with writer precedence: once a
// writer is waiting, new reader acquisitions block behind it even if
// the lock is currently only shared-held, preventing writer starvation.
// Grounded on spec.md §4.4.
type SharedMutex struct {
	sched Scheduler

	mu             sync.Mutex
	readers        int
	writerActive   bool
	writerFiber    *fiber.Context
	writerIsNative bool
	writersPending int
	readWaiters    []*muWaiter
	writeWaiters   []*muWaiter
}

// NewSharedMutex constructs a SharedMutex driven by sched.
func NewSharedMutex(sched Scheduler) *SharedMutex {
	return &SharedMutex{sched: sched}
}

// Lock acquires the lock for exclusive (unique) access.
func (m *SharedMutex) Lock() error {
	cur, inFiber := m.sched.Current()

	m.mu.Lock()
	if !m.writerActive && m.readers == 0 {
		m.claimUnique(cur, inFiber)
		m.mu.Unlock()
		return nil
	}
	m.writersPending++
	w := newWaiter(cur, inFiber)
	m.writeWaiters = append(m.writeWaiters, w)
	m.mu.Unlock()

	block(m.sched, cur, inFiber, w)
	return nil
}

// TryLock acquires the lock for exclusive access only if immediately
// free.
func (m *SharedMutex) TryLock() bool {
	cur, inFiber := m.sched.Current()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writerActive || m.readers > 0 {
		return false
	}
	m.claimUnique(cur, inFiber)
	return true
}

// LockShared acquires the lock for shared (read) access, blocking
// behind any pending or active writer.
func (m *SharedMutex) LockShared() error {
	cur, inFiber := m.sched.Current()

	m.mu.Lock()
	if !m.writerActive && m.writersPending == 0 {
		m.readers++
		m.mu.Unlock()
		return nil
	}
	w := newWaiter(cur, inFiber)
	m.readWaiters = append(m.readWaiters, w)
	m.mu.Unlock()

	block(m.sched, cur, inFiber, w)
	return nil
}

// TryLockShared acquires shared access only if immediately free of
// writer contention.
func (m *SharedMutex) TryLockShared() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writerActive || m.writersPending > 0 {
		return false
	}
	m.readers++
	return true
}

func (m *SharedMutex) claimUnique(cur *fiber.Context, inFiber bool) {
	m.writerActive = true
	if inFiber {
		m.writerFiber = cur
	} else {
		m.writerIsNative = true
	}
}

// Unlock releases an exclusive (unique) hold, returning [ErrPermission]
// if the caller does not hold it. A fiber caller must be the fiber that
// holds it; native (non-fiber) callers are not told apart, so any
// native caller may release an exclusive hold taken by another native
// caller.
func (m *SharedMutex) Unlock() error {
	cur, inFiber := m.sched.Current()

	m.mu.Lock()
	if !m.writerActive {
		m.mu.Unlock()
		return ErrPermission
	}
	if inFiber {
		if m.writerIsNative || m.writerFiber != cur {
			m.mu.Unlock()
			return ErrPermission
		}
	} else if !m.writerIsNative {
		m.mu.Unlock()
		return ErrPermission
	}

	m.writerActive = false
	m.writerFiber = nil
	m.writerIsNative = false
	m.releaseNextLocked()
	return nil
}

// UnlockShared releases one shared hold. The source does not track
// individual reader identity (any caller that incremented the share
// count may decrement it), so this does not check ownership beyond
// readers > 0.
func (m *SharedMutex) UnlockShared() error {
	m.mu.Lock()
	if m.readers == 0 {
		m.mu.Unlock()
		return ErrPermission
	}
	m.readers--
	if m.readers == 0 {
		m.releaseNextLocked()
		return nil
	}
	m.mu.Unlock()
	return nil
}

// releaseNextLocked must be called with mu held; it unlocks mu itself
// before waking anyone. Writer-precedence: a pending writer always goes
// next; otherwise every waiting reader is released together.
func (m *SharedMutex) releaseNextLocked() {
	if len(m.writeWaiters) > 0 {
		w := m.writeWaiters[0]
		m.writeWaiters = m.writeWaiters[1:]
		m.writersPending--
		m.claimUnique(w.fiberCtx, w.fiberCtx != nil)
		m.mu.Unlock()
		w.wake(m.sched)
		return
	}
	readers := m.readWaiters
	m.readWaiters = nil
	m.readers += len(readers)
	m.mu.Unlock()
	for _, w := range readers {
		w.wake(m.sched)
	}
}

// CanLockUpgrade reports whether the calling fiber, assumed to already
// hold a shared lock, could atomically upgrade to unique access: true
// only if it is the sole current reader and no writer is pending.
func (m *SharedMutex) CanLockUpgrade() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readers == 1 && !m.writerActive && m.writersPending == 0
}

// Shares reports the current number of shared holders.
func (m *SharedMutex) Shares() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readers
}

// Waiting reports the total number of blocked callers, readers and
// writers combined.
func (m *SharedMutex) Waiting() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.readWaiters) + len(m.writeWaiters)
}

// Unique reports whether the lock is currently held for exclusive
// access.
func (m *SharedMutex) Unique() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writerActive
}

func newWaiter(cur *fiber.Context, inFiber bool) *muWaiter {
	if inFiber {
		return &muWaiter{fiberCtx: cur}
	}
	return &muWaiter{nativeCh: make(chan struct{})}
}

func block(s Scheduler, cur *fiber.Context, inFiber bool, w *muWaiter) {
	if inFiber {
		s.Suspend(cur)
		return
	}
	<-w.nativeCh
}
