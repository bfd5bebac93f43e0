package posix

import (
	"time"

	"github.com/fiberhost/ctxrt/fsync"
)

// CondT is the opaque storage for a pthread_cond_t, handle-indexed the
// same way as MutexT.
type CondT [8]byte

// CondAttrT is the opaque storage for a pthread_condattr_t.
type CondAttrT [8]byte

// CondAttrInit zero-fills attr. Unlike most *attr_init functions here
// (unsupported stubs), the source's pthread_condattr_init genuinely
// memsets the caller's storage before returning success — see
// SUPPLEMENTED FEATURES — so this does the same rather than treating
// it as a no-op, since a caller may legitimately inspect the bytes
// before cond_init.
func CondAttrInit(attr *CondAttrT) error {
	*attr = CondAttrT{}
	return nil
}

// CondInit initializes cond, discarding attr.
func (b *Bridge) CondInit(cond *CondT, attr *CondAttrT) error {
	h := b.nextHandle()
	b.conds.store(h, fsync.NewCond(b.sched))
	setHandle(cond[:], h)
	return nil
}

// CondDestroy releases cond's backing Cond, failing with ErrBusy if it
// currently has waiters.
func (b *Bridge) CondDestroy(cond *CondT) error {
	c, ok := b.condFor(cond)
	if !ok {
		return ErrUnknownThread
	}
	if !c.Empty() {
		return ErrBusy
	}
	b.conds.delete(getHandle(cond[:]))
	setHandle(cond[:], 0)
	return nil
}

// CondSignal wakes at most one waiter.
func (b *Bridge) CondSignal(cond *CondT) error {
	c, ok := b.condFor(cond)
	if !ok {
		return ErrUnknownThread
	}
	c.Notify()
	return nil
}

// CondBroadcast wakes every current waiter.
func (b *Bridge) CondBroadcast(cond *CondT) error {
	c, ok := b.condFor(cond)
	if !ok {
		return ErrUnknownThread
	}
	c.NotifyAll()
	return nil
}

// CondWait atomically releases m and blocks until a signal/broadcast
// wakes this caller, then reacquires m before returning.
func (b *Bridge) CondWait(cond *CondT, m *MutexT) error {
	c, ok := b.condFor(cond)
	if !ok {
		return ErrUnknownThread
	}
	mu, ok := b.mutexFor(m)
	if !ok {
		return ErrUnknownThread
	}
	return mapFsyncErr(c.Wait(mu))
}

// CondTimedWait is CondWait with a deadline, returning ErrTimedOut if
// it passes before a notification arrives.
func (b *Bridge) CondTimedWait(cond *CondT, m *MutexT, deadline time.Time) error {
	c, ok := b.condFor(cond)
	if !ok {
		return ErrUnknownThread
	}
	mu, ok := b.mutexFor(m)
	if !ok {
		return ErrUnknownThread
	}
	outcome, err := c.WaitUntil(mu, deadline)
	if err != nil {
		return mapFsyncErr(err)
	}
	if outcome == fsync.TimedOut {
		return ErrTimedOut
	}
	return nil
}

func (b *Bridge) condFor(cond *CondT) (*fsync.Cond, bool) {
	return b.conds.load(getHandle(cond[:]))
}
