package posix

import "github.com/fiberhost/ctxrt/fsync"

// RWLockT is the opaque storage for a pthread_rwlock_t, handle-indexed
// the same way as MutexT.
type RWLockT [8]byte

// RWLockAttrT is the opaque storage for a pthread_rwlockattr_t. Every
// accessor on it is an unsupported stub, matching the source.
type RWLockAttrT [8]byte

// RWLockInit initializes rw, discarding attr.
func (b *Bridge) RWLockInit(rw *RWLockT, attr *RWLockAttrT) error {
	h := b.nextHandle()
	b.rwlocks.store(h, fsync.NewSharedMutex(b.sched))
	setHandle(rw[:], h)
	return nil
}

// RWLockDestroy releases rw's backing SharedMutex, failing with ErrBusy
// if it is currently held in either mode or has waiters. The source's
// equivalent busy check is phrased as !can_lock_upgrade() || shares()
// || waiting(); can_lock_upgrade here means "exactly one reader could
// upgrade to a writer", which is false in the idle state too, so this
// checks the held/waiting conditions directly instead.
func (b *Bridge) RWLockDestroy(rw *RWLockT) error {
	sm, ok := b.rwlockFor(rw)
	if !ok {
		return ErrUnknownThread
	}
	if sm.Unique() || sm.Shares() != 0 || sm.Waiting() != 0 {
		return ErrBusy
	}
	b.rwlocks.delete(getHandle(rw[:]))
	setHandle(rw[:], 0)
	return nil
}

// RWLockRdLock blocks until rw is acquired for shared (read) access.
func (b *Bridge) RWLockRdLock(rw *RWLockT) error {
	sm, ok := b.rwlockFor(rw)
	if !ok {
		return ErrUnknownThread
	}
	return mapFsyncErr(sm.LockShared())
}

// RWLockTryRdLock acquires rw for shared access only if immediately
// free of writer contention.
func (b *Bridge) RWLockTryRdLock(rw *RWLockT) (bool, error) {
	sm, ok := b.rwlockFor(rw)
	if !ok {
		return false, ErrUnknownThread
	}
	return sm.TryLockShared(), nil
}

// RWLockWrLock blocks until rw is acquired for exclusive access.
func (b *Bridge) RWLockWrLock(rw *RWLockT) error {
	sm, ok := b.rwlockFor(rw)
	if !ok {
		return ErrUnknownThread
	}
	return mapFsyncErr(sm.Lock())
}

// RWLockTryWrLock acquires rw for exclusive access only if immediately
// free.
func (b *Bridge) RWLockTryWrLock(rw *RWLockT) (bool, error) {
	sm, ok := b.rwlockFor(rw)
	if !ok {
		return false, ErrUnknownThread
	}
	return sm.TryLock(), nil
}

// RWLockUnlock releases whichever kind of hold the caller has on rw.
// Unlike pthread_mutex_unlock, pthread_rwlock_unlock has no separate
// rdunlock/wrunlock entry points, so this branches on rw's current
// mode exactly as the source does (checking unique() first).
func (b *Bridge) RWLockUnlock(rw *RWLockT) error {
	sm, ok := b.rwlockFor(rw)
	if !ok {
		return ErrUnknownThread
	}
	if sm.Unique() {
		return mapFsyncErr(sm.Unlock())
	}
	if sm.Shares() == 0 {
		return ErrPermission
	}
	return mapFsyncErr(sm.UnlockShared())
}

func (b *Bridge) rwlockFor(rw *RWLockT) (*fsync.SharedMutex, bool) {
	return b.rwlocks.load(getHandle(rw[:]))
}
