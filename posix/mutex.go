package posix

import (
	"errors"

	"github.com/fiberhost/ctxrt/fsync"
)

// MutexT is the opaque storage for a pthread_mutex_t. Its first 8
// bytes hold a handle minted by MutexInit, resolved against this
// Bridge's internal table; the zero value is "uninitialized", matching
// a pthread_mutex_t that has not yet been passed to pthread_mutex_init.
// See handles.go for why this is a handle rather than a placement-new
// fsync.Mutex the way the source does it.
type MutexT [8]byte

// MutexAttrT is the opaque storage for a pthread_mutexattr_t. Every
// accessor on it is an unsupported stub, matching the source exactly.
type MutexAttrT [8]byte

// MutexInit initializes m, discarding attr (mutex attributes are an
// unsupported stub, see unsupported.go).
func (b *Bridge) MutexInit(m *MutexT, attr *MutexAttrT) error {
	h := b.nextHandle()
	b.mutexes.store(h, fsync.NewMutex(b.sched))
	setHandle(m[:], h)
	return nil
}

// MutexDestroy releases m's backing Mutex, failing with ErrBusy if it
// is currently held.
func (b *Bridge) MutexDestroy(m *MutexT) error {
	mu, ok := b.mutexFor(m)
	if !ok {
		return ErrUnknownThread
	}
	if mu.Locked() {
		return ErrBusy
	}
	b.mutexes.delete(getHandle(m[:]))
	setHandle(m[:], 0)
	return nil
}

// MutexLock blocks until m is acquired.
func (b *Bridge) MutexLock(m *MutexT) error {
	mu, ok := b.mutexFor(m)
	if !ok {
		return ErrUnknownThread
	}
	return mapFsyncErr(mu.Lock())
}

// MutexTryLock acquires m only if immediately free.
func (b *Bridge) MutexTryLock(m *MutexT) (bool, error) {
	mu, ok := b.mutexFor(m)
	if !ok {
		return false, ErrUnknownThread
	}
	return mu.TryLock(), nil
}

// MutexUnlock releases m, failing with ErrPermission if the caller does
// not hold it.
func (b *Bridge) MutexUnlock(m *MutexT) error {
	mu, ok := b.mutexFor(m)
	if !ok {
		return ErrUnknownThread
	}
	return mapFsyncErr(mu.Unlock())
}

func (b *Bridge) mutexFor(m *MutexT) (*fsync.Mutex, bool) {
	return b.mutexes.load(getHandle(m[:]))
}

func mapFsyncErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fsync.ErrPermission):
		return ErrPermission
	case errors.Is(err, fsync.ErrDeadlock):
		return ErrDeadlock
	case errors.Is(err, fsync.ErrBusy):
		return ErrBusy
	case errors.Is(err, fsync.ErrTimedOut):
		return ErrTimedOut
	default:
		return err
	}
}
