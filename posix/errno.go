package posix

import "errors"

// Sentinel errors reported by Bridge methods, convertible to the libc
// errno values the POSIX contract expects via [Errno].
var (
	// ErrPermission is EPERM: the caller does not own the resource it
	// tried to unlock.
	ErrPermission = errors.New("posix: operation not permitted")

	// ErrBusy is EBUSY: an attempt to destroy a resource that is
	// currently held or has waiters.
	ErrBusy = errors.New("posix: device or resource busy")

	// ErrDeadlock is EDEADLK: a deadlock-checked mutex was relocked by
	// its own owner.
	ErrDeadlock = errors.New("posix: resource deadlock avoided")

	// ErrTimedOut is ETIMEDOUT: a timed wait or join's deadline passed.
	ErrTimedOut = errors.New("posix: connection timed out")

	// ErrUnsupported is EINVAL: the operation is a carried-fidelity stub
	// that the source itself never implemented (cancellation, TLS,
	// spinlocks, barriers, scheduling/affinity, most attribute
	// accessors).
	ErrUnsupported = errors.New("posix: invalid argument")

	// ErrUnknownThread is reported by SetName given an id that this
	// Bridge's registry does not hold, and by mutex, rwlock and cond
	// calls on storage that was never initialized or was destroyed.
	ErrUnknownThread = errors.New("posix: unknown thread id")
)

// Errno converts one of this package's sentinel errors (Bridge methods
// map fsync's sentinels onto these before returning) to the libc
// errno value a caller emulating the pthreads ABI would need to
// surface. Returns 0 for nil and -1 for an error this function does not
// recognize.
func Errno(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrPermission):
		return 1 // EPERM
	case errors.Is(err, ErrUnknownThread):
		return 3 // ESRCH
	case errors.Is(err, ErrBusy):
		return 16 // EBUSY
	case errors.Is(err, ErrUnsupported):
		return 22 // EINVAL
	case errors.Is(err, ErrDeadlock):
		return 35 // EDEADLK
	case errors.Is(err, ErrTimedOut):
		return 110 // ETIMEDOUT
	default:
		return -1
	}
}
