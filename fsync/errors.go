package fsync

import "errors"

var (
	// ErrPermission is returned by Unlock when the calling fiber does not
	// own the lock (EPERM in the POSIX bridge).
	ErrPermission = errors.New("fsync: not the owner")

	// ErrBusy names the EBUSY case of an object that is still in use.
	// No operation of this package returns it; Errno maps it.
	ErrBusy = errors.New("fsync: busy")

	// ErrDeadlock is returned by Lock, when deadlock checking is enabled,
	// if the calling fiber already owns the lock (EDEADLK).
	ErrDeadlock = errors.New("fsync: deadlock detected")

	// ErrTimedOut names the ETIMEDOUT case. No operation of this package
	// returns it: WaitUntil reports a passed deadline as a TimedOut
	// status with a nil error. Errno maps it.
	ErrTimedOut = errors.New("fsync: timed out")
)

// Errno converts one of this package's sentinel errors to the libc
// errno value the POSIX bridge reports for it, returning 0 for nil and
// -1 for an error this package did not define.
func Errno(err error) int {
	switch err {
	case nil:
		return 0
	case ErrPermission:
		return 1 // EPERM
	case ErrBusy:
		return 16 // EBUSY
	case ErrDeadlock:
		return 35 // EDEADLK
	case ErrTimedOut:
		return 110 // ETIMEDOUT
	default:
		return -1
	}
}
