//go:build linux

package posix

import "golang.org/x/sys/unix"

// nativeTID returns the calling OS thread's kernel thread id, giving
// the native (non-fiber) passthrough path an identity that is
// observably distinct from a fiber's ThreadID, matching spec.md §8
// scenario 5. The caller must have already called
// runtime.LockOSThread, or this id is only valid until the Go runtime
// migrates the calling goroutine to a different OS thread.
func nativeTID() uint64 {
	return uint64(unix.Gettid())
}
