// Package posix is a drop-in pthreads surface for code that expects to
// call libc thread primitives, backed by fibers instead of real OS
// threads whenever the caller is already running as one.
//
// Go offers no symbol-interposition mechanism equivalent to the
// linker --wrap tricks the source uses to intercept pthread_create et
// al. at the ABI boundary (this module exposes no C ABI to interpose
// in the first place). Per the chosen Go realization, Bridge is a
// dispatch table: a Go API whose methods are named after their libc
// counterparts and that decide, per call, whether to service it with a
// fiber.Context or to fall through to the corresponding genuine
// goroutine/OS-thread path. The routing predicate is not uniform across
// methods — see bridge.go.
package posix
