// Package reactor implements the single-threaded event loop that drives
// the fiber scheduler: a FIFO task queue, a timer heap, and platform I/O
// readiness polling (epoll on Linux, kqueue on Darwin).
//
// # Architecture
//
// [Reactor] owns exactly one OS thread's worth of execution: everything
// submitted via [Reactor.Post] or scheduled via [Reactor.ScheduleTimer]
// runs on the goroutine that calls [Reactor.Run], never concurrently with
// itself. Callers on other goroutines only ever enqueue work; they never
// execute it directly.
//
// # Collaborator contract
//
// The scheduler package consumes exactly four methods of a Reactor:
// [Reactor.Post], [Reactor.ScheduleTimer], [Reactor.CancelTimer], and
// [Reactor.Idle]. Nothing else in this package is part of that contract;
// the rest exists to make those four methods correct and observable.
//
// # Platform support
//
// I/O readiness polling uses platform-native mechanisms:
//   - Linux: epoll
//   - Darwin: kqueue
//   - everything else: a no-op poller that rejects FD registration
//
// # Thread safety
//
// [Reactor.Post], [Reactor.ScheduleTimer] and [Reactor.CancelTimer] are
// safe to call from any goroutine. [Reactor.RegisterFD] and friends are
// likewise safe to call from any goroutine, though the registered
// callback always runs on the loop goroutine.
package reactor
