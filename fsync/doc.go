// Package fsync provides the synchronization primitives fibers block
// on: [Mutex], [SharedMutex] and [Cond]. Each is built directly on top
// of a [sched.Scheduler]'s Suspend/EnqueueReady baton primitives — there
// is no teacher-repo equivalent of these (the teacher's eventloop
// package has nothing resembling a blocking mutex; blocking is exactly
// what an event loop avoids), so these are grounded directly on
// spec.md §4.3-4.5's invariants rather than on any specific teacher
// file, following the teacher's general idiom (functional options,
// sentinel errors, FIFO wait queues kept as plain mutex-guarded slices
// of waiters, since each waiter may be either a fiber or a genuine
// native goroutine blocked on a channel — a shape sched.Queue, which
// only holds *fiber.Context, doesn't fit).
package fsync
