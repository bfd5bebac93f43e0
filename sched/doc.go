// Package sched implements the fiber scheduler: it submits, dispatches
// and joins [fiber.Context] values on top of a [reactor.Reactor].
//
// There is no analog of this coroutine-dispatch logic in the teacher
// corpus — reactors and event loops dispatch callbacks, not resumable
// user-space threads of control — so this package is written fresh, in
// the teacher's idiom (functional options, sentinel errors, a small
// exported surface), to satisfy the invariant that exactly one fiber is
// RUNNING at any instant within a given Scheduler.
//
// # Baton discipline
//
// A Scheduler's dispatch loop ("pump") runs exclusively on its
// Reactor's loop goroutine. For each ready Context it holds, pump calls
// Context.Resume to unblock that Context's carrier goroutine, then
// blocks on Context.AwaitParked until that goroutine either suspends
// (yield, lock contention, condition wait, join) or terminates. Because
// pump never proceeds to the next Context until the current one parks,
// at most one fiber-carrier goroutine is ever unblocked at a time.
// Current answers "which Context is the calling goroutine running" from
// a mutex-guarded map keyed by goroutine id: each carrier goroutine
// binds its own entry when its Context first resumes and removes it when
// the body returns, so a goroutine that is not a fiber carrier never
// sees a Context, whatever pump is dispatching at the time.
package sched
