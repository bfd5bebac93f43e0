// Package fiber defines the Context type: a stackful coroutine bound to
// a [stack.Slot] and a user function, scheduled cooperatively by a
// sched.Scheduler.
//
// A Context moves through the states Ready, Running, Waiting and
// Terminated. Exactly one Context is Running at any instant within a
// given Scheduler (invariant I1); a Context is linked into at most one
// queue at a time (I2, enforced by Context.LinkTo for sched's ready
// queue); its
// Slot is exclusively owned for its lifetime (I3); and id(Current()) is
// stable and equal for every observer inside that Context (I4).
package fiber
