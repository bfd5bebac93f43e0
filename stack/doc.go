// Package stack provides a recycling pool of fiber carriers.
//
// Go offers no portable, cgo-free way to hand-roll a guarded, fixed-size
// execution stack and switch to it by saving/restoring the non-volatile
// register set (the way the source this runtime is modeled on uses a
// third-party ucontext-style fiber library). Instead, each pooled [Slot]
// is a long-lived goroutine parked on a resume channel: acquiring a Slot
// hands it a function to run and a baton; the goroutine runs that
// function to completion and parks
// again. This bounds the number of concurrently live fiber-carrier
// goroutines the way the original bounds concurrently live stacks, and
// preserves exclusive ownership (a Slot is never handed to two callers
// at once) structurally — but there is no read-protected guard region,
// because there is no user-addressable stack to protect.
package stack
