package fsync

import "github.com/fiberhost/ctxrt/fiber"

// Scheduler is the collaborator surface fsync needs from a
// *sched.Scheduler: knowing who is currently running, and the
// suspend/resume baton primitives. Declared as an interface so this
// package depends only on that contract; *sched.Scheduler satisfies it
// as-is.
type Scheduler interface {
	Current() (*fiber.Context, bool)
	Suspend(c *fiber.Context)
	EnqueueReady(c *fiber.Context)
}

