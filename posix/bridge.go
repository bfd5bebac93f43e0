package posix

import (
	"sync/atomic"

	"github.com/fiberhost/ctxrt/fsync"
	"github.com/fiberhost/ctxrt/sched"
)

// Bridge is the pthreads dispatch table: a set of methods named after
// their libc counterparts, each deciding internally whether to service
// the call cooperatively (the caller, or the target, is governed by
// sched) or to fall through to a genuinely concurrent goroutine/OS
// thread. See bridge's two routing predicates, implemented by OnFiber
// and by the registry's lookups respectively.
type Bridge struct {
	sched *sched.Scheduler
	log   Logger
	reg   *registry

	handles atomic.Uint64

	mutexes primitiveTable[*fsync.Mutex]
	rwlocks primitiveTable[*fsync.SharedMutex]
	conds   primitiveTable[*fsync.Cond]
}

// New constructs a Bridge that creates fiber-backed threads on s.
func New(s *sched.Scheduler, opts ...Option) *Bridge {
	cfg := resolveOptions(opts)
	return &Bridge{
		sched:   s,
		log:     cfg.logger,
		reg:     newRegistry(),
		mutexes: newPrimitiveTable[*fsync.Mutex](),
		rwlocks: newPrimitiveTable[*fsync.SharedMutex](),
		conds:   newPrimitiveTable[*fsync.Cond](),
	}
}

// OnFiber reports whether the calling goroutine is currently executing
// as a fiber under this Bridge's scheduler. Create, Self and Yield use
// this predicate — "is the *caller* a fiber" — which is a different
// question from the one Join, TimedJoin and SetName ask ("is the
// *target* id known to our registry"); conflating the two was easy to
// do reading the source's is() helper out of context, so this package
// keeps them as two distinct code paths rather than one shared check.
func (b *Bridge) OnFiber() bool {
	_, ok := b.sched.Current()
	return ok
}

func (b *Bridge) nextHandle() uint64 {
	return b.handles.Add(1)
}
