package fiber

import "sync/atomic"

// ID identifies a Context within the scheduler that created it. Ids are
// process-unique only within their owning scheduler; two unrelated
// schedulers may mint the same numeric id, matching the source's
// parallelism model where independent runtimes never share state.
type ID uint64

// IDCounter mints strictly increasing, non-zero ids. It is owned by a
// single sched.Scheduler instance; there is no shared global counter.
type IDCounter struct {
	next atomic.Uint64
}

// Next returns the next id from the counter, starting at 1 (0 is
// reserved as "no id" / the zero value of ID).
func (c *IDCounter) Next() ID {
	return ID(c.next.Add(1))
}
