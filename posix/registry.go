package posix

import (
	"sync"

	"github.com/fiberhost/ctxrt/fiber"
)

// ThreadID is this package's analogue of pthread_t: an opaque handle
// returned by Create and accepted by Join, TimedJoin and SetName.
type ThreadID uint64

// registry tracks every ThreadID this Bridge created as a fiber, so
// Join/TimedJoin/SetName can implement the source's "is the id known to
// us" predicate, distinct from "is the caller a fiber" (see bridge.go).
// A ThreadID backed by a native passthrough goroutine (Create called
// from outside a fiber) is deliberately never registered here, mirroring
// the source never adding a __real_pthread_create result to ctxs.
type registry struct {
	mu    sync.Mutex
	byTID map[ThreadID]fiber.ID
	names map[ThreadID]string
}

func newRegistry() *registry {
	return &registry{
		byTID: make(map[ThreadID]fiber.ID),
		names: make(map[ThreadID]string),
	}
}

func (r *registry) add(tid ThreadID, fid fiber.ID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTID[tid] = fid
	r.names[tid] = name
}

func (r *registry) lookup(tid ThreadID) (fiber.ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fid, ok := r.byTID[tid]
	return fid, ok
}

func (r *registry) forget(tid ThreadID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byTID, tid)
	delete(r.names, tid)
}

func (r *registry) setName(tid ThreadID, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byTID[tid]; !ok {
		return false
	}
	r.names[tid] = name
	return true
}

func (r *registry) name(tid ThreadID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.names[tid]
	return name, ok
}
