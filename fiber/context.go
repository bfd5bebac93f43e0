package fiber

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/fiberhost/ctxrt/stack"
)

// Context is a stackful coroutine bound to a [stack.Slot] and a user
// function. See the package doc for the invariants it upholds.
type Context struct {
	ID   ID
	Name string

	// StackSize is the advisory size the Context's Slot was acquired
	// with, recorded for observability only.
	StackSize stack.Size

	slot *stack.Slot

	stateMu sync.Mutex
	state   State

	// node and list record which container/list, if any, this Context
	// is currently linked into, enforcing invariant I2 (a Context is
	// linked into at most one queue at a time) for the lists that use
	// LinkTo: sched's ready queue. fsync's wait queues and the joiner
	// list below are plain slices of *Context and do not go through
	// this linkage.
	node *list.Element
	list *list.List

	// epoch is bumped on every wake this Context receives from a
	// condition variable or mutex handoff, letting a waiter detect that
	// it was woken for a different reason than the one it is currently
	// checking for (the "notification epoch" spurious-wakeup guard).
	epoch atomic.Uint64

	result any
	err    error

	// joinMu guards joiners, and serializes it against the single
	// state-and-result-publishing transition in Finish: whichever of
	// AddJoiner/RemoveJoiner/Finish acquires it first wins the race, so
	// a joiner added a moment before termination is never lost, and one
	// added after is told so directly rather than left waiting forever.
	joinMu  sync.Mutex
	joiners []*Context

	resumeCh chan struct{}
	parkCh   chan struct{}
	doneCh   chan struct{}
}

// NewContext constructs a Context in state Ready, bound to slot. id and
// name are caller-provided (minted by the owning scheduler's
// [IDCounter]).
func NewContext(id ID, name string, slot *stack.Slot, size stack.Size) *Context {
	return &Context{
		ID:        id,
		Name:      name,
		StackSize: size,
		slot:      slot,
		state:     Ready,
		resumeCh:  make(chan struct{}),
		parkCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// State returns the Context's current lifecycle state.
func (c *Context) State() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

// SetState transitions the Context to state. Only the owning scheduler,
// under the single-thread invariant, should call this.
func (c *Context) SetState(state State) {
	c.stateMu.Lock()
	c.state = state
	c.stateMu.Unlock()
}

// Epoch returns the current notification epoch. A waiter that records
// the epoch before blocking and compares it after resuming can tell a
// genuine wake (the scheduler routed it back through EnqueueReady) from
// merely observing stale queue state left over from some other race.
func (c *Context) Epoch() uint64 { return c.epoch.Load() }

// BumpEpoch increments and returns the new notification epoch. Called
// by [sched.Scheduler.EnqueueReady], the single point every mutex
// handoff, condition-variable notify, timer fire, and join re-enqueue
// routes a wake through.
func (c *Context) BumpEpoch() uint64 { return c.epoch.Add(1) }

// LinkTo records that this Context has been inserted into l at node,
// enforcing I2 by constructionthe Context must be Unlinked before it
// can be linked into a different list.
func (c *Context) LinkTo(l *list.List, node *list.Element) {
	if c.list != nil {
		panic("fiber: context linked into two lists at once")
	}
	c.list = l
	c.node = node
}

// Unlink removes this Context from whichever list it is linked into, if
// any, and clears the link.
func (c *Context) Unlink() {
	if c.list == nil {
		return
	}
	c.list.Remove(c.node)
	c.list = nil
	c.node = nil
}

// Linked reports whether this Context is currently linked into a list.
func (c *Context) Linked() bool {
	return c.list != nil
}

// Slot returns the stack.Slot carrying this Context's goroutine.
func (c *Context) Slot() *stack.Slot { return c.slot }

// Resume unblocks the carrier goroutine to continue running this
// Context's body. Exactly one goroutine may be unblocked at a time
// across a given scheduler; callers must hold that scheduler's baton.
func (c *Context) Resume() { c.resumeCh <- struct{}{} }

// WaitForResume blocks the calling (carrier) goroutine until Resume is
// called. It is called from inside the fiber body via the scheduler's
// yield/suspend path, never directly by user code.
func (c *Context) WaitForResume() { <-c.resumeCh }

// Park signals the scheduler's dispatch loop that this Context has
// stopped running for now, either because it suspended (yield, lock,
// cond wait, join) or because it is about to terminate. The dispatch
// loop is blocked in AwaitParked waiting for exactly this signal before
// it may hand the baton to another Context.
func (c *Context) Park() { c.parkCh <- struct{}{} }

// AwaitParked blocks the dispatch loop until the currently-running
// Context calls Park. Only the owning scheduler's single dispatch loop
// calls this.
func (c *Context) AwaitParked() { <-c.parkCh }

// Finish records the Context's terminal outcome, signals doneCh for any
// native Join waiters, and returns every fiber registered via AddJoiner
// so the owning scheduler can re-enqueue them (mirroring fsync's
// unlock-wakes-next-waiter handoff). Callers must re-enqueue the
// returned Contexts themselves; Finish only drains the list.
func (c *Context) Finish(result any, err error) []*Context {
	c.joinMu.Lock()
	c.result = result
	c.err = err
	c.SetState(Terminated)
	joiners := c.joiners
	c.joiners = nil
	close(c.doneCh)
	c.joinMu.Unlock()
	return joiners
}

// Done returns a channel closed once the Context has terminated.
func (c *Context) Done() <-chan struct{} { return c.doneCh }

// Result returns the Context's terminal result and error. Valid only
// after Done() is closed.
func (c *Context) Result() (any, error) { return c.result, c.err }

// AddJoiner registers j to be re-enqueued once this Context terminates.
// Returns false if this Context has already terminated, in which case
// there is nothing to wait for and j's result is already available via
// Result.
func (c *Context) AddJoiner(j *Context) bool {
	c.joinMu.Lock()
	defer c.joinMu.Unlock()
	if c.State() == Terminated {
		return false
	}
	c.joiners = append(c.joiners, j)
	return true
}

// RemoveJoiner removes j from the joiner list if it is still present,
// reporting whether it did. Used by a deadline racing termination: a
// false return means Finish already claimed j (this Context terminated
// first) and j has already been, or is about to be, re-enqueued.
func (c *Context) RemoveJoiner(j *Context) bool {
	c.joinMu.Lock()
	defer c.joinMu.Unlock()
	for i, w := range c.joiners {
		if w == j {
			c.joiners = append(c.joiners[:i], c.joiners[i+1:]...)
			return true
		}
	}
	return false
}
