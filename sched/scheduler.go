package sched

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fiberhost/ctxrt/fiber"
	"github.com/fiberhost/ctxrt/reactor"
	"github.com/fiberhost/ctxrt/stack"
)

// Func is a fiber body. arg is whatever was passed to Submit; the
// returned result and error become visible to Join.
type Func func(arg any) (any, error)

// Reactor is the collaborator surface sched needs: Post, ScheduleTimer,
// CancelTimer and Idle. Declared as an interface here (rather than
// depending on *reactor.Reactor directly) so the scheduler only ever
// touches this contract, matching SPEC_FULL.md §6; *reactor.Reactor
// satisfies it as-is.
type Reactor interface {
	Post(fn func()) error
	ScheduleTimer(delay time.Duration, fn func()) (reactor.TimerHandle, error)
	CancelTimer(handle reactor.TimerHandle) error
	Idle(fn func())
}

// Scheduler dispatches and joins fiber.Context values cooperatively on
// top of a Reactor, enforcing "exactly one Context RUNNING at any
// instant" via strict baton handoff. See the package doc for the
// discipline that makes this correct.
type Scheduler struct {
	rx   Reactor
	pool *stack.Pool
	ids  fiber.IDCounter
	log  Logger

	ready Queue

	mu       sync.Mutex
	registry map[fiber.ID]*fiber.Context
	joined   map[fiber.ID]bool

	// current maps a carrier goroutine's id to the fiber.Context it is
	// currently running, keyed by getGoroutineID rather than held in a
	// single scheduler-wide field: a genuine native goroutine (a POSIX
	// bridge passthrough thread, or any other caller outside the fiber
	// machinery) must never be mistaken for whichever fiber happens to
	// be mid-dispatch on some other goroutine at the same instant.
	// runCarrier binds and unbinds its own goroutine's entry for the
	// full lifetime of the fiber body it runs, across every yield and
	// resume, since Dispatch keeps that body on one goroutine throughout.
	currentMu sync.Mutex
	current   map[uint64]*fiber.Context

	// idleRounds counts how many loop iterations rx has reported as
	// idle (no task, no timer) since this Scheduler was constructed —
	// every such round means the ready queue was empty, i.e. every
	// fiber was blocked, which is the switch hint spec.md §6 describes.
	idleRounds atomic.Uint64
}

// New constructs a Scheduler driven by rx.
func New(rx Reactor, opts ...Option) *Scheduler {
	cfg := resolveOptions(opts)
	s := &Scheduler{
		rx:       rx,
		pool:     stack.New(cfg.poolSize),
		log:      cfg.logger,
		registry: make(map[fiber.ID]*fiber.Context),
		joined:   make(map[fiber.ID]bool),
		current:  make(map[uint64]*fiber.Context),
	}
	rx.Idle(s.onIdle)
	return s
}

// onIdle is registered with the Reactor's idle callback at construction
// time and runs once per loop iteration in which nothing else ran —
// i.e. every fiber is currently blocked. Used only for observability;
// nothing in the dispatch path depends on it firing.
func (s *Scheduler) onIdle() {
	s.idleRounds.Add(1)
	s.log.Debugf("sched: idle, ready queue empty")
}

// IdleRounds reports how many idle signals this Scheduler has observed
// from its Reactor since construction, for tests and watchdog-style
// diagnostics built on top of "every fiber is blocked" detection.
func (s *Scheduler) IdleRounds() uint64 {
	return s.idleRounds.Load()
}

// getGoroutineID returns the calling goroutine's id, parsed out of the
// header line runtime.Stack prints ("goroutine 37 [running]: ...").
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}

// bindCurrent records that the calling goroutine is now running c, for
// the whole of c's body regardless of how many times it yields and
// resumes (Dispatch never moves that body to a different goroutine
// mid-flight). Called once by runCarrier, never by user code.
func (s *Scheduler) bindCurrent(c *fiber.Context) {
	gid := getGoroutineID()
	s.currentMu.Lock()
	s.current[gid] = c
	s.currentMu.Unlock()
}

// unbindCurrent clears the calling goroutine's entry once its fiber
// body has returned.
func (s *Scheduler) unbindCurrent() {
	gid := getGoroutineID()
	s.currentMu.Lock()
	delete(s.current, gid)
	s.currentMu.Unlock()
}

// Submit creates a Context running fn(arg) and enqueues it READY,
// returning its stable id. Stack allocation failure is fatal to the
// caller, matching spec.md §4.1: this panics with a wrapped
// stack.ErrExhausted/ErrClosed rather than returning an error.
func (s *Scheduler) Submit(fn Func, arg any, opts ...SubmitOption) fiber.ID {
	if fn == nil {
		panic(&ProgrammingError{Msg: "submit with nil func"})
	}
	cfg := resolveSubmitOptions(opts)

	slot, err := s.pool.Acquire(cfg.stackSize)
	if err != nil {
		panic(fmt.Errorf("sched: submit: %w", err))
	}

	id := s.ids.Next()
	name := cfg.name
	if name == "" {
		name = fmt.Sprintf("fiber-%d", id)
	}
	c := fiber.NewContext(id, name, slot, cfg.stackSize)

	s.mu.Lock()
	s.registry[id] = c
	s.mu.Unlock()

	go s.runCarrier(c, fn, arg)

	switch cfg.mode {
	case ModeDispatch:
		if cur, ok := s.Current(); ok {
			s.ready.PushFront(c)
			s.yieldCurrent(cur)
			return id
		}
		fallthrough
	default:
		s.ready.PushBack(c)
		s.kick()
	}
	return id
}

// Current returns the fiber.Context the *calling goroutine* is
// currently running as, if any. It is keyed on the caller's own
// goroutine id (see bindCurrent), not on whatever fiber happens to be
// mid-dispatch scheduler-wide, so a genuinely native caller (a POSIX
// bridge passthrough thread, or any other goroutine outside the fiber
// machinery) reliably sees ok == false even while some unrelated fiber
// is running concurrently on its own carrier goroutine.
func (s *Scheduler) Current() (*fiber.Context, bool) {
	gid := getGoroutineID()
	s.currentMu.Lock()
	c, ok := s.current[gid]
	s.currentMu.Unlock()
	return c, ok
}

// Yield cooperatively suspends the calling fiber, allowing other ready
// fibers to run, then resumes it. ctx is checked for cancellation only
// once the fiber is resumed — cancellation never preempts a running
// fiber, matching the cooperative contract. Yielding from outside a
// fiber is a programming error and panics.
func (s *Scheduler) Yield(ctx context.Context) error {
	cur, ok := s.Current()
	if !ok {
		panic(&ProgrammingError{Msg: "yield called from outside a fiber"})
	}
	s.yieldCurrent(cur)
	if ctx != nil {
		return ctx.Err()
	}
	return nil
}

// yieldCurrent re-enqueues cur at the tail of the ready queue and parks
// it until pump gives it the baton again.
func (s *Scheduler) yieldCurrent(cur *fiber.Context) {
	cur.SetState(fiber.Ready)
	s.ready.PushBack(cur)
	s.Suspend(cur)
}

// Suspend parks the calling fiber's carrier goroutine until something
// resumes it via EnqueueReady (or equivalent). Callers are responsible
// for having already linked c into whatever wait queue will eventually
// wake it; Suspend only performs the handoff back to pump. Exported for
// use by the fsync package's lock/condition-variable implementations.
func (s *Scheduler) Suspend(c *fiber.Context) {
	c.Park()
	c.WaitForResume()
}

// EnqueueReady moves c onto the ready queue and kicks the dispatch loop.
// Used by fsync when a wait condition is satisfied (unlock, notify,
// timer fire). c must not currently be linked into any other queue.
// Every wake that routes through here bumps c's notification epoch,
// since this is the single chokepoint every fsync handoff and every
// Join/JoinUntil re-enqueue passes through.
func (s *Scheduler) EnqueueReady(c *fiber.Context) {
	c.BumpEpoch()
	c.SetState(fiber.Ready)
	s.ready.PushBack(c)
	s.kick()
}

// kick schedules a pump pass if one isn't already running or pending.
// Multiple kicks may harmlessly coalesce into a single pump pass, or
// queue several no-op passes if the ready queue empties between them;
// either is correct, just not maximally efficient.
func (s *Scheduler) kick() {
	_ = s.rx.Post(s.pump)
}

// pump is the scheduler's dispatch loop. It must only ever run on the
// Reactor's loop goroutine (guaranteed by always reaching pump through
// rx.Post).
func (s *Scheduler) pump() {
	for {
		c, ok := s.ready.PopFront()
		if !ok {
			return
		}

		c.SetState(fiber.Running)
		c.Resume()
		c.AwaitParked()

		if c.State() == fiber.Terminated {
			s.finalize(c)
		}
	}
}

// finalize releases a terminated Context's slot back to the pool. The
// Context itself stays in the registry, with its result available,
// whether or not it is ever joined: Join does not remove it, and the
// entry is what lets a second Join of the same id be detected.
func (s *Scheduler) finalize(c *fiber.Context) {
	s.pool.Release(c.Slot())
	s.log.Debugf("sched: context %d (%s) terminated", c.ID, c.Name)
}

// runCarrier is the body handed to the fiber's stack.Slot. It blocks
// waiting for the first Resume, runs fn, records the outcome, and parks
// one last time so pump can observe termination.
func (s *Scheduler) runCarrier(c *fiber.Context, fn Func, arg any) {
	c.Slot().Dispatch(func() {
		c.WaitForResume()
		s.bindCurrent(c)
		result, err := runGuarded(fn, arg)
		s.unbindCurrent()
		joiners := c.Finish(result, err)
		for _, j := range joiners {
			s.EnqueueReady(j)
		}
		c.Park()
	})
}

func runGuarded(fn Func, arg any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &fiber.PanicError{Value: r}
		}
	}()
	return fn(arg)
}

// Join blocks until the Context identified by id has terminated, then
// returns its result and error. Joining an id this Scheduler never
// issued returns (nil, fiber.ErrCanceled) rather than panicking
// (mirrors the source's "not found, fall through to PTHREAD_CANCELED"
// behavior). Joining an id that was already joined once is a
// programming error and panics.
//
// If the caller is itself a fiber, it suspends through the same
// Suspend/EnqueueReady baton handoff every other fsync suspension point
// uses (see fiber.Context.AddJoiner), rather than blocking the carrier
// goroutine directly on c.Done(): that carrier goroutine is the one
// pump is synchronously waiting on in AwaitParked, so blocking it
// outside the baton protocol would wedge the whole reactor rather than
// just the calling fiber. A native (non-fiber) caller has no baton to
// hold, so it blocks directly on c.Done().
func (s *Scheduler) Join(id fiber.ID) (any, error) {
	c, err := s.beginJoin(id)
	if err != nil {
		return nil, err
	}
	if cur, ok := s.Current(); ok {
		if c.AddJoiner(cur) {
			s.Suspend(cur)
		}
		return c.Result()
	}
	<-c.Done()
	return c.Result()
}

// JoinUntil is Join with a deadline. It returns ErrTimedOut if deadline
// passes before the context terminates. The in-fiber path races a real
// timer against termination exactly like fsync's Cond.WaitUntil: the
// timer removes the caller from the joiner list and re-enqueues it
// itself if it fires first, otherwise Finish's own handoff wins and the
// timer is a no-op (mirrors spec.md §5's "whichever reached the queue
// head first wins").
func (s *Scheduler) JoinUntil(id fiber.ID, deadline time.Time) (any, error) {
	c, err := s.beginJoin(id)
	if err != nil {
		return nil, err
	}

	cur, inFiber := s.Current()
	if !inFiber {
		select {
		case <-c.Done():
			return c.Result()
		case <-time.After(time.Until(deadline)):
			return nil, ErrTimedOut
		}
	}

	if !c.AddJoiner(cur) {
		return c.Result()
	}

	timedOut := make(chan struct{})
	timer := time.AfterFunc(time.Until(deadline), func() {
		if c.RemoveJoiner(cur) {
			close(timedOut)
			s.EnqueueReady(cur)
		}
	})

	s.Suspend(cur)
	timer.Stop()

	select {
	case <-timedOut:
		return nil, ErrTimedOut
	default:
	}
	return c.Result()
}

func (s *Scheduler) beginJoin(id fiber.ID) (*fiber.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.registry[id]
	if !ok {
		return nil, fiber.ErrCanceled
	}
	if s.joined[id] {
		panic(&ProgrammingError{Msg: fmt.Sprintf("context %d joined twice", id)})
	}
	s.joined[id] = true
	return c, nil
}
