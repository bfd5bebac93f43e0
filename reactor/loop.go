package reactor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Reactor is a single-threaded event loop: a FIFO task queue, a timer
// heap, and platform I/O readiness polling, all driven by one call to
// [Reactor.Run]. It is the collaborator the fiber scheduler runs on top
// of, grounded on eventloop/loop.go's Loop.
type Reactor struct {
	cfg    *options
	logger Logger
	state  *fastState

	external taskQueue
	internal taskQueue

	timerMu       sync.Mutex
	timers        timerQueue
	timerByHandle map[TimerHandle]*timerEntry
	nextTimerID   atomic.Uint64

	poller poller
	wake   *wakeSignal

	wakePending atomic.Bool
	inflight    atomic.Int64

	idleMu  sync.Mutex
	idleFns []func()

	runStarted atomic.Bool
	done       chan struct{}
}

// New constructs a Reactor. The returned Reactor must be driven by a
// single call to [Reactor.Run]; it does nothing on its own until then.
func New(opts ...Option) (*Reactor, error) {
	cfg := resolveOptions(opts)

	wake, err := newWakeSignal()
	if err != nil {
		return nil, fmt.Errorf("reactor: create wake signal: %w", err)
	}

	r := &Reactor{
		cfg:           cfg,
		logger:        cfg.logger,
		state:         newFastState(),
		timerByHandle: make(map[TimerHandle]*timerEntry),
		poller:        newPoller(),
		wake:          wake,
		done:          make(chan struct{}),
	}

	if err := r.poller.Init(); err != nil {
		_ = wake.close()
		return nil, fmt.Errorf("reactor: init poller: %w", err)
	}
	if fd := wake.readFD(); fd >= 0 {
		if err := r.poller.RegisterFD(fd, EventRead, func(IOEvents) { r.wake.drain() }); err != nil {
			_ = r.poller.Close()
			_ = wake.close()
			return nil, fmt.Errorf("reactor: register wake fd: %w", err)
		}
	}

	return r, nil
}

// State returns the Reactor's current lifecycle state.
func (r *Reactor) State() State {
	return r.state.Load()
}

// Post enqueues fn to run on the loop goroutine. Safe to call from any
// goroutine, including from within a task running on the loop itself.
// Returns [ErrClosed] once the Reactor has fully terminated.
func (r *Reactor) Post(fn func()) error {
	if fn == nil {
		panic("reactor: nil task func")
	}
	if !r.state.CanAcceptWork() {
		return ErrClosed
	}
	r.inflight.Add(1)
	r.external.push(fn)
	r.wakeIfSleeping()
	return nil
}

// postInternal enqueues fn to run on the loop goroutine ahead of the
// external queue, used for bookkeeping the loop does on its own behalf
// (e.g. inserting a newly scheduled timer into the heap). Unexported: only this package's own
// machinery submits internal work.
func (r *Reactor) postInternal(fn func()) error {
	if !r.state.CanAcceptWork() {
		return ErrClosed
	}
	r.internal.push(fn)
	r.wakeIfSleeping()
	return nil
}

func (r *Reactor) wakeIfSleeping() {
	if r.state.Load() != StateSleeping {
		return
	}
	if r.wakePending.CompareAndSwap(false, true) {
		if err := r.wake.signal(); err != nil {
			r.logf(LevelWarn, "wake", "signal failed", map[string]any{"err": err})
		}
	}
}

// Idle registers fn to run once per loop iteration in which both task
// queues were empty and no timer fired before polling for I/O. The
// scheduler uses this to notice "every fiber is blocked" without the
// Reactor knowing anything about fibers.
func (r *Reactor) Idle(fn func()) {
	if fn == nil {
		panic("reactor: nil idle func")
	}
	r.idleMu.Lock()
	r.idleFns = append(r.idleFns, fn)
	r.idleMu.Unlock()
}

// Run drives the Reactor until ctx is canceled or Quit/Shutdown is
// called. It must be called exactly once.
func (r *Reactor) Run(ctx context.Context) error {
	if !r.runStarted.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(r.done)

	if !r.state.TryTransition(StateAwake, StateRunning) {
		return ErrAlreadyRunning
	}
	r.logf(LevelInfo, "loop", "started", nil)

	stopCh := make(chan struct{})
	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				_ = r.Quit()
			case <-stopCh:
			}
		}()
		defer close(stopCh)
	}

	for {
		ran := r.tick()

		if r.state.Load() == StateTerminating {
			if r.external.len() == 0 && r.internal.len() == 0 {
				r.state.Store(StateTerminated)
				break
			}
		}

		if !ran {
			if r.state.Load() == StateRunning {
				r.state.TryTransition(StateRunning, StateSleeping)
			}
			timeout := r.nextTimerDelayMillis()
			r.wakePending.Store(false)
			if _, err := r.poller.Poll(timeout); err != nil {
				r.logf(LevelError, "poll", "poll error", map[string]any{"err": err})
			}
			r.state.TryTransition(StateSleeping, StateRunning)
		}
	}

	r.closeResources()
	r.logf(LevelInfo, "loop", "stopped", nil)
	return nil
}

// tick drains one round of internal work, external work, and fired
// timers. It returns true if anything ran.
func (r *Reactor) tick() bool {
	ran := false

	for _, fn := range r.internal.popAll() {
		r.safeExecute(fn)
		ran = true
	}

	for _, fn := range r.external.popAll() {
		r.safeExecute(fn)
		r.inflight.Add(-1)
		ran = true
	}

	before := r.timersLen()
	r.runTimers()
	if r.timersLen() != before {
		ran = true
	}

	if !ran {
		r.runIdle()
	}

	return ran
}

func (r *Reactor) timersLen() int {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()
	return len(r.timers)
}

func (r *Reactor) runIdle() {
	r.idleMu.Lock()
	fns := append([]func(){}, r.idleFns...)
	r.idleMu.Unlock()
	for _, fn := range fns {
		r.safeExecute(fn)
	}
}

// Quit asks the Reactor to stop after draining work already queued. It
// is idempotent and safe to call from any goroutine, including from a
// task running on the loop itself.
func (r *Reactor) Quit() error {
	for {
		cur := r.state.Load()
		if cur == StateTerminating || cur == StateTerminated {
			return nil
		}
		if r.state.TryTransition(cur, StateTerminating) {
			r.wakeIfSleeping()
			return nil
		}
	}
}

// Shutdown calls Quit and then blocks until Run has returned or ctx is
// canceled, whichever comes first.
func (r *Reactor) Shutdown(ctx context.Context) error {
	if err := r.Quit(); err != nil {
		return err
	}
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reactor) closeResources() {
	if err := r.poller.Close(); err != nil {
		r.logf(LevelWarn, "loop", "poller close failed", map[string]any{"err": err})
	}
	if err := r.wake.close(); err != nil {
		r.logf(LevelWarn, "loop", "wake close failed", map[string]any{"err": err})
	}
}

// safeExecute runs fn, recovering and logging any panic rather than
// letting it take down the loop goroutine.
func (r *Reactor) safeExecute(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logf(LevelError, "loop", "task panic", map[string]any{"panic": rec})
		}
	}()
	fn()
}
