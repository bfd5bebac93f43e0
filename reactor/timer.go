package reactor

import (
	"container/heap"
	"time"
)

// TimerHandle identifies a pending timer for [Reactor.CancelTimer].
type TimerHandle uint64

type timerEntry struct {
	handle   TimerHandle
	when     time.Time
	fn       func()
	canceled bool
}

// timerQueue is a min-heap of pending timers ordered by deadline,
// grounded on the teacher's use of container/heap for the same purpose
// (eventloop/loop.go's "timers heap.Interface").
type timerQueue []*timerEntry

func (q timerQueue) Len() int            { return len(q) }
func (q timerQueue) Less(i, j int) bool  { return q[i].when.Before(q[j].when) }
func (q timerQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *timerQueue) Push(x interface{}) { *q = append(*q, x.(*timerEntry)) }
func (q *timerQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// ScheduleTimer arranges for fn to run on the loop goroutine after delay
// has elapsed. It is safe to call from any goroutine. The returned
// handle may be passed to [Reactor.CancelTimer].
func (r *Reactor) ScheduleTimer(delay time.Duration, fn func()) (TimerHandle, error) {
	if fn == nil {
		panic("reactor: nil timer func")
	}
	if !r.state.CanAcceptWork() {
		return 0, ErrClosed
	}

	handle := TimerHandle(r.nextTimerID.Add(1))
	when := time.Now().Add(delay)
	entry := &timerEntry{handle: handle, when: when, fn: fn}

	r.timerMu.Lock()
	r.timerByHandle[handle] = entry
	r.timerMu.Unlock()

	err := r.postInternal(func() {
		r.timerMu.Lock()
		if entry.canceled {
			r.timerMu.Unlock()
			return
		}
		heap.Push(&r.timers, entry)
		r.timerMu.Unlock()
	})
	if err != nil {
		r.timerMu.Lock()
		delete(r.timerByHandle, handle)
		r.timerMu.Unlock()
		return 0, err
	}

	r.logf(LevelDebug, "timer", "scheduled", map[string]any{"handle": handle, "delay": delay})
	return handle, nil
}

// CancelTimer cancels a pending timer. Canceling a timer that has
// already fired, or was never issued by this Reactor, returns
// [ErrUnknownTimer].
func (r *Reactor) CancelTimer(handle TimerHandle) error {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()
	entry, ok := r.timerByHandle[handle]
	if !ok {
		return ErrUnknownTimer
	}
	entry.canceled = true
	delete(r.timerByHandle, handle)
	return nil
}

// runTimers executes every timer whose deadline has passed. It must only
// be called from the loop goroutine.
func (r *Reactor) runTimers() {
	now := time.Now()
	for {
		r.timerMu.Lock()
		if len(r.timers) == 0 || r.timers[0].when.After(now) {
			r.timerMu.Unlock()
			return
		}
		entry := heap.Pop(&r.timers).(*timerEntry)
		canceled := entry.canceled
		delete(r.timerByHandle, entry.handle)
		r.timerMu.Unlock()

		if canceled {
			continue
		}
		r.safeExecute(entry.fn)
	}
}

// nextTimerDelayMillis returns how long poll() may block before the earliest
// pending timer needs attention, capped by cfg.pollTimeout.
func (r *Reactor) nextTimerDelayMillis() int {
	cap := r.cfg.pollTimeout

	r.timerMu.Lock()
	defer r.timerMu.Unlock()
	if len(r.timers) == 0 {
		return cap
	}
	delay := r.timers[0].when.Sub(time.Now())
	if delay <= 0 {
		return 0
	}
	if ms := int(delay.Milliseconds()); ms < cap {
		if ms == 0 && delay > 0 {
			return 1
		}
		return ms
	}
	return cap
}
