package posix

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/fiberhost/ctxrt/sched"
)

// ThreadFunc is a bridge-created thread's body, mirroring pthread's
// void *(*)(void *) start routine via Go's any/error idiom.
type ThreadFunc func(arg any) (any, error)

// Create starts a new thread running fn(arg). If the caller is
// currently a fiber, the new thread is itself a fiber, submitted on the
// same scheduler (spec.md §4.1's submit, matching the source's
// ircd_pthread_create using context::POST with a one-mebibyte stack).
// Otherwise it is a genuine OS thread: a goroutine pinned with
// runtime.LockOSThread for the duration of fn, not tracked by this
// Bridge's registry, mirroring the source's fallthrough to the real
// pthread_create for non-ctx callers.
func (b *Bridge) Create(fn ThreadFunc, arg any, opts ...sched.SubmitOption) (ThreadID, error) {
	if fn == nil {
		return 0, fmt.Errorf("posix: create with nil func")
	}

	if b.OnFiber() {
		fid := b.sched.Submit(sched.Func(fn), arg, opts...)
		tid := ThreadID(fid)
		b.reg.add(tid, fid, fmt.Sprintf("pthread-%d", tid))
		b.log.Debugf("posix: pthread_create id:%d (fiber)", tid)
		return tid, nil
	}

	tidCh := make(chan uint64, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		tid := nativeTID()
		tidCh <- tid
		defer func() {
			if r := recover(); r != nil {
				b.log.Warnf("posix: native thread id:%d panicked: %v", tid, r)
			}
		}()
		_, _ = fn(arg)
	}()
	tid := ThreadID(<-tidCh)
	b.log.Debugf("posix: pthread_create id:%d (native)", tid)
	return tid, nil
}

// Join blocks until the thread identified by id terminates, then
// returns its result and error. If id was never issued by this
// Bridge's registry (a native passthrough thread, or a handle this
// Bridge never created), it returns (nil, nil) — see Open Question O4:
// this mirrors the source's registry-miss path falling through to
// PTHREAD_CANCELED/success rather than erroring, since there is no
// real pthread_join this module can fall back to for a thread it never
// tracked.
func (b *Bridge) Join(id ThreadID) (any, error) {
	fid, ok := b.reg.lookup(id)
	if !ok {
		return nil, nil
	}
	result, err := b.sched.Join(fid)
	b.reg.forget(id)
	b.log.Debugf("posix: pthread_join id:%d", id)
	return result, err
}

// TimedJoin is Join with a deadline, returning ErrTimedOut if it
// passes first. Unlike the source's pthread_timedjoin_np (a documented
// TODO that silently degrades to an unconditional join, ignoring the
// deadline), this implements the deadline for real — see SUPPLEMENTED
// FEATURES.
func (b *Bridge) TimedJoin(id ThreadID, deadline time.Time) (any, error) {
	fid, ok := b.reg.lookup(id)
	if !ok {
		return nil, nil
	}
	result, err := b.sched.JoinUntil(fid, deadline)
	if errors.Is(err, sched.ErrTimedOut) {
		return nil, ErrTimedOut
	}
	b.reg.forget(id)
	return result, err
}

// Self returns the calling thread's own id: the running fiber's id if
// the caller is one, else a native OS-thread id obtained via
// nativeTID(), observably distinct from any fiber.ID.
func (b *Bridge) Self() ThreadID {
	if cur, ok := b.sched.Current(); ok {
		return ThreadID(cur.ID)
	}
	return ThreadID(nativeTID())
}

// Yield cooperatively suspends the calling fiber if it is one,
// otherwise yields the underlying OS thread via the Go runtime's own
// scheduler (the native passthrough equivalent of sched_yield).
func (b *Bridge) Yield() {
	if _, ok := b.sched.Current(); ok {
		_ = b.sched.Yield(context.Background())
		return
	}
	runtime.Gosched()
}

// SetName records a display name for a bridge-known thread id, used
// for logging and observability. Unlike the source's
// pthread_setname_np (a no-op TODO that always returns success
// without storing anything), this actually stores the name — see
// SUPPLEMENTED FEATURES. Returns ErrUnknownThread if id is not known
// to this Bridge's registry (a native thread's name cannot be set
// here, same as the source falling through to the real libc call for
// a thread it never tracked).
func (b *Bridge) SetName(id ThreadID, name string) error {
	if !b.reg.setName(id, name) {
		return ErrUnknownThread
	}
	return nil
}
