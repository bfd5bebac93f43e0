package fsync_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fiberhost/ctxrt/fsync"
	"github.com/fiberhost/ctxrt/reactor"
	"github.com/fiberhost/ctxrt/sched"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) *sched.Scheduler {
	t.Helper()
	rx, err := reactor.New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = rx.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return sched.New(rx)
}

func Test_Mutex_excludes_concurrent_holders(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t)
	m := fsync.NewMutex(s)

	const n = 16
	var counter int
	var maxSeen atomic.Int32
	done := make(chan struct{}, n)

	for i := 0; i < n; i++ {
		s.Submit(func(arg any) (any, error) {
			for j := 0; j < 10; j++ {
				require.NoError(t, m.Lock())
				counter++
				local := counter
				if int32(local) > maxSeen.Load() {
					maxSeen.Store(int32(local))
				}
				_ = s.Yield(context.Background())
				counter--
				require.NoError(t, m.Unlock())
				_ = s.Yield(context.Background())
			}
			done <- struct{}{}
			return nil, nil
		}, nil)
	}

	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("fiber did not finish")
		}
	}
	require.Equal(t, int32(1), maxSeen.Load())
}

func Test_Mutex_Unlock_wrong_owner_fails(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t)
	m := fsync.NewMutex(s)

	done := make(chan error, 1)
	s.Submit(func(arg any) (any, error) {
		done <- m.Unlock()
		return nil, nil
	}, nil)

	select {
	case err := <-done:
		require.ErrorIs(t, err, fsync.ErrPermission)
	case <-time.After(2 * time.Second):
		t.Fatal("fiber did not finish")
	}
}

func Test_Mutex_WithDeadlockCheck(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t)
	m := fsync.NewMutex(s, fsync.WithDeadlockCheck())

	done := make(chan error, 1)
	s.Submit(func(arg any) (any, error) {
		require.NoError(t, m.Lock())
		done <- m.Lock()
		return nil, nil
	}, nil)

	select {
	case err := <-done:
		require.ErrorIs(t, err, fsync.ErrDeadlock)
	case <-time.After(2 * time.Second):
		t.Fatal("fiber did not finish")
	}
}

func Test_Mutex_TryLock(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t)
	m := fsync.NewMutex(s)

	done := make(chan bool, 2)
	s.Submit(func(arg any) (any, error) {
		require.NoError(t, m.Lock())
		done <- m.TryLock()
		require.NoError(t, m.Unlock())
		return nil, nil
	}, nil)

	select {
	case ok := <-done:
		require.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("fiber did not finish")
	}
}
