package sched

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fiberhost/ctxrt/fiber"
	"github.com/fiberhost/ctxrt/reactor"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) (*Scheduler, *reactor.Reactor) {
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

	return New(rx), rx
}

func Test_Scheduler_Submit_runs_fiber_body(t *testing.T) {
	t.Parallel()
	s, _ := newTestScheduler(t)

	var ran atomic.Bool
	id := s.Submit(func(arg any) (any, error) {
		ran.Store(true)
		return arg, nil
	}, 42)

	result, err := s.Join(id)
	require.NoError(t, err)
	require.Equal(t, 42, result)
	require.True(t, ran.Load())
}

func Test_Scheduler_Submit_propagates_panic(t *testing.T) {
	t.Parallel()
	s, _ := newTestScheduler(t)

	id := s.Submit(func(arg any) (any, error) {
		panic("boom")
	}, nil)

	_, err := s.Join(id)
	require.Error(t, err)
	var panicErr *fiber.PanicError
	require.ErrorAs(t, err, &panicErr)
	require.Equal(t, "boom", panicErr.Value)
}

func Test_Scheduler_only_one_fiber_runs_at_a_time(t *testing.T) {
	t.Parallel()
	s, _ := newTestScheduler(t)

	const n = 20
	var concurrent atomic.Int32
	var maxConcurrent atomic.Int32
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		s.Submit(func(arg any) (any, error) {
			defer wg.Done()
			cur := concurrent.Add(1)
			for {
				max := maxConcurrent.Load()
				if cur <= max || maxConcurrent.CompareAndSwap(max, cur) {
					break
				}
			}
			// Only the running stretch is counted: a fiber parked in Yield
			// is Ready, not running. Gosched gives any other unblocked
			// carrier goroutine the chance to overlap this stretch.
			runtime.Gosched()
			concurrent.Add(-1)
			_ = s.Yield(context.Background())
			return nil, nil
		}, nil)
	}

	wg.Wait()
	require.Equal(t, int32(1), maxConcurrent.Load())
}

func Test_Scheduler_Yield_outside_fiber_panics(t *testing.T) {
	t.Parallel()
	s, _ := newTestScheduler(t)

	require.Panics(t, func() {
		_ = s.Yield(context.Background())
	})
}

func Test_Scheduler_Join_unknown_id_returns_canceled(t *testing.T) {
	t.Parallel()
	s, _ := newTestScheduler(t)

	_, err := s.Join(999999)
	require.ErrorIs(t, err, fiber.ErrCanceled)
}

func Test_Scheduler_Join_twice_panics(t *testing.T) {
	t.Parallel()
	s, _ := newTestScheduler(t)

	id := s.Submit(func(arg any) (any, error) { return nil, nil }, nil)
	_, err := s.Join(id)
	require.NoError(t, err)

	require.Panics(t, func() {
		_, _ = s.Join(id)
	})
}

func Test_Scheduler_producer_consumer_order(t *testing.T) {
	t.Parallel()
	s, _ := newTestScheduler(t)

	var mu sync.Mutex
	var seen []int
	var wg sync.WaitGroup
	wg.Add(5)

	for i := 0; i < 5; i++ {
		i := i
		s.Submit(func(arg any) (any, error) {
			defer wg.Done()
			for j := 0; j < 3; j++ {
				mu.Lock()
				seen = append(seen, i*10+j)
				mu.Unlock()
				_ = s.Yield(context.Background())
			}
			return nil, nil
		}, nil)
	}

	wg.Wait()
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 15)
	next := map[int]int{}
	for _, v := range seen {
		i, j := v/10, v%10
		require.Equal(t, next[i], j, "fiber %d appended out of order", i)
		next[i]++
	}
}

func Test_Scheduler_Join_from_within_fiber(t *testing.T) {
	t.Parallel()
	s, _ := newTestScheduler(t)

	innerID := s.Submit(func(arg any) (any, error) {
		return "inner-result", nil
	}, nil)

	outerDone := make(chan error, 1)
	s.Submit(func(arg any) (any, error) {
		result, err := s.Join(innerID)
		require.Equal(t, "inner-result", result)
		outerDone <- err
		return nil, nil
	}, nil)

	select {
	case err := <-outerDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("outer fiber did not finish: Join from within a fiber must not block the reactor")
	}
}

func Test_Scheduler_JoinUntil_from_within_fiber_times_out(t *testing.T) {
	t.Parallel()
	s, _ := newTestScheduler(t)

	release := make(chan struct{})
	innerID := s.Submit(func(arg any) (any, error) {
		// Yields instead of blocking on release directly: this fiber
		// must keep handing the baton back so the outer fiber below
		// gets a turn to run its JoinUntil, rather than holding pump
		// hostage in AwaitParked for the whole test.
		for {
			select {
			case <-release:
				return nil, nil
			default:
			}
			_ = s.Yield(context.Background())
		}
	}, nil)

	outerDone := make(chan error, 1)
	s.Submit(func(arg any) (any, error) {
		_, err := s.JoinUntil(innerID, time.Now().Add(20*time.Millisecond))
		outerDone <- err
		return nil, nil
	}, nil)

	select {
	case err := <-outerDone:
		require.ErrorIs(t, err, ErrTimedOut)
	case <-time.After(2 * time.Second):
		t.Fatal("outer fiber did not finish: JoinUntil from within a fiber must not block the reactor")
	}
	close(release)
}

func Test_Scheduler_IdleRounds_advances_once_ready_queue_drains(t *testing.T) {
	t.Parallel()
	s, _ := newTestScheduler(t)

	id := s.Submit(func(arg any) (any, error) { return nil, nil }, nil)
	_, err := s.Join(id)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return s.IdleRounds() > 0
	}, 2*time.Second, time.Millisecond)
}

func Test_Scheduler_EnqueueReady_bumps_epoch(t *testing.T) {
	t.Parallel()
	s, _ := newTestScheduler(t)

	ready := make(chan struct{})
	resumed := make(chan struct{})
	var before, after uint64

	id := s.Submit(func(arg any) (any, error) {
		cur, ok := s.Current()
		require.True(t, ok)
		before = cur.Epoch()
		close(ready)
		s.Suspend(cur)
		after = cur.Epoch()
		close(resumed)
		return nil, nil
	}, nil)

	<-ready
	c, ok := s.registry[id]
	require.True(t, ok)
	s.EnqueueReady(c)

	select {
	case <-resumed:
	case <-time.After(2 * time.Second):
		t.Fatal("fiber never resumed")
	}
	require.Greater(t, after, before)

	_, err := s.Join(id)
	require.NoError(t, err)
}

func Test_Scheduler_JoinUntil_times_out(t *testing.T) {
	t.Parallel()
	s, _ := newTestScheduler(t)

	started := make(chan struct{})
	release := make(chan struct{})
	id := s.Submit(func(arg any) (any, error) {
		close(started)
		<-release
		return nil, nil
	}, nil)

	<-started
	_, err := s.JoinUntil(id, time.Now().Add(20*time.Millisecond))
	require.ErrorIs(t, err, ErrTimedOut)
	close(release)
}
