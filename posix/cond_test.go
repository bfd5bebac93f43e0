package posix_test

import (
	"testing"
	"time"

	"github.com/fiberhost/ctxrt/posix"
	"github.com/stretchr/testify/require"
)

func Test_Bridge_Cond_signal_wakes_waiter(t *testing.T) {
	t.Parallel()
	_, b := newTestBridge(t)

	var cond posix.CondT
	var m posix.MutexT
	done := make(chan error, 1)
	ready := make(chan struct{})

	_, err := b.Create(func(arg any) (any, error) {
		require.NoError(t, b.CondInit(&cond, nil))
		require.NoError(t, b.MutexInit(&m, nil))
		require.NoError(t, b.MutexLock(&m))
		close(ready)
		err := b.CondWait(&cond, &m)
		done <- err
		_ = b.MutexUnlock(&m)
		return nil, nil
	}, nil)
	require.NoError(t, err)

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter thread never reached wait")
	}

	signalDone := make(chan error, 1)
	_, err = b.Create(func(arg any) (any, error) {
		signalDone <- b.CondSignal(&cond)
		return nil, nil
	}, nil)
	require.NoError(t, err)

	select {
	case err := <-signalDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("signaling thread did not finish")
	}

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter thread did not wake")
	}
}

func Test_Bridge_Cond_broadcast_wakes_all(t *testing.T) {
	t.Parallel()
	_, b := newTestBridge(t)

	var cond posix.CondT
	var m posix.MutexT
	initDone := make(chan error, 1)
	_, err := b.Create(func(arg any) (any, error) {
		if err := b.CondInit(&cond, nil); err != nil {
			initDone <- err
			return nil, nil
		}
		initDone <- b.MutexInit(&m, nil)
		return nil, nil
	}, nil)
	require.NoError(t, err)
	select {
	case err := <-initDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("init thread did not finish")
	}

	const waiters = 4
	ready := make(chan struct{}, waiters)
	done := make(chan error, waiters)
	for i := 0; i < waiters; i++ {
		_, err := b.Create(func(arg any) (any, error) {
			require.NoError(t, b.MutexLock(&m))
			ready <- struct{}{}
			err := b.CondWait(&cond, &m)
			done <- err
			_ = b.MutexUnlock(&m)
			return nil, nil
		}, nil)
		require.NoError(t, err)
	}

	for i := 0; i < waiters; i++ {
		select {
		case <-ready:
		case <-time.After(2 * time.Second):
			t.Fatal("a waiter never reached wait")
		}
	}

	broadcastDone := make(chan error, 1)
	_, err = b.Create(func(arg any) (any, error) {
		broadcastDone <- b.CondBroadcast(&cond)
		return nil, nil
	}, nil)
	require.NoError(t, err)
	select {
	case err := <-broadcastDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("broadcasting thread did not finish")
	}

	for i := 0; i < waiters; i++ {
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("a waiter did not wake")
		}
	}
}

func Test_Bridge_Cond_timed_wait_times_out(t *testing.T) {
	t.Parallel()
	_, b := newTestBridge(t)

	done := make(chan error, 1)
	_, err := b.Create(func(arg any) (any, error) {
		var cond posix.CondT
		var m posix.MutexT
		require.NoError(t, b.CondInit(&cond, nil))
		require.NoError(t, b.MutexInit(&m, nil))
		require.NoError(t, b.MutexLock(&m))
		err := b.CondTimedWait(&cond, &m, time.Now().Add(30*time.Millisecond))
		done <- err
		_ = b.MutexUnlock(&m)
		return nil, nil
	}, nil)
	require.NoError(t, err)

	select {
	case err := <-done:
		require.ErrorIs(t, err, posix.ErrTimedOut)
	case <-time.After(2 * time.Second):
		t.Fatal("thread did not finish")
	}
}

func Test_Bridge_Cond_destroy_with_waiters_is_busy(t *testing.T) {
	t.Parallel()
	_, b := newTestBridge(t)

	var cond posix.CondT
	var m posix.MutexT
	ready := make(chan struct{})
	_, err := b.Create(func(arg any) (any, error) {
		require.NoError(t, b.CondInit(&cond, nil))
		require.NoError(t, b.MutexInit(&m, nil))
		require.NoError(t, b.MutexLock(&m))
		close(ready)
		_ = b.CondWait(&cond, &m)
		_ = b.MutexUnlock(&m)
		return nil, nil
	}, nil)
	require.NoError(t, err)

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter thread never reached wait")
	}

	destroyDone := make(chan error, 1)
	_, err = b.Create(func(arg any) (any, error) {
		destroyDone <- b.CondDestroy(&cond)
		return nil, nil
	}, nil)
	require.NoError(t, err)

	select {
	case err := <-destroyDone:
		require.ErrorIs(t, err, posix.ErrBusy)
	case <-time.After(2 * time.Second):
		t.Fatal("destroy thread did not finish")
	}

	require.NoError(t, b.CondBroadcast(&cond))
}

func Test_Bridge_Cond_operations_on_unknown_handle_fail(t *testing.T) {
	t.Parallel()
	_, b := newTestBridge(t)

	var cond posix.CondT
	require.ErrorIs(t, b.CondSignal(&cond), posix.ErrUnknownThread)
	require.ErrorIs(t, b.CondBroadcast(&cond), posix.ErrUnknownThread)
	require.ErrorIs(t, b.CondDestroy(&cond), posix.ErrUnknownThread)
}
