package posix_test

import (
	"testing"
	"time"

	"github.com/fiberhost/ctxrt/posix"
	"github.com/stretchr/testify/require"
)

func Test_Bridge_Mutex_lock_unlock_roundtrip(t *testing.T) {
	t.Parallel()
	_, b := newTestBridge(t)

	done := make(chan error, 1)
	_, err := b.Create(func(arg any) (any, error) {
		var m posix.MutexT
		if err := b.MutexInit(&m, nil); err != nil {
			done <- err
			return nil, nil
		}
		if err := b.MutexLock(&m); err != nil {
			done <- err
			return nil, nil
		}
		ok, err := b.MutexTryLock(&m)
		if err != nil {
			done <- err
			return nil, nil
		}
		if ok {
			done <- nil
			return nil, nil
		}
		if err := b.MutexUnlock(&m); err != nil {
			done <- err
			return nil, nil
		}
		done <- b.MutexDestroy(&m)
		return nil, nil
	}, nil)
	require.NoError(t, err)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("thread did not finish")
	}
}

func Test_Bridge_Mutex_unlock_wrong_owner_fails(t *testing.T) {
	t.Parallel()
	_, b := newTestBridge(t)

	done := make(chan error, 1)
	_, err := b.Create(func(arg any) (any, error) {
		var m posix.MutexT
		require.NoError(t, b.MutexInit(&m, nil))
		done <- b.MutexUnlock(&m)
		return nil, nil
	}, nil)
	require.NoError(t, err)

	select {
	case err := <-done:
		require.ErrorIs(t, err, posix.ErrPermission)
	case <-time.After(2 * time.Second):
		t.Fatal("thread did not finish")
	}
}

func Test_Bridge_Mutex_destroy_while_locked_is_busy(t *testing.T) {
	t.Parallel()
	_, b := newTestBridge(t)

	done := make(chan error, 1)
	_, err := b.Create(func(arg any) (any, error) {
		var m posix.MutexT
		require.NoError(t, b.MutexInit(&m, nil))
		require.NoError(t, b.MutexLock(&m))
		done <- b.MutexDestroy(&m)
		return nil, nil
	}, nil)
	require.NoError(t, err)

	select {
	case err := <-done:
		require.ErrorIs(t, err, posix.ErrBusy)
	case <-time.After(2 * time.Second):
		t.Fatal("thread did not finish")
	}
}

func Test_Bridge_Mutex_operations_on_unknown_handle_fail(t *testing.T) {
	t.Parallel()
	_, b := newTestBridge(t)

	var m posix.MutexT
	require.ErrorIs(t, b.MutexLock(&m), posix.ErrUnknownThread)
	require.ErrorIs(t, b.MutexUnlock(&m), posix.ErrUnknownThread)
}
