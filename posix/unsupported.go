package posix

// This file carries forward, as deliberate fidelity rather than a gap,
// every pthreads surface the source itself stubs out with
// always_assert(false); return EINVAL — cancellation, scheduling
// parameters, affinity, most attribute accessors, thread-local storage,
// spinlocks and barriers. See SUPPLEMENTED FEATURES.

// Detach is unsupported; pthread_detach is an always_assert(false) stub
// in the source.
func (b *Bridge) Detach(ThreadID) error { return b.warnUnsupported("pthread_detach") }

// Cancel is unsupported.
func (b *Bridge) Cancel(ThreadID) error { return b.warnUnsupported("pthread_cancel") }

// SetCancelState is unsupported.
func (b *Bridge) SetCancelState(int) (int, error) {
	return 0, b.warnUnsupported("pthread_setcancelstate")
}

// SetCancelType is unsupported.
func (b *Bridge) SetCancelType(int) (int, error) {
	return 0, b.warnUnsupported("pthread_setcanceltype")
}

// TestCancel is unsupported.
func (b *Bridge) TestCancel() error { return b.warnUnsupported("pthread_testcancel") }

// SetSchedParam is unsupported.
func (b *Bridge) SetSchedParam(ThreadID, int) error {
	return b.warnUnsupported("pthread_setschedparam")
}

// GetSchedParam is unsupported.
func (b *Bridge) GetSchedParam(ThreadID) (int, error) {
	return 0, b.warnUnsupported("pthread_getschedparam")
}

// SetAffinity is unsupported.
func (b *Bridge) SetAffinity(ThreadID, []int) error {
	return b.warnUnsupported("pthread_setaffinity_np")
}

// GetAffinity is unsupported.
func (b *Bridge) GetAffinity(ThreadID) ([]int, error) {
	return nil, b.warnUnsupported("pthread_getaffinity_np")
}

// GetName is unsupported; the source stubs pthread_getname_np even
// though it implements (a no-op version of) pthread_setname_np.
func (b *Bridge) GetName(ThreadID) (string, error) {
	return "", b.warnUnsupported("pthread_getname_np")
}

// KeyT is the opaque storage for a pthread_key_t. Thread-local storage
// is unsupported.
type KeyT [8]byte

// KeyCreate is unsupported.
func (b *Bridge) KeyCreate(*KeyT, func(any)) error {
	return b.warnUnsupported("pthread_key_create")
}

// KeyDelete is unsupported.
func (b *Bridge) KeyDelete(KeyT) error { return b.warnUnsupported("pthread_key_delete") }

// GetSpecific is unsupported.
func (b *Bridge) GetSpecific(KeyT) (any, error) {
	return nil, b.warnUnsupported("pthread_getspecific")
}

// SetSpecific is unsupported.
func (b *Bridge) SetSpecific(KeyT, any) error {
	return b.warnUnsupported("pthread_setspecific")
}

// SpinlockT is the opaque storage for a pthread_spinlock_t. Spinlocks
// are unsupported.
type SpinlockT [8]byte

// SpinInit is unsupported.
func (b *Bridge) SpinInit(*SpinlockT) error { return b.warnUnsupported("pthread_spin_init") }

// SpinDestroy is unsupported.
func (b *Bridge) SpinDestroy(*SpinlockT) error { return b.warnUnsupported("pthread_spin_destroy") }

// SpinLock is unsupported.
func (b *Bridge) SpinLock(*SpinlockT) error { return b.warnUnsupported("pthread_spin_lock") }

// SpinTryLock is unsupported.
func (b *Bridge) SpinTryLock(*SpinlockT) (bool, error) {
	return false, b.warnUnsupported("pthread_spin_trylock")
}

// SpinUnlock is unsupported.
func (b *Bridge) SpinUnlock(*SpinlockT) error { return b.warnUnsupported("pthread_spin_unlock") }

// BarrierT is the opaque storage for a pthread_barrier_t. Barriers are
// unsupported.
type BarrierT [8]byte

// BarrierAttrT is the opaque storage for a pthread_barrierattr_t.
type BarrierAttrT [8]byte

// BarrierInit is unsupported.
func (b *Bridge) BarrierInit(*BarrierT, *BarrierAttrT, uint) error {
	return b.warnUnsupported("pthread_barrier_init")
}

// BarrierDestroy is unsupported.
func (b *Bridge) BarrierDestroy(*BarrierT) error {
	return b.warnUnsupported("pthread_barrier_destroy")
}

// BarrierWait is unsupported.
func (b *Bridge) BarrierWait(*BarrierT) error { return b.warnUnsupported("pthread_barrier_wait") }

// MutexAttr accessors are all unsupported stubs, matching the source.
func (b *Bridge) MutexAttrGetType(*MutexAttrT) (int, error) {
	return 0, b.warnUnsupported("pthread_mutexattr_gettype")
}

func (b *Bridge) MutexAttrSetType(*MutexAttrT, int) error {
	return b.warnUnsupported("pthread_mutexattr_settype")
}

func (b *Bridge) warnUnsupported(op string) error {
	b.log.Warnf("posix: %s is unsupported", op)
	return ErrUnsupported
}
