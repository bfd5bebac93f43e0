package fsync

// MutexOption configures a Mutex at construction time.
type MutexOption interface {
	applyMutex(*mutexConfig)
}

type mutexConfig struct {
	deadlockCheck bool
}

type mutexOptionFunc func(*mutexConfig)

func (f mutexOptionFunc) applyMutex(c *mutexConfig) { f(c) }

// WithDeadlockCheck enables same-owner relock detection, returning
// [ErrDeadlock] from Lock instead of deadlocking forever. Disabled by
// default, matching IRCD_PTHREAD_DEADLK_CHK being compiled out by
// default in the source.
func WithDeadlockCheck() MutexOption {
	return mutexOptionFunc(func(c *mutexConfig) { c.deadlockCheck = true })
}

func resolveMutexOptions(opts []MutexOption) *mutexConfig {
	cfg := &mutexConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt.applyMutex(cfg)
		}
	}
	return cfg
}
