//go:build !linux && !darwin

package reactor

// noopPoller is the fallback poller for platforms without a native
// readiness backend. FD registration always fails; the reactor still
// functions for task/timer scheduling, which never depends on I/O
// polling.
type noopPoller struct{}

func newPoller() poller { return &noopPoller{} }

func (noopPoller) Init() error { return nil }
func (noopPoller) Close() error { return nil }

func (noopPoller) RegisterFD(fd int, events IOEvents, cb IOCallback) error {
	return ErrUnsupportedPlatform
}

func (noopPoller) UnregisterFD(fd int) error { return ErrUnsupportedPlatform }

func (noopPoller) ModifyFD(fd int, events IOEvents) error { return ErrUnsupportedPlatform }

func (noopPoller) Poll(timeoutMs int) (int, error) { return 0, nil }
