//go:build !linux && !darwin

package reactor

// wakeSignal is a no-op on platforms without a native poller: Poll never
// blocks (see poller_other.go), so there is nothing to wake.
type wakeSignal struct{}

func newWakeSignal() (*wakeSignal, error) { return &wakeSignal{}, nil }

func (w *wakeSignal) readFD() int    { return -1 }
func (w *wakeSignal) signal() error  { return nil }
func (w *wakeSignal) drain()         {}
func (w *wakeSignal) close() error   { return nil }
