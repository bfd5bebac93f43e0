//go:build linux

package reactor

import "golang.org/x/sys/unix"

// wakeSignal is the self-wake mechanism used to pull the loop goroutine
// out of a blocking Poll call once new work has been submitted while it
// was StateSleeping. On Linux this is a single eventfd, grounded on
// eventloop/wakeup_linux.go.
type wakeSignal struct {
	fd int
}

func newWakeSignal() (*wakeSignal, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, err
	}
	return &wakeSignal{fd: fd}, nil
}

func (w *wakeSignal) readFD() int { return w.fd }

func (w *wakeSignal) signal() error {
	buf := [8]byte{0, 0, 0, 0, 0, 0, 0, 1}
	_, err := writeFD(w.fd, buf[:])
	return err
}

func (w *wakeSignal) drain() {
	var buf [8]byte
	for {
		if _, err := readFD(w.fd, buf[:]); err != nil {
			return
		}
	}
}

func (w *wakeSignal) close() error {
	return closeFD(w.fd)
}
